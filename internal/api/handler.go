package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"SheetServe/internal/models"
	"SheetServe/internal/sheets"
	"SheetServe/internal/store"
)

//go:embed static/index.html
var indexHTML []byte

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeXLSM = "application/vnd.ms-excel.sheet.macroEnabled.12"

	// multipart framing allowance on top of the file size cap
	formOverhead = 64 << 10
)

type SheetService interface {
	Table(ctx context.Context, name string, opts sheets.Options) (*models.Table, error)
	Upload(ctx context.Context, filename string, data []byte) (*models.UploadResult, error)
	Download(ctx context.Context) (*store.Snapshot, error)
	Files() []string
}

type Handler struct {
	Sheets        SheetService
	Log           *zap.Logger
	UploadMaxSize int64
	UploadLimiter *rate.Limiter
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Excel API is running. Use /api/excel-data to get the Excel data.",
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Files(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"files": h.Sheets.Files()})
}

// ExcelData serves the first sheet of ?file= as records. ?schema=A,B,C
// switches to fixed-schema extraction, deduplicated unless ?dedupe=false.
func (h *Handler) ExcelData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var opts sheets.Options
	if raw := q.Get("schema"); raw != "" {
		for _, col := range strings.Split(raw, ",") {
			if col = strings.TrimSpace(col); col != "" {
				opts.Schema = append(opts.Schema, col)
			}
		}
		opts.Dedupe = true
	}
	if raw := q.Get("dedupe"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dedupe must be true or false")
			return
		}
		opts.Dedupe = v
	}

	table, err := h.Sheets.Table(r.Context(), q.Get("file"), opts)
	if err != nil {
		status, msg := readError(err)
		h.logger().Error("failed to serve sheet",
			zap.String("file", q.Get("file")),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Sheets.Download(r.Context())
	if err != nil {
		status, msg := readError(err)
		if status == http.StatusInternalServerError {
			msg = "Failed to download file"
			h.logger().Error("download failed", zap.Error(err))
		}
		writeError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", mimeXLSX)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": snap.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.Data)))
	_, _ = w.Write(snap.Data)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.UploadLimiter != nil && !h.UploadLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "Too many uploads, try again later")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.UploadMaxSize+formOverhead)
	if err := r.ParseMultipartForm(h.UploadMaxSize + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.UploadMaxSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	if !acceptedUpload(header.Header.Get("Content-Type"), header.Filename) {
		status, msg := uploadError(ErrUnsupportedType)
		writeError(w, status, msg)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.Sheets.Upload(r.Context(), header.Filename, data)
	if err != nil {
		status, msg := uploadError(err)
		h.logger().Warn("upload rejected",
			zap.String("upload_name", header.Filename),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// acceptedUpload admits the two spreadsheet MIME types browsers send, and
// generic types when the file extension is a spreadsheet one.
func acceptedUpload(contentType, filename string) bool {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case mimeXLSX, mimeXLS, mimeXLSM:
		return true
	case "", "application/octet-stream", "application/zip":
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".xlsx", ".xlsm", ".xls":
			return true
		}
	}
	return false
}
