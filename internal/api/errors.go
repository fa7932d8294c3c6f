package api

import (
	"errors"
	"net/http"

	"SheetServe/internal/sheets"
	"SheetServe/internal/source"
	"SheetServe/internal/store"
	"SheetServe/internal/workbook"
)

var ErrUnsupportedType = errors.New("unsupported file type")

const msgNoFile = "No Excel file available"

// readError maps a failure while serving sheet data to a status and message.
func readError(err error) (int, string) {
	var (
		unknown *source.UnknownFileError
		fetch   *source.FetchError
	)
	switch {
	case errors.Is(err, store.ErrEmpty), errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound, msgNoFile
	case errors.As(err, &unknown):
		return http.StatusBadRequest, unknown.Error()
	case errors.As(err, &fetch):
		return http.StatusBadGateway, "Failed to fetch Excel file: " + fetch.Error()
	default:
		return http.StatusInternalServerError, "Failed to process Excel file: " + err.Error()
	}
}

func uploadError(err error) (int, string) {
	var decode *workbook.DecodeError
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusBadRequest, "Only Excel files are allowed"
	case errors.Is(err, sheets.ErrNoSheets):
		return http.StatusBadRequest, "Excel file has no sheets"
	case errors.Is(err, sheets.ErrNoData):
		return http.StatusBadRequest, "Excel file has no data"
	case errors.As(err, &decode):
		return http.StatusBadRequest, "Invalid Excel file: " + decode.Error()
	default:
		return http.StatusInternalServerError, "Failed to upload file"
	}
}
