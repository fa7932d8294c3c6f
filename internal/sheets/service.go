// Package sheets serves spreadsheet contents as header-keyed records and
// manages the uploaded workbook.
package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"SheetServe/internal/csvparser"
	"SheetServe/internal/metrics"
	"SheetServe/internal/models"
	"SheetServe/internal/source"
	"SheetServe/internal/store"
	"SheetServe/internal/tabular"
	"SheetServe/internal/workbook"
)

var (
	ErrNoSheets = errors.New("workbook has no sheets")
	ErrNoData   = errors.New("workbook has no data")
)

// Options selects how a sheet is turned into records. A non-empty Schema
// switches to positional fixed-schema extraction.
type Options struct {
	Schema []string
	Dedupe bool
}

// Notifier receives an event after every accepted upload. It must not block.
type Notifier interface {
	Notify(ev models.UploadEvent)
}

type Config struct {
	DefaultFilename string
	FixedSchemas    map[string][]string
	MaxCSVRows      int
}

type Service struct {
	store    store.WorkbookStore
	resolver *source.Resolver
	notifier Notifier
	log      *zap.Logger
	cfg      Config
}

func New(st store.WorkbookStore, resolver *source.Resolver, notifier Notifier, log *zap.Logger, cfg Config) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    st,
		resolver: resolver,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
	}
}

func (s *Service) DefaultFilename() string { return s.cfg.DefaultFilename }

// Files lists the names the viewer can ask for, the uploaded workbook first.
func (s *Service) Files() []string {
	names := []string{s.cfg.DefaultFilename}
	if s.resolver == nil {
		return names
	}
	for _, n := range s.resolver.Names() {
		if n != s.cfg.DefaultFilename {
			names = append(names, n)
		}
	}
	return names
}

// Table returns the first sheet of name as a table. An empty name or the
// default file name refers to the uploaded workbook.
func (s *Service) Table(ctx context.Context, name string, opts Options) (*models.Table, error) {
	if name == "" {
		name = s.cfg.DefaultFilename
	}
	if len(opts.Schema) == 0 {
		if schema, ok := s.cfg.FixedSchemas[name]; ok {
			opts.Schema = schema
			opts.Dedupe = true
		}
	}

	grid, err := s.grid(ctx, name)
	if err != nil {
		return nil, err
	}

	table := &models.Table{Filename: name}

	if len(opts.Schema) > 0 {
		if !tabular.HeaderMatches(grid, opts.Schema) {
			s.log.Warn("header row does not match fixed schema",
				zap.String("file", name),
				zap.Strings("schema", opts.Schema),
			)
		}
		records, err := tabular.FixedSchemaRecords(grid, opts.Schema, opts.Dedupe)
		if err != nil && !s.noData(name, err) {
			return nil, err
		}
		table.Headers = append([]string(nil), opts.Schema...)
		table.Data = records
		metrics.Extractions.WithLabelValues("fixed").Inc()
	} else {
		t, err := tabular.Extract(grid)
		if err != nil && !s.noData(name, err) {
			return nil, err
		}
		table.Headers = t.Headers
		table.Data = t.Records
		metrics.Extractions.WithLabelValues("header").Inc()
	}

	metrics.RowsExtracted.Add(float64(len(table.Data)))
	return table, nil
}

// noData recovers a malformed grid into an empty table.
func (s *Service) noData(name string, err error) bool {
	var mge *tabular.MalformedGridError
	if !errors.As(err, &mge) {
		return false
	}
	s.log.Debug("sheet has no data", zap.String("file", name), zap.Error(err))
	return true
}

func (s *Service) grid(ctx context.Context, name string) (tabular.Grid, error) {
	if name == s.cfg.DefaultFilename {
		snap, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		return firstGrid(snap.Data)
	}

	if s.resolver == nil {
		return nil, &source.UnknownFileError{Name: name, Reason: "no file sources configured"}
	}
	f, err := s.resolver.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	if f.Kind == source.KindCSV {
		g, err := csvparser.ParseGrid(bytes.NewReader(f.Data), s.cfg.MaxCSVRows)
		if err != nil {
			return nil, &workbook.DecodeError{Err: err}
		}
		return g, nil
	}
	return firstGrid(f.Data)
}

func firstGrid(data []byte) (tabular.Grid, error) {
	wb, err := workbook.Decode(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	_, g, err := wb.FirstGrid()
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Upload validates data as a workbook with at least one record on its first
// sheet and makes it the current workbook.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*models.UploadResult, error) {
	result, err := s.upload(ctx, filename, data)
	if err != nil {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.Uploads.WithLabelValues("accepted").Inc()
	return result, nil
}

func (s *Service) upload(ctx context.Context, filename string, data []byte) (*models.UploadResult, error) {
	wb, err := workbook.Decode(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	g, err := wb.Grid(sheets[0])
	if err != nil {
		return nil, &workbook.DecodeError{Err: err}
	}
	records, err := tabular.Records(g)
	if err != nil || len(records) == 0 {
		return nil, ErrNoData
	}

	snap := store.Snapshot{Filename: s.cfg.DefaultFilename, Data: data}
	store.Prepare(&snap)
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}

	s.log.Info("workbook replaced",
		zap.String("revision", snap.Revision.String()),
		zap.String("upload_name", filename),
		zap.Int("bytes", len(data)),
		zap.Int("rows", len(records)),
	)

	if s.notifier != nil {
		s.notifier.Notify(models.UploadEvent{
			Revision:   snap.Revision,
			Filename:   filename,
			Size:       len(data),
			RowCount:   len(records),
			UploadedAt: snap.SavedAt,
			Status:     models.StatusPending,
		})
	}

	return &models.UploadResult{
		Message:  "File uploaded successfully",
		RowCount: len(records),
	}, nil
}

// Download returns the current workbook.
func (s *Service) Download(ctx context.Context) (*store.Snapshot, error) {
	return s.store.Load(ctx)
}

// Seed stores the default workbook when nothing has been stored yet.
func (s *Service) Seed(ctx context.Context) error {
	_, err := s.store.Load(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrEmpty) {
		return err
	}

	data, err := workbook.DefaultWorkbook()
	if err != nil {
		return fmt.Errorf("build default workbook: %w", err)
	}

	snap := store.Snapshot{Filename: s.cfg.DefaultFilename, Data: data}
	store.Prepare(&snap)
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("seed workbook: %w", err)
	}

	s.log.Info("seeded default workbook", zap.String("file", s.cfg.DefaultFilename))
	return nil
}
