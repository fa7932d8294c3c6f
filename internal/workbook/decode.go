package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"SheetServe/internal/models"
	"SheetServe/internal/tabular"
)

// DecodeError means the bytes are not a readable spreadsheet.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode workbook: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type Workbook struct {
	file *excelize.File
}

func Decode(data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return &Workbook{file: f}, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// FirstGrid returns the grid of the first sheet in workbook order.
func (w *Workbook) FirstGrid() (string, *tabular.Sparse, error) {
	sheets := w.SheetNames()
	if len(sheets) == 0 {
		return "", nil, &DecodeError{Err: errors.New("workbook has no sheets")}
	}
	g, err := w.Grid(sheets[0])
	return sheets[0], g, err
}

// Grid reads one sheet into a typed sparse grid. Cells with an empty value
// are absent. The extent is the bounding box of the non-empty cells, so its
// first row is the header row; a sheet without any value has no extent.
// The stored <dimension> ref is not used since generated files often leave
// it at A1.
func (w *Workbook) Grid(sheet string) (*tabular.Sparse, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	ext, ok := populated(rows)
	if !ok {
		return &tabular.Sparse{}, nil
	}

	g := tabular.NewSparse(ext)
	for r, row := range rows {
		for c, raw := range row {
			if raw == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := w.file.GetCellType(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("cell %s!%s: %w", sheet, name, err)
			}
			g.Set(r, c, typedCell(typ, raw))
		}
	}

	return g, nil
}

func populated(rows [][]string) (tabular.Extent, bool) {
	ext := tabular.Extent{FirstRow: -1, FirstCol: -1}
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			if ext.FirstRow == -1 {
				ext.FirstRow = r
			}
			ext.LastRow = r
			if ext.FirstCol == -1 || c < ext.FirstCol {
				ext.FirstCol = c
			}
			if c > ext.LastCol {
				ext.LastCol = c
			}
		}
	}
	return ext, ext.FirstRow != -1
}

func typedCell(typ excelize.CellType, raw string) models.Cell {
	switch typ {
	case excelize.CellTypeBool:
		return models.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return models.NumberCell(n)
		}
		return models.TextCell(raw)
	default:
		return models.TextCell(raw)
	}
}
