package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"SheetServe/internal/models"
)

const DefaultSheet = "Sheet1"

// Encode writes headers as the first row of a single-sheet xlsx workbook and
// one row per record below it. Keys missing from a record and Empty cells
// are left unwritten. With nil headers the column set is the union of all
// record keys in first-seen order.
func Encode(sheet string, headers []string, records []models.Record) ([]byte, error) {
	if headers == nil {
		headers = HeadersOf(records)
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	for i, h := range headers {
		if err := setCell(f, sheet, i, 0, h); err != nil {
			return nil, err
		}
	}

	for r, rec := range records {
		for i, h := range headers {
			v, ok := rec.Get(h)
			if !ok || v.IsEmpty() {
				continue
			}
			if err := setCell(f, sheet, i, r+1, v.Value()); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// HeadersOf returns the union of record keys in first-seen order.
func HeadersOf(records []models.Record) []string {
	seen := make(map[string]bool)
	headers := make([]string, 0)
	for _, rec := range records {
		for _, k := range rec.Keys() {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	return headers
}

func setCell(f *excelize.File, sheet string, col, row int, v interface{}) error {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, name, v); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}
