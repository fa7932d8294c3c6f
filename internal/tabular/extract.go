package tabular

import (
	"strings"

	"SheetServe/internal/models"
)

type column struct {
	index  int
	header string
}

// Table is the result of extracting a grid with its own header row.
type Table struct {
	Headers []string
	Records []models.Record
}

// headerIndex maps every defined-header column to its header, in column order.
// A column whose header cell is absent or blank is undefined.
func headerIndex(g Grid, ext Extent) []column {
	cols := make([]column, 0, ext.LastCol-ext.FirstCol+1)
	for c := ext.FirstCol; c <= ext.LastCol; c++ {
		cell, ok := g.Cell(ext.FirstRow, c)
		if !ok {
			continue
		}
		name := cell.String()
		if strings.TrimSpace(name) == "" {
			continue
		}
		cols = append(cols, column{index: c, header: name})
	}
	return cols
}

// Headers returns the defined header names of the first row.
func Headers(g Grid) ([]string, error) {
	ext, err := checkExtent(g)
	if err != nil {
		return []string{}, err
	}
	return headerNames(headerIndex(g, ext)), nil
}

// Records returns one record per data row that has at least one present cell
// under a defined header. Absent cells are omitted from the record.
func Records(g Grid) ([]models.Record, error) {
	ext, err := checkExtent(g)
	if err != nil {
		return []models.Record{}, err
	}
	return records(g, ext, headerIndex(g, ext)), nil
}

// Extract returns headers and records in one pass over the header row.
func Extract(g Grid) (Table, error) {
	ext, err := checkExtent(g)
	if err != nil {
		return Table{Headers: []string{}, Records: []models.Record{}}, err
	}
	cols := headerIndex(g, ext)
	return Table{
		Headers: headerNames(cols),
		Records: records(g, ext, cols),
	}, nil
}

func headerNames(cols []column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.header
	}
	return names
}

func records(g Grid, ext Extent, cols []column) []models.Record {
	out := make([]models.Record, 0, ext.DataRows())
	for r := ext.FirstRow + 1; r <= ext.LastRow; r++ {
		var rec models.Record
		for _, col := range cols {
			if cell, ok := g.Cell(r, col.index); ok {
				rec.Set(col.header, cell)
			}
		}
		if rec.Len() > 0 {
			out = append(out, rec)
		}
	}
	return out
}
