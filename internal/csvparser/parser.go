package csvparser

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"SheetServe/internal/models"
	"SheetServe/internal/tabular"
)

// ParseGrid reads a CSV document into a grid anchored at A1. Empty fields are
// absent cells; fields that parse as numbers become Number cells.
//
// maxRows limits how many records are read, header included. Zero means no limit.
func ParseGrid(r io.Reader, maxRows int) (*tabular.Sparse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]*models.Cell
	for maxRows <= 0 || len(rows) < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make([]*models.Cell, len(record))
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			c := cellFromField(field)
			row[i] = &c
		}
		rows = append(rows, row)
	}

	// No rows gives a grid without extent, which extraction reports as no data.
	return tabular.FromRows(rows), nil
}

func cellFromField(field string) models.Cell {
	n, err := strconv.ParseFloat(field, 64)
	if err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) && !strings.ContainsAny(field, "xXpP_") {
		return models.NumberCell(n)
	}
	return models.TextCell(field)
}
