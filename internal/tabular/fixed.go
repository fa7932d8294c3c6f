package tabular

import (
	"strconv"
	"strings"

	"SheetServe/internal/models"
)

// FixedSchemaRecords keys each data row positionally by expected instead of
// trusting the header row: expected[i] takes the cell in the i-th column of
// the extent, Empty when absent. Rows with no non-empty cell are dropped.
// With dedupe, later rows equal to an earlier one in every field are dropped.
func FixedSchemaRecords(g Grid, expected []string, dedupe bool) ([]models.Record, error) {
	ext, err := checkExtent(g)
	if err != nil {
		return []models.Record{}, err
	}

	out := make([]models.Record, 0, ext.DataRows())
	seen := make(map[string]struct{})

	for r := ext.FirstRow + 1; r <= ext.LastRow; r++ {
		var rec models.Record
		hasData := false
		for i, name := range expected {
			cell, ok := g.Cell(r, ext.FirstCol+i)
			if !ok {
				cell = models.EmptyCell()
			}
			if !cell.IsEmpty() {
				hasData = true
			}
			rec.Set(name, cell)
		}
		if !hasData {
			continue
		}
		if dedupe {
			key := recordKey(rec, expected)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, rec)
	}
	return out, nil
}

// HeaderMatches reports whether the header row names the expected columns in
// order, ignoring case and surrounding space.
func HeaderMatches(g Grid, expected []string) bool {
	ext, err := checkExtent(g)
	if err != nil {
		return false
	}
	for i, name := range expected {
		cell, ok := g.Cell(ext.FirstRow, ext.FirstCol+i)
		if !ok || !strings.EqualFold(strings.TrimSpace(cell.String()), strings.TrimSpace(name)) {
			return false
		}
	}
	return true
}

// recordKey encodes the fields of rec in schema order so that equal records
// produce equal keys.
func recordKey(rec models.Record, schema []string) string {
	var b strings.Builder
	for _, name := range schema {
		cell, _ := rec.Get(name)
		b.WriteByte(byte('0' + cell.Kind))
		switch cell.Kind {
		case models.KindText:
			b.WriteString(strconv.Itoa(len(cell.Text)))
			b.WriteByte(':')
			b.WriteString(cell.Text)
		case models.KindNumber:
			n := cell.Number
			if n == 0 { // -0 == 0
				n = 0
			}
			b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		case models.KindBool:
			b.WriteString(strconv.FormatBool(cell.Bool))
		}
		b.WriteByte(';')
	}
	return b.String()
}
