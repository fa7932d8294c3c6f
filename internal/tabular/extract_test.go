package tabular

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SheetServe/internal/models"
)

func txt(s string) *models.Cell {
	c := models.TextCell(s)
	return &c
}

func num(n float64) *models.Cell {
	c := models.NumberCell(n)
	return &c
}

func TestExtract_DropsAllAbsentRows(t *testing.T) {
	g := FromRows([][]*models.Cell{
		{txt("Name"), txt("Data")},
		{txt("A"), num(1)},
		{txt("B"), num(2)},
		{nil, nil},
		{txt("C"), num(3)},
	})

	table, err := Extract(g)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Data"}, table.Headers)
	require.Len(t, table.Records, 3)

	out, err := json.Marshal(table.Records)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Name":"A","Data":1},{"Name":"B","Data":2},{"Name":"C","Data":3}]`, string(out))
}

func TestExtract_UndefinedHeaderColumnIsIgnored(t *testing.T) {
	g := FromRows([][]*models.Cell{
		{txt("Name"), txt("Data"), nil},
		{txt("A"), num(1), txt("orphan")},
		{nil, nil, txt("only-orphan")},
	})

	table, err := Extract(g)
	require.NoError(t, err)

	assert.Len(t, table.Headers, 2)
	require.Len(t, table.Records, 1)
	_, ok := table.Records[0].Get("")
	assert.False(t, ok)
	assert.Equal(t, []string{"Name", "Data"}, table.Records[0].Keys())
}

func TestExtract_BlankHeaderIsUndefined(t *testing.T) {
	g := FromRows([][]*models.Cell{
		{txt("Name"), txt("  "), txt("Data")},
		{txt("A"), txt("x"), num(1)},
	})

	headers, err := Headers(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Data"}, headers)
}

func TestExtract_SparseRecordsOmitAbsentCells(t *testing.T) {
	g := FromRows([][]*models.Cell{
		{txt("Name"), txt("Data")},
		{txt("A"), nil},
		{nil, num(7)},
	})

	recs, err := Records(g)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, []string{"Name"}, recs[0].Keys())
	assert.Equal(t, []string{"Data"}, recs[1].Keys())
}

func TestExtract_NumericHeaderIsCoercedToText(t *testing.T) {
	g := FromRows([][]*models.Cell{
		{txt("Year"), num(2024)},
		{txt("Total"), num(12.5)},
	})

	table, err := Extract(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "2024"}, table.Headers)

	v, ok := table.Records[0].Get("2024")
	require.True(t, ok)
	assert.Equal(t, 12.5, v.Number)
}

func TestExtract_DuplicateHeaderLastColumnWins(t *testing.T) {
	g := FromRows([][]*models.Cell{
		{txt("Name"), txt("Name")},
		{txt("first"), txt("second")},
	})

	table, err := Extract(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Name"}, table.Headers)
	require.Len(t, table.Records, 1)

	v, _ := table.Records[0].Get("Name")
	assert.Equal(t, "second", v.Text)
	assert.Equal(t, 1, table.Records[0].Len())
}

func TestExtract_PresentEmptyCellCountsAsData(t *testing.T) {
	g := NewSparse(Extent{LastRow: 1, LastCol: 0})
	g.Set(0, 0, models.TextCell("Note"))
	g.Set(1, 0, models.EmptyCell())

	recs, err := Records(g)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	out, err := json.Marshal(recs[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"Note":null}`, string(out))
}

func TestExtract_OffsetExtent(t *testing.T) {
	g := NewSparse(Extent{FirstRow: 2, LastRow: 4, FirstCol: 1, LastCol: 2})
	g.Set(0, 0, models.TextCell("outside"))
	g.Set(2, 1, models.TextCell("Key"))
	g.Set(2, 2, models.TextCell("Value"))
	g.Set(3, 1, models.TextCell("a"))
	g.Set(4, 2, models.BoolCell(true))

	table, err := Extract(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Key", "Value"}, table.Headers)
	require.Len(t, table.Records, 2)

	v, ok := table.Records[1].Get("Value")
	require.True(t, ok)
	assert.Equal(t, models.BoolCell(true), v)
}

func TestExtract_EmptyExtent(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{"no rows", FromRows(nil)},
		{"rows without cells", FromRows([][]*models.Cell{{}, {}})},
		{"inverted extent", NewSparse(Extent{FirstRow: 3, LastRow: 1})},
		{"nil sparse", (*Sparse)(nil)},
		{"nil grid", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, err := Headers(tt.grid)
			var mge *MalformedGridError
			assert.ErrorAs(t, err, &mge)
			assert.NotNil(t, headers)
			assert.Empty(t, headers)

			recs, err := Records(tt.grid)
			assert.ErrorAs(t, err, &mge)
			assert.NotNil(t, recs)
			assert.Empty(t, recs)

			table, err := Extract(tt.grid)
			assert.ErrorAs(t, err, &mge)
			assert.Empty(t, table.Headers)
			assert.Empty(t, table.Records)
		})
	}
}

func TestExtract_HeaderOnlyGrid(t *testing.T) {
	g := FromRows([][]*models.Cell{{txt("Name"), txt("Data")}})

	table, err := Extract(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Data"}, table.Headers)
	assert.Empty(t, table.Records)
}

func TestExtract_Properties(t *testing.T) {
	g := FromRows([][]*models.Cell{
		{txt("a"), nil, txt("c"), txt("d")},
		{txt("1"), txt("x"), nil, nil},
		{nil, txt("only-undefined"), nil, nil},
		{nil, nil, nil, num(4)},
		{},
		{txt("5"), nil, num(5), txt("5")},
	})
	ext, _ := g.Extent()

	first, err := Extract(g)
	require.NoError(t, err)
	second, err := Extract(g)
	require.NoError(t, err)

	assert.Equal(t, first, second, "extraction is idempotent")
	assert.LessOrEqual(t, len(first.Records), ext.DataRows())
	assert.Len(t, first.Records, 3)

	known := make(map[string]bool)
	for _, h := range first.Headers {
		known[h] = true
	}
	for _, rec := range first.Records {
		assert.Positive(t, rec.Len())
		for _, k := range rec.Keys() {
			assert.True(t, known[k], "orphan key %q", k)
		}
	}
}
