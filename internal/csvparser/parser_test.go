package csvparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SheetServe/internal/models"
	"SheetServe/internal/tabular"
)

func TestParseGrid(t *testing.T) {
	in := "Name,Data,Note\nSeminar_Begin,45709,\n,,\nPraktikum_Begin, 45769 ,late\n"

	g, err := ParseGrid(strings.NewReader(in), 0)
	require.NoError(t, err)

	ext, ok := g.Extent()
	require.True(t, ok)
	assert.Equal(t, tabular.Extent{LastRow: 3, LastCol: 2}, ext)

	c, ok := g.Cell(1, 1)
	require.True(t, ok)
	assert.Equal(t, models.NumberCell(45709), c)

	_, ok = g.Cell(1, 2)
	assert.False(t, ok, "empty fields are absent")

	table, err := tabular.Extract(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Data", "Note"}, table.Headers)
	assert.Len(t, table.Records, 2)
}

func TestParseGrid_RaggedRows(t *testing.T) {
	g, err := ParseGrid(strings.NewReader("a,b\n1\n2,3,4\n"), 0)
	require.NoError(t, err)

	ext, _ := g.Extent()
	assert.Equal(t, 2, ext.LastCol)
}

func TestParseGrid_MaxRows(t *testing.T) {
	g, err := ParseGrid(strings.NewReader("a\n1\n2\n3\n"), 2)
	require.NoError(t, err)

	ext, _ := g.Extent()
	assert.Equal(t, 1, ext.LastRow)
}

func TestParseGrid_Empty(t *testing.T) {
	for _, in := range []string{"", "\n\n", "\r\n"} {
		g, err := ParseGrid(strings.NewReader(in), 0)
		require.NoError(t, err, "%q", in)
		require.NotNil(t, g)

		_, ok := g.Extent()
		assert.False(t, ok, "%q", in)

		table, err := tabular.Extract(g)
		var mge *tabular.MalformedGridError
		assert.ErrorAs(t, err, &mge)
		assert.Empty(t, table.Headers)
		assert.NotNil(t, table.Records)
	}
}

func TestParseGrid_Malformed(t *testing.T) {
	_, err := ParseGrid(strings.NewReader("a,\"b\nc"), 0)
	assert.Error(t, err)
}

func TestCellFromField(t *testing.T) {
	tests := []struct {
		in   string
		want models.Cell
	}{
		{"12", models.NumberCell(12)},
		{"-0.5", models.NumberCell(-0.5)},
		{"0x1F", models.TextCell("0x1F")},
		{"1_000", models.TextCell("1_000")},
		{"Inf", models.TextCell("Inf")},
		{"NaN", models.TextCell("NaN")},
		{"abc", models.TextCell("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cellFromField(tt.in))
		})
	}
}
