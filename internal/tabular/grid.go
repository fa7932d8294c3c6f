// Package tabular turns a sparse grid of spreadsheet cells into header-keyed
// records. Everything here is pure and safe for concurrent use.
package tabular

import "SheetServe/internal/models"

// Extent is an inclusive, zero-based cell range.
type Extent struct {
	FirstRow int
	LastRow  int
	FirstCol int
	LastCol  int
}

func (e Extent) valid() bool {
	return e.FirstRow >= 0 && e.FirstCol >= 0 &&
		e.LastRow >= e.FirstRow && e.LastCol >= e.FirstCol
}

// DataRows is the number of rows below the header row.
func (e Extent) DataRows() int { return e.LastRow - e.FirstRow }

type Grid interface {
	// Extent returns the declared bounds; ok is false when none are declared.
	Extent() (ext Extent, ok bool)
	// Cell returns the cell at (row, col) and whether it is present.
	Cell(row, col int) (models.Cell, bool)
}

type coord struct{ row, col int }

// Sparse is a map-backed Grid.
type Sparse struct {
	ext      Extent
	declared bool
	cells    map[coord]models.Cell
}

// NewSparse returns an empty grid with the given extent.
func NewSparse(ext Extent) *Sparse {
	return &Sparse{
		ext:      ext,
		declared: ext.valid(),
		cells:    make(map[coord]models.Cell),
	}
}

// Set marks (row, col) as present. Cells outside the extent are stored but
// never read by the extractor.
func (s *Sparse) Set(row, col int, c models.Cell) {
	if s.cells == nil {
		s.cells = make(map[coord]models.Cell)
	}
	s.cells[coord{row, col}] = c
}

func (s *Sparse) Extent() (Extent, bool) {
	if s == nil || !s.declared {
		return Extent{}, false
	}
	return s.ext, true
}

func (s *Sparse) Cell(row, col int) (models.Cell, bool) {
	if s == nil {
		return models.Cell{}, false
	}
	c, ok := s.cells[coord{row, col}]
	return c, ok
}

// FromRows builds a grid anchored at A1. Nil entries are absent cells; the
// extent spans the longest row. An empty input has no extent.
func FromRows(rows [][]*models.Cell) *Sparse {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if len(rows) == 0 || width == 0 {
		return &Sparse{cells: make(map[coord]models.Cell)}
	}
	g := NewSparse(Extent{LastRow: len(rows) - 1, LastCol: width - 1})
	for r, row := range rows {
		for c, cell := range row {
			if cell != nil {
				g.Set(r, c, *cell)
			}
		}
	}
	return g
}
