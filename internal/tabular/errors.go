package tabular

import "fmt"

// MalformedGridError means the grid has no usable extent. Callers treat it
// as "no data".
type MalformedGridError struct {
	Reason string
}

func (e *MalformedGridError) Error() string {
	return fmt.Sprintf("malformed grid: %s", e.Reason)
}

func checkExtent(g Grid) (Extent, error) {
	if g == nil {
		return Extent{}, &MalformedGridError{Reason: "nil grid"}
	}
	ext, ok := g.Extent()
	if !ok || !ext.valid() {
		return Extent{}, &MalformedGridError{Reason: "no declared extent"}
	}
	return ext, nil
}
