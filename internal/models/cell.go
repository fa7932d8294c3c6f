package models

import (
	"encoding/json"
	"strconv"
)

type CellKind uint8

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindBool
)

func (k CellKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "empty"
	}
}

// Cell is a single spreadsheet value. Only the field matching Kind is
// meaningful; the zero Cell is Empty.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
}

func TextCell(s string) Cell    { return Cell{Kind: KindText, Text: s} }
func NumberCell(n float64) Cell { return Cell{Kind: KindNumber, Number: n} }
func BoolCell(b bool) Cell      { return Cell{Kind: KindBool, Bool: b} }
func EmptyCell() Cell           { return Cell{} }
func (c Cell) IsEmpty() bool    { return c.Kind == KindEmpty }

// String coerces the cell to text the way a header name is derived from it.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindText:
		return c.Text == o.Text
	case KindNumber:
		return c.Number == o.Number
	case KindBool:
		return c.Bool == o.Bool
	default:
		return true
	}
}

// Value returns the cell as a plain Go value (string, float64, bool or nil).
func (c Cell) Value() interface{} {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return c.Number
	case KindBool:
		return c.Bool
	default:
		return nil
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*c = TextCell(t)
	case float64:
		*c = NumberCell(t)
	case bool:
		*c = BoolCell(t)
	default:
		*c = EmptyCell()
	}
	return nil
}
