package models

import (
	"bytes"
	"encoding/json"
)

// Record is one output row: header name -> cell, in column order.
// The zero Record is empty and ready to use.
type Record struct {
	keys   []string
	values map[string]Cell
}

// Set stores v under key. An existing key keeps its position.
func (r *Record) Set(key string, v Cell) {
	if r.values == nil {
		r.values = make(map[string]Cell)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r Record) Get(key string) (Cell, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Record) Len() int { return len(r.keys) }

// Equal reports whether both records hold the same keys with equal cells.
// Key order is ignored.
func (r Record) Equal(o Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for k, v := range r.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the encoded object.
func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var c Cell
		if err := dec.Decode(&c); err != nil {
			return err
		}
		r.Set(key, c)
	}
	_, err := dec.Token()
	return err
}

// RecordOf builds a record from alternating key/cell pairs.
func RecordOf(pairs ...interface{}) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case Cell:
			r.Set(key, v)
		case string:
			r.Set(key, TextCell(v))
		case float64:
			r.Set(key, NumberCell(v))
		case int:
			r.Set(key, NumberCell(float64(v)))
		case bool:
			r.Set(key, BoolCell(v))
		default:
			r.Set(key, EmptyCell())
		}
	}
	return r
}
