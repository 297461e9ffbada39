package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Row is one CSV record: an ordered mapping of column name to scalar value.
// Key order survives JSON encoding in both directions, and numbers keep their
// literal text (json.Number), so a stored row reads back exactly as it was sent.
type Row struct {
	keys []string
	vals map[string]any
}

// NewRow builds a row from alternating key/value pairs.
func NewRow(kv ...any) Row {
	var r Row
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return r
}

// Set appends key or overwrites its value in place.
func (r *Row) Set(key string, v any) {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

func (r Row) Get(key string) (any, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Keys returns the column names in insertion order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Row) Len() int { return len(r.keys) }

// SameKeys reports whether both rows carry exactly the same column set,
// regardless of order.
func (r Row) SameKeys(o Row) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for _, k := range r.keys {
		if _, ok := o.vals[k]; !ok {
			return false
		}
	}
	return true
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var (
	// ErrInvalidRow wraps every row decoding failure; its text is safe to show.
	ErrInvalidRow   = errors.New("invalid row")
	errRowNotObject = fmt.Errorf("%w: must be a JSON object", ErrInvalidRow)
	errRowNested    = errors.New("values must be scalars")
)

func (r *Row) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errRowNotObject
	}

	out := Row{vals: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errRowNotObject
		}
		if _, dup := out.vals[key]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidRow, key)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
			return fmt.Errorf("%w: column %q: %w", ErrInvalidRow, key, errRowNested)
		}
		var v any
		vd := json.NewDecoder(bytes.NewReader(raw))
		vd.UseNumber()
		if err := vd.Decode(&v); err != nil {
			return err
		}
		out.keys = append(out.keys, key)
		out.vals[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

// Value stores the row as JSON text. Text columns are used instead of native
// JSON types because MySQL JSON and Postgres jsonb both reorder keys.
func (r Row) Value() (driver.Value, error) {
	b, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Row) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	case nil:
		*r = Row{}
		return nil
	default:
		return fmt.Errorf("row: unsupported scan type %T", src)
	}
}
