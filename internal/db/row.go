package db

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is one cell of a result row: nil, bool, int64, float64 or
// string. Non-finite doubles never appear; they decode to nil.
type Value any

// Row is an ordered column-name to Value mapping. Column order follows
// the order the backend reported it. A duplicate column name keeps its
// first position but the last value written.
type Row struct {
	names  []string
	values map[string]Value
}

func NewRow() Row {
	return Row{values: make(map[string]Value)}
}

func (r *Row) Set(name string, v Value) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

func (r Row) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Columns returns the column names in backend order.
func (r Row) Columns() []string {
	return r.names
}

func (r Row) Len() int {
	return len(r.names)
}

// MarshalJSON writes the row as a JSON object in column order, which
// a plain map cannot guarantee.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeValue erases a scanned driver value into the Value model.
// Values the driver already typed map directly. Raw bytes are probed
// as integer, then double, then boolean, then text, unless the column
// type pins them to text. Anything else becomes nil.
func decodeValue(raw any, dbType string) Value {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		return v
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case string:
		return v
	case []byte:
		s := string(v)
		if isTextType(dbType) {
			return s
		}
		return probeText(s)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return nil
	}
}

func finite(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// probeText decodes loosely typed cell text, first success wins. The
// order is fixed so a cell that reads as both integer and boolean
// always comes back as integer.
func probeText(s string) Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// isTextType reports whether the backend fixed the column to a
// character or binary type, in which case raw bytes stay text.
func isTextType(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "CHAR", "VARCHAR", "NCHAR", "NVARCHAR", "TINYTEXT", "TEXT",
		"MEDIUMTEXT", "LONGTEXT", "CLOB", "JSON", "ENUM", "SET",
		"BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY",
		"VARBINARY", "BYTEA", "NAME", "UUID", "XML":
		return true
	}
	return false
}
