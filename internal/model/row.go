package model

import (
	"fmt"
	"math"
	"strconv"
)

// IDField is the column every row set must carry.
const IDField = "id"

// Row maps column fields to raw values (string, number or date string).
type Row map[string]any

// ID returns the row's id value (nil when absent).
func (r Row) ID() any {
	if r == nil {
		return nil
	}
	return r[IDField]
}

// With returns a copy of r with field set to v. r itself is left untouched.
func (r Row) With(field string, v any) Row {
	out := make(Row, len(r)+1)
	for k, val := range r {
		out[k] = val
	}
	out[field] = v
	return out
}

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether field is present on the row.
func (r Row) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// RowKey renders a row id as the string used in cell ids and map keys.
// Integral floats print without a fractional part so 7 and 7.0 share a key.
func RowKey(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return RowKey(float64(v))
	default:
		return fmt.Sprint(v)
	}
}
