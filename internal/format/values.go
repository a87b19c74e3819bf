package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gridedit/internal/model"
)

// Text renders a raw cell value without any column-specific formatting.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat converts numbers and numeric strings to float64.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// isNumber reports whether v is a Go number (numeric strings excluded).
func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ParseEdited coerces the text typed into a cell into the value to store.
// Numeric and currency columns yield float64 when the input parses; an empty
// input on a non-clearable numeric column becomes 0. Anything else passes
// through as the raw string.
func ParseEdited(raw string, col model.Column) any {
	if !col.IsNumeric() {
		return raw
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		if !col.Clearable {
			return float64(0)
		}
		return raw
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, CurrencySymbol)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return raw
}

// LookupLabel returns the label of the option matching value, or the raw
// value when the column has no such option.
func LookupLabel(value any, col model.Column) string {
	raw := Text(value)
	if o, ok := col.Option(raw); ok {
		return o.Label
	}
	return raw
}

type BlinkDirection int

const (
	BlinkNone BlinkDirection = iota
	BlinkPositive
	BlinkNegative
)

func (b BlinkDirection) String() string {
	switch b {
	case BlinkPositive:
		return "positive"
	case BlinkNegative:
		return "negative"
	default:
		return "none"
	}
}

// Blink compares two numeric values after rounding to 2 decimals.
// Non-numeric inputs never blink.
func Blink(newValue, previous any) BlinkDirection {
	if !isNumber(newValue) || !isNumber(previous) {
		return BlinkNone
	}
	a, _ := ToFloat(newValue)
	b, _ := ToFloat(previous)
	a, b = round2(a), round2(b)
	switch {
	case a > b:
		return BlinkPositive
	case a < b:
		return BlinkNegative
	default:
		return BlinkNone
	}
}

// Display is the string a renderer shows for a cell in read mode.
func Display(value any, col model.Column) string {
	switch spec := col.Edit.(type) {
	case model.LookupEdit:
		return LookupLabel(value, col)
	case model.CurrencyEdit:
		if Text(value) == "" {
			return ""
		}
		return Currency(value, spec.ShowSymbol)
	case model.DateEdit:
		return Date(value, spec.Format)
	default:
		return Text(value)
	}
}

// EditText is the text placed in the editor when an edit keeps the prior value.
func EditText(value any, col model.Column) string {
	switch spec := col.Edit.(type) {
	case model.LookupEdit:
		return LookupLabel(value, col)
	case model.DateEdit:
		return Date(value, spec.Format)
	default:
		return Text(value)
	}
}
