package format

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultDateFormat is used when a date column declares no format.
const DefaultDateFormat = "%Y-%m-%d"

var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Date formats a date value with a strftime format string. An unparseable
// value or an invalid format yields the raw value unchanged.
func Date(value any, format string) string {
	raw := Text(value)
	if t, ok := value.(time.Time); ok {
		raw = t.Format("2006-01-02")
	}
	format = strings.TrimSpace(format)
	if format == "" {
		format = DefaultDateFormat
	}
	if _, err := strftime.Layout(format); err != nil {
		return raw
	}
	t, ok := ParseDate(value, format)
	if !ok {
		return raw
	}
	return strftime.Format(format, t)
}

// ParseDate reads ISO dates, time.Time values and strings in the column format.
func ParseDate(value any, format string) (time.Time, bool) {
	if t, ok := value.(time.Time); ok {
		return t, !t.IsZero()
	}
	raw := strings.TrimSpace(Text(value))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if strings.TrimSpace(format) != "" {
		if t, err := strftime.Parse(format, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
