package model

import "fmt"

type Level int

const (
	LevelWarn Level = iota
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// ParseLevel accepts "warn"/"warning" and "error".
func ParseLevel(s string) (Level, error) {
	switch s {
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown validation level: %q", s)
	}
}

// MessageFunc returns a message and true when value violates the rule.
// rows is the full row set so rules may look across rows.
type MessageFunc func(value any, rows []Row) (string, bool)

type ValidationRule struct {
	Field   string
	Level   Level
	Message MessageFunc
}

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidatedRow struct {
	Row      Row
	Errors   map[string]Violation
	Warnings map[string]Violation
}

func (v ValidatedRow) Error(field string) (Violation, bool) {
	e, ok := v.Errors[field]
	return e, ok
}

func (v ValidatedRow) Warning(field string) (Violation, bool) {
	w, ok := v.Warnings[field]
	return w, ok
}

// Valid reports whether the row has no errors (warnings are allowed).
func (v ValidatedRow) Valid() bool {
	return len(v.Errors) == 0
}
