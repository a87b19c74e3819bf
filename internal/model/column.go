package model

import "fmt"

type CellType int

const (
	CellText CellType = iota
	CellCombo
	CellDate
)

func (t CellType) String() string {
	switch t {
	case CellText:
		return "text"
	case CellCombo:
		return "combo"
	case CellDate:
		return "date"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// EditSpec describes how a column's cells are edited.
// The concrete types below are the only implementations.
type EditSpec interface {
	editKind() string
}

// NoEdit marks a read-only column.
type NoEdit struct{}

// TextEdit accepts free text.
type TextEdit struct{}

// NumericEdit accepts numbers; display is the raw value.
type NumericEdit struct{}

// CurrencyEdit accepts numbers and displays them in accounting style.
type CurrencyEdit struct {
	ShowSymbol bool
}

// LookupEdit constrains (or, with FreeText, suggests) values from Options.
type LookupEdit struct {
	Options  []Option
	FreeText bool
}

// DateEdit holds a strftime format used for display and picker output.
// Min and Max are optional YYYY-MM-DD bounds handed to the date picker.
type DateEdit struct {
	Format string
	Min    string
	Max    string
}

func (NoEdit) editKind() string       { return "none" }
func (TextEdit) editKind() string     { return "text" }
func (NumericEdit) editKind() string  { return "numeric" }
func (CurrencyEdit) editKind() string { return "currency" }
func (LookupEdit) editKind() string   { return "lookup" }
func (DateEdit) editKind() string     { return "date" }

// EditKind returns the name of the edit variant ("none" for a nil spec).
func EditKind(spec EditSpec) string {
	if spec == nil {
		return "none"
	}
	return spec.editKind()
}

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

type TotalType string

const (
	TotalSum TotalType = "sum"
)

type TotalSpec struct {
	Type TotalType
	// Predicate restricts which rows contribute. Nil means all rows.
	Predicate func(Row) bool
}

type Column struct {
	Field            string
	HeaderName       string
	ParentHeaderName string
	Hidden           bool
	Clearable        bool
	Total            *TotalSpec
	Edit             EditSpec

	// Index is the position in the prepared (visible) column list.
	Index int
	// OptionIndex maps lookup option values to options. Built by columns.Prepare.
	OptionIndex map[string]Option
}

// Header returns the header label, falling back to the field name.
func (c Column) Header() string {
	if c.HeaderName != "" {
		return c.HeaderName
	}
	return c.Field
}

// Editable reports whether the column accepts edits at all.
func (c Column) Editable() bool {
	switch c.Edit.(type) {
	case nil, NoEdit:
		return false
	default:
		return true
	}
}

// IsNumeric reports whether the column edits numbers (numeric or currency).
func (c Column) IsNumeric() bool {
	switch c.Edit.(type) {
	case NumericEdit, CurrencyEdit:
		return true
	default:
		return false
	}
}

// Lookup returns the lookup spec when the column has one.
func (c Column) Lookup() (LookupEdit, bool) {
	l, ok := c.Edit.(LookupEdit)
	return l, ok
}

// Option resolves a lookup option by its value.
func (c Column) Option(value string) (Option, bool) {
	if c.OptionIndex != nil {
		o, ok := c.OptionIndex[value]
		return o, ok
	}
	l, ok := c.Lookup()
	if !ok {
		return Option{}, false
	}
	for _, o := range l.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}
