// Package editcell implements the edit state machine of a single grid cell.
//
// A cell is Idle (read-only display), EnterPending (a key started an edit
// but its character has not been applied yet) or Editing. Edits end with
// a Commit carrying the coerced value or a Cancel carrying nothing. No
// event is fatal: input that cannot be accepted falls back to Cancel.
package editcell

import (
	"strings"
	"unicode"

	"gridedit/internal/format"
	"gridedit/internal/model"
)

type State int

const (
	Idle State = iota
	EnterPending
	Editing
)

func (s State) String() string {
	switch s {
	case EnterPending:
		return "enter-pending"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEscape
	KeyDelete
	KeyBackspace
	KeyTab
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyF2
	KeyOther
)

// Key is a host-neutral keydown event. Rune is set for KeyRune only.
type Key struct {
	Code KeyCode
	Rune rune
}

// RuneKey is shorthand for a character key.
func RuneKey(r rune) Key { return Key{Code: KeyRune, Rune: r} }

type OutcomeKind int

const (
	None OutcomeKind = iota
	Commit
	Cancel
)

func (k OutcomeKind) String() string {
	switch k {
	case Commit:
		return "commit"
	case Cancel:
		return "cancel"
	default:
		return "none"
	}
}

// Outcome is what an event produced. Value is only meaningful for Commit.
type Outcome struct {
	Kind  OutcomeKind
	Value any
}

// Cell is the edit state of one cell. The zero value is not usable; use New.
type Cell struct {
	col   model.Column
	value any

	state State
	draft []rune
	caret int
	// selected marks the whole draft as selected; the next input replaces it.
	selected bool
}

// New returns an idle cell for col showing value.
func New(col model.Column, value any) *Cell {
	return &Cell{col: col, value: value}
}

func (c *Cell) Column() model.Column { return c.col }
func (c *Cell) Value() any           { return c.value }
func (c *Cell) State() State         { return c.state }

// Editing reports whether the cell is in edit mode (pending or active).
func (c *Cell) Editing() bool { return c.state != Idle }

// Draft returns the text in the editor.
func (c *Cell) Draft() string { return string(c.draft) }

// Caret is the rune offset of the insertion point in the draft.
func (c *Cell) Caret() int { return c.caret }

// Selection reports the selected rune range of the draft, if any.
func (c *Cell) Selection() (start, end int, ok bool) {
	if !c.selected || c.state != Editing {
		return 0, 0, false
	}
	return 0, len(c.draft), true
}

// SelectAll selects the whole draft while editing.
func (c *Cell) SelectAll() {
	if c.state == Editing {
		c.selected = true
		c.caret = len(c.draft)
	}
}

// SetValue refreshes the displayed value after the caller merged a change.
// An edit in progress keeps its draft.
func (c *Cell) SetValue(v any) { c.value = v }

// KeyDown handles a keydown event.
func (c *Cell) KeyDown(k Key) Outcome {
	if !c.col.Editable() {
		return Outcome{}
	}
	switch c.state {
	case Idle:
		return c.idleKey(k)
	case EnterPending:
		if k.Code == KeyEscape {
			return c.cancel()
		}
		return Outcome{}
	default:
		return c.editingKey(k)
	}
}

func (c *Cell) idleKey(k Key) Outcome {
	switch k.Code {
	case KeyDelete:
		if c.col.Clearable && format.Text(c.value) != "" {
			return Outcome{Kind: Commit, Value: ""}
		}
	case KeyEnter, KeyF2:
		c.enterPreserving()
	case KeyRune:
		if Allowed(c.col, k.Rune) {
			c.state = EnterPending
		}
	}
	return Outcome{}
}

func (c *Cell) editingKey(k Key) Outcome {
	switch k.Code {
	case KeyEnter:
		if !c.Accepts(c.Draft()) {
			return Outcome{}
		}
		return c.commit(c.Draft())
	case KeyEscape:
		return c.cancel()
	case KeyTab:
		return c.Blur()
	case KeyBackspace:
		if c.selected {
			c.clearSelected()
			return Outcome{}
		}
		if c.caret > 0 {
			c.draft = append(c.draft[:c.caret-1], c.draft[c.caret:]...)
			c.caret--
		}
	case KeyDelete:
		if c.selected {
			c.clearSelected()
			return Outcome{}
		}
		if c.caret < len(c.draft) {
			c.draft = append(c.draft[:c.caret], c.draft[c.caret+1:]...)
		}
	case KeyLeft:
		if c.caret > 0 {
			c.caret--
		}
	case KeyRight:
		if c.caret < len(c.draft) {
			c.caret++
		}
	case KeyHome:
		c.caret = 0
	case KeyEnd:
		c.caret = len(c.draft)
	case KeyRune:
		// characters arrive through Input
		return Outcome{}
	}
	c.selected = false
	return Outcome{}
}

// Input applies a character-producing event. The first input after an
// entering keystroke replaces the displayed value.
func (c *Cell) Input(text string) Outcome {
	if text == "" {
		return Outcome{}
	}
	switch c.state {
	case EnterPending:
		c.draft = []rune(text)
		c.caret = len(c.draft)
		c.selected = false
		c.state = Editing
	case Editing:
		if c.selected {
			c.clearSelected()
		}
		ins := []rune(text)
		next := make([]rune, 0, len(c.draft)+len(ins))
		next = append(next, c.draft[:c.caret]...)
		next = append(next, ins...)
		next = append(next, c.draft[c.caret:]...)
		c.draft = next
		c.caret += len(ins)
	}
	return Outcome{}
}

// DoubleClick enters edit mode keeping the current value, caret at the end.
func (c *Cell) DoubleClick() Outcome {
	if !c.col.Editable() || c.state == Editing {
		return Outcome{}
	}
	c.enterPreserving()
	return Outcome{}
}

// Discard drops an edit in progress without emitting anything.
func (c *Cell) Discard() { c.reset() }

// Blur commits an acceptable draft and cancels anything else.
func (c *Cell) Blur() Outcome {
	switch c.state {
	case Editing:
		if c.Accepts(c.Draft()) {
			return c.commit(c.Draft())
		}
		return c.cancel()
	case EnterPending:
		return c.cancel()
	default:
		return Outcome{}
	}
}

// SelectOption commits a value picked from the lookup widget.
func (c *Cell) SelectOption(value string) Outcome {
	l, ok := c.col.Lookup()
	if !ok || !c.col.Editable() {
		return Outcome{}
	}
	if _, known := c.col.Option(value); !known && !l.FreeText {
		return c.cancel()
	}
	c.reset()
	return Outcome{Kind: Commit, Value: value}
}

// PickDate commits the date picker's formatted output without running the
// free-text acceptance checks.
func (c *Cell) PickDate(formatted string) Outcome {
	if _, ok := c.col.Edit.(model.DateEdit); !ok {
		return Outcome{}
	}
	c.reset()
	return Outcome{Kind: Commit, Value: formatted}
}

// Accepts is the commit predicate for text typed into the cell.
func (c *Cell) Accepts(text string) bool {
	return Accepts(c.col, text)
}

// Accepts reports whether text may be committed to col.
func Accepts(col model.Column, text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return col.Clearable
	}
	switch spec := col.Edit.(type) {
	case model.NumericEdit, model.CurrencyEdit:
		if strings.HasSuffix(s, ".") {
			return false
		}
		_, ok := format.ParseEdited(s, col).(float64)
		return ok
	case model.LookupEdit:
		if spec.FreeText {
			return true
		}
		_, ok := resolveOption(col, s)
		return ok
	}
	return true
}

// Allowed reports whether r may start an edit on col.
func Allowed(col model.Column, r rune) bool {
	switch col.Edit.(type) {
	case model.NumericEdit, model.CurrencyEdit:
		return unicode.IsDigit(r) || r == '-' || r == '.'
	case model.DateEdit:
		return unicode.IsDigit(r)
	case model.TextEdit, model.LookupEdit:
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	default:
		return false
	}
}

func (c *Cell) enterPreserving() {
	c.draft = []rune(format.EditText(c.value, c.col))
	c.caret = len(c.draft)
	c.selected = false
	c.state = Editing
}

func (c *Cell) commit(text string) Outcome {
	v := c.coerce(text)
	c.reset()
	return Outcome{Kind: Commit, Value: v}
}

func (c *Cell) cancel() Outcome {
	c.reset()
	return Outcome{Kind: Cancel}
}

func (c *Cell) reset() {
	c.state = Idle
	c.draft = nil
	c.caret = 0
	c.selected = false
}

func (c *Cell) clearSelected() {
	c.draft = c.draft[:0]
	c.caret = 0
	c.selected = false
}

func (c *Cell) coerce(text string) any {
	if _, ok := c.col.Lookup(); ok {
		if o, ok := resolveOption(c.col, strings.TrimSpace(text)); ok {
			return o.Value
		}
		return text
	}
	return format.ParseEdited(text, c.col)
}

// resolveOption matches typed text against option values, then labels
// (case-insensitive).
func resolveOption(col model.Column, text string) (model.Option, bool) {
	if o, ok := col.Option(text); ok {
		return o, true
	}
	l, ok := col.Lookup()
	if !ok {
		return model.Option{}, false
	}
	for _, o := range l.Options {
		if strings.EqualFold(o.Label, text) {
			return o, true
		}
	}
	return model.Option{}, false
}
