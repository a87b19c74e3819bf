package editcell

import (
	"testing"

	"gridedit/internal/model"
)

var (
	textCol     = model.Column{Field: "name", Edit: model.TextEdit{}}
	currencyCol = model.Column{Field: "cost", Edit: model.CurrencyEdit{ShowSymbol: true}}
	clearCost   = model.Column{Field: "cost", Edit: model.CurrencyEdit{}, Clearable: true}
	lookupCol   = model.Column{Field: "kind", Edit: model.LookupEdit{Options: []model.Option{
		{Value: "a", Label: "Alpha"},
		{Value: "b", Label: "Beta"},
	}}}
	dateCol = model.Column{Field: "due", Edit: model.DateEdit{Format: "%d/%m/%Y"}}
)

func typeKey(c *Cell, r rune) Outcome {
	if out := c.KeyDown(RuneKey(r)); out.Kind != None {
		return out
	}
	return c.Input(string(r))
}

func TestEnterReplacesValue(t *testing.T) {
	t.Parallel()
	c := New(textCol, "old")
	c.KeyDown(RuneKey('n'))
	if c.State() != EnterPending {
		t.Fatalf("expected enter-pending, got %v", c.State())
	}
	if c.Draft() != "" {
		t.Fatalf("expected character not applied yet, got %q", c.Draft())
	}
	c.Input("n")
	typeKey(c, 'e')
	typeKey(c, 'w')
	if c.State() != Editing || c.Draft() != "new" {
		t.Fatalf("expected editing with draft new, got %v %q", c.State(), c.Draft())
	}
	out := c.KeyDown(Key{Code: KeyEnter})
	if out.Kind != Commit || out.Value != "new" {
		t.Fatalf("expected commit of new, got %#v", out)
	}
	if c.State() != Idle {
		t.Fatalf("expected idle after commit, got %v", c.State())
	}
}

func TestDoubleClickPreservesValue(t *testing.T) {
	t.Parallel()
	c := New(textCol, "old")
	c.DoubleClick()
	if c.State() != Editing || c.Draft() != "old" || c.Caret() != 3 {
		t.Fatalf("expected preserved draft with caret at end, got %v %q %d", c.State(), c.Draft(), c.Caret())
	}
	c.Input("er")
	if out := c.Blur(); out.Kind != Commit || out.Value != "older" {
		t.Fatalf("expected commit of older, got %#v", out)
	}
}

func TestCharacterClasses(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		col  model.Column
		r    rune
		want bool
	}{
		{"text letter", textCol, 'x', true},
		{"text digit", textCol, '4', true},
		{"text punctuation", textCol, '!', false},
		{"currency digit", currencyCol, '7', true},
		{"currency minus", currencyCol, '-', true},
		{"currency dot", currencyCol, '.', true},
		{"currency letter", currencyCol, 'x', false},
		{"date digit", dateCol, '3', true},
		{"date letter", dateCol, 'j', false},
		{"lookup letter", lookupCol, 'a', true},
		{"read only", model.Column{Field: "id"}, 'a', false},
	}
	for _, tc := range cases {
		c := New(tc.col, nil)
		c.KeyDown(RuneKey(tc.r))
		if got := c.State() == EnterPending; got != tc.want {
			t.Fatalf("%s: expected pending=%v, got state %v", tc.name, tc.want, c.State())
		}
	}
}

func TestDeleteClearsClearableCell(t *testing.T) {
	t.Parallel()
	out := New(clearCost, 12.5).KeyDown(Key{Code: KeyDelete})
	if out.Kind != Commit || out.Value != "" {
		t.Fatalf("expected immediate clear, got %#v", out)
	}
	if out := New(clearCost, "").KeyDown(Key{Code: KeyDelete}); out.Kind != None {
		t.Fatalf("expected empty cell not to clear, got %#v", out)
	}
	c := New(currencyCol, 12.5)
	if out := c.KeyDown(Key{Code: KeyDelete}); out.Kind != None || c.State() != Idle {
		t.Fatalf("expected non-clearable delete to do nothing, got %#v %v", out, c.State())
	}
}

func TestNumericAcceptance(t *testing.T) {
	t.Parallel()
	cases := []struct {
		col  model.Column
		text string
		want bool
	}{
		{currencyCol, "12.5", true},
		{currencyCol, "1,200", true},
		{currencyCol, "12.", false},
		{currencyCol, "abc", false},
		{currencyCol, "", false},
		{clearCost, "", true},
		{textCol, "", false},
		{textCol, "anything", true},
	}
	for _, tc := range cases {
		if got := Accepts(tc.col, tc.text); got != tc.want {
			t.Fatalf("Accepts(%s, %q): expected %v, got %v", tc.col.Field, tc.text, tc.want, got)
		}
	}
}

func TestEnterWithTrailingDotKeepsEditing(t *testing.T) {
	t.Parallel()
	c := New(currencyCol, 1)
	typeKey(c, '1')
	c.Input("2.")
	if out := c.KeyDown(Key{Code: KeyEnter}); out.Kind != None {
		t.Fatalf("expected enter to be refused, got %#v", out)
	}
	if c.State() != Editing {
		t.Fatalf("expected still editing, got %v", c.State())
	}
	c.Input("5")
	out := c.KeyDown(Key{Code: KeyEnter})
	if out.Kind != Commit || out.Value != 12.5 {
		t.Fatalf("expected commit of 12.5, got %#v", out)
	}
}

func TestBlurCancelsUnacceptable(t *testing.T) {
	t.Parallel()
	c := New(currencyCol, 1)
	typeKey(c, '4')
	c.Input(".")
	if out := c.Blur(); out.Kind != Cancel {
		t.Fatalf("expected cancel, got %#v", out)
	}
	if c.State() != Idle || c.Draft() != "" {
		t.Fatalf("expected reset after cancel, got %v %q", c.State(), c.Draft())
	}
}

func TestEscapeCancelsAndClearsSelection(t *testing.T) {
	t.Parallel()
	c := New(textCol, "abc")
	c.DoubleClick()
	c.SelectAll()
	if _, end, ok := c.Selection(); !ok || end != 3 {
		t.Fatalf("expected full selection, got end=%d ok=%v", end, ok)
	}
	if out := c.KeyDown(Key{Code: KeyEscape}); out.Kind != Cancel {
		t.Fatalf("expected cancel, got %#v", out)
	}
	if _, _, ok := c.Selection(); ok {
		t.Fatalf("expected selection cleared")
	}
}

func TestSelectionReplacedByInput(t *testing.T) {
	t.Parallel()
	c := New(textCol, "abc")
	c.DoubleClick()
	c.SelectAll()
	c.Input("z")
	if c.Draft() != "z" {
		t.Fatalf("expected selection replaced, got %q", c.Draft())
	}
}

func TestCaretEditing(t *testing.T) {
	t.Parallel()
	c := New(textCol, "héllo")
	c.DoubleClick()
	c.KeyDown(Key{Code: KeyLeft})
	c.KeyDown(Key{Code: KeyBackspace})
	c.KeyDown(Key{Code: KeyHome})
	c.KeyDown(Key{Code: KeyDelete})
	c.Input("H")
	if c.Draft() != "Hélo" {
		t.Fatalf("expected Hélo, got %q", c.Draft())
	}
}

func TestLookupCommit(t *testing.T) {
	t.Parallel()
	c := New(lookupCol, "a")
	c.DoubleClick()
	if c.Draft() != "Alpha" {
		t.Fatalf("expected label in editor, got %q", c.Draft())
	}
	c.KeyDown(Key{Code: KeyEnd})
	for range "Alpha" {
		c.KeyDown(Key{Code: KeyBackspace})
	}
	c.Input("beta")
	if out := c.KeyDown(Key{Code: KeyEnter}); out.Kind != Commit || out.Value != "b" {
		t.Fatalf("expected commit of option value b, got %#v", out)
	}

	c = New(lookupCol, "a")
	typeKey(c, 'z')
	if out := c.Blur(); out.Kind != Cancel {
		t.Fatalf("expected unknown option to cancel, got %#v", out)
	}
	if out := c.SelectOption("b"); out.Kind != Commit || out.Value != "b" {
		t.Fatalf("expected selection commit, got %#v", out)
	}
	if out := c.SelectOption("nope"); out.Kind != Cancel {
		t.Fatalf("expected unknown selection to cancel, got %#v", out)
	}

	free := model.Column{Field: "tag", Edit: model.LookupEdit{FreeText: true, Options: []model.Option{{Value: "x", Label: "X"}}}}
	c = New(free, nil)
	typeKey(c, 'q')
	if out := c.Blur(); out.Kind != Commit || out.Value != "q" {
		t.Fatalf("expected free text commit, got %#v", out)
	}
}

func TestPickDateBypassesAcceptance(t *testing.T) {
	t.Parallel()
	c := New(dateCol, "2024-01-01")
	typeKey(c, '3')
	out := c.PickDate("31/01/2024")
	if out.Kind != Commit || out.Value != "31/01/2024" {
		t.Fatalf("expected picker commit, got %#v", out)
	}
	if c.State() != Idle {
		t.Fatalf("expected idle, got %v", c.State())
	}
	if out := New(textCol, "x").PickDate("31/01/2024"); out.Kind != None {
		t.Fatalf("expected picker ignored on text column, got %#v", out)
	}
}

func TestPendingEscapeCancels(t *testing.T) {
	t.Parallel()
	c := New(textCol, "x")
	c.KeyDown(RuneKey('a'))
	if out := c.KeyDown(Key{Code: KeyEscape}); out.Kind != Cancel || c.State() != Idle {
		t.Fatalf("expected cancel from pending, got %#v %v", out, c.State())
	}
}
