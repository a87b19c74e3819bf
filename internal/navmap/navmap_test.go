package navmap

import (
	"errors"
	"testing"

	"gridedit/internal/model"
)

type activation struct {
	id         string
	atBoundary bool
}

func grid2x3(t *testing.T) *Map {
	t.Helper()
	cols := []model.Column{
		{Field: "id", Index: 0},
		{Field: "kind", Index: 1, Edit: model.LookupEdit{Options: []model.Option{{Value: "a", Label: "A"}}}},
		{Field: "cost", Index: 2, Edit: model.CurrencyEdit{}},
	}
	rows := []model.Row{{"id": 1, "kind": "a", "cost": 1}, {"id": 2, "kind": "a", "cost": 2}}
	m, err := Build("t1", rows, cols)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return m
}

func mustID(t *testing.T, rowID any, field string) string {
	t.Helper()
	id, err := CellID("t1", rowID, field)
	if err != nil {
		t.Fatalf("cell id: %v", err)
	}
	return id
}

func TestCellID(t *testing.T) {
	t.Parallel()
	got, err := CellID("t1", 7, "cost")
	if err != nil {
		t.Fatalf("cell id: %v", err)
	}
	if got != "t1-field-7-cost" {
		t.Fatalf("expected t1-field-7-cost, got %q", got)
	}
	if _, err := CellID("t-1", 7, "cost"); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected table id with separator to fail, got %v", err)
	}
	if _, err := CellID("", 7, "cost"); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected empty table id to fail, got %v", err)
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()
	cols := []model.Column{{Field: "id"}}
	cases := []struct {
		name    string
		tableID string
		rows    []model.Row
		cols    []model.Column
	}{
		{"no table id", "", nil, cols},
		{"no columns", "t1", nil, nil},
		{"row without id", "t1", []model.Row{{"id": 1}, {"name": "x"}}, cols},
		{"duplicate ids", "t1", []model.Row{{"id": 1}, {"id": 1.0}}, cols},
		{"colliding cell ids", "t1",
			[]model.Row{{"id": "a-b", "c": 1}, {"id": "a", "b-c": 2}},
			[]model.Column{{Field: "id"}, {Field: "c"}, {Field: "b-c"}}},
	}
	for _, tc := range cases {
		if _, err := Build(tc.tableID, tc.rows, tc.cols); !errors.Is(err, model.ErrConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", tc.name, err)
		}
	}
}

func TestBuild_CollisionNamesBothCells(t *testing.T) {
	t.Parallel()
	rows := []model.Row{{"id": "a-b", "c": 1}, {"id": "a", "b-c": 2}}
	cols := []model.Column{{Field: "id"}, {Field: "c"}, {Field: "b-c"}}
	_, err := Build("t1", rows, cols)
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if ce.Reason != "cell ids collide" || len(ce.Fields) != 1 || ce.Fields[0] != "a-b/c vs a/b-c" {
		t.Fatalf("unexpected collision report %q %v", ce.Reason, ce.Fields)
	}
}

func TestCheckRowIDs(t *testing.T) {
	t.Parallel()
	if err := CheckRowIDs([]model.Row{{"id": 1}, {"id": "1x"}}); err != nil {
		t.Fatalf("expected distinct ids to pass, got %v", err)
	}
	var ce *model.ConfigurationError
	if err := CheckRowIDs([]model.Row{{"id": 2}, {"name": "x"}}); !errors.As(err, &ce) || ce.Fields[0] != "row 1" {
		t.Fatalf("expected missing id on row 1, got %v", err)
	}
	if err := CheckRowIDs([]model.Row{{"id": 2}, {"id": 2.0}}); !errors.As(err, &ce) || ce.Fields[0] != "2" {
		t.Fatalf("expected duplicate id 2, got %v", err)
	}
}

func TestBuild_EmptyRows(t *testing.T) {
	t.Parallel()
	m, err := Build("t1", nil, []model.Column{{Field: "id"}})
	if err != nil {
		t.Fatalf("expected empty map, got %v", err)
	}
	if m.Rows() != 0 || m.Cols() != 1 {
		t.Fatalf("expected 0 rows x 1 col, got %dx%d", m.Rows(), m.Cols())
	}
}

func TestBuild_BothDirections(t *testing.T) {
	t.Parallel()
	m := grid2x3(t)
	pos, ok := m.Position(2, "cost")
	if !ok || pos.Row != 1 || pos.Col != 2 {
		t.Fatalf("unexpected position %#v ok=%v", pos, ok)
	}
	id, ok := m.At(1, 2)
	if !ok || id != "t1-field-2-cost" {
		t.Fatalf("unexpected id %q", id)
	}
	ref, p, err := m.Resolve(id)
	if err != nil || ref.RowKey != "2" || ref.Field != "cost" || p != pos {
		t.Fatalf("resolve: ref=%#v pos=%#v err=%v", ref, p, err)
	}
	if kind, _ := m.Position(1, "kind"); kind.Type != model.CellCombo {
		t.Fatalf("expected lookup cell to be combo, got %v", kind.Type)
	}
}

func TestMove_Boundaries(t *testing.T) {
	t.Parallel()
	m := grid2x3(t)
	cases := []struct {
		name string
		dir  Direction
		from string
		want activation
	}{
		{"left edge", Left, mustID(t, 1, "id"), activation{mustID(t, 1, "id"), true}},
		{"right edge", Right, mustID(t, 1, "cost"), activation{mustID(t, 1, "cost"), true}},
		{"top edge", Up, mustID(t, 1, "kind"), activation{mustID(t, 1, "kind"), true}},
		{"bottom edge", Down, mustID(t, 2, "kind"), activation{mustID(t, 2, "kind"), true}},
		{"down", Down, mustID(t, 1, "cost"), activation{mustID(t, 2, "cost"), false}},
		{"right", Right, mustID(t, 2, "id"), activation{mustID(t, 2, "kind"), false}},
		{"up", Up, mustID(t, 2, "id"), activation{mustID(t, 1, "id"), false}},
	}
	for _, tc := range cases {
		var got []activation
		err := Move(tc.dir, tc.from, m, nil, func(id string, atBoundary bool) {
			got = append(got, activation{id, atBoundary})
		})
		if err != nil {
			t.Fatalf("%s: move: %v", tc.name, err)
		}
		if len(got) != 1 || got[0] != tc.want {
			t.Fatalf("%s: expected %#v, got %#v", tc.name, tc.want, got)
		}
	}
}

func TestMove_SuppressedWhileLookupEditing(t *testing.T) {
	t.Parallel()
	m := grid2x3(t)
	from := mustID(t, 1, "kind")
	calls := 0
	editing := func(id string) bool { return id == from }
	for _, dir := range []Direction{Left, Right, Up, Down} {
		if err := Move(dir, from, m, editing, func(string, bool) { calls++ }); err != nil {
			t.Fatalf("move %s: %v", dir, err)
		}
	}
	if calls != 0 {
		t.Fatalf("expected no activation while lookup is editing, got %d", calls)
	}

	// A text cell being edited still moves.
	textCell := mustID(t, 1, "cost")
	if err := Move(Left, textCell, m, func(string) bool { return true }, func(string, bool) { calls++ }); err != nil {
		t.Fatalf("move: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected text cell to move while editing, got %d calls", calls)
	}
}

func TestMove_InvalidInput(t *testing.T) {
	t.Parallel()
	m := grid2x3(t)
	noop := func(string, bool) {}
	from := mustID(t, 1, "id")

	if err := MoveHorizontal(Up, from, m, nil, noop); !errors.Is(err, model.ErrInvalidDirection) {
		t.Fatalf("expected invalid direction for horizontal up, got %v", err)
	}
	if err := MoveVertical(Left, from, m, nil, noop); !errors.Is(err, model.ErrInvalidDirection) {
		t.Fatalf("expected invalid direction for vertical left, got %v", err)
	}
	if err := Move(Direction("diagonal"), from, m, nil, noop); !errors.Is(err, model.ErrInvalidDirection) {
		t.Fatalf("expected invalid direction, got %v", err)
	}
	for _, bad := range []string{"", "other-field-1-id", "t1-field-1-nope", "t1-field-99-id"} {
		if err := Move(Down, bad, m, nil, noop); !errors.Is(err, model.ErrInvalidCellID) {
			t.Fatalf("expected invalid cell id for %q, got %v", bad, err)
		}
	}
}
