package table

import "gridedit/internal/model"

type SelectionState int

const (
	SelectNone SelectionState = iota
	SelectSome
	SelectAll
)

// Toggle flips the selection of one row.
func (m *Model) Toggle(rowID any) {
	key := model.RowKey(rowID)
	if _, ok := m.selected[key]; ok {
		delete(m.selected, key)
		return
	}
	if _, ok := m.rowByKey(key); ok {
		m.selected[key] = rowID
	}
}

// IsSelected reports whether the row is selected.
func (m *Model) IsSelected(rowID any) bool {
	_, ok := m.selected[model.RowKey(rowID)]
	return ok
}

// Selection reports whether none, some or all of the view rows are selected.
func (m *Model) Selection() SelectionState {
	if len(m.selected) == 0 || len(m.view) == 0 {
		return SelectNone
	}
	for _, r := range m.view {
		if _, ok := m.selected[model.RowKey(r.Row.ID())]; !ok {
			return SelectSome
		}
	}
	return SelectAll
}

// ToggleAll clears a full selection and selects every view row otherwise.
func (m *Model) ToggleAll() {
	if m.Selection() == SelectAll {
		m.selected = map[string]any{}
		return
	}
	for _, r := range m.view {
		id := r.Row.ID()
		m.selected[model.RowKey(id)] = id
	}
}

// SelectedIDs returns the selected row ids in view order, then any selected
// rows hidden by the current filter in collection order.
func (m *Model) SelectedIDs() []any {
	var ids []any
	seen := map[string]bool{}
	for _, r := range m.view {
		key := model.RowKey(r.Row.ID())
		if id, ok := m.selected[key]; ok {
			ids = append(ids, id)
			seen[key] = true
		}
	}
	for _, r := range m.rows {
		key := model.RowKey(r.ID())
		if id, ok := m.selected[key]; ok && !seen[key] {
			ids = append(ids, id)
		}
	}
	return ids
}

// pruneSelection drops ids that no longer exist in the collection.
func (m *Model) pruneSelection() {
	if len(m.selected) == 0 {
		return
	}
	live := indexRows(m.rows)
	for key := range m.selected {
		if _, ok := live[key]; !ok {
			delete(m.selected, key)
		}
	}
}
