// Package navmap indexes the visible grid both ways, between
// (row id, field) and (row index, column index), and resolves movement.
package navmap

import (
	"fmt"
	"strings"

	"gridedit/internal/columns"
	"gridedit/internal/model"
)

type Position struct {
	Row  int
	Col  int
	Type model.CellType
}

// Ref identifies a cell logically.
type Ref struct {
	RowKey string
	Field  string
}

type Map struct {
	tableID string
	fields  []string
	byID    map[string]map[string]Position
	byPos   [][]string
	refs    map[string]Ref
}

// Build indexes rows x cols for table tableID. Only the given (prepared)
// columns participate. An empty row set yields an empty map.
func Build(tableID string, rows []model.Row, cols []model.Column) (*Map, error) {
	if err := checkTableID(tableID); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, model.ConfigErr("no columns to index")
	}

	m := &Map{
		tableID: tableID,
		fields:  make([]string, len(cols)),
		byID:    make(map[string]map[string]Position, len(rows)),
		byPos:   make([][]string, 0, len(rows)),
		refs:    make(map[string]Ref, len(rows)*len(cols)),
	}
	types := make([]model.CellType, len(cols))
	for ci, c := range cols {
		m.fields[ci] = c.Field
		types[ci] = columns.Classify(c)
	}

	if err := CheckRowIDs(rows); err != nil {
		return nil, err
	}
	var collisions []string
	for _, r := range rows {
		key := model.RowKey(r.ID())
		fields := make(map[string]Position, len(cols))
		line := make([]string, len(cols))
		for ci, f := range m.fields {
			cid := cellID(tableID, key, f)
			if prev, taken := m.refs[cid]; taken {
				collisions = append(collisions, fmt.Sprintf("%s/%s vs %s/%s", prev.RowKey, prev.Field, key, f))
				continue
			}
			fields[f] = Position{Row: len(m.byPos), Col: ci, Type: types[ci]}
			line[ci] = cid
			m.refs[cid] = Ref{RowKey: key, Field: f}
		}
		m.byID[key] = fields
		m.byPos = append(m.byPos, line)
	}
	if len(collisions) > 0 {
		return nil, model.ConfigErr("cell ids collide", collisions...)
	}
	return m, nil
}

// CheckRowIDs reports rows without an id and ids used by more than one
// row. Keys are compared after RowKey normalization, so 1 and 1.0 clash.
func CheckRowIDs(rows []model.Row) error {
	var missing, dups []string
	seen := make(map[string]bool, len(rows))
	for ri, r := range rows {
		id := r.ID()
		if id == nil {
			missing = append(missing, fmt.Sprintf("row %d", ri))
			continue
		}
		key := model.RowKey(id)
		if seen[key] {
			dups = append(dups, key)
			continue
		}
		seen[key] = true
	}
	if len(missing) > 0 {
		return model.ConfigErr("rows without id", missing...)
	}
	if len(dups) > 0 {
		return model.ConfigErr("duplicate row ids", dups...)
	}
	return nil
}

func (m *Map) TableID() string { return m.tableID }

// Rows is the number of indexed rows.
func (m *Map) Rows() int {
	if m == nil {
		return 0
	}
	return len(m.byPos)
}

// Cols is the number of indexed columns.
func (m *Map) Cols() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

// At returns the cell id at a grid position.
func (m *Map) At(row, col int) (string, bool) {
	if m == nil || row < 0 || row >= len(m.byPos) || col < 0 || col >= len(m.fields) {
		return "", false
	}
	return m.byPos[row][col], true
}

// Position returns where a row id / field pair sits in the grid.
func (m *Map) Position(rowID any, field string) (Position, bool) {
	if m == nil {
		return Position{}, false
	}
	p, ok := m.byID[model.RowKey(rowID)][field]
	return p, ok
}

// Resolve decodes a cell id into its logical reference and position.
func (m *Map) Resolve(id string) (Ref, Position, error) {
	if strings.TrimSpace(id) == "" {
		return Ref{}, Position{}, fmt.Errorf("%w: empty", model.ErrInvalidCellID)
	}
	if m == nil {
		return Ref{}, Position{}, fmt.Errorf("%w: no navigation map", model.ErrInvalidCellID)
	}
	if !strings.HasPrefix(id, m.tableID+fieldMarker) {
		return Ref{}, Position{}, fmt.Errorf("%w: %q does not belong to table %s", model.ErrInvalidCellID, id, m.tableID)
	}
	ref, ok := m.refs[id]
	if !ok {
		return Ref{}, Position{}, fmt.Errorf("%w: %q does not resolve to a visible cell", model.ErrInvalidCellID, id)
	}
	return ref, m.byID[ref.RowKey][ref.Field], nil
}

// Contains reports whether id is a cell of the current view.
func (m *Map) Contains(id string) bool {
	if m == nil {
		return false
	}
	_, ok := m.refs[id]
	return ok
}

// Field returns the field at a column index.
func (m *Map) Field(col int) (string, bool) {
	if m == nil || col < 0 || col >= len(m.fields) {
		return "", false
	}
	return m.fields[col], true
}
