package table

import (
	"gridedit/internal/columns"
	"gridedit/internal/editcell"
	"gridedit/internal/format"
	"gridedit/internal/model"
	"gridedit/internal/navmap"

	"github.com/charmbracelet/log"
)

// CellView is what a renderer needs to draw one cell.
type CellView struct {
	ID      string
	Field   string
	Value   any
	Text    string
	Error   *model.Violation
	Warning *model.Violation
	Blink   format.BlinkDirection
	Active  bool
	State   editcell.State
	Draft   string
	Caret   int
}

// Cell describes the cell at a view position.
func (m *Model) Cell(row, col int) (CellView, bool) {
	id, ok := m.navMap.At(row, col)
	if !ok {
		return CellView{}, false
	}
	c := m.cols[col]
	vr := m.view[row]
	v := vr.Row[c.Field]
	cv := CellView{
		ID:     id,
		Field:  c.Field,
		Value:  v,
		Text:   format.Display(v, c),
		Active: id == m.active,
	}
	if e, ok := vr.Error(c.Field); ok {
		cv.Error = &e
	}
	if w, ok := vr.Warning(c.Field); ok {
		cv.Warning = &w
	}
	if prev, ok := m.prev[model.RowKey(vr.Row.ID())]; ok {
		cv.Blink = format.Blink(v, prev[c.Field])
	}
	if ec, ok := m.cells[id]; ok {
		cv.State = ec.State()
		cv.Draft = ec.Draft()
		cv.Caret = ec.Caret()
	}
	return cv, true
}

// Active returns the active cell id ("" when none).
func (m *Model) Active() string { return m.active }

// AtBoundary reports whether the last move hit the grid edge.
func (m *Model) AtBoundary() bool { return m.atBoundary }

// PendingDraft returns the table's pending edit, if any.
func (m *Model) PendingDraft() (Draft, bool) {
	if m.draft == nil {
		return Draft{}, false
	}
	return *m.draft, true
}

// Editing reports whether cellID is in edit mode.
func (m *Model) Editing(cellID string) bool {
	c, ok := m.cells[cellID]
	return ok && c.Editing()
}

// Activate focuses a cell. Leaving a cell that is being edited behaves
// like a blur: an acceptable draft is committed, anything else dropped.
func (m *Model) Activate(cellID string) error {
	if _, err := m.arenaCell(cellID); err != nil {
		return err
	}
	if cellID != m.active {
		m.blurActive()
	}
	m.setActive(cellID, false)
	return nil
}

// Click is a single click on a cell.
func (m *Model) Click(cellID string) error { return m.Activate(cellID) }

// DoubleClick starts an edit that keeps the current value. A draft pending
// on another cell is discarded.
func (m *Model) DoubleClick(cellID string) error {
	c, err := m.arenaCell(cellID)
	if err != nil {
		return err
	}
	m.focusForEdit(cellID)
	m.handle(cellID, c, c.DoubleClick())
	return nil
}

// KeyDown routes a key to a cell. Arrow keys navigate unless the cell is
// editing text, where left and right move the caret. A key on a cell other
// than the active one starts over there, discarding any pending draft.
func (m *Model) KeyDown(cellID string, k editcell.Key) error {
	c, err := m.arenaCell(cellID)
	if err != nil {
		return err
	}
	m.focusForEdit(cellID)
	switch k.Code {
	case editcell.KeyUp:
		return m.move(navmap.Up)
	case editcell.KeyDown:
		return m.move(navmap.Down)
	case editcell.KeyTab:
		return m.move(navmap.Right)
	case editcell.KeyLeft, editcell.KeyRight:
		if c.State() != editcell.Editing {
			dir := navmap.Left
			if k.Code == editcell.KeyRight {
				dir = navmap.Right
			}
			return m.move(dir)
		}
	}
	m.handle(cellID, c, c.KeyDown(k))
	return nil
}

// Input delivers typed text to the active cell.
func (m *Model) Input(text string) error {
	if m.active == "" {
		return nil
	}
	c, err := m.arenaCell(m.active)
	if err != nil {
		return err
	}
	m.handle(m.active, c, c.Input(text))
	return nil
}

// Blur takes focus away from the grid.
func (m *Model) Blur() {
	m.blurActive()
}

// SelectOption applies a lookup widget selection to the active cell.
func (m *Model) SelectOption(value string) error {
	if m.active == "" {
		return nil
	}
	c, err := m.arenaCell(m.active)
	if err != nil {
		return err
	}
	m.handle(m.active, c, c.SelectOption(value))
	return nil
}

// PickDate applies a date picker selection to the active cell.
func (m *Model) PickDate(formatted string) error {
	if m.active == "" {
		return nil
	}
	c, err := m.arenaCell(m.active)
	if err != nil {
		return err
	}
	m.handle(m.active, c, c.PickDate(formatted))
	return nil
}

// ActiveColumn returns the column of the active cell.
func (m *Model) ActiveColumn() (model.Column, bool) {
	if m.active == "" {
		return model.Column{}, false
	}
	ref, _, err := m.navMap.Resolve(m.active)
	if err != nil {
		return model.Column{}, false
	}
	return columns.Find(m.cols, ref.Field)
}

// ActiveValue returns the stored value of the active cell, whether or not
// the cell has been rendered yet.
func (m *Model) ActiveValue() (any, bool) {
	if m.active == "" {
		return nil, false
	}
	ref, pos, err := m.navMap.Resolve(m.active)
	if err != nil || pos.Row >= len(m.view) {
		return nil, false
	}
	return m.view[pos.Row].Row[ref.Field], true
}

func (m *Model) move(dir navmap.Direction) error {
	return navmap.Move(dir, m.active, m.navMap, m.Editing, func(id string, atBoundary bool) {
		if !atBoundary {
			m.blurActive()
		}
		m.setActive(id, atBoundary)
	})
}

func (m *Model) setActive(cellID string, atBoundary bool) {
	m.active = cellID
	m.atBoundary = atBoundary
	if m.opts.OnActivate != nil {
		m.opts.OnActivate(cellID, atBoundary)
	}
}

func (m *Model) focusForEdit(cellID string) {
	if cellID == m.active {
		return
	}
	m.discardDraft(cellID)
	m.setActive(cellID, false)
}

func (m *Model) blurActive() {
	c, ok := m.cells[m.active]
	if !ok || !c.Editing() {
		return
	}
	m.handle(m.active, c, c.Blur())
}

// discardDraft drops a draft pending on any cell other than keep.
func (m *Model) discardDraft(keep string) {
	if m.draft == nil || m.draft.CellID == keep {
		return
	}
	if c, ok := m.cells[m.draft.CellID]; ok {
		c.Discard()
	}
	log.Debug("draft discarded", "cell", m.draft.CellID)
	m.draft = nil
}

func (m *Model) handle(cellID string, c *editcell.Cell, out editcell.Outcome) {
	switch out.Kind {
	case editcell.Commit:
		m.draft = nil
		m.commit(cellID, out.Value)
	case editcell.Cancel:
		m.draft = nil
	default:
		if !c.Editing() {
			if m.draft != nil && m.draft.CellID == cellID {
				m.draft = nil
			}
			return
		}
		ref, _, err := m.navMap.Resolve(cellID)
		if err != nil {
			return
		}
		m.draft = &Draft{CellID: cellID, RowKey: ref.RowKey, Field: ref.Field, Text: c.Draft()}
	}
}

func (m *Model) commit(cellID string, value any) {
	ref, _, err := m.navMap.Resolve(cellID)
	if err != nil {
		return
	}
	row, ok := m.rowByKey(ref.RowKey)
	if !ok {
		return
	}
	log.Debug("cell committed", "table", m.opts.TableID, "row", ref.RowKey, "field", ref.Field)
	if m.opts.OnCellCommitted != nil {
		m.opts.OnCellCommitted(value, row.Clone(), ref.Field)
	}
}

// arenaCell returns the edit state for a visible cell, creating it on
// first use.
func (m *Model) arenaCell(cellID string) (*editcell.Cell, error) {
	ref, pos, err := m.navMap.Resolve(cellID)
	if err != nil {
		return nil, err
	}
	if c, ok := m.cells[cellID]; ok {
		return c, nil
	}
	c := editcell.New(m.cols[pos.Col], m.view[pos.Row].Row[ref.Field])
	m.cells[cellID] = c
	return c, nil
}

// syncCells drops edit state for cells that left the view and refreshes
// the values of the rest.
func (m *Model) syncCells() {
	for id, c := range m.cells {
		ref, pos, err := m.navMap.Resolve(id)
		if err != nil || m.cols[pos.Col].Field != c.Column().Field {
			delete(m.cells, id)
			if m.draft != nil && m.draft.CellID == id {
				m.draft = nil
			}
			continue
		}
		c.SetValue(m.view[pos.Row].Row[ref.Field])
	}
	if m.active != "" && !m.navMap.Contains(m.active) {
		m.active = ""
		m.atBoundary = false
	}
}
