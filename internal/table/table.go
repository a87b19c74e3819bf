// Package table owns a grid's row collection and everything derived from
// it: validation, filtering, sorting, the navigation map, totals,
// selection and the per-cell edit state.
//
// Rows are never mutated here. Commits are handed to OnCellCommitted and
// the caller feeds the merged collection back through SetRows.
package table

import (
	"fmt"
	"time"

	"gridedit/internal/columns"
	"gridedit/internal/editcell"
	"gridedit/internal/model"
	"gridedit/internal/navmap"

	"github.com/charmbracelet/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultSearchDelay is the search debounce used when Options leaves it zero.
const DefaultSearchDelay = 250 * time.Millisecond

type Options struct {
	TableID    string
	Columns    []model.Column
	Reserved   []string
	Visibility map[string]bool
	Rules      []model.ValidationRule

	// OnCellCommitted receives every committed edit. row is a copy.
	OnCellCommitted func(value any, row model.Row, field string)
	// OnAddRequested receives a blank row stub the caller may complete and insert.
	OnAddRequested func(stub model.Row)
	// OnDeleteRequested receives the selected row ids in view order.
	OnDeleteRequested func(ids []any)
	// OnActivate is told about every cell activation, including boundary hits.
	OnActivate func(cellID string, atBoundary bool)

	SearchDelay time.Duration
}

// Model is one grid instance. It is not safe for concurrent use; all calls
// are expected from the host's event loop.
type Model struct {
	opts     Options
	declared []model.Column
	cols     []model.Column
	colsRev  int

	rows    []model.Row
	rowsRev int
	// revisions are never reused, so a rolled back change cannot hit a
	// cache entry built for it
	revSeq int
	// previous values by row key, for blink
	prev map[string]model.Row

	search   string
	sortBy   string
	sortDesc bool
	collator *collate.Collator

	validated memo[validateKey, []model.ValidatedRow]
	filtered  memo[filterKey, []ViewRow]
	sorted    memo[sortKey, []ViewRow]
	nav       memo[navKey, *navmap.Map]

	view   []ViewRow
	navMap *navmap.Map
	totals []Total

	selected map[string]any

	active     string
	atBoundary bool
	cells      map[string]*editcell.Cell
	draft      *Draft
	debounce   *Debouncer
	stats      Stats
}

// ViewRow is a validated row in the derived view. Index is its position in
// the authoritative collection.
type ViewRow struct {
	model.ValidatedRow
	Index int
}

// Draft is the single pending edit of a table.
type Draft struct {
	CellID string
	RowKey string
	Field  string
	Text   string
}

// New validates and prepares the columns and returns an empty table.
func New(opts Options) (*Model, error) {
	reserved := opts.Reserved
	if reserved == nil {
		reserved = columns.DefaultReserved
	}
	if err := columns.Validate(opts.Columns, reserved); err != nil {
		return nil, err
	}
	cols := columns.Prepare(opts.Columns, opts.Visibility)
	if len(cols) == 0 {
		return nil, model.ConfigErr("every column is hidden")
	}
	// Reject a bad table id before any rows arrive.
	if _, err := navmap.Build(opts.TableID, nil, cols); err != nil {
		return nil, err
	}
	delay := opts.SearchDelay
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	m := &Model{
		opts:     opts,
		declared: append([]model.Column(nil), opts.Columns...),
		cols:     cols,
		collator: collate.New(language.BritishEnglish),
		selected: map[string]any{},
		cells:    map[string]*editcell.Cell{},
		debounce: NewDebouncer(delay),
	}
	if err := m.derive(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) TableID() string { return m.opts.TableID }

// Columns returns the prepared (visible) columns.
func (m *Model) Columns() []model.Column {
	return append([]model.Column(nil), m.cols...)
}

// SetRows replaces the row collection and re-derives the view. Every row
// needs a distinct id, including rows the search currently hides. On error
// the previous collection and view stay in place.
func (m *Model) SetRows(rows []model.Row) error {
	if err := navmap.CheckRowIDs(rows); err != nil {
		return err
	}
	prevRows, prevSnap := m.rows, m.prev
	m.prev = indexRows(m.rows)
	m.rows = cloneRows(rows)
	m.rowsRev = m.nextRev()
	if err := m.derive(); err != nil {
		m.rows, m.prev = prevRows, prevSnap
		m.rowsRev = m.nextRev()
		return err
	}
	return nil
}

// Rows returns a copy of the authoritative collection.
func (m *Model) Rows() []model.Row { return cloneRows(m.rows) }

// SetVisibility applies per-field visibility overrides on top of the
// declared Hidden flags.
func (m *Model) SetVisibility(visibility map[string]bool) error {
	cols := columns.Prepare(m.declared, visibility)
	if len(cols) == 0 {
		return model.ConfigErr("every column is hidden")
	}
	prevCols := m.cols
	m.cols = cols
	m.colsRev = m.nextRev()
	if err := m.derive(); err != nil {
		m.cols = prevCols
		m.colsRev = m.nextRev()
		return err
	}
	return nil
}

// Search is the active filter text.
func (m *Model) Search() string { return m.search }

// SetSearch filters the view to rows containing q (case-insensitive).
func (m *Model) SetSearch(q string) error {
	m.debounce.Cancel()
	prev := m.search
	m.search = q
	if err := m.derive(); err != nil {
		m.search = prev
		return err
	}
	return nil
}

// DebounceSearch schedules apply(q) after the search delay. A later call
// cancels the pending one so only the last value of a burst is applied.
// apply runs on the timer goroutine; hosts pass it back to their event loop.
func (m *Model) DebounceSearch(q string, apply func(q string)) {
	m.debounce.Trigger(func() { apply(q) })
}

// Sort reports the sort field ("" when unsorted) and direction.
func (m *Model) Sort() (field string, desc bool) { return m.sortBy, m.sortDesc }

// SetSort orders the view by field's display value. An empty field restores
// the collection order.
func (m *Model) SetSort(field string, desc bool) error {
	if field != "" {
		if _, ok := columns.Find(m.declared, field); !ok {
			return model.ConfigErr("unknown sort field", field)
		}
	}
	prevField, prevDesc := m.sortBy, m.sortDesc
	m.sortBy, m.sortDesc = field, desc
	if err := m.derive(); err != nil {
		m.sortBy, m.sortDesc = prevField, prevDesc
		return err
	}
	return nil
}

// View returns the derived rows in display order.
func (m *Model) View() []ViewRow {
	return append([]ViewRow(nil), m.view...)
}

// Nav returns the navigation map of the current view.
func (m *Model) Nav() *navmap.Map { return m.navMap }

// Totals returns one entry per column with a total spec.
func (m *Model) Totals() []Total {
	return append([]Total(nil), m.totals...)
}

// Stats counts how often each derived stage was recomputed.
func (m *Model) Stats() Stats { return m.stats }

// Close cancels pending timers. The model must not be used afterwards.
func (m *Model) Close() {
	m.debounce.Close()
}

// RequestAdd hands a blank row stub to OnAddRequested.
func (m *Model) RequestAdd() {
	if m.opts.OnAddRequested == nil {
		return
	}
	stub := model.Row{}
	for _, c := range m.declared {
		if c.Field == model.IDField {
			continue
		}
		stub[c.Field] = ""
	}
	m.opts.OnAddRequested(stub)
}

// RequestDelete hands the selected row ids to OnDeleteRequested.
func (m *Model) RequestDelete() {
	ids := m.SelectedIDs()
	if len(ids) == 0 || m.opts.OnDeleteRequested == nil {
		return
	}
	m.opts.OnDeleteRequested(ids)
}

// Merge returns a copy of rows with field of the row identified by rowID
// set to value.
func Merge(rows []model.Row, rowID any, field string, value any) ([]model.Row, error) {
	key := model.RowKey(rowID)
	out := make([]model.Row, len(rows))
	found := false
	for i, r := range rows {
		if !found && model.RowKey(r.ID()) == key {
			out[i] = r.With(field, value)
			found = true
			continue
		}
		out[i] = r
	}
	if !found {
		return nil, fmt.Errorf("merge: row %q not found", key)
	}
	return out, nil
}

func (m *Model) nextRev() int {
	m.revSeq++
	return m.revSeq
}

func (m *Model) rowByKey(key string) (model.Row, bool) {
	for _, r := range m.rows {
		if model.RowKey(r.ID()) == key {
			return r, true
		}
	}
	return nil, false
}

func cloneRows(rows []model.Row) []model.Row {
	if rows == nil {
		return nil
	}
	out := make([]model.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

func indexRows(rows []model.Row) map[string]model.Row {
	out := make(map[string]model.Row, len(rows))
	for _, r := range rows {
		out[model.RowKey(r.ID())] = r
	}
	return out
}

func logDerive(m *Model) {
	log.Debug("table view derived",
		"table", m.opts.TableID,
		"rows", len(m.rows),
		"view", len(m.view),
		"search", m.search,
		"sort", m.sortBy,
	)
}
