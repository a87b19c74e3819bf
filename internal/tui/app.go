package tui

import (
	"errors"
	"fmt"
	"time"

	"gridedit/internal/editcell"
	"gridedit/internal/format"
	"gridedit/internal/model"
	"gridedit/internal/navmap"
	"gridedit/internal/sheet"
	"gridedit/internal/store"
	"gridedit/internal/table"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Options configure one grid session.
type Options struct {
	Sheet       *sheet.Definition
	Rows        []model.Row
	Prefs       store.SheetPrefs
	Theme       string
	SearchDelay time.Duration
	// SavePrefs receives the view preferences when the grid closes.
	SavePrefs func(store.SheetPrefs) error
}

type cellCommittedMsg struct {
	value any
	row   model.Row
	field string
}

type rowAddRequestedMsg struct{ stub model.Row }

type rowsDeleteRequestedMsg struct{ ids []any }

type searchAppliedMsg struct{ query string }

// session is shared by every copy of appModel. Table callbacks fire in the
// middle of an Update, so what they report is queued here and applied once
// the table call returns.
type session struct {
	def   *sheet.Definition
	rows  []model.Row
	prefs store.SheetPrefs
	queue []tea.Msg
	send  func(tea.Msg)
	dirty bool
}

type appModel struct {
	sess *session
	tbl  *table.Model
	keys keyMap
	hint help.Model

	width  int
	height int
	top    int
	left   int

	search    textinput.Model
	searching bool

	lookup  *lookupPicker
	date    *datePicker
	help    bool
	helpTop int

	status    string
	statusErr bool
	quitting  bool
	// set after a first q with unsaved rows
	quitArmed bool

	newID     func() string
	today     func() time.Time
	savePrefs func(store.SheetPrefs) error
}

func newAppModel(opts Options) (appModel, error) {
	if opts.Sheet == nil {
		return appModel{}, errors.New("no sheet")
	}
	cols, err := opts.Sheet.BuildColumns()
	if err != nil {
		return appModel{}, err
	}
	rules, err := opts.Sheet.BuildRules()
	if err != nil {
		return appModel{}, err
	}
	sess := &session{def: opts.Sheet, rows: opts.Rows, prefs: opts.Prefs}
	tblOpts := table.Options{
		TableID:     opts.Sheet.TableID(),
		Columns:     cols,
		Visibility:  opts.Prefs.Visibility,
		Rules:       rules,
		SearchDelay: opts.SearchDelay,
		OnCellCommitted: func(value any, row model.Row, field string) {
			sess.queue = append(sess.queue, cellCommittedMsg{value: value, row: row, field: field})
		},
		OnAddRequested: func(stub model.Row) {
			sess.queue = append(sess.queue, rowAddRequestedMsg{stub: stub})
		},
		OnDeleteRequested: func(ids []any) {
			sess.queue = append(sess.queue, rowsDeleteRequestedMsg{ids: ids})
		},
		OnActivate: func(cellID string, _ bool) {
			sess.prefs.LastCell = cellID
		},
	}
	tbl, err := table.New(tblOpts)
	if err != nil && opts.Prefs.Visibility != nil && errors.Is(err, model.ErrConfiguration) {
		// Saved overrides can go stale when the sheet changes.
		log.Debug("ignoring saved visibility", "err", err)
		tblOpts.Visibility = nil
		sess.prefs.Visibility = nil
		tbl, err = table.New(tblOpts)
	}
	if err != nil {
		return appModel{}, err
	}
	if err := tbl.SetRows(opts.Rows); err != nil {
		tbl.Close()
		return appModel{}, err
	}
	if f := opts.Prefs.SortField; f != "" {
		if err := tbl.SetSort(f, opts.Prefs.SortDesc); err != nil {
			log.Debug("ignoring saved sort", "field", f, "err", err)
			sess.prefs.SortField, sess.prefs.SortDesc = "", false
		}
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"
	search.CharLimit = 200
	search.Width = 24

	m := appModel{
		sess:      sess,
		tbl:       tbl,
		keys:      defaultKeyMap(),
		hint:      help.New(),
		width:     80,
		height:    24,
		search:    search,
		newID:     uuid.NewString,
		today:     time.Now,
		savePrefs: opts.SavePrefs,
	}
	if last := opts.Prefs.LastCell; last != "" && tbl.Nav().Contains(last) {
		_ = tbl.Activate(last)
	} else {
		m.activateFirst()
	}
	return m, nil
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scrollToActive()
		return m, nil
	case searchAppliedMsg:
		// A later keystroke superseded this value.
		if msg.query != m.search.Value() {
			return m, nil
		}
		m.applySearch(msg.query)
		return m, nil
	case cellCommittedMsg, rowAddRequestedMsg, rowsDeleteRequestedMsg:
		m.apply(msg)
		m.drain()
		return m, nil
	case tea.KeyMsg:
		m.status, m.statusErr = "", false
		armed := m.quitArmed
		m.quitArmed = false
		cmd := m.updateKey(msg, armed)
		m.drain()
		m.scrollToActive()
		return m, cmd
	}
	return m, nil
}

func (m *appModel) updateKey(msg tea.KeyMsg, quitArmed bool) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	switch {
	case m.help:
		return m.updateHelp(msg)
	case m.lookup != nil:
		p, res, cmd := m.lookup.update(msg)
		m.lookup = &p
		if res.done {
			m.lookup = nil
			if res.ok {
				m.check(m.tbl.SelectOption(res.value))
			}
		}
		return cmd
	case m.date != nil:
		p, res, cmd := m.date.update(msg)
		m.date = &p
		if res.done {
			m.date = nil
			if res.ok {
				m.check(m.tbl.PickDate(res.value))
			}
		}
		return cmd
	case m.searching:
		return m.updateSearch(msg)
	}

	active := m.tbl.Active()
	if active != "" && m.tbl.Editing(active) {
		return m.updateEditing(active, msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.sess.dirty && m.sess.def.Writable() && !quitArmed {
			m.quitArmed = true
			m.setStatus("unsaved rows: ctrl+s saves, q again quits")
			return nil
		}
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help, m.helpTop = true, 0
		return nil
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, m.keys.SortAsc):
		m.sortByActive(false)
		return nil
	case key.Matches(msg, m.keys.SortDesc):
		m.sortByActive(true)
		return nil
	case key.Matches(msg, m.keys.Select):
		m.toggleActiveRow()
		return nil
	case key.Matches(msg, m.keys.SelectAll):
		m.tbl.ToggleAll()
		return nil
	case key.Matches(msg, m.keys.Add):
		m.tbl.RequestAdd()
		return nil
	case key.Matches(msg, m.keys.Delete):
		m.tbl.RequestDelete()
		return nil
	case key.Matches(msg, m.keys.Picker):
		m.openPicker()
		return nil
	case key.Matches(msg, m.keys.Save):
		m.save()
		return nil
	}

	if active == "" {
		m.activateFirst()
		return nil
	}
	k, ok := cellKey(msg)
	if !ok {
		return nil
	}
	col, _ := m.tbl.ActiveColumn()
	switch k.Code {
	case editcell.KeyRune:
		if !editcell.Allowed(col, k.Rune) {
			return nil
		}
		// Key down puts the cell in pending mode; the input that follows
		// replaces its value.
		m.check(m.tbl.KeyDown(active, k))
		m.check(m.tbl.Input(string(k.Rune)))
		return nil
	case editcell.KeyEnter, editcell.KeyF2:
		if l, isLookup := col.Lookup(); isLookup && !l.FreeText && col.Editable() {
			m.openPicker()
			return nil
		}
	}
	m.check(m.tbl.KeyDown(active, k))
	return nil
}

func (m *appModel) updateEditing(active string, msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Picker) {
		m.openPicker()
		return nil
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		m.check(m.tbl.Input(text))
		return nil
	}
	if k, ok := cellKey(msg); ok {
		m.check(m.tbl.KeyDown(active, k))
	}
	return nil
}

func (m *appModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applySearch("")
		}
		return nil
	case tea.KeyEnter, tea.KeyDown:
		m.searching = false
		m.search.Blur()
		m.applySearch(m.search.Value())
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != before {
		m.debounceSearch(q)
	}
	return cmd
}

func (m *appModel) updateHelp(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.help = false
	case msg.Type == tea.KeyUp:
		if m.helpTop > 0 {
			m.helpTop--
		}
	case msg.Type == tea.KeyDown:
		m.helpTop++
	}
	return nil
}

// debounceSearch applies q once typing pauses. The timer fires off the
// event loop, so the value comes back as a message.
func (m *appModel) debounceSearch(q string) {
	send := m.sess.send
	if send == nil {
		return
	}
	m.tbl.DebounceSearch(q, func(q string) { send(searchAppliedMsg{query: q}) })
}

func (m *appModel) applySearch(q string) {
	if q == m.tbl.Search() {
		return
	}
	if err := m.tbl.SetSearch(q); err != nil {
		m.setErr(err)
		return
	}
	m.status, m.statusErr = "", false
	m.top = 0
	if m.tbl.Active() == "" {
		m.activateFirst()
	}
}

// drain applies everything the table reported during the last call.
func (m *appModel) drain() {
	for len(m.sess.queue) > 0 {
		msg := m.sess.queue[0]
		m.sess.queue = m.sess.queue[1:]
		m.apply(msg)
	}
}

func (m *appModel) apply(msg tea.Msg) {
	switch msg := msg.(type) {
	case cellCommittedMsg:
		rows, err := table.Merge(m.sess.rows, msg.row.ID(), msg.field, msg.value)
		if err != nil {
			m.setErr(err)
			return
		}
		if m.setRows(rows) {
			m.setStatus(fmt.Sprintf("%s updated", msg.field))
		}
	case rowAddRequestedMsg:
		id := m.newID()
		row := msg.stub.With(model.IDField, id)
		rows := append(append([]model.Row(nil), m.sess.rows...), row)
		if !m.setRows(rows) {
			return
		}
		m.setStatus("row added")
		if cols := m.tbl.Columns(); len(cols) > 0 {
			if cellID, err := navmap.CellID(m.tbl.TableID(), id, cols[0].Field); err == nil && m.tbl.Nav().Contains(cellID) {
				m.check(m.tbl.Activate(cellID))
			}
		}
	case rowsDeleteRequestedMsg:
		drop := make(map[string]bool, len(msg.ids))
		for _, id := range msg.ids {
			drop[model.RowKey(id)] = true
		}
		rows := make([]model.Row, 0, len(m.sess.rows))
		for _, r := range m.sess.rows {
			if !drop[model.RowKey(r.ID())] {
				rows = append(rows, r)
			}
		}
		n := len(m.sess.rows) - len(rows)
		if m.setRows(rows) {
			m.setStatus(fmt.Sprintf("%d rows deleted", n))
		}
	}
}

// setRows feeds a new collection to the table and keeps it when accepted.
func (m *appModel) setRows(rows []model.Row) bool {
	prev := len(m.sess.rows)
	if err := m.tbl.SetRows(rows); err != nil {
		m.setErr(err)
		return false
	}
	log.Debug("rows replaced", "before", prev, "after", len(rows))
	m.sess.rows = rows
	m.sess.dirty = true
	if m.tbl.Active() == "" {
		m.activateFirst()
	}
	return true
}

func (m *appModel) activateFirst() {
	if id, ok := m.tbl.Nav().At(0, 0); ok {
		m.check(m.tbl.Activate(id))
	}
}

func (m *appModel) openPicker() {
	col, ok := m.tbl.ActiveColumn()
	if !ok || !col.Editable() {
		return
	}
	v, _ := m.tbl.ActiveValue()
	switch col.Edit.(type) {
	case model.LookupEdit:
		p := newLookupPicker(col, format.Text(v))
		m.lookup = &p
	case model.DateEdit:
		p := newDatePicker(col, v, m.today)
		m.date = &p
	}
}

// sortByActive sorts by the active column. Repeating the same sort
// restores the collection order.
func (m *appModel) sortByActive(desc bool) {
	col, ok := m.tbl.ActiveColumn()
	if !ok {
		return
	}
	field, curDesc := m.tbl.Sort()
	if field == col.Field && curDesc == desc {
		col.Field, desc = "", false
	}
	if err := m.tbl.SetSort(col.Field, desc); err != nil {
		m.setErr(err)
		return
	}
	m.sess.prefs.SortField, m.sess.prefs.SortDesc = col.Field, desc
}

func (m *appModel) toggleActiveRow() {
	_, pos, err := m.tbl.Nav().Resolve(m.tbl.Active())
	if err != nil {
		return
	}
	m.tbl.Toggle(m.tbl.View()[pos.Row].Row.ID())
}

func (m *appModel) save() {
	if err := m.sess.def.SaveRows(m.sess.rows); err != nil {
		m.setErr(err)
		return
	}
	m.sess.dirty = false
	m.setStatus(fmt.Sprintf("saved %d rows", len(m.sess.rows)))
}

func (m *appModel) quit() tea.Cmd {
	m.quitting = true
	m.tbl.Blur()
	m.drain()
	m.tbl.Close()
	if m.savePrefs != nil {
		if err := m.savePrefs(m.sess.prefs); err != nil {
			log.Error("saving preferences", "err", err)
		}
	}
	return tea.Quit
}

// check reports an error from a table call in the status line.
func (m *appModel) check(err error) {
	if err != nil {
		m.setErr(err)
	}
}

func (m *appModel) setErr(err error) {
	log.Debug("grid error", "err", err)
	m.status, m.statusErr = err.Error(), true
}

func (m *appModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}
