package tui

import (
	"fmt"
	"strings"

	"gridedit/internal/columns"
	"gridedit/internal/docs"
	"gridedit/internal/editcell"
	"gridedit/internal/format"
	"gridedit/internal/model"
	"gridedit/internal/table"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	minColWidth = 4
	maxColWidth = 28
	// selection marker column
	markWidth = 2
	colGap    = 1
)

// chromeHeight counts the lines around the body: title, header, totals,
// status and key hints.
func (m appModel) chromeHeight() int {
	h := 4
	if columns.HasParentHeaders(m.tbl.Columns()) {
		h++
	}
	if len(m.tbl.Totals()) > 0 {
		h++
	}
	return h
}

func (m appModel) bodyHeight() int {
	h := m.height - m.chromeHeight()
	if h < 1 {
		h = 1
	}
	return h
}

// columnWidths sizes each visible column to its widest header or value.
func (m appModel) columnWidths() []int {
	cols := m.tbl.Columns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = xansi.StringWidth(c.Header()) + 2
	}
	nav := m.tbl.Nav()
	for r := 0; r < nav.Rows(); r++ {
		for i := range cols {
			if cv, ok := m.tbl.Cell(r, i); ok {
				w := xansi.StringWidth(cv.Text)
				if cv.State != editcell.Idle {
					w = xansi.StringWidth(cv.Draft) + 1
				}
				if w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	for _, t := range m.tbl.Totals() {
		for i, c := range cols {
			if c.Field == t.Field && xansi.StringWidth(t.Text) > widths[i] {
				widths[i] = xansi.StringWidth(t.Text)
			}
		}
	}
	for i := range widths {
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return widths
}

// visibleColumns returns the column indexes that fit from m.left on.
func (m appModel) visibleColumns(widths []int) []int {
	var out []int
	used := markWidth
	for i := m.left; i < len(widths); i++ {
		if len(out) > 0 && used+widths[i]+colGap > m.width {
			break
		}
		out = append(out, i)
		used += widths[i] + colGap
	}
	return out
}

// scrollToActive keeps the active cell inside the visible window.
func (m *appModel) scrollToActive() {
	_, pos, err := m.tbl.Nav().Resolve(m.tbl.Active())
	if err != nil {
		if n := m.tbl.Nav().Rows(); m.top >= n {
			m.top = 0
		}
		return
	}
	body := m.bodyHeight()
	if pos.Row < m.top {
		m.top = pos.Row
	}
	if pos.Row >= m.top+body {
		m.top = pos.Row - body + 1
	}
	if pos.Col < m.left {
		m.left = pos.Col
	}
	widths := m.columnWidths()
	for m.left < pos.Col {
		vis := m.visibleColumns(widths)
		if len(vis) > 0 && vis[len(vis)-1] >= pos.Col {
			break
		}
		m.left++
	}
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}
	title := m.titleLine()
	var body string
	switch {
	case m.help:
		body = m.helpView()
	case m.lookup != nil:
		body = lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, m.lookup.view(min(m.width, 48)))
	case m.date != nil:
		body = lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, m.date.view(min(m.width, 44)))
	default:
		body = m.gridView()
	}
	return normalizePane(title+"\n"+body, m.width, m.height)
}

func (m appModel) titleLine() string {
	left := lipgloss.NewStyle().Bold(true).Render(m.sess.def.DisplayTitle())
	if m.sess.dirty {
		left += styleMuted().Render(" (modified)")
	}
	n := len(m.tbl.View())
	count := fmt.Sprintf("  %d rows", n)
	if total := len(m.sess.rows); total != n {
		count = fmt.Sprintf("  %d of %d rows", n, total)
	}
	if sel := len(m.tbl.SelectedIDs()); sel > 0 {
		count += fmt.Sprintf(", %d selected", sel)
	}
	left += styleMuted().Render(count)

	var right string
	if m.searching || m.search.Value() != "" {
		right = renderInputLine(m.search.Width+6, m.search.View())
	}
	gap := m.width - xansi.StringWidth(left) - xansi.StringWidth(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) gridView() string {
	cols := m.tbl.Columns()
	widths := m.columnWidths()
	vis := m.visibleColumns(widths)
	sortField, sortDesc := m.tbl.Sort()

	var lines []string
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorHeaderFg)
	if columns.HasParentHeaders(cols) {
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", markWidth))
		for j, i := range vis {
			label := cols[i].ParentHeaderName
			// Spanned parents are written once, on their first column.
			if j > 0 && cols[vis[j-1]].ParentHeaderName == label {
				label = ""
			}
			b.WriteString(headerStyle.Render(fit(label, widths[i])))
			b.WriteString(" ")
		}
		lines = append(lines, b.String())
	}

	var hb strings.Builder
	hb.WriteString(selectionMark(m.tbl.Selection()))
	for _, i := range vis {
		label := cols[i].Header()
		if cols[i].Field == sortField {
			if sortDesc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		if cols[i].IsNumeric() {
			label = fitRight(label, widths[i])
		}
		hb.WriteString(headerStyle.Render(fit(label, widths[i])))
		hb.WriteString(" ")
	}
	lines = append(lines, hb.String())

	view := m.tbl.View()
	body := m.bodyHeight()
	headerN := len(lines)
	if len(view) == 0 {
		msg := "no rows"
		if m.tbl.Search() != "" {
			msg = "no rows match " + fmt.Sprintf("%q", m.tbl.Search())
		}
		lines = append(lines, styleMuted().Render("  "+msg))
	}
	for r := m.top; r < len(view) && r < m.top+body; r++ {
		var b strings.Builder
		if m.tbl.IsSelected(view[r].Row.ID()) {
			b.WriteString(lipgloss.NewStyle().Foreground(colorSelectedFg).Render("● "))
		} else {
			b.WriteString("  ")
		}
		for _, i := range vis {
			cv, _ := m.tbl.Cell(r, i)
			b.WriteString(renderCell(cv, cols[i], widths[i]))
			b.WriteString(" ")
		}
		lines = append(lines, b.String())
	}
	for len(lines) < headerN+body {
		lines = append(lines, "")
	}

	if totals := m.tbl.Totals(); len(totals) > 0 {
		lines = append(lines, m.totalsLine(cols, widths, vis, totals))
	}
	lines = append(lines, m.statusLine())
	lines = append(lines, m.hint.ShortHelpView(m.keys.shortHelp()))
	return strings.Join(lines, "\n")
}

func selectionMark(s table.SelectionState) string {
	switch s {
	case table.SelectAll:
		return "● "
	case table.SelectSome:
		return "◐ "
	default:
		return "○ "
	}
}

func (m appModel) totalsLine(cols []model.Column, widths, vis []int, totals []table.Total) string {
	byField := make(map[string]table.Total, len(totals))
	for _, t := range totals {
		byField[t.Field] = t
	}
	st := lipgloss.NewStyle().Bold(true)
	var b strings.Builder
	b.WriteString("Σ ")
	for _, i := range vis {
		t, ok := byField[cols[i].Field]
		if !ok {
			b.WriteString(strings.Repeat(" ", widths[i]+colGap))
			continue
		}
		text := t.Text
		if t.Filtered {
			text = "*" + text
		}
		b.WriteString(st.Render(fitRight(text, widths[i])))
		b.WriteString(" ")
	}
	return b.String()
}

func (m appModel) statusLine() string {
	if d, ok := m.tbl.PendingDraft(); ok && d.CellID != m.tbl.Active() {
		return styleMuted().Render("unsaved edit in " + d.Field)
	}
	if m.status != "" {
		if m.statusErr {
			return lipgloss.NewStyle().Foreground(colorError).Render(m.status)
		}
		return styleMuted().Render(m.status)
	}
	if _, pos, err := m.tbl.Nav().Resolve(m.tbl.Active()); err == nil {
		if cv, ok := m.tbl.Cell(pos.Row, pos.Col); ok {
			switch {
			case cv.Error != nil:
				return lipgloss.NewStyle().Foreground(colorError).Render(cv.Field + ": " + cv.Error.Message)
			case cv.Warning != nil:
				return lipgloss.NewStyle().Foreground(colorWarning).Render(cv.Field + ": " + cv.Warning.Message)
			}
		}
	}
	return ""
}

// renderCell draws one cell padded to width. Cells being edited show the
// draft with a caret.
func renderCell(cv table.CellView, col model.Column, width int) string {
	st := lipgloss.NewStyle()
	if cv.State != editcell.Idle {
		return st.Background(colorInputBg).Render(fit(withCaret(cv.Draft, cv.Caret), width))
	}
	text := cv.Text
	if col.IsNumeric() {
		text = fitRight(text, width)
	}
	text = fit(text, width)
	switch {
	case cv.Error != nil:
		st = st.Foreground(colorError).Underline(true)
	case cv.Warning != nil:
		st = st.Foreground(colorWarning)
	case cv.Blink == format.BlinkPositive:
		st = st.Foreground(colorPositive)
	case cv.Blink == format.BlinkNegative:
		st = st.Foreground(colorNegative)
	}
	if cv.Active {
		st = st.Background(colorActiveBg).Foreground(colorActiveFg).Bold(true)
	}
	return st.Render(text)
}

func withCaret(draft string, caret int) string {
	rs := []rune(draft)
	if caret < 0 {
		caret = 0
	}
	if caret > len(rs) {
		caret = len(rs)
	}
	at := " "
	after := ""
	if caret < len(rs) {
		at = string(rs[caret])
		after = string(rs[caret+1:])
	}
	cursor := lipgloss.NewStyle().Reverse(true).Render(at)
	return string(rs[:caret]) + cursor + after
}

func (m appModel) helpView() string {
	md, _ := docs.Get("keys")
	width := m.width - 4
	if width > 80 {
		width = 80
	}
	lines := strings.Split(renderMarkdown(md, width), "\n")
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	top := m.helpTop
	if limit := len(lines) - h; top > limit {
		top = limit
	}
	if top < 0 {
		top = 0
	}
	end := top + h
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[top:end], "\n") + "\n" + styleMuted().Render("esc close  ↑/↓ scroll")
}
