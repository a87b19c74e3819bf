package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gridedit/internal/format"
	"gridedit/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dateFocus int

const (
	dateFocusYear dateFocus = iota
	dateFocusMonth
	dateFocusDay
)

var (
	errMissingDate = errors.New("year, month and day are required")
	errInvalidDate = errors.New("not a valid date")
	errBeforeMin   = errors.New("date is before the earliest allowed")
	errAfterMax    = errors.New("date is after the latest allowed")
)

// datePicker edits a date as separate year, month and day fields.
type datePicker struct {
	field    string
	spec     model.DateEdit
	min, max time.Time
	focus    dateFocus
	year     textinput.Model
	month    textinput.Model
	day      textinput.Model
	err      error
	today    func() time.Time
}

func newDatePicker(col model.Column, current any, today func() time.Time) datePicker {
	spec, _ := col.Edit.(model.DateEdit)
	if today == nil {
		today = time.Now
	}
	p := datePicker{field: col.Field, spec: spec, today: today}
	if t, ok := format.ParseDate(spec.Min, spec.Format); ok {
		p.min = t
	}
	if t, ok := format.ParseDate(spec.Max, spec.Format); ok {
		p.max = t
	}
	p.year = dateInput("YYYY", 4, 6)
	p.month = dateInput("MM", 2, 4)
	p.day = dateInput("DD", 2, 4)

	t, ok := format.ParseDate(current, spec.Format)
	if !ok {
		n := today()
		t = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	}
	p.set(p.clamp(t))
	p.applyFocus()
	return p
}

func dateInput(placeholder string, limit, width int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = width
	return in
}

func (p *datePicker) set(t time.Time) {
	p.year.SetValue(fmtYear(t.Year()))
	p.month.SetValue(fmt2(int(t.Month())))
	p.day.SetValue(fmt2(t.Day()))
}

func (p *datePicker) clamp(t time.Time) time.Time {
	if !p.min.IsZero() && t.Before(p.min) {
		return p.min
	}
	if !p.max.IsZero() && t.After(p.max) {
		return p.max
	}
	return t
}

func (p *datePicker) applyFocus() {
	p.year.Blur()
	p.month.Blur()
	p.day.Blur()
	switch p.focus {
	case dateFocusYear:
		p.year.Focus()
	case dateFocusMonth:
		p.month.Focus()
	case dateFocusDay:
		p.day.Focus()
	}
}

func (p *datePicker) parts() (y, mo, d int) {
	n := p.today()
	y = parseIntDefault(p.year.Value(), n.Year())
	mo = parseIntDefault(p.month.Value(), int(n.Month()))
	d = parseIntDefault(p.day.Value(), n.Day())
	if mo < 1 {
		mo = 1
	}
	if mo > 12 {
		mo = 12
	}
	d = clampDay(y, time.Month(mo), d)
	return
}

// bump moves the focused field by delta. Month steps roll the year and
// keep the day inside the new month.
func (p *datePicker) bump(delta int) {
	y, mo, d := p.parts()
	var t time.Time
	switch p.focus {
	case dateFocusYear:
		y += delta
		t = time.Date(y, time.Month(mo), clampDay(y, time.Month(mo), d), 0, 0, 0, 0, time.UTC)
	case dateFocusMonth:
		mo += delta
		for mo < 1 {
			mo += 12
			y--
		}
		for mo > 12 {
			mo -= 12
			y++
		}
		t = time.Date(y, time.Month(mo), clampDay(y, time.Month(mo), d), 0, 0, 0, 0, time.UTC)
	default:
		t = time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, delta)
	}
	p.set(p.clamp(t))
	p.err = nil
}

// value validates the fields and formats the date with the column format.
func (p *datePicker) value() (string, error) {
	t, err := parseDateFields(p.year.Value(), p.month.Value(), p.day.Value())
	if err != nil {
		return "", err
	}
	if !p.min.IsZero() && t.Before(p.min) {
		return "", errBeforeMin
	}
	if !p.max.IsZero() && t.After(p.max) {
		return "", errAfterMax
	}
	return format.Date(t, p.spec.Format), nil
}

func (p datePicker) update(msg tea.KeyMsg) (datePicker, pickResult, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return p, pickResult{done: true}, nil
	case tea.KeyEnter:
		v, err := p.value()
		if err != nil {
			p.err = err
			return p, pickResult{}, nil
		}
		return p, pickResult{value: v, done: true, ok: true}, nil
	case tea.KeyTab, tea.KeyRight:
		p.focus = (p.focus + 1) % 3
		p.applyFocus()
		return p, pickResult{}, nil
	case tea.KeyShiftTab, tea.KeyLeft:
		p.focus = (p.focus + 2) % 3
		p.applyFocus()
		return p, pickResult{}, nil
	case tea.KeyUp:
		p.bump(1)
		return p, pickResult{}, nil
	case tea.KeyDown:
		p.bump(-1)
		return p, pickResult{}, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return p, pickResult{}, nil
			}
		}
	}
	var cmd tea.Cmd
	switch p.focus {
	case dateFocusYear:
		p.year, cmd = p.year.Update(msg)
	case dateFocusMonth:
		p.month, cmd = p.month.Update(msg)
	case dateFocusDay:
		p.day, cmd = p.day.Update(msg)
	}
	p.err = nil
	return p, pickResult{}, cmd
}

func (p datePicker) view(width int) string {
	if width < 30 {
		width = 30
	}
	sep := styleMuted().Render(" - ")
	fields := p.year.View() + sep + p.month.View() + sep + p.day.View()
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(p.field),
		renderInputLine(width-4, fields),
	}
	var bounds []string
	if !p.min.IsZero() {
		bounds = append(bounds, "from "+format.Date(p.min, p.spec.Format))
	}
	if !p.max.IsZero() {
		bounds = append(bounds, "until "+format.Date(p.max, p.spec.Format))
	}
	if len(bounds) > 0 {
		lines = append(lines, styleMuted().Render(strings.Join(bounds, ", ")))
	}
	if p.err != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorError).Render(p.err.Error()))
	}
	lines = append(lines, styleMuted().Render("↑/↓ change  tab next field  enter pick"))
	return modalBox(width).Render(strings.Join(lines, "\n"))
}

func parseDateFields(year, month, day string) (time.Time, error) {
	year, month, day = strings.TrimSpace(year), strings.TrimSpace(month), strings.TrimSpace(day)
	if year == "" || month == "" || day == "" {
		return time.Time{}, errMissingDate
	}
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return time.Time{}, errInvalidDate
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return time.Time{}, errInvalidDate
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > daysInMonth(y, time.Month(mo)) {
		return time.Time{}, errInvalidDate
	}
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), nil
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func fmt2(n int) string {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func fmtYear(y int) string {
	if y < 0 {
		y = 0
	}
	s := strconv.Itoa(y)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
