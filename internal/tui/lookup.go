package tui

import (
	"strings"

	"gridedit/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

const lookupVisible = 8

// lookupPicker is the option list opened on a lookup cell.
type lookupPicker struct {
	field    string
	options  []model.Option
	freeText bool
	filter   textinput.Model
	matches  []int
	cursor   int
}

type pickResult struct {
	value string
	done  bool
	ok    bool
}

func newLookupPicker(col model.Column, current string) lookupPicker {
	l, _ := col.Lookup()
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "filter"
	in.CharLimit = 200
	in.Width = 30
	in.Focus()
	p := lookupPicker{
		field:    col.Field,
		options:  l.Options,
		freeText: l.FreeText,
		filter:   in,
	}
	p.refilter()
	for i, idx := range p.matches {
		if p.options[idx].Value == current {
			p.cursor = i
		}
	}
	return p
}

// refilter ranks option labels against the filter text. An empty filter
// keeps the declared order.
func (p *lookupPicker) refilter() {
	q := strings.TrimSpace(p.filter.Value())
	p.matches = p.matches[:0]
	if q == "" {
		for i := range p.options {
			p.matches = append(p.matches, i)
		}
	} else {
		labels := make([]string, len(p.options))
		for i, o := range p.options {
			labels[i] = o.Label
			if labels[i] == "" {
				labels[i] = o.Value
			}
		}
		for _, m := range fuzzy.Find(q, labels) {
			p.matches = append(p.matches, m.Index)
		}
	}
	if p.cursor >= len(p.matches) {
		p.cursor = len(p.matches) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p lookupPicker) update(msg tea.KeyMsg) (lookupPicker, pickResult, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return p, pickResult{done: true}, nil
	case tea.KeyUp, tea.KeyCtrlP:
		if p.cursor > 0 {
			p.cursor--
		}
		return p, pickResult{}, nil
	case tea.KeyDown, tea.KeyCtrlN:
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
		return p, pickResult{}, nil
	case tea.KeyEnter:
		if len(p.matches) > 0 {
			return p, pickResult{value: p.options[p.matches[p.cursor]].Value, done: true, ok: true}, nil
		}
		if q := strings.TrimSpace(p.filter.Value()); q != "" && p.freeText {
			return p, pickResult{value: q, done: true, ok: true}, nil
		}
		return p, pickResult{}, nil
	}
	var cmd tea.Cmd
	before := p.filter.Value()
	p.filter, cmd = p.filter.Update(msg)
	if p.filter.Value() != before {
		p.cursor = 0
		p.refilter()
	}
	return p, pickResult{}, cmd
}

func (p lookupPicker) view(width int) string {
	if width < 24 {
		width = 24
	}
	body := width - 4
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(p.field),
		renderInputLine(body, p.filter.View()),
	}
	start := 0
	if p.cursor >= lookupVisible {
		start = p.cursor - lookupVisible + 1
	}
	for i := start; i < len(p.matches) && i < start+lookupVisible; i++ {
		o := p.options[p.matches[i]]
		label := o.Label
		if label == "" {
			label = o.Value
		}
		line := fit("  "+label, body)
		if i == p.cursor {
			line = lipgloss.NewStyle().Background(colorAccent).Foreground(colorAccentFg).Render(fit("› "+label, body))
		}
		lines = append(lines, line)
	}
	if len(p.matches) == 0 {
		hint := "no match"
		if p.freeText && strings.TrimSpace(p.filter.Value()) != "" {
			hint = "enter keeps the typed text"
		}
		lines = append(lines, styleMuted().Render(hint))
	}
	return modalBox(width).Render(strings.Join(lines, "\n"))
}

func modalBox(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Width(width - 2)
}
