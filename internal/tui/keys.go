package tui

import (
	"gridedit/internal/editcell"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Search    key.Binding
	SortAsc   key.Binding
	SortDesc  key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Add       key.Binding
	Delete    key.Binding
	Picker    key.Binding
	Save      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		SortAsc:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		SortDesc:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sort desc")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		Delete:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete rows")),
		Picker:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "options")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	}
}

// shortHelp is the footer hint line.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Search, k.SortAsc, k.Select, k.Add, k.Delete, k.Save, k.Help, k.Quit}
}

// cellKey maps a terminal key onto the key a grid cell understands.
func cellKey(msg tea.KeyMsg) (editcell.Key, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return editcell.Key{Code: editcell.KeyEnter}, true
	case tea.KeyEsc:
		return editcell.Key{Code: editcell.KeyEscape}, true
	case tea.KeyDelete:
		return editcell.Key{Code: editcell.KeyDelete}, true
	case tea.KeyBackspace:
		return editcell.Key{Code: editcell.KeyBackspace}, true
	case tea.KeyTab:
		return editcell.Key{Code: editcell.KeyTab}, true
	case tea.KeyLeft:
		return editcell.Key{Code: editcell.KeyLeft}, true
	case tea.KeyRight:
		return editcell.Key{Code: editcell.KeyRight}, true
	case tea.KeyUp:
		return editcell.Key{Code: editcell.KeyUp}, true
	case tea.KeyDown:
		return editcell.Key{Code: editcell.KeyDown}, true
	case tea.KeyHome:
		return editcell.Key{Code: editcell.KeyHome}, true
	case tea.KeyEnd:
		return editcell.Key{Code: editcell.KeyEnd}, true
	case tea.KeyF2:
		return editcell.Key{Code: editcell.KeyF2}, true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return editcell.RuneKey(msg.Runes[0]), true
		}
	}
	return editcell.Key{}, false
}
