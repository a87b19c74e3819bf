// Package tui hosts a sheet in a full-screen terminal grid.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the grid and blocks until the user quits.
func Run(opts Options) error {
	applyThemePreference(opts.Theme)
	applyColorProfilePreference(opts.Theme)

	m, err := newAppModel(opts)
	if err != nil {
		return err
	}
	// quit closes the table too; this covers a program that fails to start.
	defer m.tbl.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	// The search debouncer fires on its own goroutine; Send puts the value
	// back on the event loop.
	m.sess.send = p.Send
	_, err = p.Run()
	return err
}
