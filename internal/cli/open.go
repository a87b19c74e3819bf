package cli

import (
	"time"

	"gridedit/internal/store"
	"gridedit/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open [sheet]",
		Short: "Open a sheet in the interactive grid",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runOpen(cmd, app, path)
		},
	}
}

func runOpen(cmd *cobra.Command, app *App, path string) error {
	var args []string
	if path != "" {
		args = []string{path}
	}
	def, err := loadSheet(app, args)
	if err != nil {
		return writeErr(cmd, err)
	}
	rows, err := def.LoadRows(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}

	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	key := def.Key()
	prefs := cfg.Sheet(key)
	var theme string
	var delay time.Duration
	if cfg.TUI != nil {
		theme = cfg.TUI.Theme
		delay = time.Duration(cfg.TUI.SearchDelayMS) * time.Millisecond
	}

	// Failing to record the recent list never blocks opening the sheet.
	if err := store.UpdateConfig(func(cfg *store.GlobalConfig) error {
		cfg.RememberSheet(def.Path(), time.Now())
		return nil
	}); err != nil {
		log.Warn("remember sheet", "err", err)
	}

	return tui.Run(tui.Options{
		Sheet:       def,
		Rows:        rows,
		Prefs:       prefs,
		Theme:       theme,
		SearchDelay: delay,
		SavePrefs: func(p store.SheetPrefs) error {
			return store.UpdateConfig(func(cfg *store.GlobalConfig) error {
				cfg.SetSheet(key, p)
				return nil
			})
		},
	})
}
