package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gridedit/internal/format"
	"gridedit/internal/model"
	"gridedit/internal/sheet"
	"gridedit/internal/store"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type App struct {
	SheetPath  string
	PrettyJSON bool
	Format     string
	Debug      bool

	logFile *os.File
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "gridedit",
		Short:        "Edit tabular data in a terminal grid",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open a sheet in the interactive grid
  gridedit open budget.yaml

  # Shortcut for: gridedit open budget.yaml
  gridedit budget.yaml

  # Check a sheet definition without opening it
  gridedit check budget.yaml

  # Print the filtered, sorted rows with their validation messages
  gridedit view budget.yaml --search desk --sort cost --desc
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => reopen the last sheet, if there is one.
			if len(args) == 0 && (app.SheetPath != "" || hasRecentSheet()) {
				return runOpen(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := format.CheckFormat(app.Format); err != nil {
			return err
		}
		return app.initLogging(cmd.ErrOrStderr())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logFile != nil {
			err := app.logFile.Close()
			app.logFile = nil
			return err
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.SheetPath, "sheet", envOr("GRIDEDIT_SHEET", ""), "Sheet definition to use when no sheet argument is given")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("GRIDEDIT_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Write debug output to debug.log")

	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newCheckCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newColumnsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// initLogging sends debug logs to debug.log with --debug; otherwise only
// fatal errors reach stderr.
func (app *App) initLogging(stderr io.Writer) error {
	if !app.Debug {
		log.SetLevel(log.FatalLevel)
		log.SetOutput(stderr)
		return nil
	}
	f, err := os.OpenFile("debug.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	app.logFile = f
	log.SetOutput(f)
	log.SetTimeFormat(time.Kitchen)
	log.SetReportCaller(true)
	log.SetLevel(log.DebugLevel)
	log.Info("Logging to debug.log")
	return nil
}

// sheetArg picks the sheet to work on: the positional argument, then
// --sheet, then the most recently opened sheet.
func sheetArg(app *App, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if app.SheetPath != "" {
		return app.SheetPath, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return "", err
	}
	if len(cfg.Recent) > 0 {
		return cfg.Recent[0].Path, nil
	}
	return "", errors.New("no sheet given; pass a sheet file (or --sheet / GRIDEDIT_SHEET)")
}

func hasRecentSheet() bool {
	cfg, err := store.LoadConfig()
	return err == nil && len(cfg.Recent) > 0
}

func loadSheet(app *App, args []string) (*sheet.Definition, error) {
	path, err := sheetArg(app, args)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	log.Debug("loading sheet", "path", path)
	return sheet.Load(path)
}

// configErrorData describes a configuration error for the output envelope.
func configErrorData(err error) (map[string]any, bool) {
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) {
		return nil, false
	}
	fields := ce.Fields
	if fields == nil {
		fields = []string{}
	}
	return map[string]any{"reason": ce.Reason, "fields": fields}, true
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
