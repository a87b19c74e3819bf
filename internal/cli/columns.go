package cli

import (
	"gridedit/internal/columns"
	"gridedit/internal/model"
	"gridedit/internal/store"

	"github.com/spf13/cobra"
)

func newColumnsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List columns and change which ones the grid shows",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [sheet]",
		Short: "List columns with their visibility",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadSheet(app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			cols, err := def.BuildColumns()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": columnList(cols, cfg.Sheet(def.Key()))})
		},
	})
	cmd.AddCommand(newColumnVisibilityCmd(app, "hide", false))
	cmd.AddCommand(newColumnVisibilityCmd(app, "show", true))

	return cmd
}

func newColumnVisibilityCmd(app *App, verb string, visible bool) *cobra.Command {
	short := "Hide a column in the grid"
	if visible {
		short = "Show a column hidden with `columns hide`"
	}
	return &cobra.Command{
		Use:   verb + " <sheet> <field>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadSheet(app, args[:1])
			if err != nil {
				return writeErr(cmd, err)
			}
			cols, err := def.BuildColumns()
			if err != nil {
				return writeErr(cmd, err)
			}
			var prefs store.SheetPrefs
			err = store.UpdateConfig(func(cfg *store.GlobalConfig) error {
				prefs = cfg.Sheet(def.Key())
				if err := setColumnVisible(cols, &prefs, args[1], visible); err != nil {
					return err
				}
				cfg.SetSheet(def.Key(), prefs)
				return nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": columnList(cols, prefs)})
		},
	}
}

// setColumnVisible records a visibility override. Showing a column drops
// the override, so it cannot reveal a column the sheet itself hides.
func setColumnVisible(cols []model.Column, prefs *store.SheetPrefs, field string, visible bool) error {
	c, ok := columns.Find(cols, field)
	if !ok {
		return errNotFound("column", field)
	}
	if visible {
		if c.Hidden {
			return declaredHiddenError{field: field}
		}
		delete(prefs.Visibility, field)
		if len(prefs.Visibility) == 0 {
			prefs.Visibility = nil
		}
		return nil
	}
	prefs.SetVisible(field, false)
	if len(columns.Prepare(cols, prefs.Visibility)) == 0 {
		return model.ConfigErr("every column is hidden", field)
	}
	return nil
}

func columnList(cols []model.Column, prefs store.SheetPrefs) map[string]any {
	visible := map[string]bool{}
	for _, c := range columns.Prepare(cols, prefs.Visibility) {
		visible[c.Field] = true
	}
	out := make([]map[string]any, 0, len(cols))
	for _, c := range cols {
		entry := map[string]any{
			"field":    c.Field,
			"header":   c.Header(),
			"edit":     model.EditKind(c.Edit),
			"type":     columns.Classify(c).String(),
			"editable": c.Editable(),
			"visible":  visible[c.Field],
		}
		if c.ParentHeaderName != "" {
			entry["parent"] = c.ParentHeaderName
		}
		if c.Total != nil {
			entry["total"] = string(c.Total.Type)
		}
		out = append(out, entry)
	}
	return map[string]any{"columns": out, "hidden": prefs.HiddenFields()}
}
