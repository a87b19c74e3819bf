package cli

import (
	"errors"

	"gridedit/internal/columns"
	"gridedit/internal/model"
	"gridedit/internal/sheet"
	"gridedit/internal/table"
	"gridedit/internal/validation"

	"github.com/spf13/cobra"
)

func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check [sheet]",
		Short: "Validate a sheet's columns, rules and rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadSheet(app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			report, err := checkSheet(cmd, def)
			if err != nil {
				data, ok := configErrorData(err)
				if !ok {
					return writeErr(cmd, err)
				}
				data["ok"] = false
				data["sheet"] = def.Key()
				if werr := writeOut(cmd, app, map[string]any{"data": data}); werr != nil {
					return werr
				}
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": report})
		},
	}
}

// checkSheet runs the same checks the grid does when it opens a sheet.
func checkSheet(cmd *cobra.Command, def *sheet.Definition) (map[string]any, error) {
	cols, err := def.BuildColumns()
	if err != nil {
		return nil, err
	}
	if err := columns.Validate(cols, columns.DefaultReserved); err != nil {
		return nil, err
	}
	rules, err := def.BuildRules()
	if err != nil {
		return nil, err
	}
	tbl, err := table.New(table.Options{TableID: def.TableID(), Columns: cols, Rules: rules})
	if err != nil {
		return nil, err
	}
	defer tbl.Close()

	report := map[string]any{
		"ok":      true,
		"sheet":   def.Key(),
		"columns": len(cols),
		"rules":   len(rules),
	}
	rows, err := def.LoadRows(cmd.Context())
	if errors.Is(err, sheet.ErrNoSource) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	if err := tbl.SetRows(rows); err != nil {
		return nil, err
	}
	validated := make([]model.ValidatedRow, 0, len(tbl.View()))
	for _, r := range tbl.View() {
		validated = append(validated, r.ValidatedRow)
	}
	invalid, warned := validation.Counts(validated)
	report["rows"] = len(rows)
	report["invalidRows"] = invalid
	report["warnedRows"] = warned
	return report, nil
}
