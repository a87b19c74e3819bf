package cli

import (
	"gridedit/internal/format"
	"gridedit/internal/model"
	"gridedit/internal/store"
	"gridedit/internal/table"

	"github.com/spf13/cobra"
)

type viewRow struct {
	Index    int                        `json:"index"`
	ID       any                        `json:"id"`
	Row      model.Row                  `json:"row"`
	Display  map[string]string          `json:"display"`
	Errors   map[string]model.Violation `json:"errors,omitempty"`
	Warnings map[string]model.Violation `json:"warnings,omitempty"`
}

func newViewCmd(app *App) *cobra.Command {
	var (
		search  string
		sortBy  string
		desc    bool
		allCols bool
	)

	cmd := &cobra.Command{
		Use:   "view [sheet]",
		Short: "Print the derived view of a sheet (filtered, sorted, validated)",
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
			rules, err := def.BuildRules()
			if err != nil {
				return writeErr(cmd, err)
			}
			rows, err := def.LoadRows(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			var visibility map[string]bool
			if !allCols {
				cfg, err := store.LoadConfig()
				if err != nil {
					return writeErr(cmd, err)
				}
				visibility = cfg.Sheet(def.Key()).Visibility
			}

			tbl, err := table.New(table.Options{
				TableID:    def.TableID(),
				Columns:    cols,
				Visibility: visibility,
				Rules:      rules,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer tbl.Close()
			if err := tbl.SetRows(rows); err != nil {
				return writeErr(cmd, err)
			}
			if sortBy != "" {
				if err := tbl.SetSort(sortBy, desc); err != nil {
					return writeErr(cmd, err)
				}
			}
			if search != "" {
				if err := tbl.SetSearch(search); err != nil {
					return writeErr(cmd, err)
				}
			}

			visible := tbl.Columns()
			out := make([]viewRow, 0, len(tbl.View()))
			for _, r := range tbl.View() {
				display := make(map[string]string, len(visible))
				for _, c := range visible {
					display[c.Field] = format.Display(r.Row[c.Field], c)
				}
				out = append(out, viewRow{
					Index:    r.Index,
					ID:       r.Row.ID(),
					Row:      r.Row,
					Display:  display,
					Errors:   r.Errors,
					Warnings: r.Warnings,
				})
			}
			fields := make([]string, len(visible))
			for i, c := range visible {
				fields[i] = c.Field
			}
			totals := tbl.Totals()
			if totals == nil {
				totals = []table.Total{}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"columns": fields,
					"rows":    out,
					"totals":  totals,
				},
				"meta": map[string]any{
					"count":  len(out),
					"total":  len(rows),
					"search": tbl.Search(),
				},
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only rows with a visible cell containing this text")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by this field")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&allCols, "all-columns", false, "Ignore saved column visibility")

	return cmd
}
