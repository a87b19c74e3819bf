package table

import (
	"gridedit/internal/format"
	"gridedit/internal/model"
)

// Total is the aggregate shown under a column.
type Total struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
	// Filtered is set when the column's predicate left out at least one row.
	Filtered bool `json:"filtered"`
}

func computeTotals(rows []ViewRow, cols []model.Column) []Total {
	var out []Total
	for _, c := range cols {
		if c.Total == nil {
			continue
		}
		t := Total{Field: c.Field}
		for _, r := range rows {
			if c.Total.Predicate != nil && !c.Total.Predicate(r.Row) {
				t.Filtered = true
				continue
			}
			if f, ok := format.ToFloat(format.ParseEdited(format.Text(r.Row[c.Field]), c)); ok {
				t.Value += f
			}
		}
		showSymbol := false
		if spec, ok := c.Edit.(model.CurrencyEdit); ok {
			showSymbol = spec.ShowSymbol
		}
		t.Text = format.Currency(t.Value, showSymbol)
		out = append(out, t)
	}
	return out
}
