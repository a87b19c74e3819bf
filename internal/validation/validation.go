// Package validation applies warn/error rules to a row set.
package validation

import (
	"sort"

	"gridedit/internal/model"

	"github.com/charmbracelet/log"
)

// Run annotates every row with the violations reported by rules.
//
// At most one rule per field and level is allowed; a second one is a
// configuration error. With no rules or no rows the rows come back
// unannotated. Rules run against the full row set every time since a
// message may depend on other rows.
func Run(rows []model.Row, rules []model.ValidationRule) ([]model.ValidatedRow, error) {
	if err := checkDuplicates(rules); err != nil {
		return nil, err
	}

	out := make([]model.ValidatedRow, len(rows))
	for i, r := range rows {
		out[i] = model.ValidatedRow{Row: r}
	}
	if len(rules) == 0 || len(rows) == 0 {
		return out, nil
	}

	present := map[string]bool{}
	for _, r := range rows {
		for f := range r {
			present[f] = true
		}
	}

	for _, rule := range rules {
		if !present[rule.Field] {
			log.Warn("validation rule ignored: field not present in rows", "field", rule.Field, "level", rule.Level.String())
			continue
		}
		if rule.Message == nil {
			log.Warn("validation rule ignored: no message function", "field", rule.Field, "level", rule.Level.String())
			continue
		}
		for i := range out {
			v, ok := out[i].Row[rule.Field]
			if !ok {
				continue
			}
			msg, violated := rule.Message(v, rows)
			if !violated {
				continue
			}
			vio := model.Violation{Field: rule.Field, Message: msg}
			switch rule.Level {
			case model.LevelError:
				if out[i].Errors == nil {
					out[i].Errors = map[string]model.Violation{}
				}
				out[i].Errors[rule.Field] = vio
			default:
				if out[i].Warnings == nil {
					out[i].Warnings = map[string]model.Violation{}
				}
				out[i].Warnings[rule.Field] = vio
			}
		}
	}
	return out, nil
}

func checkDuplicates(rules []model.ValidationRule) error {
	type key struct {
		field string
		level model.Level
	}
	seen := map[key]int{}
	for _, r := range rules {
		seen[key{r.Field, r.Level}]++
	}
	var dups []string
	for k, n := range seen {
		if n > 1 {
			dups = append(dups, k.field)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return model.ConfigErr("more than one rule per field and level", dups...)
}

// Counts tallies rows carrying at least one error and at least one warning.
func Counts(rows []model.ValidatedRow) (withErrors, withWarnings int) {
	for _, r := range rows {
		if !r.Valid() {
			withErrors++
		}
		if len(r.Warnings) > 0 {
			withWarnings++
		}
	}
	return withErrors, withWarnings
}
