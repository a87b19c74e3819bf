// Package columns turns raw column declarations into the validated,
// indexed schema the rest of the grid works against.
package columns

import (
	"sort"
	"strconv"
	"strings"

	"gridedit/internal/model"
)

// DefaultReserved lists field names the host keeps for its own bookkeeping.
var DefaultReserved = []string{"__selected", "__validation"}

// Validate checks a column declaration set. All violations of the first
// failing check are reported together.
func Validate(cols []model.Column, reserved []string) error {
	if len(cols) == 0 {
		return model.ConfigErr("no columns declared")
	}

	var missing []string
	for i, c := range cols {
		if strings.TrimSpace(c.Field) == "" {
			// Columns without a field can only be named by position.
			missing = append(missing, "#"+strconv.Itoa(i))
		}
	}
	if len(missing) > 0 {
		return model.ConfigErr("columns without field", missing...)
	}

	hasID := false
	for _, c := range cols {
		if c.Field == model.IDField {
			hasID = true
			break
		}
	}
	if !hasID {
		return model.ConfigErr("missing id column", model.IDField)
	}

	reservedSet := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		reservedSet[r] = true
	}
	var collisions []string
	for _, c := range cols {
		if reservedSet[c.Field] {
			collisions = append(collisions, c.Field)
		}
	}
	if len(collisions) > 0 {
		return model.ConfigErr("fields collide with reserved names", collisions...)
	}

	seen := map[string]int{}
	for _, c := range cols {
		seen[c.Field]++
	}
	var dups []string
	for f, n := range seen {
		if n > 1 {
			dups = append(dups, f)
		}
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return model.ConfigErr("duplicate fields", dups...)
	}

	var withParent, withoutParent []string
	for _, c := range cols {
		if c.Hidden {
			continue
		}
		if strings.TrimSpace(c.ParentHeaderName) != "" {
			withParent = append(withParent, c.Field)
		} else {
			withoutParent = append(withoutParent, c.Field)
		}
	}
	if len(withParent) > 0 && len(withoutParent) > 0 {
		return model.ConfigErr("parentHeaderName must be set on all visible columns or none", withoutParent...)
	}
	return nil
}

// Prepare drops hidden columns (declared hidden, or visibility[field] == false),
// assigns Index in output order and builds lookup option indexes.
// The input slice is not modified.
func Prepare(cols []model.Column, visibility map[string]bool) []model.Column {
	out := make([]model.Column, 0, len(cols))
	for _, c := range cols {
		if c.Hidden {
			continue
		}
		if visible, ok := visibility[c.Field]; ok && !visible {
			continue
		}
		c.Index = len(out)
		c.OptionIndex = nil
		if l, ok := c.Lookup(); ok && len(l.Options) > 0 {
			idx := make(map[string]model.Option, len(l.Options))
			for _, o := range l.Options {
				if _, exists := idx[o.Value]; !exists {
					idx[o.Value] = o
				}
			}
			c.OptionIndex = idx
		}
		out = append(out, c)
	}
	return out
}

// Classify derives the cell type from the edit spec. Lookup wins over date.
func Classify(c model.Column) model.CellType {
	if l, ok := c.Edit.(model.LookupEdit); ok && len(l.Options) > 0 {
		return model.CellCombo
	}
	if _, ok := c.Edit.(model.DateEdit); ok {
		return model.CellDate
	}
	return model.CellText
}

// Find returns the prepared column with the given field.
func Find(cols []model.Column, field string) (model.Column, bool) {
	for _, c := range cols {
		if c.Field == field {
			return c, true
		}
	}
	return model.Column{}, false
}

// HasParentHeaders reports whether the prepared columns carry group labels.
func HasParentHeaders(cols []model.Column) bool {
	for _, c := range cols {
		if strings.TrimSpace(c.ParentHeaderName) != "" {
			return true
		}
	}
	return false
}
