package table

import (
	"sort"
	"strings"

	"gridedit/internal/columns"
	"gridedit/internal/format"
	"gridedit/internal/model"
	"gridedit/internal/navmap"
	"gridedit/internal/validation"
)

// memo caches one derived stage. The cached value is reused while the key
// compares equal; rev changes on every recompute so later stages can key
// on it.
type memo[K comparable, V any] struct {
	key K
	val V
	ok  bool
	rev int
}

func (c *memo[K, V]) get(key K, compute func() (V, error)) (V, bool, error) {
	if c.ok && c.key == key {
		return c.val, false, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.key, c.val, c.ok = key, v, true
	c.rev++
	return v, true, nil
}

type validateKey struct{ rows int }

type filterKey struct {
	validated int
	cols      int
	search    string
}

type sortKey struct {
	filtered int
	field    string
	desc     bool
}

type navKey struct {
	sorted int
	cols   int
}

// Stats counts recomputations per stage.
type Stats struct {
	Validations int
	Filters     int
	Sorts       int
	NavBuilds   int
}

// derive runs validation, filter, sort and the navigation map build in
// that order. Nothing is published unless every stage succeeds, so the
// map never describes a stale view.
func (m *Model) derive() error {
	validated, recomputed, err := m.validated.get(validateKey{m.rowsRev}, func() ([]model.ValidatedRow, error) {
		return validation.Run(m.rows, m.opts.Rules)
	})
	if err != nil {
		return err
	}
	if recomputed {
		m.stats.Validations++
	}

	fk := filterKey{validated: m.validated.rev, cols: m.colsRev, search: m.search}
	filtered, recomputed, err := m.filtered.get(fk, func() ([]ViewRow, error) {
		return filterRows(validated, m.cols, m.search)
	})
	if err != nil {
		return err
	}
	if recomputed {
		m.stats.Filters++
	}

	sk := sortKey{filtered: m.filtered.rev, field: m.sortBy, desc: m.sortDesc}
	sorted, recomputed, err := m.sorted.get(sk, func() ([]ViewRow, error) {
		return m.sortRows(filtered), nil
	})
	if err != nil {
		return err
	}
	if recomputed {
		m.stats.Sorts++
	}

	nk := navKey{sorted: m.sorted.rev, cols: m.colsRev}
	nav, recomputed, err := m.nav.get(nk, func() (*navmap.Map, error) {
		rows := make([]model.Row, len(sorted))
		for i, r := range sorted {
			rows[i] = r.Row
		}
		return navmap.Build(m.opts.TableID, rows, m.cols)
	})
	if err != nil {
		return err
	}
	if recomputed {
		m.stats.NavBuilds++
	}

	m.view = sorted
	m.navMap = nav
	m.totals = computeTotals(sorted, m.cols)
	m.syncCells()
	m.pruneSelection()
	logDerive(m)
	return nil
}

// filterRows keeps rows where any visible column contains q. Lookup columns
// match on the option label only; a value missing from a constrained
// option list is a LookupResolutionError.
func filterRows(rows []model.ValidatedRow, cols []model.Column, q string) ([]ViewRow, error) {
	out := make([]ViewRow, 0, len(rows))
	needle := strings.ToLower(strings.TrimSpace(q))
	for i, r := range rows {
		if needle == "" {
			out = append(out, ViewRow{ValidatedRow: r, Index: i})
			continue
		}
		match := false
		for _, c := range cols {
			text, err := searchText(r.Row, c)
			if err != nil {
				return nil, err
			}
			if !match && strings.Contains(strings.ToLower(text), needle) {
				match = true
			}
		}
		if match {
			out = append(out, ViewRow{ValidatedRow: r, Index: i})
		}
	}
	return out, nil
}

func searchText(r model.Row, c model.Column) (string, error) {
	v := r[c.Field]
	raw := format.Text(v)
	l, ok := c.Lookup()
	if !ok || len(l.Options) == 0 || raw == "" {
		return raw, nil
	}
	if o, ok := c.Option(raw); ok {
		return o.Label, nil
	}
	if l.FreeText {
		return raw, nil
	}
	return "", &model.LookupResolutionError{Field: c.Field, Value: v}
}

// sortRows orders rows by the sort column's display value using locale
// collation. Ties keep collection order in both directions.
func (m *Model) sortRows(rows []ViewRow) []ViewRow {
	out := append([]ViewRow(nil), rows...)
	if m.sortBy == "" {
		return out
	}
	col, ok := columns.Find(m.cols, m.sortBy)
	if !ok {
		col, _ = columns.Find(m.declared, m.sortBy)
	}
	keys := make([]string, len(out))
	for i, r := range out {
		keys[i] = format.Display(r.Row[col.Field], col)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		cmp := m.collator.CompareString(keys[ia], keys[ib])
		if m.sortDesc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return out[ia].Index < out[ib].Index
	})
	sorted := make([]ViewRow, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}
