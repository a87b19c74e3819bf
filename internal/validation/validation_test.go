package validation

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"gridedit/internal/format"
	"gridedit/internal/model"
)

func greaterThan(limit float64, msg string) model.MessageFunc {
	return func(v any, _ []model.Row) (string, bool) {
		f, ok := format.ToFloat(v)
		if ok && f > limit {
			return msg, true
		}
		return "", false
	}
}

func lessThan(limit float64, msg string) model.MessageFunc {
	return func(v any, _ []model.Row) (string, bool) {
		f, ok := format.ToFloat(v)
		if ok && f < limit {
			return msg, true
		}
		return "", false
	}
}

func TestRun_WarnAndError(t *testing.T) {
	t.Parallel()
	rows := []model.Row{{"id": 1, "foo": 11, "bar": 10}}
	rules := []model.ValidationRule{
		{Field: "foo", Level: model.LevelWarn, Message: greaterThan(10, "too big")},
		{Field: "bar", Level: model.LevelError, Message: lessThan(10, "too small")},
	}
	got, err := Run(rows, rules)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := map[string]model.Violation{"foo": {Field: "foo", Message: "too big"}}
	if !reflect.DeepEqual(got[0].Warnings, want) {
		t.Fatalf("warnings:\n got: %#v\nwant: %#v", got[0].Warnings, want)
	}
	if len(got[0].Errors) != 0 || !got[0].Valid() {
		t.Fatalf("expected no errors, got %#v", got[0].Errors)
	}
	if e, w := Counts(got); e != 0 || w != 1 {
		t.Fatalf("a warning alone should not count as invalid, got %d/%d", e, w)
	}
}

func TestRun_DuplicateSameLevelFails(t *testing.T) {
	t.Parallel()
	rows := []model.Row{{"id": 1, "foo": 11}}
	rules := []model.ValidationRule{
		{Field: "foo", Level: model.LevelError, Message: greaterThan(1, "a")},
		{Field: "foo", Level: model.LevelError, Message: greaterThan(2, "b")},
	}
	_, err := Run(rows, rules)
	if !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) || !reflect.DeepEqual(ce.Fields, []string{"foo"}) {
		t.Fatalf("expected duplicate field foo, got %v", err)
	}
}

func TestRun_SameFieldDifferentLevelsAllowed(t *testing.T) {
	t.Parallel()
	rows := []model.Row{{"id": 1, "foo": 50}}
	rules := []model.ValidationRule{
		{Field: "foo", Level: model.LevelWarn, Message: greaterThan(10, "high")},
		{Field: "foo", Level: model.LevelError, Message: greaterThan(40, "way too high")},
	}
	got, err := Run(rows, rules)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got[0].Warnings["foo"].Message != "high" || got[0].Errors["foo"].Message != "way too high" {
		t.Fatalf("unexpected annotations: %#v", got[0])
	}
}

func TestRun_NoRulesOrRowsIsNoop(t *testing.T) {
	t.Parallel()
	rows := []model.Row{{"id": 1, "foo": 11}}
	got, err := Run(rows, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 || got[0].Errors != nil || got[0].Warnings != nil {
		t.Fatalf("expected unannotated row, got %#v", got)
	}
	got, err = Run(nil, []model.ValidationRule{{Field: "foo", Message: greaterThan(1, "x")}})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %#v err=%v", got, err)
	}
}

func TestRun_AbsentFieldIgnored(t *testing.T) {
	t.Parallel()
	rows := []model.Row{{"id": 1, "foo": 11}}
	rules := []model.ValidationRule{{Field: "missing", Level: model.LevelError, Message: greaterThan(0, "x")}}
	got, err := Run(rows, rules)
	if err != nil {
		t.Fatalf("expected absent field to be ignored, got %v", err)
	}
	if len(got[0].Errors) != 0 {
		t.Fatalf("expected no errors, got %#v", got[0].Errors)
	}
}

func TestRun_CrossRowRule(t *testing.T) {
	t.Parallel()
	// The column sum must stay under 100.
	sumUnder := func(v any, rows []model.Row) (string, bool) {
		total := 0.0
		for _, r := range rows {
			f, _ := format.ToFloat(r["cost"])
			total += f
		}
		if total >= 100 {
			return fmt.Sprintf("total %v exceeds budget", total), true
		}
		return "", false
	}
	rows := []model.Row{{"id": 1, "cost": 60}, {"id": 2, "cost": 50}}
	got, err := Run(rows, []model.ValidationRule{{Field: "cost", Level: model.LevelError, Message: sumUnder}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range got {
		if _, ok := r.Error("cost"); !ok {
			t.Fatalf("expected every row to carry the budget error, got %#v", r)
		}
	}
	withErrors, withWarnings := Counts(got)
	if withErrors != 2 || withWarnings != 0 {
		t.Fatalf("expected counts 2/0, got %d/%d", withErrors, withWarnings)
	}
}
