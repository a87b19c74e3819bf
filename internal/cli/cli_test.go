package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gridedit/internal/store"
)

const testSheet = `
id: budget
title: Team budget
columns:
  - field: id
  - field: name
    edit: text
  - field: cost
    edit: currency
    total: {type: sum}
  - field: kind
    edit: lookup
    options:
      - {value: hw, label: Hardware}
      - {value: sw, label: Software}
  - field: note
    hidden: true
rules:
  - field: cost
    level: error
    when: '$value < 0'
    message: cost must not be negative
rows: rows.json
`

const testRows = `[
  {"id": 1, "name": "desk", "cost": 120, "kind": "hw"},
  {"id": 2, "name": "chair", "cost": -5, "kind": "hw"},
  {"id": 3, "name": "editor", "cost": 30, "kind": "sw"}
]`

// writeSheet writes the fixture sheet and its rows into a fresh directory
// and points the user config at another one.
func writeSheet(t *testing.T, sheetYAML string) string {
	t.Helper()
	t.Setenv("GRIDEDIT_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rows.json"), []byte(testRows), 0o644); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	path := filepath.Join(dir, "budget.yaml")
	if err := os.WriteFile(path, []byte(sheetYAML), 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustEnvelope(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: gridedit %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	return decodeEnvelope(t, stdout)
}

func decodeEnvelope(t *testing.T, stdout []byte) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s", err, stdout)
	}
	data, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected JSON envelope with a data object; got: %v", env)
	}
	return data
}

func TestCheck_ReportsRowsAndRules(t *testing.T) {
	path := writeSheet(t, testSheet)
	data := mustEnvelope(t, "check", path)
	want := map[string]any{
		"ok":          true,
		"sheet":       "budget",
		"columns":     float64(5),
		"rules":       float64(1),
		"rows":        float64(3),
		"invalidRows": float64(1),
		"warnedRows":  float64(0),
	}
	if !reflect.DeepEqual(data, want) {
		t.Fatalf("unexpected report:\n got %#v\nwant %#v", data, want)
	}
}

func TestCheck_ConfigurationErrorNamesFields(t *testing.T) {
	bad := strings.Replace(testSheet, "  - field: note\n", "  - field: name\n", 1)
	path := writeSheet(t, bad)
	stdout, _, err := runCLI(t, []string{"check", path})
	if err == nil {
		t.Fatalf("expected duplicate field to fail the check")
	}
	data := decodeEnvelope(t, stdout)
	if data["ok"] != false || !reflect.DeepEqual(data["fields"], []any{"name"}) {
		t.Fatalf("unexpected report %#v", data)
	}
}

func TestView_SearchSortAndTotals(t *testing.T) {
	path := writeSheet(t, testSheet)

	stdout, _, err := runCLI(t, []string{"view", path, "--sort", "name", "--desc"})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	var env struct {
		Data struct {
			Columns []string `json:"columns"`
			Rows    []struct {
				ID     any                       `json:"id"`
				Errors map[string]map[string]any `json:"errors"`
			} `json:"rows"`
			Totals []struct {
				Field string  `json:"field"`
				Value float64 `json:"value"`
			} `json:"totals"`
		} `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, stdout)
	}
	if !reflect.DeepEqual(env.Data.Columns, []string{"id", "name", "cost", "kind"}) {
		t.Fatalf("hidden column should be left out, got %v", env.Data.Columns)
	}
	var ids []any
	for _, r := range env.Data.Rows {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []any{float64(3), float64(1), float64(2)}) {
		t.Fatalf("expected rows sorted by name descending, got %v", ids)
	}
	if msg := env.Data.Rows[2].Errors["cost"]["message"]; msg != "cost must not be negative" {
		t.Fatalf("expected cost error on chair, got %v", env.Data.Rows[2].Errors)
	}
	if len(env.Data.Totals) != 1 || env.Data.Totals[0].Value != 145 {
		t.Fatalf("unexpected totals %+v", env.Data.Totals)
	}

	data := mustEnvelope(t, "view", path, "--search", "Software")
	rows, _ := data["rows"].([]any)
	if len(rows) != 1 || rows[0].(map[string]any)["id"] != float64(3) {
		t.Fatalf("expected lookup label search to find the editor row, got %v", rows)
	}
}

func TestView_UnknownSortField(t *testing.T) {
	path := writeSheet(t, testSheet)
	_, stderr, err := runCLI(t, []string{"view", path, "--sort", "price"})
	if err == nil || !strings.Contains(string(stderr), "price") {
		t.Fatalf("expected unknown sort field error naming price, got %v / %s", err, stderr)
	}
}

func TestColumns_HideShow(t *testing.T) {
	path := writeSheet(t, testSheet)

	mustEnvelope(t, "columns", "hide", path, "kind")
	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Sheet("budget").HiddenFields(); !reflect.DeepEqual(got, []string{"kind"}) {
		t.Fatalf("expected kind hidden, got %v", got)
	}

	data := mustEnvelope(t, "view", path)
	if !reflect.DeepEqual(data["columns"], []any{"id", "name", "cost"}) {
		t.Fatalf("view should honor hidden columns, got %v", data["columns"])
	}
	data = mustEnvelope(t, "view", path, "--all-columns")
	if !reflect.DeepEqual(data["columns"], []any{"id", "name", "cost", "kind"}) {
		t.Fatalf("--all-columns should ignore saved visibility, got %v", data["columns"])
	}

	data = mustEnvelope(t, "columns", "show", path, "kind")
	if !reflect.DeepEqual(data["hidden"], []any{}) {
		t.Fatalf("expected no overrides after show, got %v", data["hidden"])
	}

	list := mustEnvelope(t, "columns", "list", path)
	cols, _ := list["columns"].([]any)
	if len(cols) != 5 {
		t.Fatalf("expected every declared column, got %v", cols)
	}
	note := cols[4].(map[string]any)
	if note["field"] != "note" || note["visible"] != false || note["edit"] != "none" {
		t.Fatalf("unexpected note column %v", note)
	}
}

func TestColumns_Errors(t *testing.T) {
	path := writeSheet(t, testSheet)

	_, _, err := runCLI(t, []string{"columns", "hide", path, "price"})
	var nf notFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"columns", "show", path, "note"})
	var dh declaredHiddenError
	if !errors.As(err, &dh) {
		t.Fatalf("expected declared hidden error, got %v", err)
	}

	for _, f := range []string{"id", "name", "cost"} {
		mustEnvelope(t, "columns", "hide", path, f)
	}
	if _, _, err := runCLI(t, []string{"columns", "hide", path, "kind"}); err == nil {
		t.Fatalf("expected hiding the last column to fail")
	}
}

func TestSheetArg_FallsBackToFlagThenRecent(t *testing.T) {
	t.Setenv("GRIDEDIT_CONFIG_DIR", t.TempDir())

	if _, err := sheetArg(&App{}, nil); err == nil {
		t.Fatalf("expected an error without any sheet")
	}
	if got, _ := sheetArg(&App{SheetPath: "flag.yaml"}, []string{"arg.yaml"}); got != "arg.yaml" {
		t.Fatalf("argument should win, got %q", got)
	}
	if got, _ := sheetArg(&App{SheetPath: "flag.yaml"}, nil); got != "flag.yaml" {
		t.Fatalf("--sheet should be used, got %q", got)
	}

	err := store.UpdateConfig(func(cfg *store.GlobalConfig) error {
		cfg.Recent = []store.RecentSheet{{Path: "/tmp/recent.yaml"}}
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if got, _ := sheetArg(&App{}, nil); got != "/tmp/recent.yaml" {
		t.Fatalf("expected the recent sheet, got %q", got)
	}
}

func TestDocs(t *testing.T) {
	data := mustEnvelope(t, "docs")
	topics, _ := data["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics, got %v", data)
	}

	stdout, _, err := runCLI(t, []string{"docs", "keys", "--raw"})
	if err != nil || !strings.Contains(string(stdout), "ctrl+s") {
		t.Fatalf("expected raw keys topic, got %v\n%s", err, stdout)
	}

	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown topic to fail")
	}
}

func TestFormatEDN(t *testing.T) {
	t.Setenv("GRIDEDIT_CONFIG_DIR", t.TempDir())
	stdout, _, err := runCLI(t, []string{"--format", "edn", "docs"})
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "{:data {:topics [") {
		t.Fatalf("unexpected edn output %q", stdout)
	}
}

func TestUnknownFormatFailsBeforeRunning(t *testing.T) {
	path := writeSheet(t, testSheet)
	stdout, _, err := runCLI(t, []string{"--format", "xml", "check", path})
	if err == nil || !strings.Contains(err.Error(), "json or edn") {
		t.Fatalf("expected unknown format error listing formats, got %v", err)
	}
	if len(stdout) != 0 {
		t.Fatalf("expected no output, got %s", stdout)
	}
}
