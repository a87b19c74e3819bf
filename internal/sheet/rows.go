package sheet

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridedit/internal/model"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

var (
	// ErrNoSource is returned when a definition names no row source.
	ErrNoSource = errors.New("sheet has no row source")
	// ErrReadOnlySource is returned when saving rows that came from SQLite or
	// from the definition itself.
	ErrReadOnlySource = errors.New("row source is read-only")
)

// LoadRows reads rows from the definition's source: inline data, a JSON or
// JSONL file, or a SQLite table.
func (d *Definition) LoadRows(ctx context.Context) ([]model.Row, error) {
	switch {
	case d.SQLite != nil:
		src := *d.SQLite
		src.Path = d.resolve(src.Path)
		log.Debug("loading rows", "sqlite", src.Path, "table", src.Table)
		return LoadSQLite(ctx, src)
	case d.Rows != "":
		p := d.RowsPath()
		log.Debug("loading rows", "file", p)
		return LoadFile(p)
	case d.Inline != nil:
		rows := make([]model.Row, len(d.Inline))
		for i, r := range d.Inline {
			rows[i] = normalizeRow(r)
		}
		return rows, nil
	default:
		return nil, ErrNoSource
	}
}

// LoadFile reads a JSON array of objects, or one object per line when the
// file ends in .jsonl or .ndjson.
func LoadFile(path string) ([]model.Row, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return parseJSONL(b)
	default:
		return parseJSON(b)
	}
}

// Writable reports whether SaveRows can write to the row source.
func (d *Definition) Writable() bool {
	return d.Rows != "" && d.SQLite == nil
}

// SaveRows writes rows back to the definition's rows file, in the format the
// file was read in.
func (d *Definition) SaveRows(rows []model.Row) error {
	if !d.Writable() {
		return ErrReadOnlySource
	}
	p := d.RowsPath()
	log.Debug("saving rows", "file", p, "rows", len(rows))
	return SaveFile(p, rows)
}

// SaveFile writes rows as a JSON array, or as JSON lines for .jsonl and
// .ndjson paths. The file is replaced atomically.
func SaveFile(path string, rows []model.Row) error {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		enc := json.NewEncoder(&buf)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	default:
		if rows == nil {
			rows = []model.Row{}
		}
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".rows-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func parseJSON(b []byte) ([]model.Row, error) {
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows := make([]model.Row, len(raw))
	for i, r := range raw {
		rows[i] = normalizeRow(r)
	}
	return rows, nil
}

func parseJSONL(b []byte) ([]model.Row, error) {
	var rows []model.Row
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var r map[string]any
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, fmt.Errorf("rows line %d: %w", line, err)
		}
		rows = append(rows, normalizeRow(r))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadSQLite reads every row of a table, or the rows of a custom query.
func LoadSQLite(ctx context.Context, src SQLiteSource) ([]model.Row, error) {
	if strings.TrimSpace(src.Path) == "" {
		return nil, model.ConfigErr("sqlite source without path")
	}
	query := strings.TrimSpace(src.Query)
	if query == "" {
		if strings.TrimSpace(src.Table) == "" {
			return nil, model.ConfigErr("sqlite source needs a table or a query")
		}
		query = "SELECT * FROM " + quoteIdent(src.Table)
	}
	if _, err := os.Stat(src.Path); err != nil {
		return nil, err
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", src.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rs, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rs.Close()

	names, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	var rows []model.Row
	for rs.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(map[string]any, len(names))
		for i, n := range names {
			r[n] = vals[i]
		}
		rows = append(rows, normalizeRow(r))
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// normalizeRow maps driver and decoder types onto the plain value types the
// grid works with.
func normalizeRow(r map[string]any) model.Row {
	out := make(model.Row, len(r))
	for k, v := range r {
		out[k] = jqValue(v)
	}
	return out
}
