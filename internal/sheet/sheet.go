// Package sheet reads grid definitions: columns, validation rules, totals
// and where the rows come from.
package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridedit/internal/model"

	"gopkg.in/yaml.v3"
)

type Definition struct {
	ID      string           `yaml:"id"`
	Title   string           `yaml:"title,omitempty"`
	Columns []ColumnDef      `yaml:"columns"`
	Rules   []RuleDef        `yaml:"rules,omitempty"`
	Rows    string           `yaml:"rows,omitempty"`
	SQLite  *SQLiteSource    `yaml:"sqlite,omitempty"`
	Inline  []map[string]any `yaml:"data,omitempty"`

	path string
}

type ColumnDef struct {
	Field     string         `yaml:"field"`
	Header    string         `yaml:"header,omitempty"`
	Parent    string         `yaml:"parent,omitempty"`
	Hidden    bool           `yaml:"hidden,omitempty"`
	Clearable bool           `yaml:"clearable,omitempty"`
	Edit      string         `yaml:"edit,omitempty"`
	Symbol    bool           `yaml:"symbol,omitempty"`
	FreeText  bool           `yaml:"freeText,omitempty"`
	Options   []model.Option `yaml:"options,omitempty"`
	Format    string         `yaml:"format,omitempty"`
	Min       string         `yaml:"min,omitempty"`
	Max       string         `yaml:"max,omitempty"`
	Total     *TotalDef      `yaml:"total,omitempty"`
}

type TotalDef struct {
	Type string `yaml:"type"`
	// Where is a jq expression over the row; rows where it is false or null
	// are left out of the total.
	Where string `yaml:"where,omitempty"`
}

type RuleDef struct {
	Field string `yaml:"field"`
	Level string `yaml:"level"`
	// When is a jq expression with $value and $rows bound. A true result
	// reports Message; a string result is reported as the message itself.
	When    string `yaml:"when"`
	Message string `yaml:"message,omitempty"`
}

type SQLiteSource struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table,omitempty"`
	Query string `yaml:"query,omitempty"`
}

// Load reads a YAML definition file.
func Load(path string) (*Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.path = path
	return d, nil
}

// Parse decodes a YAML definition.
func Parse(b []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	if len(d.Columns) == 0 {
		return nil, model.ConfigErr("sheet has no columns")
	}
	return &d, nil
}

// Path is the file the definition was loaded from ("" when parsed from bytes).
func (d *Definition) Path() string { return d.path }

// Key identifies the sheet in user preferences.
func (d *Definition) Key() string {
	if d.ID != "" {
		return d.ID
	}
	if d.path != "" {
		if abs, err := filepath.Abs(d.path); err == nil {
			return abs
		}
		return d.path
	}
	return "sheet"
}

// TableID is the sheet id made safe for cell ids.
func (d *Definition) TableID() string {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path))
	}
	id = strings.NewReplacer("-", "_", " ", "_").Replace(id)
	if id == "" || id == "." {
		return "sheet"
	}
	return id
}

// DisplayTitle falls back to the id when no title is set.
func (d *Definition) DisplayTitle() string {
	if strings.TrimSpace(d.Title) != "" {
		return d.Title
	}
	return d.TableID()
}

// BuildColumns turns column definitions into model columns, compiling
// total predicates.
func (d *Definition) BuildColumns() ([]model.Column, error) {
	cols := make([]model.Column, 0, len(d.Columns))
	for _, cd := range d.Columns {
		spec, err := cd.editSpec()
		if err != nil {
			return nil, err
		}
		c := model.Column{
			Field:            cd.Field,
			HeaderName:       cd.Header,
			ParentHeaderName: cd.Parent,
			Hidden:           cd.Hidden,
			Clearable:        cd.Clearable,
			Edit:             spec,
		}
		if cd.Total != nil {
			t, err := cd.Total.build(cd.Field)
			if err != nil {
				return nil, err
			}
			c.Total = t
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func (cd ColumnDef) editSpec() (model.EditSpec, error) {
	switch strings.ToLower(strings.TrimSpace(cd.Edit)) {
	case "", "none", "readonly":
		return nil, nil
	case "text":
		return model.TextEdit{}, nil
	case "numeric", "number":
		return model.NumericEdit{}, nil
	case "currency":
		return model.CurrencyEdit{ShowSymbol: cd.Symbol}, nil
	case "lookup":
		return model.LookupEdit{Options: cd.Options, FreeText: cd.FreeText}, nil
	case "date":
		return model.DateEdit{Format: cd.Format, Min: cd.Min, Max: cd.Max}, nil
	default:
		return nil, model.ConfigErr(fmt.Sprintf("unknown edit type %q", cd.Edit), cd.Field)
	}
}

func (td *TotalDef) build(field string) (*model.TotalSpec, error) {
	typ := model.TotalType(strings.ToLower(strings.TrimSpace(td.Type)))
	if typ == "" {
		typ = model.TotalSum
	}
	if typ != model.TotalSum {
		return nil, model.ConfigErr(fmt.Sprintf("unknown total type %q", td.Type), field)
	}
	spec := &model.TotalSpec{Type: typ}
	if strings.TrimSpace(td.Where) == "" {
		return spec, nil
	}
	pred, err := compilePredicate(td.Where)
	if err != nil {
		return nil, model.ConfigErr(fmt.Sprintf("total where: %v", err), field)
	}
	spec.Predicate = pred
	return spec, nil
}

// BuildRules compiles rule definitions.
func (d *Definition) BuildRules() ([]model.ValidationRule, error) {
	rules := make([]model.ValidationRule, 0, len(d.Rules))
	for _, rd := range d.Rules {
		lvl, err := model.ParseLevel(strings.ToLower(strings.TrimSpace(rd.Level)))
		if err != nil {
			return nil, model.ConfigErr(err.Error(), rd.Field)
		}
		if strings.TrimSpace(rd.Field) == "" {
			return nil, model.ConfigErr("rule without field")
		}
		msg, err := compileRule(rd.When, rd.Message)
		if err != nil {
			return nil, model.ConfigErr(fmt.Sprintf("rule when: %v", err), rd.Field)
		}
		rules = append(rules, model.ValidationRule{Field: rd.Field, Level: lvl, Message: msg})
	}
	return rules, nil
}

// RowsPath resolves the rows file relative to the definition.
func (d *Definition) RowsPath() string {
	return d.resolve(d.Rows)
}

func (d *Definition) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || d.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(d.path), p)
}
