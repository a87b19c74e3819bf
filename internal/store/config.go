package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const maxRecentSheets = 10

type GlobalConfig struct {
	// Sheets holds per-sheet view preferences keyed by sheet id (or absolute
	// path for sheets without an id).
	Sheets map[string]*SheetPrefs `json:"sheets,omitempty"`

	// Recent lists recently opened sheet files, newest first.
	Recent []RecentSheet `json:"recent,omitempty"`

	// TUI holds optional user preferences for the interactive grid.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Theme is "light", "dark", "plain" (no colors) or empty to detect.
	Theme string `json:"theme,omitempty"`
	// SearchDelayMS overrides the search debounce.
	SearchDelayMS int `json:"searchDelayMs,omitempty"`
}

type SheetPrefs struct {
	Version int `json:"version"`

	// Visibility overrides the sheet's hidden flags per field.
	Visibility map[string]bool `json:"visibility,omitempty"`

	SortField string `json:"sortField,omitempty"`
	SortDesc  bool   `json:"sortDesc,omitempty"`

	// LastCell is the cell id that was active when the grid was closed.
	LastCell string `json:"lastCell,omitempty"`
}

type RecentSheet struct {
	Path       string `json:"path"`
	LastOpened string `json:"lastOpened,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.gridedit).
	if v := strings.TrimSpace(os.Getenv("GRIDEDIT_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gridedit"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config; failures here never block the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// Unique temp names so a CLI run and an open grid never clobber each other.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// Sheet returns a copy of the preferences stored for key.
func (cfg *GlobalConfig) Sheet(key string) SheetPrefs {
	p, ok := cfg.Sheets[key]
	if !ok || p == nil {
		return SheetPrefs{Version: 1}
	}
	out := *p
	if out.Version == 0 {
		out.Version = 1
	}
	if p.Visibility != nil {
		out.Visibility = make(map[string]bool, len(p.Visibility))
		for k, v := range p.Visibility {
			out.Visibility[k] = v
		}
	}
	return out
}

// SetSheet stores preferences for key.
func (cfg *GlobalConfig) SetSheet(key string, p SheetPrefs) {
	if cfg.Sheets == nil {
		cfg.Sheets = map[string]*SheetPrefs{}
	}
	if p.Version == 0 {
		p.Version = 1
	}
	cfg.Sheets[key] = &p
}

// SetVisible records a visibility override for one field.
func (p *SheetPrefs) SetVisible(field string, visible bool) {
	if p.Visibility == nil {
		p.Visibility = map[string]bool{}
	}
	p.Visibility[field] = visible
}

// HiddenFields lists fields overridden to hidden, sorted.
func (p SheetPrefs) HiddenFields() []string {
	out := []string{}
	for f, v := range p.Visibility {
		if !v {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// RememberSheet moves path to the front of the recent list.
func (cfg *GlobalConfig) RememberSheet(path string, now time.Time) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" || path == "." {
		return
	}
	next := []RecentSheet{{Path: path, LastOpened: now.UTC().Format(time.RFC3339)}}
	for _, r := range cfg.Recent {
		if r.Path == path {
			continue
		}
		next = append(next, r)
		if len(next) == maxRecentSheets {
			break
		}
	}
	cfg.Recent = next
}

// UpdateConfig loads the config, applies fn and saves the result.
func UpdateConfig(fn func(cfg *GlobalConfig) error) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return SaveConfig(cfg)
}
