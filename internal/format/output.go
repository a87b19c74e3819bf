package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formats lists the --format values Write accepts; the first is the default.
var Formats = []string{"json", "edn"}

// CheckFormat rejects an unsupported output format before any work is done.
func CheckFormat(name string) error {
	if name == "" {
		return nil
	}
	for _, f := range Formats {
		if f == name {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want %s)", name, strings.Join(Formats, " or "))
}

// Write renders a command result as json (also for "") or edn.
func Write(w io.Writer, v any, format string, pretty bool) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	if format == "edn" {
		return WriteEDN(w, v, pretty)
	}
	return WriteJSON(w, v, pretty)
}

// WriteJSON writes v and a trailing newline; pretty indents by two spaces.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
