package main

import (
	"os"
	"path/filepath"
	"strings"

	"gridedit/internal/cli"
)

func isSheetFile(s string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(s))) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// rewriteDirectSheetArgs turns `gridedit <sheet.yaml>` into
// `gridedit open <sheet.yaml>`. Cobra treats the first positional token as
// a subcommand, so the rewrite happens before parsing and has to look past
// persistent flags.
func rewriteDirectSheetArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--sheet":  true,
		"--format": true,
	}

	insertOpen := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "open")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isSheetFile(argv[i+1]) {
				return insertOpen(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			// Unknown flags are skipped without their value so a sheet path
			// is never swallowed.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isSheetFile(a) {
			return insertOpen(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectSheetArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
