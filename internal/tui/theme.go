package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The grid has to stay readable on light and dark backgrounds, so colors
// are adaptive and faint styling is only used on dark terminals.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted     = ac("240", "243")
	colorSurfaceFg = ac("235", "252")
	colorControlBg = ac("252", "235")
	colorInputBg   = ac("254", "234")
	colorAccent    = ac("27", "62")
	colorAccentFg  = ac("255", "235")

	colorActiveBg   = ac("#e9e9e9", "#262626")
	colorActiveFg   = ac("235", "255")
	colorSelectedFg = ac("27", "111")
	colorHeaderFg   = ac("240", "245")

	colorError    = ac("160", "203")
	colorWarning  = ac("130", "214")
	colorPositive = ac("28", "114")
	colorNegative = ac("160", "203")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference picks the Lip Gloss color profile for the
// grid. Only NO_COLOR or the "plain" theme turn colors off; CLICOLOR is
// for piped output.
func applyColorProfilePreference(theme string) {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" || strings.EqualFold(strings.TrimSpace(theme), "plain") {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case profile == termenv.Ascii:
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		profile = termenv.TrueColor
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// themeName resolves the light/dark preference: GRIDEDIT_TUI_THEME wins over
// the configured theme, then COLORFGBG is consulted. "" means let Lip Gloss
// detect it.
func themeName(configured string) string {
	for _, v := range []string{os.Getenv("GRIDEDIT_TUI_THEME"), configured} {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "light":
			return "light"
		case "dark":
			return "dark"
		}
	}
	// COLORFGBG is "fg;bg"; xterm palette entries 7 and up are light.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	return ""
}

func applyThemePreference(configured string) {
	switch themeName(configured) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}
}
