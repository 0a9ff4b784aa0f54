package ui

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme pairs the ANSI codes used by line-oriented output with the
// lipgloss palette of the TUI.
type Theme struct {
	Name string

	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string

	TUI TUITheme
}

// TUITheme holds the lipgloss colors of the interactive TUI. Each field is
// suitable for lipgloss.Style.Foreground and Background.
type TUITheme struct {
	Bg      lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

// Theme names accepted by -theme and BIGCALC_THEME.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeNone  = "none"
)

// ThemeNames lists the selectable themes, default first.
var ThemeNames = []string{ThemeDark, ThemeLight, ThemeNone}

const (
	ansiBold      = "\033[1m"
	ansiUnderline = "\033[4m"
	ansiReset     = "\033[0m"
)

// fg256 returns the escape code selecting color n of the 256-color palette.
func fg256(n int) string { return fmt.Sprintf("\033[38;5;%dm", n) }

// tuiPalette builds a TUITheme from hex colors in field order.
func tuiPalette(bg, text, border, accent, success, warning, errc, dim, info string) TUITheme {
	return TUITheme{
		Bg:      lipgloss.Color(bg),
		Text:    lipgloss.Color(text),
		Border:  lipgloss.Color(border),
		Accent:  lipgloss.Color(accent),
		Success: lipgloss.Color(success),
		Warning: lipgloss.Color(warning),
		Error:   lipgloss.Color(errc),
		Dim:     lipgloss.Color(dim),
		Info:    lipgloss.Color(info),
	}
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      ThemeDark,
		Primary:   fg256(39),
		Secondary: fg256(245),
		Success:   fg256(82),
		Warning:   fg256(220),
		Error:     fg256(196),
		Info:      fg256(141),
		Bold:      ansiBold,
		Underline: ansiUnderline,
		Reset:     ansiReset,
		TUI: tuiPalette("#000000", "#E0E0E0", "#00AFFF", "#5FD7FF",
			"#5FFF00", "#FFD700", "#FF0000", "#8A8A8A", "#AF87FF"),
	}

	// LightTheme uses darker shades readable on light backgrounds.
	LightTheme = Theme{
		Name:      ThemeLight,
		Primary:   fg256(27),
		Secondary: fg256(240),
		Success:   fg256(28),
		Warning:   fg256(130),
		Error:     fg256(124),
		Info:      fg256(54),
		Bold:      ansiBold,
		Underline: ansiUnderline,
		Reset:     ansiReset,
		TUI: tuiPalette("#FFFFFF", "#1C1C1C", "#005FFF", "#0087AF",
			"#008700", "#AF5F00", "#AF0000", "#585858", "#5F0087"),
	}

	// NoColorTheme emits no escape codes; the TUI keeps the terminal's
	// default colors.
	NoColorTheme = Theme{
		Name: ThemeNone,
		TUI: TUITheme{
			Bg:      lipgloss.NoColor{},
			Text:    lipgloss.NoColor{},
			Border:  lipgloss.NoColor{},
			Accent:  lipgloss.NoColor{},
			Success: lipgloss.NoColor{},
			Warning: lipgloss.NoColor{},
			Error:   lipgloss.NoColor{},
			Dim:     lipgloss.NoColor{},
			Info:    lipgloss.NoColor{},
		},
	}
)

// Aliases kept for callers that only need the TUI palettes.
var (
	DarkTUITheme    = DarkTheme.TUI
	LightTUITheme   = LightTheme.TUI
	NoColorTUITheme = NoColorTheme.TUI
)

var (
	themeMu      sync.RWMutex
	currentTheme = DarkTheme
)

// LookupTheme returns the theme called name.
func LookupTheme(name string) (Theme, bool) {
	switch name {
	case ThemeDark:
		return DarkTheme, true
	case ThemeLight:
		return LightTheme, true
	case ThemeNone:
		return NoColorTheme, true
	}
	return Theme{}, false
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// GetCurrentTUITheme returns the TUI palette of the active theme.
func GetCurrentTUITheme() TUITheme {
	return GetCurrentTheme().TUI
}

// SetCurrentTheme installs t. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = t
}

// SetTheme activates the theme called name. An unknown name leaves the
// active theme unchanged and returns an error.
func SetTheme(name string) error {
	t, ok := LookupTheme(name)
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	SetCurrentTheme(t)
	return nil
}

// InitTheme selects the theme for the process. noColor and a non-empty
// NO_COLOR variable (https://no-color.org/) win over name; an empty name
// selects the dark theme.
func InitTheme(name string, noColor bool) error {
	if noColor || os.Getenv("NO_COLOR") != "" {
		SetCurrentTheme(NoColorTheme)
		return nil
	}
	if name == "" {
		name = ThemeDark
	}
	return SetTheme(name)
}
