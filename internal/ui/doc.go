// Package ui holds the colour themes shared by the REPL, the batch output
// and the TUI. Themes are ANSI escape codes for plain terminal output and
// lipgloss colours for the TUI; NO_COLOR and -no-color select the
// colourless theme.
package ui
