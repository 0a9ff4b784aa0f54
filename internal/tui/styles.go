package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigcalc/internal/ui"
)

// Style variables for the calculator screen.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle       lipgloss.Style
	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	versionStyle     lipgloss.Style
	elapsedStyle     lipgloss.Style
	promptStyle      lipgloss.Style
	logTimeStyle     lipgloss.Style
	logExprStyle     lipgloss.Style
	logResultStyle   lipgloss.Style
	logErrorStyle    lipgloss.Style
	logDurationStyle lipgloss.Style
	metricLabelStyle lipgloss.Style
	metricValueStyle lipgloss.Style
	sparklineStyle   lipgloss.Style
	statusBusyStyle  lipgloss.Style
	statusIdleStyle  lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	elapsedStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	promptStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	logTimeStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	logExprStyle = lipgloss.NewStyle().
		Foreground(t.Info)

	logResultStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	logErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error)

	logDurationStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricLabelStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricValueStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	sparklineStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	statusBusyStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	statusIdleStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)
}
