package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/bigcalc/internal/cli"
	apperrors "github.com/agbru/bigcalc/internal/errors"
)

// maxLogEntries bounds the scrollback of the evaluation log.
const maxLogEntries = 500

// LogEntry is one evaluated line.
type LogEntry struct {
	At       time.Time
	Line     string
	Result   string
	Err      error
	Duration time.Duration
}

// LogModel is the scrollable evaluation log.
type LogModel struct {
	entries  []LogEntry
	viewport viewport.Model
	width    int
	height   int
}

// NewLogModel creates an empty log.
func NewLogModel() LogModel {
	return LogModel{viewport: viewport.New(0, 0)}
}

// SetSize updates the dimensions, keeping the border inside them.
func (l *LogModel) SetSize(w, h int) {
	l.width = w
	l.height = h
	l.viewport.Width = max(w-2, 0)
	l.viewport.Height = max(h-2, 0)
	l.refresh()
}

// Add appends an entry and scrolls to the end of the log.
func (l *LogModel) Add(e LogEntry) {
	l.entries = append(l.entries, e)
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[len(l.entries)-maxLogEntries:]
	}
	l.refresh()
}

// Entries returns the logged evaluations, oldest first.
func (l LogModel) Entries() []LogEntry {
	return l.entries
}

// Reset clears the log.
func (l *LogModel) Reset() {
	l.entries = nil
	l.refresh()
}

// Update forwards scrolling keys to the viewport.
func (l *LogModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

func (l *LogModel) refresh() {
	var b strings.Builder
	for i, e := range l.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderEntry(e))
	}
	if len(l.entries) == 0 {
		b.WriteString(logTimeStyle.Render("No evaluations yet. Try 18446744073709551616 * 18446744073709551616"))
	}
	l.viewport.SetContent(b.String())
	l.viewport.GotoBottom()
}

func renderEntry(e LogEntry) string {
	line := logTimeStyle.Render(e.At.Format("15:04:05")) + " " + logExprStyle.Render(e.Line)
	if e.Err != nil {
		return line + "\n  " + logErrorStyle.Render(apperrors.Kind(e.Err)+": "+e.Err.Error())
	}
	value, _ := cli.TruncateDigits(e.Result)
	return line + "\n  " + logResultStyle.Render("= "+value) + " " +
		logDurationStyle.Render("("+cli.FormatExecutionDuration(e.Duration)+")")
}

// View renders the log panel.
func (l LogModel) View() string {
	return panelStyle.
		Width(max(l.width-2, 0)).
		Height(max(l.height-2, 0)).
		Render(l.viewport.View())
}
