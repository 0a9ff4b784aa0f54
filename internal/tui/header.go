package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigcalc/internal/cli"
)

// HeaderModel renders the top bar: title, version, session time and
// whether an evaluation is running.
type HeaderModel struct {
	startTime time.Time
	now       time.Time
	version   string
	busy      bool
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	now := time.Now()
	return HeaderModel{
		startTime: now,
		now:       now,
		version:   version,
	}
}

// SetBusy marks an evaluation as running or finished.
func (h *HeaderModel) SetBusy(busy bool) {
	h.busy = busy
}

// Tick advances the session clock.
func (h *HeaderModel) Tick(t time.Time) {
	h.now = t
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "bigcalc"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	title := titleStyle.Render(titleText)
	pipe := versionStyle.Render(" | ")

	session := h.now.Sub(h.startTime).Truncate(time.Second)
	elapsed := elapsedStyle.Render(fmt.Sprintf("Session: %s", cli.FormatExecutionDuration(session)))

	status := statusIdleStyle.Render("READY")
	if h.busy {
		status = statusBusyStyle.Render("EVALUATING")
	}

	leftPart := title + pipe + elapsed
	innerWidth := max(h.width-2, 0)
	gap := max(innerWidth-lipgloss.Width(leftPart)-lipgloss.Width(status), 1)

	return headerStyle.Width(h.width).Render(leftPart + spaces(gap) + status)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
