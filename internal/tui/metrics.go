package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigcalc/internal/cli"
	"github.com/agbru/bigcalc/internal/metrics"
	"github.com/agbru/bigcalc/internal/sysmon"
)

// durationSamples is the number of evaluation times kept for the sparkline
// until the panel is sized; SetSize then fits it to the panel width.
const durationSamples = 32

// sparklineIndent is the width of the " Times: " prefix plus the panel
// border and padding.
const sparklineIndent = 12

// minDurationSamples keeps a short history on very narrow terminals.
const minDurationSamples = 8

// MetricsModel displays session statistics and runtime memory use.
type MetricsModel struct {
	mem       metrics.MemorySnapshot
	host      sysmon.Load
	hasHost   bool
	evaluated int
	failed    int
	last      time.Duration
	total     time.Duration
	durations *RingBuffer
	width     int
	height    int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{durations: NewRingBuffer(durationSamples)}
}

// SetSize updates dimensions and fits the duration history to the
// sparkline width.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.durations.Resize(max(w-sparklineIndent, minDurationSamples))
}

// UpdateMemory stores the latest memory snapshot.
func (m *MetricsModel) UpdateMemory(s metrics.MemorySnapshot) {
	m.mem = s
}

// UpdateHost stores the latest host load sample.
func (m *MetricsModel) UpdateHost(l sysmon.Load) {
	m.host = l
	m.hasHost = true
}

// RecordEvaluation counts one evaluation and samples its duration.
func (m *MetricsModel) RecordEvaluation(d time.Duration, failed bool) {
	m.evaluated++
	if failed {
		m.failed++
	}
	m.last = d
	m.total += d
	m.durations.Push(float64(d))
}

// Average returns the mean evaluation time, or 0 before the first one.
func (m MetricsModel) Average() time.Duration {
	if m.evaluated == 0 {
		return 0
	}
	return m.total / time.Duration(m.evaluated)
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	colWidth := max(m.width-4, 0)
	rows := []string{
		formatMetricCol("Evaluated:", fmt.Sprintf("%d (%d failed)", m.evaluated, m.failed), colWidth),
		formatMetricCol("Last:", cli.FormatExecutionDuration(m.last), colWidth),
		formatMetricCol("Average:", cli.FormatExecutionDuration(m.Average()), colWidth),
		formatMetricCol("Heap:", metrics.FormatBytes(m.mem.HeapAlloc)+" / "+metrics.FormatBytes(m.mem.HeapSys), colWidth),
		formatMetricCol("GC:", fmt.Sprintf("%d (%.1fms)", m.mem.NumGC, float64(m.mem.PauseTotalNs)/1e6), colWidth),
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.mem.Goroutines), colWidth),
	}
	if m.hasHost {
		rows = append(rows, formatMetricCol("Host:", m.host.String(), colWidth))
	}

	if samples := m.durations.Slice(); len(samples) > 0 {
		spark := RenderSparkline(Percentages(samples))
		rows = append(rows, " "+metricLabelStyle.Render("Times:")+" "+sparklineStyle.Render(spark))
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(strings.Join(rows, "\n"))
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-11s", label)),
		metricValueStyle.Render(value))
	// Pad to fixed column width using lipgloss-aware width
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}
