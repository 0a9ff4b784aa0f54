package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/bigcalc/internal/metrics"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/sysmon"
)

// EvaluationMsg carries the outcome of one evaluation back to the model.
type EvaluationMsg struct {
	Line       string
	Evaluation orchestration.Evaluation
	Err        error
	At         time.Time
}

// TickMsg drives the session clock and memory sampling.
type TickMsg time.Time

// MemoryMsg carries a runtime memory snapshot.
type MemoryMsg metrics.MemorySnapshot

// HostLoadMsg carries a host-wide CPU and memory sample.
type HostLoadMsg sysmon.Load

// ContextCancelledMsg is sent once the parent context is done.
type ContextCancelledMsg struct {
	Err error
}

// tickInterval is the refresh period of the header and metrics panel.
const tickInterval = 500 * time.Millisecond

// evaluateCmd runs ev off the UI goroutine.
func evaluateCmd(ctx context.Context, ev orchestration.Evaluator, line string) tea.Cmd {
	return func() tea.Msg {
		res, err := ev.Evaluate(ctx, line)
		return EvaluationMsg{Line: line, Evaluation: res, Err: err, At: time.Now()}
	}
}

// tickCmd returns a command that sends a TickMsg after tickInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemoryCmd reads runtime memory stats and returns a MemoryMsg.
func sampleMemoryCmd(mc *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		return MemoryMsg(mc.Snapshot())
	}
}

// sampleHostCmd reads host load. Failed samples are dropped.
func sampleHostCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		l, err := sysmon.Sample(ctx)
		if err != nil {
			return nil
		}
		return HostLoadMsg(l)
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
