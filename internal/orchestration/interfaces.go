package orchestration

import (
	"context"
	"io"
	"time"

	"github.com/agbru/bigcalc/internal/history"
)

// MetricsRecorder receives one observation per evaluation. It is satisfied
// by *metrics.Recorder.
type MetricsRecorder interface {
	ObserveEvaluation(op, status string, d time.Duration, digits int)
	IncActive()
	DecActive()
}

// HistoryStore persists finished evaluations. It is satisfied by
// *history.Store.
type HistoryStore interface {
	Append(ctx context.Context, rec history.Record) (history.Record, error)
}

// PresentationOptions controls how a result is rendered.
type PresentationOptions struct {
	// Remainder prints "/" results as "<quotient> r <remainder>".
	Remainder bool
	Quiet     bool
	JSON      bool
}

// ResultPresenter renders evaluations. The cli package provides the
// terminal implementation.
type ResultPresenter interface {
	PresentEvaluation(ev Evaluation, opts PresentationOptions, out io.Writer)
}

// ErrorHandler prints a failed evaluation and returns its exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// ProgressReporter is told how many batch lines have finished. It may be
// called from several goroutines.
type ProgressReporter interface {
	ReportProgress(done, total int)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(done, total int)

func (f ProgressReporterFunc) ReportProgress(done, total int) { f(done, total) }

// NullProgressReporter discards progress.
type NullProgressReporter struct{}

func (NullProgressReporter) ReportProgress(int, int) {}
