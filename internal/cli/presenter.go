package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/orchestration"
)

// CLIResultPresenter prints evaluations and errors for the command line.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentEvaluation prints ev as plain text or JSON.
func (CLIResultPresenter) PresentEvaluation(ev orchestration.Evaluation, opts orchestration.PresentationOptions, out io.Writer) {
	if opts.JSON {
		_ = DisplayJSONResult(out, ev)
		return
	}
	DisplayQuietResult(out, ev, opts.Remainder)
}

// HandleError prints err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// CLIProgressReporter shows batch progress as a spinner with a bar on a
// terminal.
type CLIProgressReporter struct {
	mu      sync.Mutex
	spinner Spinner
	out     io.Writer
}

var _ orchestration.ProgressReporter = (*CLIProgressReporter)(nil)

// NewCLIProgressReporter returns a reporter drawing on out. Call Stop once
// the batch is done.
func NewCLIProgressReporter(out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{out: out}
}

// ReportProgress updates the spinner suffix, starting the spinner on the
// first call.
func (p *CLIProgressReporter) ReportProgress(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner == nil {
		p.spinner = newSpinner(spinner.WithWriter(p.out))
		p.spinner.Start()
	}
	frac := 0.0
	if total > 0 {
		frac = float64(done) / float64(total)
	}
	p.spinner.UpdateSuffix(fmt.Sprintf(" %s %d/%d", progressBar(frac, ProgressBarWidth), done, total))
}

// Stop removes the spinner.
func (p *CLIProgressReporter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}
