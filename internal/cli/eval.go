package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/ui"
)

// PrintExecutionConfig displays the settings a batch runs with.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Evaluating %s%s%s with a timeout of %s%s%s per expression.\n",
		ui.ColorMagenta(), cfg.InputFile, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, %s%d%s parallel evaluations.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset(),
		ui.ColorCyan(), cfg.Concurrency, ui.ColorReset())
}

// EvaluateOne evaluates a single expression line and prints the result to
// out. Errors and notices go to status, where a spinner is also shown for
// slow evaluations when status is a terminal and config is not quiet. It
// returns the process exit code.
func EvaluateOne(ctx context.Context, ev orchestration.Evaluator, line string, out, status io.Writer, config OutputConfig) int {
	var (
		res orchestration.Evaluation
		err error
	)
	run := func() { res, err = ev.Evaluate(ctx, line) }
	if !config.Quiet && IsTerminal(status) {
		WithSpinner(status, SpinnerDelay, " evaluating...", run)
	} else {
		run()
	}

	presenter := CLIResultPresenter{}
	if err != nil {
		return presenter.HandleError(calculationError(line, err), res.Duration, status)
	}

	if config.Status == nil {
		config.Status = status
	}
	if err := DisplayResultWithConfig(out, res, config); err != nil {
		return presenter.HandleError(err, 0, status)
	}
	return apperrors.ExitSuccess
}

// calculationError attaches the input line, shortened like a huge result,
// to err so messages name the failing expression.
func calculationError(line string, err error) error {
	shown, _ := TruncateDigits(strings.TrimSpace(line))
	return apperrors.CalculationError{Expression: shown, Cause: err}
}
