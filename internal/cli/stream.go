package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/orchestration"
)

// maxStreamLine bounds the length of one input line in a batch.
const maxStreamLine = 64 << 20

// StreamConfig controls EvaluateStream.
type StreamConfig struct {
	// Concurrency is the number of evaluations in flight.
	Concurrency int
	// Remainder prints "/" results as "<quotient> r <remainder>".
	Remainder bool
	// JSON prints one JSON object per result.
	JSON bool
	// Errors receives one message per failing line. Nil discards them.
	Errors io.Writer
	// Progress is notified as lines complete. Nil disables reporting.
	Progress orchestration.ProgressReporter
}

// EvaluateStream evaluates every expression line read from in and prints
// the results to out in input order. Blank lines and '#' comments are
// skipped. It returns the exit code of the first failing line, or
// apperrors.ExitSuccess, and an error only if in cannot be read.
func EvaluateStream(ctx context.Context, ev orchestration.Evaluator, in io.Reader, out io.Writer, cfg StreamConfig) (int, error) {
	var (
		lines   []string
		lineNos []int
	)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	for n := 1; scanner.Scan(); n++ {
		if line := scanner.Text(); orchestration.IsBatchLine(line) {
			lines = append(lines, line)
			lineNos = append(lineNos, n)
		}
	}
	if err := scanner.Err(); err != nil {
		return apperrors.ExitErrorGeneric, fmt.Errorf("reading input: %w", err)
	}

	errOut := cfg.Errors
	if errOut == nil {
		errOut = io.Discard
	}

	code := apperrors.ExitSuccess
	presenter := CLIResultPresenter{}
	opts := orchestration.PresentationOptions{Remainder: cfg.Remainder, JSON: cfg.JSON}
	for _, res := range orchestration.EvaluateBatch(ctx, ev, lines, cfg.Concurrency, cfg.Progress) {
		if res.Err != nil {
			fmt.Fprintf(errOut, "line %d: ", lineNos[res.Index])
			if c := presenter.HandleError(calculationError(lines[res.Index], res.Err), 0, errOut); code == apperrors.ExitSuccess {
				code = c
			}
			continue
		}
		presenter.PresentEvaluation(res.Evaluation, opts, out)
	}
	return code, nil
}
