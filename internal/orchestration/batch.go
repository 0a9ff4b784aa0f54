package orchestration

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one line of a batch. Results keep the order
// of the input lines.
type BatchResult struct {
	// Index is the zero-based position of the line in the input.
	Index      int
	Evaluation Evaluation
	Err        error
}

// IsBatchLine reports whether a line from an input file should be
// evaluated. Blank lines and lines starting with '#' are skipped.
func IsBatchLine(line string) bool {
	t := strings.TrimSpace(line)
	return t != "" && !strings.HasPrefix(t, "#")
}

// EvaluateBatch evaluates lines with at most concurrency evaluations in
// flight. A failing line does not stop the others; once ctx is done the
// remaining lines report the context error.
func EvaluateBatch(ctx context.Context, ev Evaluator, lines []string, concurrency int, progress ProgressReporter) []BatchResult {
	if concurrency < 1 {
		concurrency = 1
	}
	if progress == nil {
		progress = NullProgressReporter{}
	}

	results := make([]BatchResult, len(lines))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, line := range lines {
		g.Go(func() error {
			res := BatchResult{Index: i}
			if err := ctx.Err(); err != nil {
				res.Evaluation = Evaluation{Line: line}
				res.Err = err
			} else {
				res.Evaluation, res.Err = ev.Evaluate(ctx, line)
			}
			results[i] = res
			progress.ReportProgress(int(done.Add(1)), len(lines))
			return nil
		})
	}
	_ = g.Wait()

	return results
}
