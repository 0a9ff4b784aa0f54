//go:generate mockgen -source=evaluator.go -destination=mocks/mock_evaluator.go -package=mocks

package orchestration

import (
	"context"
	"time"

	"github.com/agbru/bigcalc/internal/expr"
)

// Evaluation is a successfully evaluated line.
type Evaluation struct {
	Line       string
	Expression expr.Expression
	Result     expr.Result
	Duration   time.Duration
}

// Evaluator evaluates one expression line. Engine is the production
// implementation; the REPL, TUI, server and batch runner depend on this
// interface only.
type Evaluator interface {
	Evaluate(ctx context.Context, line string) (Evaluation, error)
}
