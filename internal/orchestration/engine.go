package orchestration

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/history"
	"github.com/agbru/bigcalc/internal/logging"
	"github.com/agbru/bigcalc/internal/metrics"
	"github.com/agbru/bigcalc/internal/tracing"
)

// Engine is the production Evaluator.
type Engine struct {
	logger    logging.Logger
	metrics   MetricsRecorder
	tracer    trace.Tracer
	history   HistoryStore
	maxDigits int
	timeout   time.Duration
	slots     *semaphore.Weighted
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Evaluations are logged at debug level.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records every evaluation on m.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithHistory appends every finished evaluation, successful or not, to h.
func WithHistory(h HistoryStore) Option {
	return func(e *Engine) { e.history = h }
}

// WithMaxDigits rejects operands longer than n digits. Zero disables the
// limit.
func WithMaxDigits(n int) Option {
	return func(e *Engine) { e.maxDigits = n }
}

// WithTimeout bounds each evaluation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithConcurrencyLimit caps the arithmetic running at once to n
// evaluations. A slot is held until the arithmetic finishes, even when the
// caller has already given up on it. Waiting for a slot counts against the timeout. Zero disables the cap.
func WithConcurrencyLimit(n int) Option {
	return func(e *Engine) {
		e.slots = nil
		if n > 0 {
			e.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewEngine returns an Engine with a no-op logger, the global tracer and no
// metrics or history.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NopLogger(),
		tracer: tracing.Tracer(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type evalOutcome struct {
	result expr.Result
	err    error
}

// Evaluate parses and evaluates line. The returned error is the parse,
// arithmetic or context error itself so callers can classify it with
// errors.Is.
func (e *Engine) Evaluate(ctx context.Context, line string) (Evaluation, error) {
	ctx, span := e.tracer.Start(ctx, "bigcalc.evaluate")
	defer span.End()

	if e.metrics != nil {
		e.metrics.IncActive()
		defer e.metrics.DecActive()
	}

	start := e.now()
	ev := Evaluation{Line: line}

	x, err := expr.ParseWithLimit(line, e.maxDigits)
	if err == nil {
		ev.Expression = x
		ev.Result, err = e.run(ctx, x)
	}
	ev.Duration = e.now().Sub(start)

	op := "unknown"
	digits := 0
	if x.Op != 0 {
		op = x.Op.Name()
		digits = max(x.Left.Len(), x.Right.Len())
	}
	status := statusFor(err)

	if e.metrics != nil {
		e.metrics.ObserveEvaluation(op, status, ev.Duration, digits)
	}

	span.SetAttributes(
		attribute.String("bigcalc.op", op),
		attribute.Int("bigcalc.operand_digits", digits),
		attribute.String("bigcalc.status", status),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.Kind(err))
		e.logger.Debug("evaluation failed",
			logging.String("op", op),
			logging.String("status", status),
			logging.Duration("duration", ev.Duration),
			logging.Err(err))
	} else {
		e.logger.Debug("evaluation finished",
			logging.String("op", op),
			logging.Int("digits", digits),
			logging.Duration("duration", ev.Duration))
	}

	e.record(ctx, ev, err)
	return ev, err
}

// run evaluates x, giving up when ctx ends or the engine timeout elapses.
// The arithmetic itself is not interruptible; an abandoned goroutine
// finishes on its own, releases its slot and its result is dropped.
func (e *Engine) run(ctx context.Context, x expr.Expression) (expr.Result, error) {
	if err := ctx.Err(); err != nil {
		return expr.Result{}, err
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if e.slots != nil {
		if err := e.slots.Acquire(ctx, 1); err != nil {
			return expr.Result{}, e.contextError(ctx, x)
		}
	}
	release := func() {
		if e.slots != nil {
			e.slots.Release(1)
		}
	}

	if ctx.Done() == nil {
		defer release()
		return x.Eval()
	}

	done := make(chan evalOutcome, 1)
	go func() {
		defer release()
		r, err := x.Eval()
		done <- evalOutcome{result: r, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return expr.Result{}, e.contextError(ctx, x)
	}
}

// contextError converts the end of ctx into the error returned to callers.
func (e *Engine) contextError(ctx context.Context, x expr.Expression) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && e.timeout > 0 {
		return apperrors.TimeoutError{Operation: x.Op.Name(), Limit: e.timeout}
	}
	return ctx.Err()
}

func (e *Engine) record(ctx context.Context, ev Evaluation, err error) {
	if e.history == nil {
		return
	}
	rec := history.Record{Expression: ev.Line, Duration: ev.Duration}
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.Result = ev.Result.WithRemainder()
	}
	// History must not fail an evaluation that already succeeded.
	if _, herr := e.history.Append(context.WithoutCancel(ctx), rec); herr != nil {
		e.logger.Error("history append failed", herr)
	}
}

func statusFor(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case apperrors.IsContextError(err):
		if errors.Is(err, context.Canceled) {
			return metrics.StatusCanceled
		}
		return metrics.StatusTimeout
	case apperrors.IsParseError(err):
		return metrics.StatusParseError
	case apperrors.IsArithmeticError(err):
		return metrics.StatusArithError
	default:
		return metrics.StatusError
	}
}
