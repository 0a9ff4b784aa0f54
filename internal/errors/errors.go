package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agbru/bigcalc/internal/biguint"
	"github.com/agbru/bigcalc/internal/expr"
)

// Process exit statuses reported by bigcalc.
const (
	ExitSuccess         = 0   // The expression was evaluated and printed.
	ExitErrorGeneric    = 1   // Any error not covered below (I/O, server failure).
	ExitErrorTimeout    = 2   // The evaluation exceeded -timeout.
	ExitErrorConfig     = 4   // Invalid flags, environment or .env values.
	ExitErrorParse      = 5   // The expression or one of its operands is malformed.
	ExitErrorArithmetic = 6   // Underflow or division by zero.
	ExitErrorCanceled   = 130 // Interrupted by SIGINT.
)

// ConfigError reports invalid user configuration.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError marks a failure that happened while evaluating an
// expression, keeping the underlying biguint or expr error as its cause.
type CalculationError struct {
	// Expression is the input line, possibly empty.
	Expression string
	Cause      error
}

func (e CalculationError) Error() string {
	if e.Expression == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Expression, e.Cause)
}

// Unwrap returns the cause so errors.Is can reach the biguint sentinels.
func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError reports an evaluation that ran past its deadline.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// Unwrap makes a TimeoutError match context.DeadlineExceeded.
func (e TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// ValidationError represents an input validation failure on a named field,
// such as a JSON request member.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps err with a formatted context message. It returns nil when
// err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err is a context cancellation or deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsParseError reports whether err comes from malformed input: a bad line
// shape, an unknown operator, an operand over the digit limit, or an operand
// that is not a decimal number.
func IsParseError(err error) bool {
	return errors.Is(err, biguint.ErrParse) ||
		errors.Is(err, expr.ErrSyntax) ||
		errors.Is(err, expr.ErrUnknownOperator) ||
		errors.Is(err, expr.ErrTooLarge)
}

// IsArithmeticError reports whether err is a subtraction underflow or a
// division by zero.
func IsArithmeticError(err error) bool {
	return errors.Is(err, biguint.ErrArithmetic)
}

// Kind names the error class for JSON responses and log fields.
func Kind(err error) string {
	var cfg ConfigError
	var val ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &cfg):
		return "config"
	case errors.As(err, &val):
		return "validation"
	case errors.Is(err, biguint.ErrUnderflow):
		return "underflow"
	case errors.Is(err, biguint.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, expr.ErrTooLarge):
		return "too_large"
	case IsParseError(err):
		return "parse"
	default:
		return "internal"
	}
}

// ExitCodeFor maps an error to the process exit status.
func ExitCodeFor(err error) int {
	var cfg ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfg):
		return ExitErrorConfig
	case IsParseError(err):
		return ExitErrorParse
	case IsArithmeticError(err):
		return ExitErrorArithmetic
	default:
		return ExitErrorGeneric
	}
}
