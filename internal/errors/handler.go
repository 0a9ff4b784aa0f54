package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/bigcalc/internal/biguint"
)

// ColorProvider supplies terminal color codes. It keeps this package free of
// a dependency on the ui package.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// DefaultColorProvider returns empty codes, for non-terminal output.
type DefaultColorProvider struct{}

func (DefaultColorProvider) Red() string    { return "" }
func (DefaultColorProvider) Yellow() string { return "" }
func (DefaultColorProvider) Reset() string  { return "" }

// HandleCalculationError prints a message for a failed evaluation and
// returns the exit code for it. A nil colors uses DefaultColorProvider.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Error: evaluation timed out%s.\n", suffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sCanceled%s.%s\n", colors.Yellow(), suffix, colors.Reset())
	case ExitErrorParse:
		fmt.Fprintf(out, "%sParse error:%s %v\n", colors.Red(), colors.Reset(), err)
		var pe *biguint.ParseError
		if errors.As(err, &pe) && pe.Kind == biguint.ErrKindInvalidDigit {
			fmt.Fprintf(out, "Hint: operands are non-negative decimal integers; '_' and ',' may group digits.\n")
		}
	case ExitErrorArithmetic:
		fmt.Fprintf(out, "%sArithmetic error:%s %v\n", colors.Red(), colors.Reset(), err)
	default:
		fmt.Fprintf(out, "%sError:%s %v\n", colors.Red(), colors.Reset(), err)
	}
	return code
}
