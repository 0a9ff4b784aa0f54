package apperrors

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agbru/bigcalc/internal/biguint"
	"github.com/agbru/bigcalc/internal/expr"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	err := NewConfigError("invalid value %d for flag %s", -1, "-max-digits")
	if got, want := err.Error(), "invalid value -1 for flag -max-digits"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	var configErr ConfigError
	if !errors.As(WrapError(err, "loading"), &configErr) {
		t.Error("expected error to be ConfigError type")
	}
}

func TestCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         CalculationError
		expectedMsg string
		checkIs     error
	}{
		{
			name:        "Error returns cause message",
			err:         CalculationError{Cause: biguint.ErrUnderflow},
			expectedMsg: "biguint: subtraction underflow",
			checkIs:     biguint.ErrArithmetic,
		},
		{
			name:        "Error prefixes the expression",
			err:         CalculationError{Expression: "1 / 0", Cause: biguint.ErrDivisionByZero},
			expectedMsg: "1 / 0: biguint: division by zero",
			checkIs:     biguint.ErrDivisionByZero,
		},
		{
			name:        "errors.Is works with context errors",
			err:         CalculationError{Cause: context.Canceled},
			expectedMsg: "context canceled",
			checkIs:     context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, tt.err.Error())
			}
			if !errors.Is(tt.err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	var err error = TimeoutError{Operation: "evaluate", Limit: 500 * time.Millisecond}
	if got, want := err.Error(), `operation "evaluate" timed out after 500ms`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should match context.DeadlineExceeded")
	}
	var timeoutErr TimeoutError
	if !errors.As(CalculationError{Cause: err}, &timeoutErr) || timeoutErr.Limit != 500*time.Millisecond {
		t.Error("errors.As should find TimeoutError through CalculationError")
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	var err error = ValidationError{Field: "op", Message: "must be one of + - * / %"}
	if got, want := err.Error(), `validation error for "op": must be one of + - * / %`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil, ...) should return nil")
	}
	wrapped := WrapError(context.DeadlineExceeded, "line %d", 3)
	if wrapped.Error() != "line 3: context deadline exceeded" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Error("wrapped error should preserve the chain")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"context.Canceled", context.Canceled, true},
		{"context.DeadlineExceeded", context.DeadlineExceeded, true},
		{"wrapped context.Canceled", WrapError(context.Canceled, "operation canceled"), true},
		{"regular error", errors.New("some error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsContextError(tt.err); got != tt.expected {
				t.Errorf("IsContextError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func evalErr(t *testing.T, line string) error {
	t.Helper()
	_, err := expr.Evaluate(line)
	if err == nil {
		t.Fatalf("Evaluate(%q) should fail", line)
	}
	return err
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
		kind string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"malformed line", evalErr(t, "1 +"), ExitErrorParse, "parse"},
		{"unknown operator", evalErr(t, "1 ^ 2"), ExitErrorParse, "parse"},
		{"invalid digit", evalErr(t, "1x + 2"), ExitErrorParse, "parse"},
		{"too large", func() error { _, err := expr.ParseWithLimit("12345 + 1", 3); return err }(), ExitErrorParse, "too_large"},
		{"underflow", evalErr(t, "1 - 2"), ExitErrorArithmetic, "underflow"},
		{"division by zero", evalErr(t, "1 % 0"), ExitErrorArithmetic, "division_by_zero"},
		{"wrapped arithmetic", CalculationError{Cause: evalErr(t, "1 / 0")}, ExitErrorArithmetic, "division_by_zero"},
		{"timeout", TimeoutError{Operation: "evaluate", Limit: time.Second}, ExitErrorTimeout, "timeout"},
		{"canceled", WrapError(context.Canceled, "repl"), ExitErrorCanceled, "canceled"},
		{"config", NewConfigError("bad"), ExitErrorConfig, "config"},
		{"validation", ValidationError{Field: "expression", Message: "required"}, ExitErrorGeneric, "validation"},
		{"generic", errors.New("disk full"), ExitErrorGeneric, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
			if got := Kind(tt.err); got != tt.kind {
				t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.kind)
			}
		})
	}
}

func TestExitCodesAreDistinct(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"ExitSuccess":         ExitSuccess,
		"ExitErrorGeneric":    ExitErrorGeneric,
		"ExitErrorTimeout":    ExitErrorTimeout,
		"ExitErrorConfig":     ExitErrorConfig,
		"ExitErrorParse":      ExitErrorParse,
		"ExitErrorArithmetic": ExitErrorArithmetic,
		"ExitErrorCanceled":   ExitErrorCanceled,
	}
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}
	seen := make(map[int]string)
	for name, code := range codes {
		if other, ok := seen[code]; ok {
			t.Errorf("%s and %s share exit code %d", name, other, code)
		}
		seen[code] = name
	}
}

type testColors struct{}

func (testColors) Red() string    { return "<r>" }
func (testColors) Yellow() string { return "<y>" }
func (testColors) Reset() string  { return "</>" }

func TestHandleCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		duration time.Duration
		colors   ColorProvider
		wantCode int
		contains []string
	}{
		{"nil error", nil, 0, nil, ExitSuccess, nil},
		{"timeout", context.DeadlineExceeded, 2 * time.Second, nil, ExitErrorTimeout, []string{"timed out after 2s"}},
		{"canceled colored", context.Canceled, 0, testColors{}, ExitErrorCanceled, []string{"<y>Canceled.</>"}},
		{"parse hint", evalErr(t, "12x + 1"), 0, nil, ExitErrorParse, []string{"Parse error:", "'x' at position 2", "Hint:"}},
		{"syntax no hint", evalErr(t, "12"), 0, nil, ExitErrorParse, []string{"malformed expression"}},
		{"arithmetic colored", evalErr(t, "3 - 4"), 0, testColors{}, ExitErrorArithmetic, []string{"<r>Arithmetic error:</>", "underflow"}},
		{"generic", errors.New("boom"), 0, nil, ExitErrorGeneric, []string{"Error: boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := HandleCalculationError(tt.err, tt.duration, &buf, tt.colors)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			for _, s := range tt.contains {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output %q does not contain %q", buf.String(), s)
				}
			}
			if tt.err == nil && buf.Len() != 0 {
				t.Errorf("nil error should print nothing, got %q", buf.String())
			}
			if tt.name == "syntax no hint" && strings.Contains(buf.String(), "Hint:") {
				t.Errorf("syntax errors should not print the digit hint")
			}
		})
	}
}
