package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/golang/mock/gomock"

	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/orchestration"
	omocks "github.com/agbru/bigcalc/internal/orchestration/mocks"
	"github.com/agbru/bigcalc/internal/ui"
)

func TestEvaluateStream(t *testing.T) {
	ui.InitTheme("", true)
	t.Cleanup(func() { ui.InitTheme("", false) })

	input := strings.Join([]string{
		"# header comment",
		"1 + 2",
		"",
		"10 - 20",
		"7 / 2",
		"   ",
		"3 * 3",
	}, "\n")

	var out, errOut bytes.Buffer
	code, err := EvaluateStream(context.Background(), orchestration.NewEngine(),
		strings.NewReader(input), &out, StreamConfig{Concurrency: 3, Remainder: true, Errors: &errOut})
	if err != nil {
		t.Fatalf("EvaluateStream: %v", err)
	}
	if code != apperrors.ExitErrorArithmetic {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorArithmetic)
	}
	if got, want := out.String(), "3\n3 r 1\n9\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if !strings.HasPrefix(errOut.String(), "line 4: Arithmetic error: 10 - 20: ") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestEvaluateStream_FirstFailureWins(t *testing.T) {
	var errOut bytes.Buffer
	code, err := EvaluateStream(context.Background(), orchestration.NewEngine(),
		strings.NewReader("1 ? 1\n1 / 0\n"), &bytes.Buffer{}, StreamConfig{Concurrency: 1, Errors: &errOut})
	if err != nil {
		t.Fatalf("EvaluateStream: %v", err)
	}
	if code != apperrors.ExitErrorParse {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorParse)
	}
	if n := strings.Count(errOut.String(), "line "); n != 2 {
		t.Errorf("want one message per failing line, got %d:\n%s", n, errOut.String())
	}
}

func TestEvaluateStream_JSON(t *testing.T) {
	var out bytes.Buffer
	code, err := EvaluateStream(context.Background(), orchestration.NewEngine(),
		strings.NewReader("2 + 2\n9 > 1\n"), &out, StreamConfig{JSON: true})
	if err != nil || code != apperrors.ExitSuccess {
		t.Fatalf("EvaluateStream = %d, %v", code, err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 JSON lines, got %q", out.String())
	}
	if !strings.Contains(lines[0], `"result":"4"`) || !strings.Contains(lines[1], `"result":"true"`) {
		t.Errorf("unexpected JSON output:\n%s", out.String())
	}
}

func TestEvaluateStream_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := omocks.NewMockEvaluator(ctrl)
	ev.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Times(0)

	var out bytes.Buffer
	code, err := EvaluateStream(context.Background(), ev, strings.NewReader("\n# nothing\n"), &out, StreamConfig{})
	if err != nil || code != apperrors.ExitSuccess {
		t.Fatalf("EvaluateStream = %d, %v", code, err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestEvaluateStream_ReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := omocks.NewMockEvaluator(ctrl)

	boom := errors.New("boom")
	code, err := EvaluateStream(context.Background(), ev, iotest.ErrReader(boom), &bytes.Buffer{}, StreamConfig{})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
}

func TestEvaluateOne(t *testing.T) {
	ui.InitTheme("", true)
	t.Cleanup(func() { ui.InitTheme("", false) })

	var out, status bytes.Buffer
	code := EvaluateOne(context.Background(), orchestration.NewEngine(), "100 + 100", &out, &status, OutputConfig{})
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr %q", code, status.String())
	}
	if out.String() != "200\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "200\n")
	}

	out.Reset()
	status.Reset()
	code = EvaluateOne(context.Background(), orchestration.NewEngine(), "abc + 1", &out, &status, OutputConfig{})
	if code != apperrors.ExitErrorParse {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorParse)
	}
	if out.Len() != 0 {
		t.Errorf("failed evaluation wrote to stdout: %q", out.String())
	}
	if !strings.Contains(status.String(), "Parse error: abc + 1: ") {
		t.Errorf("stderr = %q", status.String())
	}
}

func TestCalculationErrorNamesExpression(t *testing.T) {
	cause := errors.New("boom")
	err := calculationError("  7 / 0 ", cause)

	var calc apperrors.CalculationError
	if !errors.As(err, &calc) {
		t.Fatalf("error %T is not a CalculationError", err)
	}
	if calc.Expression != "7 / 0" {
		t.Errorf("Expression = %q", calc.Expression)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should stay reachable through errors.Is")
	}

	huge := strings.Repeat("9", TruncationLimit+10) + " + 1"
	if msg := calculationError(huge, cause).Error(); !strings.Contains(msg, "...") || len(msg) > TruncationLimit {
		t.Errorf("long expression not shortened: %d bytes", len(msg))
	}
}
