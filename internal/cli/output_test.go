package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/ui"
)

// evaluation builds the Evaluation an engine would return for line.
func evaluation(t *testing.T, line string) orchestration.Evaluation {
	t.Helper()
	x, err := expr.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	res, err := x.Eval()
	if err != nil {
		t.Fatalf("Eval(%q): %v", line, err)
	}
	return orchestration.Evaluation{Line: line, Expression: x, Result: res, Duration: 1500 * time.Microsecond}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"0", "0"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"true", "true"},
		{"12a456", "12a456"},
	}
	for _, tt := range tests {
		if got := FormatNumberString(tt.in); got != tt.want {
			t.Errorf("FormatNumberString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatResult(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line      string
		remainder bool
		want      string
	}{
		{"100 + 100", false, "200"},
		{"7 / 2", false, "3"},
		{"7 / 2", true, "3 r 1"},
		{"7 % 2", true, "1"},
		{"5 < 3", false, "false"},
	}
	for _, tt := range tests {
		if got := FormatResult(evaluation(t, tt.line), tt.remainder); got != tt.want {
			t.Errorf("FormatResult(%q, %v) = %q, want %q", tt.line, tt.remainder, got, tt.want)
		}
	}
}

func TestTruncateDigits(t *testing.T) {
	t.Parallel()
	short := strings.Repeat("7", TruncationLimit)
	if got, truncated := TruncateDigits(short); truncated || got != short {
		t.Errorf("value of %d digits should not be truncated", TruncationLimit)
	}

	long := strings.Repeat("1", DisplayEdges) + strings.Repeat("5", 200) + strings.Repeat("9", DisplayEdges)
	got, truncated := TruncateDigits(long)
	if !truncated {
		t.Fatal("long value should be truncated")
	}
	want := strings.Repeat("1", DisplayEdges) + "..." + strings.Repeat("9", DisplayEdges)
	if got != want {
		t.Errorf("TruncateDigits = %q, want %q", got, want)
	}
}

func TestDisplayJSONResult(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := DisplayJSONResult(&buf, evaluation(t, "17 / 5")); err != nil {
		t.Fatalf("DisplayJSONResult: %v", err)
	}

	var got JSONResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Expression != "17 / 5" || got.Result != "3" {
		t.Errorf("unexpected JSON result: %+v", got)
	}
	if got.Remainder == nil || *got.Remainder != "2" {
		t.Errorf("remainder = %v, want 2", got.Remainder)
	}

	buf.Reset()
	if err := DisplayJSONResult(&buf, evaluation(t, "2 * 3")); err != nil {
		t.Fatalf("DisplayJSONResult: %v", err)
	}
	if strings.Contains(buf.String(), "remainder") {
		t.Errorf("non-division result should omit remainder: %s", buf.String())
	}
}

func TestDisplayResult(t *testing.T) {
	ui.InitTheme("", true)
	t.Cleanup(func() { ui.InitTheme("", false) })

	tests := []struct {
		name      string
		line      string
		remainder bool
		contains  []string
		excludes  []string
	}{
		{
			name:     "grouped value",
			line:     "1000000 + 234567",
			contains: []string{"= 1,234,567", "Digits: 7", "Time:"},
		},
		{
			name:      "division with remainder",
			line:      "17 / 5",
			remainder: true,
			contains:  []string{"= 3 r 2"},
		},
		{
			name:     "division without remainder",
			line:     "17 / 5",
			contains: []string{"= 3\n"},
			excludes: []string{" r "},
		},
		{
			name:     "comparison",
			line:     "2 == 2",
			contains: []string{"= true", "Time:"},
			excludes: []string{"Digits:"},
		},
		{
			name:     "truncated value",
			line:     strings.Repeat("9", 150) + " + 1",
			contains: []string{"...", "(truncated)", "Digits: 151"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			DisplayResult(&buf, evaluation(t, tt.line), tt.remainder)
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	testCases := []struct {
		name       string
		outputFile string
		remainder  bool
		checkFunc  func(t *testing.T, filePath string)
	}{
		{
			name:       "Write result to file",
			outputFile: filepath.Join(tmpDir, "result.txt"),
			checkFunc: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				if err != nil {
					t.Fatalf("Failed to read output file: %v", err)
				}
				s := string(content)
				for _, want := range []string{"# Expression: 17 / 5", "# Digits: 1", "\n3\n"} {
					if !strings.Contains(s, want) {
						t.Errorf("file should contain %q:\n%s", want, s)
					}
				}
			},
		},
		{
			name:       "Remainder in file",
			outputFile: filepath.Join(tmpDir, "rem.txt"),
			remainder:  true,
			checkFunc: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				if err != nil {
					t.Fatalf("Failed to read output file: %v", err)
				}
				if !strings.Contains(string(content), "\n3 r 2\n") {
					t.Errorf("file should contain the remainder:\n%s", content)
				}
			},
		},
		{
			name:       "Empty output file (no write)",
			outputFile: "",
		},
		{
			name:       "Create nested directory",
			outputFile: filepath.Join(tmpDir, "nested", "dir", "result.txt"),
			checkFunc: func(t *testing.T, filePath string) {
				if _, err := os.Stat(filePath); err != nil {
					t.Errorf("File should exist in nested directory: %v", err)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := OutputConfig{OutputFile: tc.outputFile, Remainder: tc.remainder}
			if err := WriteResultToFile(evaluation(t, "17 / 5"), cfg); err != nil {
				t.Fatalf("WriteResultToFile: %v", err)
			}
			if tc.checkFunc != nil {
				tc.checkFunc(t, tc.outputFile)
			}
		})
	}
}

func TestDisplayResultWithConfig(t *testing.T) {
	ui.InitTheme("", true)
	t.Cleanup(func() { ui.InitTheme("", false) })

	path := filepath.Join(t.TempDir(), "out.txt")
	var out, status bytes.Buffer
	cfg := OutputConfig{OutputFile: path, Status: &status}
	if err := DisplayResultWithConfig(&out, evaluation(t, "2 * 21"), cfg); err != nil {
		t.Fatalf("DisplayResultWithConfig: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "42\n")
	}
	if !strings.Contains(status.String(), "Result saved to: "+path) {
		t.Errorf("status should name the file: %q", status.String())
	}

	status.Reset()
	out.Reset()
	cfg.Quiet = true
	cfg.JSON = true
	if err := DisplayResultWithConfig(&out, evaluation(t, "2 * 21"), cfg); err != nil {
		t.Fatalf("DisplayResultWithConfig: %v", err)
	}
	if status.Len() != 0 {
		t.Errorf("quiet mode should not print notices: %q", status.String())
	}
	if !strings.Contains(out.String(), `"result":"42"`) {
		t.Errorf("JSON output expected, got %q", out.String())
	}
}
