// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayJSONResult].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatResult], [FormatNumberString], [FormatExecutionDuration].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet suppresses everything but the result line.
	Quiet bool
	// Remainder prints "/" results as "<quotient> r <remainder>".
	Remainder bool
	// JSON prints one JSON object per result.
	JSON bool
	// Status receives notices such as the saved file path. Nil discards
	// them.
	Status io.Writer
}

// JSONResult is the machine-readable form of an evaluation.
type JSONResult struct {
	Expression string  `json:"expression"`
	Result     string  `json:"result"`
	Remainder  *string `json:"remainder,omitempty"`
	Duration   string  `json:"duration"`
}

// FormatResult returns the result line printed on stdout.
func FormatResult(ev orchestration.Evaluation, remainder bool) string {
	if remainder {
		return ev.Result.WithRemainder()
	}
	return ev.Result.String()
}

// FormatNumberString groups the digits of a decimal string by thousands,
// e.g. "1234567" becomes "1,234,567". Non-numeric strings such as "true"
// are returned unchanged.
func FormatNumberString(s string) string {
	if len(s) <= 3 || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3)
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// TruncateDigits keeps DisplayEdges digits at each end of a value longer
// than TruncationLimit.
func TruncateDigits(s string) (string, bool) {
	if len(s) <= TruncationLimit {
		return s, false
	}
	return s[:DisplayEdges] + "..." + s[len(s)-DisplayEdges:], true
}

// DisplayQuietResult prints the bare result line.
func DisplayQuietResult(out io.Writer, ev orchestration.Evaluation, remainder bool) {
	fmt.Fprintln(out, FormatResult(ev, remainder))
}

// DisplayJSONResult prints ev as one JSON object on its own line.
func DisplayJSONResult(out io.Writer, ev orchestration.Evaluation) error {
	res := JSONResult{
		Expression: ev.Expression.String(),
		Result:     ev.Result.String(),
		Duration:   ev.Duration.String(),
	}
	if ev.Result.Remainder != nil {
		r := ev.Result.Remainder.String()
		res.Remainder = &r
	}
	return json.NewEncoder(out).Encode(res)
}

// DisplayResult prints the detailed, colourised view used by the REPL:
// the value grouped by thousands (or truncated when huge), its digit count
// and the evaluation time.
func DisplayResult(out io.Writer, ev orchestration.Evaluation, remainder bool) {
	value := ev.Result.String()
	shown, truncated := TruncateDigits(value)
	if !truncated {
		shown = FormatNumberString(shown)
	}

	fmt.Fprintf(out, "%s= %s%s", ui.ColorGreen(), shown, ui.ColorReset())
	if ev.Result.Remainder != nil && remainder {
		fmt.Fprintf(out, " r %s%s%s", ui.ColorGreen(), FormatNumberString(ev.Result.Remainder.String()), ui.ColorReset())
	}
	fmt.Fprintln(out)

	if ev.Result.Bool == nil {
		note := ""
		if truncated {
			note = " (truncated)"
		}
		fmt.Fprintf(out, "  %sDigits:%s %d%s\n", ui.ColorCyan(), ui.ColorReset(), ev.Result.Value.Len(), note)
	}
	fmt.Fprintf(out, "  %sTime:%s   %s\n", ui.ColorCyan(), ui.ColorReset(), FormatExecutionDuration(ev.Duration))
}

// WriteResultToFile writes the full result with a commented header to
// config.OutputFile, creating parent directories. It is a no-op when
// OutputFile is empty.
func WriteResultToFile(ev orchestration.Evaluation, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# bigcalc result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Expression: %s\n", ev.Expression)
	fmt.Fprintf(file, "# Duration: %s\n", ev.Duration)
	if ev.Result.Bool == nil {
		fmt.Fprintf(file, "# Digits: %d\n", ev.Result.Value.Len())
	}
	fmt.Fprintf(file, "\n%s\n", FormatResult(ev, config.Remainder))

	return file.Close()
}

// DisplayResultWithConfig prints ev according to config and saves it when
// an output file is configured.
func DisplayResultWithConfig(out io.Writer, ev orchestration.Evaluation, config OutputConfig) error {
	if config.JSON {
		if err := DisplayJSONResult(out, ev); err != nil {
			return err
		}
	} else {
		DisplayQuietResult(out, ev, config.Remainder)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(ev, config); err != nil {
			return err
		}
		if !config.Quiet && config.Status != nil {
			fmt.Fprintf(config.Status, "%sResult saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
