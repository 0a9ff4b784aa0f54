// Package cli provides the command-line front end of bigcalc: the REPL,
// batch streaming, result formatting and shell completion.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/bigcalc/internal/history"
	"github.com/agbru/bigcalc/internal/metrics"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/ui"
)

// HistoryReader lists recent evaluations. It is satisfied by *history.Store.
type HistoryReader interface {
	Recent(n int) ([]history.Record, error)
}

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Remainder prints "/" results with their remainder.
	Remainder bool
	// JSONOutput prints results as JSON objects.
	JSONOutput bool
	// Timeout is shown by the status command; the evaluator enforces it.
	Timeout time.Duration
	// MaxDigits is shown by the status command.
	MaxDigits int
	// Spinner shows a spinner for slow evaluations.
	Spinner bool
}

// REPL is an interactive evaluation session.
type REPL struct {
	config    REPLConfig
	evaluator orchestration.Evaluator
	history   HistoryReader
	memory    *metrics.MemoryCollector
	in        io.Reader
	out       io.Writer

	evaluated int
	failed    int
}

// NewREPL creates a REPL reading stdin and writing stdout.
func NewREPL(ev orchestration.Evaluator, config REPLConfig) *REPL {
	return &REPL{
		config:    config,
		evaluator: ev,
		memory:    metrics.NewMemoryCollector(),
		in:        os.Stdin,
		out:       os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// SetHistory enables the history command.
func (r *REPL) SetHistory(h HistoryReader) {
	r.history = h
}

// Start reads lines until exit, EOF or cancellation of ctx.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
		fmt.Fprint(r.out, ui.ColorGreen()+"calc> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && input != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}

		input = strings.TrimSpace(input)
		if input != "" && !r.processCommand(ctx, input) {
			return
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sbigcalc - arbitrary-precision calculator%s             %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sEnter an expression:%s <value> <op> <value>, e.g. %s12345678901234567890 * 98765%s\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "Operators: + - * / %% == != < > <= >=\n")
	fmt.Fprintf(r.out, "%sCommands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shistory [n]%s   - Show the last n evaluations (default 10)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sremainder%s     - Toggle printing the remainder of /\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sjson%s          - Toggle JSON output\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s        - Display session settings and memory use\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s          - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s   - Leave interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand runs one input line. It returns false when the REPL
// should exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	// Commands take at most one argument; a valid expression has three fields.
	if len(parts) <= 2 {
		switch cmd {
		case "history", "hist":
			r.cmdHistory(args)
			return true
		case "remainder", "rem":
			r.config.Remainder = !r.config.Remainder
			fmt.Fprintf(r.out, "Remainder display: %s%s%s\n", ui.ColorGreen(), onOff(r.config.Remainder), ui.ColorReset())
			return true
		case "json":
			r.config.JSONOutput = !r.config.JSONOutput
			fmt.Fprintf(r.out, "JSON output: %s%s%s\n", ui.ColorGreen(), onOff(r.config.JSONOutput), ui.ColorReset())
			return true
		case "status", "st":
			r.cmdStatus()
			return true
		case "help", "h", "?":
			r.printHelp()
			return true
		case "exit", "quit", "q":
			fmt.Fprintln(r.out, ui.Paint(ui.ColorGreen(), "Goodbye!"))
			return false
		}
		if len(parts) == 1 {
			fmt.Fprintln(r.out, ui.Paint(ui.ColorRed(), "Unknown command: "+cmd))
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
			return true
		}
	}

	r.evaluate(ctx, input)
	return true
}

func (r *REPL) evaluate(ctx context.Context, line string) {
	var (
		ev  orchestration.Evaluation
		err error
	)
	run := func() { ev, err = r.evaluator.Evaluate(ctx, line) }
	if r.config.Spinner {
		WithSpinner(r.out, SpinnerDelay, " evaluating...", run)
	} else {
		run()
	}

	r.evaluated++
	if err != nil {
		r.failed++
		CLIResultPresenter{}.HandleError(err, 0, r.out)
		return
	}

	if r.config.JSONOutput {
		_ = DisplayJSONResult(r.out, ev)
		return
	}
	DisplayResult(r.out, ev, r.config.Remainder)
}

func (r *REPL) cmdHistory(args []string) {
	if r.history == nil {
		fmt.Fprintln(r.out, ui.Paint(ui.ColorYellow(), "History is disabled (set -history or BIGCALC_HISTORY)."))
		return
	}
	n := 10
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			fmt.Fprintln(r.out, ui.Paint(ui.ColorRed(), "Usage: history [n]"))
			return
		}
		n = v
	}

	records, err := r.history.Recent(n)
	if err != nil {
		fmt.Fprintf(r.out, "%sError reading history: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No evaluations yet.")
		return
	}
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.Failed() {
			fmt.Fprintf(r.out, "  %s%4d%s  %s  %s%s%s\n", ui.ColorCyan(), rec.Seq, ui.ColorReset(),
				rec.Expression, ui.ColorRed(), rec.Error, ui.ColorReset())
			continue
		}
		value, _ := TruncateDigits(rec.Result)
		fmt.Fprintf(r.out, "  %s%4d%s  %s  = %s%s%s\n", ui.ColorCyan(), rec.Seq, ui.ColorReset(),
			rec.Expression, ui.ColorGreen(), value, ui.ColorReset())
	}
}

func (r *REPL) cmdStatus() {
	snap := r.memory.Snapshot()
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:      %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	maxDigits := "unlimited"
	if r.config.MaxDigits > 0 {
		maxDigits = strconv.Itoa(r.config.MaxDigits)
	}
	fmt.Fprintf(r.out, "  Max digits:   %s%s%s\n", ui.ColorCyan(), maxDigits, ui.ColorReset())
	fmt.Fprintf(r.out, "  Remainder:    %s%s%s\n", ui.ColorCyan(), onOff(r.config.Remainder), ui.ColorReset())
	fmt.Fprintf(r.out, "  JSON output:  %s%s%s\n", ui.ColorCyan(), onOff(r.config.JSONOutput), ui.ColorReset())
	fmt.Fprintf(r.out, "  Evaluations:  %s%d%s (%d failed)\n", ui.ColorCyan(), r.evaluated, ui.ColorReset(), r.failed)
	fmt.Fprintf(r.out, "  Heap in use:  %s%s%s\n", ui.ColorCyan(), metrics.FormatBytes(snap.HeapAlloc), ui.ColorReset())
	fmt.Fprintf(r.out, "  GC cycles:    %s%d%s\n", ui.ColorCyan(), snap.NumGC, ui.ColorReset())
	fmt.Fprintln(r.out)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
