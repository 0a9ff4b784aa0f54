package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agbru/bigcalc/internal/history"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/ui"
)

type failingHistory struct{}

func (failingHistory) Recent(int) ([]history.Record, error) {
	return nil, errors.New("disk on fire")
}

// runREPL feeds input to a fresh REPL and returns everything it printed.
func runREPL(t *testing.T, input string, configure func(*REPL)) string {
	t.Helper()
	ui.InitTheme("", true)
	t.Cleanup(func() { ui.InitTheme("", false) })

	repl := NewREPL(orchestration.NewEngine(), REPLConfig{})
	var out bytes.Buffer
	repl.SetInput(strings.NewReader(input))
	repl.SetOutput(&out)
	if configure != nil {
		configure(repl)
	}
	repl.Start(context.Background())
	return out.String()
}

func TestREPL_Commands(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "evaluate expression",
			input:    "100 + 100\nexit\n",
			contains: []string{"calc> ", "= 200", "Goodbye!"},
		},
		{
			name:     "remainder toggle",
			input:    "7 / 2\nremainder\n7 / 2\n",
			contains: []string{"= 3\n", "Remainder display: on", "= 3 r 1"},
		},
		{
			name:     "json toggle",
			input:    "json\n6 * 7\n",
			contains: []string{"JSON output: on", `"result":"42"`},
		},
		{
			name:     "parse error keeps session alive",
			input:    "12 ^ 3\n1 + 1\n",
			contains: []string{"Parse error:", "= 2"},
		},
		{
			name:     "arithmetic error",
			input:    "1 / 0\n",
			contains: []string{"Arithmetic error:"},
		},
		{
			name:     "unknown command",
			input:    "frobnicate\n",
			contains: []string{"Unknown command: frobnicate"},
		},
		{
			name:     "help",
			input:    "help\n",
			contains: []string{"Commands:", "history [n]"},
		},
		{
			name:     "status",
			input:    "1 + 1\n1 - 2\nstatus\n",
			contains: []string{"Current configuration:", "Evaluations:  2 (1 failed)", "Heap in use:"},
		},
		{
			name:     "history disabled",
			input:    "history\n",
			contains: []string{"History is disabled"},
		},
		{
			name:     "last line without newline",
			input:    "2 * 2",
			contains: []string{"= 4", "Goodbye!"},
		},
		{
			name:     "quit stops reading",
			input:    "quit\n3 + 3\n",
			excludes: []string{"= 6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runREPL(t, tt.input, nil)
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

func TestREPL_History(t *testing.T) {
	store, err := history.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ui.InitTheme("", true)
	t.Cleanup(func() { ui.InitTheme("", false) })

	repl := NewREPL(orchestration.NewEngine(orchestration.WithHistory(store)), REPLConfig{})
	var out bytes.Buffer
	repl.SetInput(strings.NewReader("1 + 1\n5 - 9\n3 * 3\nhistory 2\nhistory zero\n"))
	repl.SetOutput(&out)
	repl.SetHistory(store)
	repl.Start(context.Background())

	s := out.String()
	if strings.Contains(s, "1 + 1  =") {
		t.Errorf("history 2 should show only the last two entries:\n%s", s)
	}
	first := strings.Index(s, "5 - 9")
	second := strings.Index(s, "3 * 3  = 9")
	if first < 0 || second < 0 {
		t.Fatalf("history entries missing:\n%s", s)
	}
	if !strings.Contains(s, "Usage: history [n]") {
		t.Errorf("invalid count should print usage:\n%s", s)
	}
}

func TestREPL_HistoryError(t *testing.T) {
	out := runREPL(t, "history\n", func(r *REPL) { r.SetHistory(failingHistory{}) })
	if !strings.Contains(out, "Error reading history: disk on fire") {
		t.Errorf("history error not reported:\n%s", out)
	}
}

func TestREPL_CanceledContext(t *testing.T) {
	ui.InitTheme("", true)
	t.Cleanup(func() { ui.InitTheme("", false) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repl := NewREPL(orchestration.NewEngine(), REPLConfig{})
	var out bytes.Buffer
	repl.SetInput(strings.NewReader("1 + 1\n"))
	repl.SetOutput(&out)
	repl.Start(ctx)

	if strings.Contains(out.String(), "= 2") {
		t.Errorf("canceled REPL should not evaluate:\n%s", out.String())
	}
}
