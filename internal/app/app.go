// Package app wires bigcalc together: it parses the configuration, sets up
// logging, tracing, metrics and history, and dispatches to the selected mode.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agbru/bigcalc/internal/cli"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/history"
	"github.com/agbru/bigcalc/internal/logging"
	"github.com/agbru/bigcalc/internal/metrics"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/server"
	"github.com/agbru/bigcalc/internal/tracing"
	"github.com/agbru/bigcalc/internal/tui"
	"github.com/agbru/bigcalc/internal/ui"
)

// shutdownTimeout bounds the flush of pending spans on exit.
const shutdownTimeout = 5 * time.Second

// Application represents the bigcalc application instance.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// ErrWriter receives errors, notices and logs (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "bigcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// IsHelpError reports whether New failed because -h or -help was given.
func IsHelpError(err error) bool {
	return config.IsHelpError(err)
}

// runtimeDeps are the shared services built by Run.
type runtimeDeps struct {
	engine   *orchestration.Engine
	recorder *metrics.Recorder
	store    *history.Store
}

func (a *Application) logger(component string) logging.Logger {
	return logging.NewLeveledLogger(a.ErrWriter, component, logging.ParseLevel(a.Config.LogLevel))
}

// Run executes the application in the configured mode and returns the
// process exit code. in is read by the REPL, by "-file -" and when no
// expression was given.
func (a *Application) Run(ctx context.Context, in io.Reader, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	if err := ui.InitTheme(a.Config.Theme, a.Config.NoColor); err != nil {
		fmt.Fprintf(a.ErrWriter, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	log := a.logger("app")

	_, shutdown, err := tracing.Setup(ctx, tracing.Options{
		Endpoint: a.Config.OTLPEndpoint,
		Version:  Version,
		Insecure: true,
	})
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Error("flushing traces", err)
		}
	}()

	deps := runtimeDeps{recorder: metrics.NewRecorder()}
	engineOpts := []orchestration.Option{
		orchestration.WithLogger(a.logger("engine")),
		orchestration.WithMetrics(deps.recorder),
		orchestration.WithTracer(tracing.Tracer()),
		orchestration.WithMaxDigits(a.Config.MaxDigits),
		orchestration.WithTimeout(a.Config.Timeout),
		orchestration.WithConcurrencyLimit(a.Config.Concurrency),
	}
	if a.Config.HistoryPath != "" {
		store, err := history.Open(a.Config.HistoryPath)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("closing history", err)
			}
		}()
		deps.store = store
		engineOpts = append(engineOpts, orchestration.WithHistory(store))
	}
	deps.engine = orchestration.NewEngine(engineOpts...)

	log.Debug("starting",
		logging.String("version", Version),
		logging.String("mode", a.mode()),
		logging.Duration("timeout", a.Config.Timeout),
		logging.Int("max_digits", a.Config.MaxDigits))

	switch {
	case a.Config.ServerMode:
		return a.runServer(ctx, deps)
	case a.Config.TUI:
		return tui.Run(ctx, deps.engine, a.Config, Version)
	case a.Config.Interactive:
		return a.runREPL(ctx, deps, in, out)
	case a.Config.InputFile != "":
		return a.runFile(ctx, deps, in, out)
	default:
		return a.runExpression(ctx, deps, in, out)
	}
}

func (a *Application) mode() string {
	switch {
	case a.Config.ServerMode:
		return "server"
	case a.Config.TUI:
		return "tui"
	case a.Config.Interactive:
		return "repl"
	case a.Config.InputFile != "":
		return "file"
	default:
		return "expression"
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer serves the HTTP API until ctx is canceled.
func (a *Application) runServer(ctx context.Context, deps runtimeDeps) int {
	opts := []server.Option{
		server.WithLogger(a.logger("server")),
		server.WithMetrics(deps.recorder),
	}
	if deps.store != nil {
		opts = append(opts, server.WithHistory(deps.store))
	}

	srv := server.NewServer(deps.engine, a.Config, opts...)
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive session.
func (a *Application) runREPL(ctx context.Context, deps runtimeDeps, in io.Reader, out io.Writer) int {
	repl := cli.NewREPL(deps.engine, cli.REPLConfig{
		Remainder:  a.Config.Remainder,
		JSONOutput: a.Config.JSONOutput,
		Timeout:    a.Config.Timeout,
		MaxDigits:  a.Config.MaxDigits,
		Spinner:    cli.IsTerminal(out),
	})
	repl.SetInput(in)
	repl.SetOutput(out)
	if deps.store != nil {
		repl.SetHistory(deps.store)
	}
	repl.Start(ctx)
	return apperrors.ExitSuccess
}

// runFile evaluates one expression per line of the input file.
func (a *Application) runFile(ctx context.Context, deps runtimeDeps, in io.Reader, out io.Writer) int {
	src := in
	if a.Config.InputFile != "-" {
		f, err := os.Open(a.Config.InputFile)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		defer f.Close()
		src = f
	}

	cfg := cli.StreamConfig{
		Concurrency: a.Config.Concurrency,
		Remainder:   a.Config.Remainder,
		JSON:        a.Config.JSONOutput,
		Errors:      a.ErrWriter,
	}
	if !a.Config.Quiet && cli.IsTerminal(a.ErrWriter) {
		cli.PrintExecutionConfig(a.Config, a.ErrWriter)
		progress := cli.NewCLIProgressReporter(a.ErrWriter)
		defer progress.Stop()
		cfg.Progress = progress
	}

	code, err := cli.EvaluateStream(ctx, deps.engine, src, out, cfg)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
	}
	return code
}

// runExpression evaluates the expression from -e or the positional
// arguments, or else the first line of in.
func (a *Application) runExpression(ctx context.Context, deps runtimeDeps, in io.Reader, out io.Writer) int {
	line := a.Config.Expression
	if line == "" {
		read, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(a.ErrWriter, "Error reading stdin: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		line = strings.TrimRight(read, "\r\n")
	}

	return cli.EvaluateOne(ctx, deps.engine, line, out, a.ErrWriter, cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Remainder:  a.Config.Remainder,
		JSON:       a.Config.JSONOutput,
	})
}
