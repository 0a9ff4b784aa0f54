// Package config parses bigcalc's command-line flags, environment variables
// and optional .env file into an AppConfig.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/ui"
)

// EnvPrefix is the prefix of every environment variable read by bigcalc.
const EnvPrefix = "BIGCALC_"

// Defaults.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultPort      = "8080"
	DefaultMaxDigits = 1_000_000
	DefaultLogLevel  = "warn"
	DefaultEnvFile   = ".env"
	DefaultTheme     = ui.ThemeDark
	// DefaultMaxBodyBytes bounds POST bodies in server mode.
	DefaultMaxBodyBytes = 4 << 20
)

// AppConfig holds the parsed configuration.
type AppConfig struct {
	// Expression is the line to evaluate, from -e or the positional arguments.
	Expression string

	Interactive bool
	TUI         bool
	ServerMode  bool
	Port        string
	// InputFile holds one expression per line; "-" reads stdin.
	InputFile string

	Timeout time.Duration
	// MaxDigits caps operand length. 0 disables the check.
	MaxDigits int
	// Concurrency bounds evaluations in flight in batch and server modes.
	Concurrency int

	Remainder  bool
	JSONOutput bool
	Quiet      bool
	OutputFile string
	NoColor    bool
	// Theme names the colour theme; NoColor and NO_COLOR override it.
	Theme string

	// HistoryPath is a LevelDB directory. Empty disables history.
	HistoryPath  string
	LogLevel     string
	OTLPEndpoint string
	Completion   string
	EnvFile      string
}

var validShells = []string{"bash", "zsh", "fish"}

// Validate checks value ranges and mutually exclusive modes.
func (c AppConfig) Validate() error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.MaxDigits < 0 {
		return apperrors.NewConfigError("max-digits cannot be negative: %d", c.MaxDigits)
	}
	if c.Concurrency < 1 {
		return apperrors.NewConfigError("concurrency must be at least 1: %d", c.Concurrency)
	}
	if _, ok := ui.LookupTheme(c.Theme); !ok {
		return apperrors.NewConfigError("unknown theme %q, valid themes: %s",
			c.Theme, strings.Join(ui.ThemeNames, ", "))
	}
	if c.Completion != "" && !contains(validShells, c.Completion) {
		return apperrors.NewConfigError("unsupported shell %q for completion, valid shells: %s",
			c.Completion, strings.Join(validShells, ", "))
	}
	modes := 0
	for _, on := range []bool{c.Interactive, c.TUI, c.ServerMode, c.InputFile != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return apperrors.NewConfigError("-i, -tui, -server and -file are mutually exclusive")
	}
	if modes == 1 && c.Expression != "" {
		return apperrors.NewConfigError("an expression cannot be combined with -i, -tui, -server or -file")
	}
	return nil
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Precedence is flags, then environment, then the .env file, then defaults.
// Parse and validation errors are printed to errorWriter with the usage.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.StringVar(&config.Expression, "e", "", "Expression to evaluate, e.g. \"100 + 100\".")
	fs.StringVar(&config.Expression, "expr", "", "Alias for -e.")
	fs.BoolVar(&config.Interactive, "i", false, "Start the interactive REPL.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Alias for -i.")
	fs.BoolVar(&config.TUI, "tui", false, "Start the full-screen terminal calculator.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start the HTTP API server.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.StringVar(&config.InputFile, "file", "", "Evaluate one expression per line from a file (\"-\" for stdin).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum time for one evaluation.")
	fs.IntVar(&config.MaxDigits, "max-digits", DefaultMaxDigits, "Maximum operand length in characters (0 for no limit).")
	fs.IntVar(&config.Concurrency, "concurrency", EstimateBatchConcurrency(), "Evaluations in flight in -file and -server modes.")
	fs.BoolVar(&config.Remainder, "remainder", false, "Print the remainder of '/' as \"q r r\".")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the result.")
	fs.BoolVar(&config.Quiet, "q", false, "Alias for -quiet.")
	fs.StringVar(&config.OutputFile, "output", "", "Also write the result to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Alias for -output.")
	fs.StringVar(&config.HistoryPath, "history", "", "LevelDB directory for the evaluation history.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error, off.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR).")
	fs.StringVar(&config.Theme, "theme", DefaultTheme, "Color theme: dark, light, none.")
	fs.StringVar(&config.OTLPEndpoint, "otlp-endpoint", "", "OTLP/gRPC collector address for traces (host:port).")
	fs.StringVar(&config.Completion, "completion", "", "Print a shell completion script (bash, zsh, fish).")
	fs.StringVar(&config.EnvFile, "env-file", DefaultEnvFile, "Optional dotenv file with BIGCALC_ variables.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	if rest := fs.Args(); len(rest) > 0 && config.Expression == "" {
		config.Expression = strings.Join(rest, " ")
	}

	lookup, err := newLookup(config.EnvFile, isFlagSet(fs, "env-file"))
	if err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, apperrors.NewConfigError("reading %s: %v", config.EnvFile, err)
	}
	if err := applyEnvOverrides(&config, fs, lookup); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}

	config.Completion = strings.ToLower(config.Completion)
	config.Theme = strings.ToLower(config.Theme)
	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return config, nil
}

func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [flags] [<value> <op> <value>]\n\n", fs.Name())
		fmt.Fprintf(out, "Evaluates one expression over arbitrarily large non-negative integers.\n")
		fmt.Fprintf(out, "Operators: + - * / %% == != < > <= >=\n")
		fmt.Fprintf(out, "With no expression and no mode flag, one line is read from stdin.\n\n")
		fmt.Fprintf(out, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nEnvironment variables use the %s prefix, e.g. %sTIMEOUT=5s.\n", EnvPrefix, EnvPrefix)
	}
}

// IsHelpError reports whether err comes from -h or -help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
