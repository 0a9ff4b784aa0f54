package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/bigcalc/internal/errors"
)

// lookupFunc returns the value of a prefixed variable, or "" if unset.
type lookupFunc func(key string) string

// newLookup reads the dotenv file at path and returns a lookup that prefers
// the process environment over the file. A missing file is only an error
// when the user named it explicitly.
func newLookup(path string, explicit bool) (lookupFunc, error) {
	fileVars := map[string]string{}
	if path != "" {
		vars, err := godotenv.Read(path)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, err
		}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileVars[key]
	}, nil
}

// isFlagSet reports whether name was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps one variable (without EnvPrefix) to the flags it shadows.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

var envOverrides = []envOverride{
	{"EXPR", []string{"e", "expr"}, func(c *AppConfig, v string) error {
		if c.Expression == "" {
			c.Expression = v
		}
		return nil
	}},
	{"PORT", []string{"port"}, func(c *AppConfig, v string) error {
		c.Port = v
		return nil
	}},
	{"FILE", []string{"file"}, func(c *AppConfig, v string) error {
		c.InputFile = v
		return nil
	}},
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) error {
		c.OutputFile = v
		return nil
	}},
	{"HISTORY", []string{"history"}, func(c *AppConfig, v string) error {
		c.HistoryPath = v
		return nil
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) error {
		c.LogLevel = v
		return nil
	}},
	{"OTLP_ENDPOINT", []string{"otlp-endpoint"}, func(c *AppConfig, v string) error {
		c.OTLPEndpoint = v
		return nil
	}},
	{"THEME", []string{"theme"}, func(c *AppConfig, v string) error {
		c.Theme = v
		return nil
	}},

	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.NewConfigError("%sTIMEOUT: %v", EnvPrefix, err)
		}
		c.Timeout = d
		return nil
	}},
	{"MAX_DIGITS", []string{"max-digits"}, func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.NewConfigError("%sMAX_DIGITS: %q is not an integer", EnvPrefix, v)
		}
		c.MaxDigits = n
		return nil
	}},
	{"CONCURRENCY", []string{"concurrency"}, func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.NewConfigError("%sCONCURRENCY: %q is not an integer", EnvPrefix, v)
		}
		c.Concurrency = n
		return nil
	}},

	{"REMAINDER", []string{"remainder"}, boolOverride(func(c *AppConfig) *bool { return &c.Remainder })},
	{"JSON", []string{"json"}, boolOverride(func(c *AppConfig) *bool { return &c.JSONOutput })},
	{"QUIET", []string{"quiet", "q"}, boolOverride(func(c *AppConfig) *bool { return &c.Quiet })},
	{"NO_COLOR", []string{"no-color"}, boolOverride(func(c *AppConfig) *bool { return &c.NoColor })},
	{"SERVER", []string{"server"}, boolOverride(func(c *AppConfig) *bool { return &c.ServerMode })},
	{"TUI", []string{"tui"}, boolOverride(func(c *AppConfig) *bool { return &c.TUI })},
}

func boolOverride(field func(*AppConfig) *bool) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		p := field(c)
		*p = parseBoolEnv(v, *p)
		return nil
	}
}

// parseBoolEnv accepts true/1/yes and false/0/no, case-insensitively.
// Anything else leaves defaultVal.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides fills every field whose flag was not given on the
// command line from lookup.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet, lookup lookupFunc) error {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := lookup(EnvPrefix + o.envKey); val != "" {
			if err := o.apply(config, val); err != nil {
				return err
			}
		}
	}
	return nil
}
