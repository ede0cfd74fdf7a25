// Package config holds run configuration for the stepscope commands.
//
// Values come from built-in defaults, then STEPSCOPE_* environment variables
// (a .env file in the working directory is read first), then command-line
// flags and positional arguments.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stepscope/internal/stepstats"
)

// Config is the resolved configuration of one run.
type Config struct {
	DecodeMaxDurationMs float64 `env:"STEPSCOPE_DECODE_MAX_MS"`
	TrimKernel          string  `env:"STEPSCOPE_TRIM_KERNEL"`
	Alignment           string  `env:"STEPSCOPE_ALIGNMENT"`
	NormalizeNames      bool    `env:"STEPSCOPE_NORMALIZE_NAMES"`
	LogLevel            string  `env:"STEPSCOPE_LOG_LEVEL"`
	Preview             int     `env:"STEPSCOPE_PREVIEW"`
	Summary             bool    `env:"STEPSCOPE_SUMMARY"`
	ChartPath           string  `env:"STEPSCOPE_CHART"`
}

// Defaults returns the configuration used when nothing is set. Pipeline
// defaults come from the stepstats constants.
func Defaults() Config {
	return Config{
		DecodeMaxDurationMs: stepstats.DefaultDecodeMaxDurationUs / 1000,
		TrimKernel:          stepstats.DefaultTrimKernel,
		Alignment:           string(stepstats.AlignStrict),
		NormalizeNames:      true,
		LogLevel:            "info",
		Preview:             10,
		Summary:             true,
	}
}

// Load reads the .env file in the working directory, if there is one, and
// then the process environment. A .env file that cannot be parsed is an
// error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil. Variables that are not set keep their Defaults value.
func Parse(environ map[string]string) (*Config, error) {
	cfg := Defaults()
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error
	if d := c.DecodeMaxDurationMs; math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		err = multierr.Append(err, fmt.Errorf("decode max duration must be a positive finite number, got %g ms", d))
	}
	if _, perr := stepstats.ParseAlignmentPolicy(c.Alignment); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, perr := zapcore.ParseLevel(c.LogLevel); perr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if c.Preview < 0 {
		err = multierr.Append(err, errors.New("preview row count must not be negative"))
	}
	if c.ChartPath != "" && !strings.HasSuffix(strings.ToLower(c.ChartPath), ".html") {
		err = multierr.Append(err, fmt.Errorf("chart path %q must end in .html", c.ChartPath))
	}
	return err
}

// StepOptions converts the configuration into pipeline options.
func (c *Config) StepOptions(logger *zap.Logger) (stepstats.Options, error) {
	if err := c.Validate(); err != nil {
		return stepstats.Options{}, err
	}
	policy, _ := stepstats.ParseAlignmentPolicy(c.Alignment)
	return stepstats.Options{
		DecodeMaxDurationUs: c.DecodeMaxDurationMs * 1000,
		TrimKernel:          stepstats.ResolveTrimKernel(c.TrimKernel),
		Alignment:           policy,
		NormalizeNames:      c.NormalizeNames,
		Logger:              logger,
	}, nil
}

// AddGlobalFlags adds flags shared by every command.
func (c *Config) AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	flags.IntVar(&c.Preview, "preview", c.Preview, "Rows to preview on stderr after a run (0 disables)")
	flags.BoolVar(&c.Summary, "summary", c.Summary, "Print the run summary on stderr")
}

// AddStatsFlags adds the flags of the stats command.
func (c *Config) AddStatsFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&c.DecodeMaxDurationMs, "decode-max-ms", c.DecodeMaxDurationMs, "Longest step duration (ms) counted as decode")
	flags.StringVar(&c.Alignment, "alignment", c.Alignment, "Handling of steps that cannot be aligned (strict, skip)")
	flags.BoolVar(&c.NormalizeNames, "normalize", c.NormalizeNames, "Strip bracketed timing suffixes from operation names")
	flags.StringVar(&c.ChartPath, "chart", c.ChartPath, "Write an HTML timeline chart to this path")
}
