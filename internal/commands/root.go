// Package commands provides the stepscope CLI.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"stepscope/internal/config"
	"stepscope/internal/logutil"
)

// usageError is an argument problem; the offending command's usage is
// printed along with it.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(cmd *cobra.Command, err error) error {
	return &usageError{cmd: cmd, err: err}
}

// checkArgs wraps a positional argument validator so failures print usage.
func checkArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return newUsageError(cmd, err)
		}
		return nil
	}
}

// NewRootCmd creates the root command with all subcommands bound to cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "stepscope",
		Short: "GPU operation statistics across PyTorch ProfileSteps",
		Long: `stepscope reads PyTorch Profiler JSON traces and summarizes GPU kernel,
memcpy and memset timing.

Commands:
  extract   Export GPU operations overlapping a time range
  stats     Average each operation position across decode ProfileSteps
  compare   Compare two stats tables position by position`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return newUsageError(cmd, fmt.Errorf("unknown command %q", args[0]))
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logutil.InitLogger(cfg.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return newUsageError(cmd, errors.New("no command given"))
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return newUsageError(cmd, err)
	})
	cfg.AddGlobalFlags(root)
	root.AddCommand(
		NewExtractCmd(cfg),
		NewStatsCmd(cfg),
		NewCompareCmd(cfg),
	)
	return root
}

// Execute runs the CLI and exits non-zero on any error.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	root := NewRootCmd(cfg)
	if err := root.Execute(); err != nil {
		Report(os.Stderr, err)
		os.Exit(1)
	}
	_ = logutil.GetLogger().Sync()
}

// Report writes err to w, followed by usage text for argument errors.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var uerr *usageError
	if errors.As(err, &uerr) && uerr.cmd != nil {
		fmt.Fprintf(w, "\n%s", uerr.cmd.UsageString())
	}
}
