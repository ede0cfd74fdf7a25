package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stepscope/internal/config"
	"stepscope/internal/logutil"
	"stepscope/internal/output"
	"stepscope/internal/trace"
)

// NewExtractCmd creates the extract subcommand.
func NewExtractCmd(cfg *config.Config) *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "extract <input_json> <output> <start_time_us,end_time_us>",
		Short: "Export GPU operations overlapping a time range",
		Long: `Export every Kernel, Memcpy and Memset operation whose interval overlaps
[start_time_us, end_time_us], sorted by start time.

--where narrows the result with an expression over kernel_name, category,
start_time_us, end_time_us and duration_us.

Example:
  stepscope extract trace.json output.csv 2684054.000,2687705.250
  stepscope extract trace.json gemm.csv 0,1e12 --where 'kernel_name contains "gemm"'`,
		Args: checkArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cfg, cmd, args, where)
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "Boolean filter expression over operation fields")
	return cmd
}

func runExtract(cfg *config.Config, cmd *cobra.Command, args []string, where string) error {
	inputPath, outputPath := args[0], args[1]

	window, err := trace.ParseWindow(args[2])
	if err != nil {
		return newUsageError(cmd, err)
	}
	var predicate *trace.Predicate
	if where != "" {
		if predicate, err = trace.CompileWhere(where); err != nil {
			return newUsageError(cmd, err)
		}
	}

	log := logutil.GetLogger().With(zap.String("run_id", uuid.NewString()), zap.String("command", "extract"))
	log.Info("processing trace",
		zap.String("input", inputPath),
		zap.Float64("start_us", window.StartUs),
		zap.Float64("end_us", window.EndUs))

	startTime := time.Now()
	events, err := trace.Load(inputPath, trace.LoadOptions{Logger: log})
	if err != nil {
		return err
	}

	filtered := trace.Filter(events, trace.FilterOptions{})
	ops := trace.ExtractWindow(filtered.Operations, window)
	if predicate != nil {
		if ops, err = predicate.Select(ops); err != nil {
			return err
		}
	}

	if err := output.WriteFile(outputPath, trace.OperationsTable(ops)); err != nil {
		return err
	}

	writeOperationPreview(cmd.ErrOrStderr(), ops, cfg.Preview)
	log.Info("operations written",
		zap.String("output", outputPath),
		zap.Int("operations", len(ops)),
		zap.Duration("elapsed", time.Since(startTime)))
	return nil
}

func writeOperationPreview(w io.Writer, ops []trace.GpuOperation, count int) {
	if count <= 0 || len(ops) == 0 {
		return
	}
	count = min(count, len(ops))
	fmt.Fprintf(w, "\n--- Preview (first %d records) ---\n", count)
	for i, op := range ops[:count] {
		fmt.Fprintf(w, "%d. %s | %.3f -> %.3f us | %.3f us\n",
			i+1, op.KernelName, op.StartTimeUs, op.EndTimeUs, op.DurationUs)
	}
}
