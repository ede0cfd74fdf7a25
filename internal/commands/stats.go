package commands

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stepscope/internal/config"
	"stepscope/internal/logutil"
	"stepscope/internal/output"
	"stepscope/internal/stepstats"
	"stepscope/internal/trace"
)

// NewStatsCmd creates the stats subcommand.
func NewStatsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <input_json> <output> [start_kernel_name] [decode_max_duration_ms]",
		Short: "Average GPU operations per position across decode ProfileSteps",
		Long: `Analyze ProfileStep GPU operations and calculate per-position averages.

ProfileSteps longer than decode_max_duration_ms (default 30) are treated as
prefill and dropped. Each remaining step is trimmed to start at the first
operation whose name contains start_kernel_name (default recover_decode_task;
"none" disables trimming), then steps are aligned by operation position.

The output format follows the file extension: .csv (default), .json, .xlsx,
.parquet.

Example:
  stepscope stats trace.json profile_stats.csv
  stepscope stats trace.json.gz profile_stats.xlsx none 50 --chart timeline.html`,
		Args: checkArgs(cobra.RangeArgs(2, 4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cfg, cmd, args)
		},
	}
	cfg.AddStatsFlags(cmd)
	return cmd
}

func runStats(cfg *config.Config, cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]
	if len(args) >= 3 {
		cfg.TrimKernel = args[2]
	}
	if len(args) == 4 {
		v, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return newUsageError(cmd, fmt.Errorf("invalid decode_max_duration_ms %q", args[3]))
		}
		cfg.DecodeMaxDurationMs = v
	}

	runID := uuid.NewString()
	log := logutil.GetLogger().With(zap.String("run_id", runID), zap.String("command", "stats"))

	opts, err := cfg.StepOptions(log)
	if err != nil {
		return newUsageError(cmd, err)
	}

	startTime := time.Now()
	log.Info("processing trace", zap.String("input", inputPath))
	events, err := trace.Load(inputPath, trace.LoadOptions{Logger: log})
	if err != nil {
		return err
	}

	result, err := stepstats.Analyze(events, opts)
	if err != nil {
		return err
	}

	table := stepstats.BuildTable(result.Rows)
	table.AddMeta("run_id", runID)
	table.AddMeta("input", inputPath)
	table.AddMeta("trim_kernel", opts.TrimKernel)
	table.AddMeta("decode_max_ms", strconv.FormatFloat(cfg.DecodeMaxDurationMs, 'f', -1, 64))
	table.AddMeta("alignment", string(opts.Alignment))
	table.AddMeta("steps_aggregated", strconv.Itoa(len(result.Contributing)))

	err = output.WriteFile(outputPath, table)
	if cfg.ChartPath != "" {
		timeline := stepstats.BuildTimeline(filepath.Base(inputPath), result.Rows)
		err = multierr.Append(err, output.WriteTimelineChart(cfg.ChartPath, timeline))
	}
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if cfg.Summary {
		result.WriteSummary(stderr)
	}
	stepstats.WritePreview(stderr, result.Rows, cfg.Preview)

	log.Info("statistics written",
		zap.String("output", outputPath),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("elapsed", time.Since(startTime)))
	return nil
}
