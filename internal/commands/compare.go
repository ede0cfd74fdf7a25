package commands

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stepscope/internal/compare"
	"stepscope/internal/config"
	"stepscope/internal/logutil"
	"stepscope/internal/output"
)

// NewCompareCmd creates the compare subcommand.
func NewCompareCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <baseline_csv> <candidate_csv> [output]",
		Short: "Compare two stats tables position by position",
		Long: `Compare two CSV tables written by the stats command. Rows are paired by
position; the change column is the relative difference in average duration.

Without an output path the comparison is written as CSV to stdout. An .xlsx
output gets a heatmap on the change column.

Example:
  stepscope compare baseline.csv tuned.csv diff.xlsx`,
		Args: checkArgs(cobra.RangeArgs(2, 3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cfg, cmd, args)
		},
	}
}

func runCompare(cfg *config.Config, cmd *cobra.Command, args []string) error {
	log := logutil.GetLogger().With(zap.String("command", "compare"))

	result, err := compare.CompareFiles(args[0], args[1])
	if err != nil {
		return err
	}
	if cfg.Summary {
		result.WriteSummary(cmd.ErrOrStderr())
	}

	if len(args) < 3 {
		return output.WriteCSV(cmd.OutOrStdout(), result.Table())
	}

	outputPath := args[2]
	if strings.EqualFold(filepath.Ext(outputPath), ".xlsx") {
		err = result.WriteXLSX(outputPath)
	} else {
		err = output.WriteFile(outputPath, result.Table())
	}
	if err != nil {
		return err
	}
	log.Info("comparison written", zap.String("output", outputPath), zap.Int("positions", len(result.Matches)))
	return nil
}
