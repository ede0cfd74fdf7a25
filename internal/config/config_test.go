package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"stepscope/internal/stepstats"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.DecodeMaxDurationMs)
	assert.Equal(t, "recover_decode_task", cfg.TrimKernel)
	assert.Equal(t, "strict", cfg.Alignment)
	assert.True(t, cfg.NormalizeNames)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.Preview)
	assert.True(t, cfg.Summary)
	assert.Empty(t, cfg.ChartPath)
	assert.NoError(t, cfg.Validate())

	opts, err := cfg.StepOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, stepstats.DefaultOptions().DecodeMaxDurationUs, opts.DecodeMaxDurationUs)
	assert.Equal(t, stepstats.DefaultTrimKernel, opts.TrimKernel)
}

func TestParseEnvironment(t *testing.T) {
	cfg, err := Parse(map[string]string{
		"STEPSCOPE_DECODE_MAX_MS":   "45.5",
		"STEPSCOPE_TRIM_KERNEL":     "none",
		"STEPSCOPE_ALIGNMENT":       "skip",
		"STEPSCOPE_NORMALIZE_NAMES": "false",
		"STEPSCOPE_PREVIEW":         "0",
	})
	require.NoError(t, err)

	opts, err := cfg.StepOptions(nil)
	require.NoError(t, err)
	assert.InDelta(t, 45500, opts.DecodeMaxDurationUs, 1e-9)
	assert.Empty(t, opts.TrimKernel)
	assert.Equal(t, stepstats.AlignSkip, opts.Alignment)
	assert.False(t, opts.NormalizeNames)
}

func TestParseInvalidEnvironment(t *testing.T) {
	_, err := Parse(map[string]string{"STEPSCOPE_DECODE_MAX_MS": "thirty"})
	assert.Error(t, err)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		DecodeMaxDurationMs: -1,
		Alignment:           "loose",
		LogLevel:            "chatty",
		Preview:             -2,
		ChartPath:           "chart.png",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)

	_, err = cfg.StepOptions(nil)
	assert.Error(t, err)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := Parse(map[string]string{"STEPSCOPE_ALIGNMENT": "skip"})
	require.NoError(t, err)

	cmd := &cobra.Command{Use: "stats", RunE: func(*cobra.Command, []string) error { return nil }}
	cfg.AddGlobalFlags(cmd)
	cfg.AddStatsFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--alignment", "strict", "--decode-max-ms", "12", "--chart", "t.html"}))

	assert.Equal(t, "strict", cfg.Alignment)
	assert.Equal(t, 12.0, cfg.DecodeMaxDurationMs)
	assert.Equal(t, "t.html", cfg.ChartPath)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonFiniteThreshold(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0} {
		cfg := Defaults()
		cfg.DecodeMaxDurationMs = v
		assert.Error(t, cfg.Validate(), "%v", v)
	}
}

// chdirWithEnvFile switches into a fresh directory holding a .env file and
// restores the variables it may set once the test ends.
func chdirWithEnvFile(t *testing.T, content string, keys ...string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))
	t.Chdir(dir)
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	chdirWithEnvFile(t, "STEPSCOPE_ALIGNMENT=skip\nSTEPSCOPE_PREVIEW=3\n",
		"STEPSCOPE_ALIGNMENT", "STEPSCOPE_PREVIEW")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "skip", cfg.Alignment)
	assert.Equal(t, 3, cfg.Preview)
	assert.Equal(t, stepstats.DefaultTrimKernel, cfg.TrimKernel)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STEPSCOPE_ALIGNMENT", "")
	require.NoError(t, os.Unsetenv("STEPSCOPE_ALIGNMENT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Alignment)
}

func TestLoadMalformedEnvFile(t *testing.T) {
	chdirWithEnvFile(t, "STEPSCOPE_ALIGNMENT=skip\nSTEPSCOPE_TRIM_KERNEL='unterminated\n",
		"STEPSCOPE_ALIGNMENT", "STEPSCOPE_TRIM_KERNEL")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}
