package stepstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stepscope/internal/trace"
)

func TestClassifyThreshold(t *testing.T) {
	tests := []struct {
		duration float64
		want     Phase
	}{
		{15000, PhaseDecode},
		{30000, PhaseDecode},
		{30000.001, PhasePrefill},
		{35000, PhasePrefill},
		{0, PhaseDecode},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.duration, DefaultDecodeMaxDurationUs), "duration %v", tt.duration)
	}
}

func TestRetainDecode(t *testing.T) {
	steps := []ProfileStep{
		step(0, 0, 35000),
		step(1, 40000, 15000),
		step(2, 60000, 30000),
		step(3, 100000, 50000),
	}
	decode, prefill := RetainDecode(steps, DefaultDecodeMaxDurationUs)
	assert.Equal(t, 2, prefill)
	require.Len(t, decode, 2)
	assert.Equal(t, 1, decode[0].Boundary.Index)
	assert.Equal(t, 2, decode[1].Boundary.Index)
	for _, s := range decode {
		assert.Equal(t, PhaseDecode, s.Phase)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "decode", PhaseDecode.String())
	assert.Equal(t, "prefill", PhasePrefill.String())
	assert.Equal(t, "unknown", PhaseUnknown.String())
}

func TestCheckDurationHints(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	steps := []ProfileStep{
		{Boundary: trace.StepBoundary{Index: 0, Name: "ProfileStep#0[15.000 ms]", DurationUs: 15000}},
		{Boundary: trace.StepBoundary{Index: 1, Name: "ProfileStep#1[14.950 ms]", DurationUs: 14954}},
		{Boundary: trace.StepBoundary{Index: 2, Name: "ProfileStep#2[20.000 ms]", DurationUs: 15000}},
		{Boundary: trace.StepBoundary{Index: 3, Name: "ProfileStep#3", DurationUs: 99000}},
	}
	assert.Equal(t, 1, CheckDurationHints(steps, zap.New(core)))

	entries := logs.FilterMessage("step duration differs from name hint").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(2), fields["step"])
	assert.InDelta(t, 20.0, fields["hint_ms"], 1e-9)
	assert.InDelta(t, 15.0, fields["duration_ms"], 1e-9)
}

func TestAnalyzeWarnsOnDurationHints(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	opts := DefaultOptions()
	opts.TrimKernel = ""
	opts.Logger = zap.New(core)

	filtered := trace.Filtered{
		Boundaries: []trace.StepBoundary{
			{Index: 0, Name: "ProfileStep#0[25.000 ms]", StartTimeUs: 0, EndTimeUs: 15000, DurationUs: 15000},
		},
		Operations: []trace.GpuOperation{gpuOp("k", 10, 20)},
	}
	_, err := AnalyzeFiltered(filtered, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("step durations disagree with their name hints").Len())
}
