package stepstats

import (
	"fmt"

	"go.uber.org/zap"

	"stepscope/internal/trace"
)

// Result is everything a stats run produced, kept for reporting.
type Result struct {
	StepsFound     int
	PrefillDropped int
	Decode         []ProfileStep
	TrimKernel     string
	*Aggregation
}

// Analyze runs the full pipeline over raw trace events: filter, segment,
// classify, trim and aggregate.
func Analyze(events []trace.RawEvent, opts Options) (*Result, error) {
	log := opts.logger()

	filtered := trace.Filter(events, trace.FilterOptions{NormalizeNames: opts.NormalizeNames})
	log.Info("events classified",
		zap.Int("profile_steps", len(filtered.Boundaries)),
		zap.Int("gpu_operations", len(filtered.Operations)))

	return AnalyzeFiltered(filtered, opts)
}

// AnalyzeFiltered runs the pipeline from already classified events.
func AnalyzeFiltered(filtered trace.Filtered, opts Options) (*Result, error) {
	log := opts.logger()
	if len(filtered.Boundaries) == 0 {
		return nil, ErrNoSteps
	}

	steps := Segment(filtered.Boundaries, filtered.Operations)
	if n := CheckDurationHints(steps, log); n > 0 {
		log.Warn("step durations disagree with their name hints", zap.Int("steps", n))
	}

	decode, prefill := RetainDecode(steps, opts.DecodeMaxDurationUs)
	log.Info("filtered prefill steps",
		zap.Int("prefill", prefill),
		zap.Int("decode", len(decode)),
		zap.Float64("decode_max_ms", opts.DecodeMaxDurationUs/1000))
	if len(decode) == 0 {
		return nil, fmt.Errorf("%w (threshold %.3f ms, %d steps)", ErrNoDecodeSteps, opts.DecodeMaxDurationUs/1000, len(steps))
	}

	trimmed, trimExcluded, err := TrimSteps(decode, opts.TrimKernel, opts.Alignment, log)
	if err != nil {
		return nil, err
	}

	agg, err := Aggregate(trimmed, opts.Alignment, log)
	if err != nil {
		return nil, err
	}
	agg.Excluded = append(trimExcluded, agg.Excluded...)

	return &Result{
		StepsFound:     len(steps),
		PrefillDropped: prefill,
		Decode:         decode,
		TrimKernel:     opts.TrimKernel,
		Aggregation:    agg,
	}, nil
}
