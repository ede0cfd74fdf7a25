package stepstats

import (
	"go.uber.org/zap"
)

// AggregatedOperation is the cross-step average of the operation at one
// position. Times are relative to the start of each step's boundary.
type AggregatedOperation struct {
	Position       int
	OperationName  string
	AvgStartTimeUs float64
	AvgEndTimeUs   float64
	AvgDurationUs  float64
	// BubbleTimeUs is the idle gap before this operation on the averaged
	// timeline. Negative values mean the averaged operations overlap.
	BubbleTimeUs float64
}

// NameMismatch records a step whose operation at Position is named
// differently from the reference step.
type NameMismatch struct {
	Position  int
	StepIndex int
	Expected  string
	Got       string
}

// Aggregation is the result of aligning and averaging a set of steps.
type Aggregation struct {
	Rows           []AggregatedOperation
	Contributing   []ProfileStep
	Excluded       []Exclusion
	NameMismatches []NameMismatch
}

// positionStats accumulates one aligned position across steps.
type positionStats struct {
	totalStart    float64
	totalEnd      float64
	totalDuration float64
}

// Aggregate aligns steps by operation position and averages them. The first
// step is the reference: its operation count fixes n and its names label the
// rows. Steps with a different count are an alignment mismatch, handled per
// policy. Names are compared but never fatal.
func Aggregate(steps []ProfileStep, policy AlignmentPolicy, log *zap.Logger) (*Aggregation, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(steps) == 0 {
		return nil, ErrNoDecodeSteps
	}

	reference := steps[0]
	n := len(reference.Operations)
	if n == 0 {
		return nil, ErrNoOperations
	}

	agg := &Aggregation{}
	var mismatches []AlignmentMismatch
	for _, s := range steps {
		if len(s.Operations) == n {
			agg.Contributing = append(agg.Contributing, s)
			continue
		}
		mismatches = append(mismatches, AlignmentMismatch{
			StepIndex: s.Boundary.Index,
			StepName:  s.Boundary.Name,
			Count:     len(s.Operations),
			Expected:  n,
		})
	}

	if len(mismatches) > 0 {
		if policy != AlignSkip {
			return nil, &AlignmentError{Expected: n, Mismatches: mismatches}
		}
		for _, m := range mismatches {
			agg.Excluded = append(agg.Excluded, Exclusion{
				StepIndex: m.StepIndex,
				StepName:  m.StepName,
				Reason:    m.Error(),
			})
			log.Warn("excluded step with mismatched operation count",
				zap.Int("step", m.StepIndex),
				zap.Int("operations", m.Count),
				zap.Int("expected", n))
		}
	}

	stats := make([]positionStats, n)
	for _, s := range agg.Contributing {
		base := s.Boundary.StartTimeUs
		for i, op := range s.Operations {
			stats[i].totalStart += op.StartTimeUs - base
			stats[i].totalEnd += op.EndTimeUs - base
			stats[i].totalDuration += op.DurationUs

			if ref := reference.Operations[i].KernelName; op.KernelName != ref {
				agg.NameMismatches = append(agg.NameMismatches, NameMismatch{
					Position:  i,
					StepIndex: s.Boundary.Index,
					Expected:  ref,
					Got:       op.KernelName,
				})
			}
		}
	}
	if len(agg.NameMismatches) > 0 {
		first := agg.NameMismatches[0]
		log.Warn("operation names differ across aligned steps",
			zap.Int("mismatches", len(agg.NameMismatches)),
			zap.Int("first_position", first.Position),
			zap.Int("first_step", first.StepIndex),
			zap.String("expected", first.Expected),
			zap.String("got", first.Got))
	}

	count := float64(len(agg.Contributing))
	agg.Rows = make([]AggregatedOperation, n)
	for i := range stats {
		row := AggregatedOperation{
			Position:       i,
			OperationName:  reference.Operations[i].KernelName,
			AvgStartTimeUs: stats[i].totalStart / count,
			AvgEndTimeUs:   stats[i].totalEnd / count,
			AvgDurationUs:  stats[i].totalDuration / count,
		}
		if i == 0 {
			row.BubbleTimeUs = row.AvgStartTimeUs
		} else {
			row.BubbleTimeUs = row.AvgStartTimeUs - agg.Rows[i-1].AvgEndTimeUs
		}
		agg.Rows[i] = row
	}

	log.Info("aggregated steps",
		zap.Int("positions", n),
		zap.Int("steps", len(agg.Contributing)),
		zap.Int("excluded", len(agg.Excluded)))
	return agg, nil
}
