package stepstats

import (
	"sort"

	"stepscope/internal/trace"
)

// Phase is the execution phase a step was classified into.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseDecode
	PhasePrefill
)

func (p Phase) String() string {
	switch p {
	case PhaseDecode:
		return "decode"
	case PhasePrefill:
		return "prefill"
	}
	return "unknown"
}

// ProfileStep is one iteration window and the operations that started in it,
// ordered by start time.
type ProfileStep struct {
	Boundary   trace.StepBoundary
	Operations []trace.GpuOperation
	Phase      Phase
}

// Segment assigns each operation to the boundary whose window contains its
// start time. Operations outside every window are dropped. Steps are
// returned in boundary order; within a step operations are sorted by start
// time, ties keeping stream order.
func Segment(boundaries []trace.StepBoundary, ops []trace.GpuOperation) []ProfileStep {
	steps := make([]ProfileStep, len(boundaries))
	for i, b := range boundaries {
		steps[i].Boundary = b
	}
	if len(boundaries) == 0 {
		return steps
	}

	// byStart indexes boundaries by window start for lookup.
	byStart := make([]int, len(boundaries))
	for i := range byStart {
		byStart[i] = i
	}
	sort.SliceStable(byStart, func(a, b int) bool {
		return boundaries[byStart[a]].StartTimeUs < boundaries[byStart[b]].StartTimeUs
	})
	// maxEnd[j] is the latest window end among byStart[:j+1]; once it falls
	// before an operation no earlier window can contain it.
	maxEnd := make([]float64, len(byStart))
	for j, idx := range byStart {
		maxEnd[j] = boundaries[idx].EndTimeUs
		if j > 0 && maxEnd[j-1] > maxEnd[j] {
			maxEnd[j] = maxEnd[j-1]
		}
	}

	for _, op := range ops {
		// last boundary starting at or before the operation
		n := sort.Search(len(byStart), func(i int) bool {
			return boundaries[byStart[i]].StartTimeUs > op.StartTimeUs
		})
		for j := n - 1; j >= 0 && maxEnd[j] >= op.StartTimeUs; j-- {
			idx := byStart[j]
			if boundaries[idx].Contains(op.StartTimeUs) {
				steps[idx].Operations = append(steps[idx].Operations, op)
				break
			}
		}
	}

	for i := range steps {
		ops := steps[i].Operations
		sort.SliceStable(ops, func(a, b int) bool {
			return ops[a].StartTimeUs < ops[b].StartTimeUs
		})
	}
	return steps
}
