package stepstats

import (
	"fmt"

	"stepscope/internal/trace"
)

func boundary(index int, start, end float64) trace.StepBoundary {
	return trace.StepBoundary{
		Index:       index,
		Name:        fmt.Sprintf("ProfileStep#%d", index),
		StartTimeUs: start,
		EndTimeUs:   end,
		DurationUs:  end - start,
	}
}

func gpuOp(name string, start, end float64) trace.GpuOperation {
	return trace.GpuOperation{
		KernelName:  name,
		Category:    trace.CategoryKernel,
		StartTimeUs: start,
		EndTimeUs:   end,
		DurationUs:  end - start,
	}
}

// step builds a step at base whose operations are given as relative
// (name, start, end) triples.
func step(index int, base, length float64, ops ...interface{}) ProfileStep {
	s := ProfileStep{Boundary: boundary(index, base, base+length), Phase: PhaseDecode}
	for i := 0; i+2 < len(ops); i += 3 {
		s.Operations = append(s.Operations, gpuOp(ops[i].(string), base+toFloat(ops[i+1]), base+toFloat(ops[i+2])))
	}
	return s
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case float64:
		return x
	}
	panic("unsupported value")
}

func names(ops []trace.GpuOperation) []string {
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = o.KernelName
	}
	return out
}
