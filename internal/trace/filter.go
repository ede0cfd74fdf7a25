package trace

// FilterOptions controls how raw events become operations.
type FilterOptions struct {
	// NormalizeNames strips per-instance timing suffixes from operation names.
	NormalizeNames bool
}

// Filtered holds the two event streams the analysis works on, each in
// original trace order.
type Filtered struct {
	Operations []GpuOperation
	Boundaries []StepBoundary
}

// IsGpuCategory reports whether cat names device-side work.
func IsGpuCategory(cat string) bool {
	switch cat {
	case CategoryKernel, CategoryMemcpy, CategoryMemset:
		return true
	}
	return false
}

// eventWindow returns the parsed args.start_time / args.end_time of e.
func eventWindow(e RawEvent) (start, end float64, ok bool) {
	startStr, ok := e.arg("start_time")
	if !ok {
		return 0, 0, false
	}
	endStr, ok := e.arg("end_time")
	if !ok {
		return 0, 0, false
	}
	start, ok = ParseTime(startStr)
	if !ok {
		return 0, 0, false
	}
	end, ok = ParseTime(endStr)
	if !ok || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// ToOperation converts e into a GpuOperation. Events that are not complete
// GPU events with parseable times are rejected.
func ToOperation(e RawEvent, normalize bool) (GpuOperation, bool) {
	if !IsGpuCategory(e.Category) || e.Phase != PhaseComplete {
		return GpuOperation{}, false
	}
	start, end, ok := eventWindow(e)
	if !ok {
		return GpuOperation{}, false
	}
	name := e.Name
	if normalize {
		name = NormalizeName(name)
	}
	return GpuOperation{
		KernelName:  name,
		Category:    e.Category,
		StartTimeUs: start,
		EndTimeUs:   end,
		DurationUs:  end - start,
	}, true
}

// ToBoundary converts e into a StepBoundary with the given ordinal.
func ToBoundary(e RawEvent, index int) (StepBoundary, bool) {
	if e.Category != CategoryProfileStep || e.Phase != PhaseComplete {
		return StepBoundary{}, false
	}
	start, end, ok := eventWindow(e)
	if !ok {
		return StepBoundary{}, false
	}
	return StepBoundary{
		Index:       index,
		Name:        e.Name,
		StartTimeUs: start,
		EndTimeUs:   end,
		DurationUs:  end - start,
	}, true
}

// Filter splits events into GPU operations and ProfileStep boundaries.
// Each event is inspected on its own; events matching neither shape are
// dropped without error.
func Filter(events []RawEvent, opts FilterOptions) Filtered {
	var out Filtered
	for _, e := range events {
		if op, ok := ToOperation(e, opts.NormalizeNames); ok {
			out.Operations = append(out.Operations, op)
			continue
		}
		if b, ok := ToBoundary(e, len(out.Boundaries)); ok {
			out.Boundaries = append(out.Boundaries, b)
		}
	}
	return out
}
