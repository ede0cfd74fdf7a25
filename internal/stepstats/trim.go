package stepstats

import (
	"strings"

	"go.uber.org/zap"
)

// Exclusion records a retained decode step that was left out of aggregation.
type Exclusion struct {
	StepIndex int
	StepName  string
	Reason    string
}

// TrimIndex returns the position of the first operation whose name contains
// kernel, or -1.
func TrimIndex(step ProfileStep, kernel string) int {
	if kernel == "" {
		return -1
	}
	for i, op := range step.Operations {
		if strings.Contains(op.KernelName, kernel) {
			return i
		}
	}
	return -1
}

// TrimStep drops every operation before the first one matching kernel; the
// match itself is kept. A step without a match is returned unchanged and
// found is false. Trimming an already trimmed step is a no-op.
func TrimStep(step ProfileStep, kernel string) (trimmed ProfileStep, found bool) {
	idx := TrimIndex(step, kernel)
	if idx < 0 {
		return step, false
	}
	step.Operations = step.Operations[idx:]
	return step, true
}

// TrimSteps trims every step to kernel. An empty kernel leaves all steps
// untouched. When the kernel is found in some steps and missing in others,
// AlignStrict fails with a *TrimError and AlignSkip excludes the steps that
// lack it. When it is found nowhere, all steps are kept untrimmed.
func TrimSteps(steps []ProfileStep, kernel string, policy AlignmentPolicy, log *zap.Logger) ([]ProfileStep, []Exclusion, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if kernel == "" {
		log.Info("trimming disabled", zap.Int("steps", len(steps)))
		return steps, nil, nil
	}

	trimmed := make([]ProfileStep, len(steps))
	var missing []int
	for i, s := range steps {
		before := len(s.Operations)
		t, found := TrimStep(s, kernel)
		trimmed[i] = t
		if !found {
			missing = append(missing, i)
			log.Debug("trim kernel not found",
				zap.Int("step", s.Boundary.Index),
				zap.String("name", s.Boundary.Name),
				zap.Int("operations", before))
			continue
		}
		log.Debug("step trimmed",
			zap.Int("step", s.Boundary.Index),
			zap.String("name", s.Boundary.Name),
			zap.Int("dropped", before-len(t.Operations)),
			zap.Int("operations", len(t.Operations)))
	}

	switch {
	case len(missing) == 0:
		return trimmed, nil, nil
	case len(missing) == len(steps):
		log.Warn("trim kernel not found in any step, keeping steps untrimmed", zap.String("kernel", kernel))
		return steps, nil, nil
	}

	missingIdx := make([]int, len(missing))
	for i, m := range missing {
		missingIdx[i] = steps[m].Boundary.Index
	}
	if policy != AlignSkip {
		return nil, nil, &TrimError{Kernel: kernel, Missing: missingIdx, Found: len(steps) - len(missing)}
	}

	kept := make([]ProfileStep, 0, len(steps)-len(missing))
	var excluded []Exclusion
	next := 0
	for i, s := range trimmed {
		if next < len(missing) && missing[next] == i {
			next++
			excluded = append(excluded, Exclusion{
				StepIndex: s.Boundary.Index,
				StepName:  s.Boundary.Name,
				Reason:    "trim kernel " + kernel + " not found",
			})
			continue
		}
		kept = append(kept, s)
	}
	log.Warn("excluded steps without trim kernel",
		zap.String("kernel", kernel),
		zap.Ints("steps", missingIdx))
	return kept, excluded, nil
}
