package stepstats

import (
	"math"

	"go.uber.org/zap"

	"stepscope/internal/trace"
)

// Classify labels a step duration: at or below maxDecodeUs is decode,
// anything longer is prefill.
func Classify(durationUs, maxDecodeUs float64) Phase {
	if durationUs <= maxDecodeUs {
		return PhaseDecode
	}
	return PhasePrefill
}

// RetainDecode tags every step with its phase and returns the decode steps.
// The number of prefill steps dropped is returned alongside.
func RetainDecode(steps []ProfileStep, maxDecodeUs float64) ([]ProfileStep, int) {
	decode := make([]ProfileStep, 0, len(steps))
	prefill := 0
	for _, s := range steps {
		s.Phase = Classify(s.Boundary.DurationUs, maxDecodeUs)
		if s.Phase == PhasePrefill {
			prefill++
			continue
		}
		decode = append(decode, s)
	}
	return decode, prefill
}

// hintToleranceMs absorbs the rounding of the duration printed in step names.
const hintToleranceMs = 0.01

// CheckDurationHints compares the duration printed in each step name, as in
// "ProfileStep#12[14.950 ms]", with the one measured from the step's args and
// logs every disagreement. Names without a hint are ignored. It returns the
// number of disagreeing steps.
func CheckDurationHints(steps []ProfileStep, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	mismatched := 0
	for _, s := range steps {
		hint, ok := trace.StepDurationHint(s.Boundary.Name)
		if !ok {
			continue
		}
		measured := s.Boundary.DurationUs / 1000
		if math.Abs(hint-measured) <= hintToleranceMs {
			continue
		}
		mismatched++
		log.Debug("step duration differs from name hint",
			zap.Int("step", s.Boundary.Index),
			zap.String("name", s.Boundary.Name),
			zap.Float64("hint_ms", hint),
			zap.Float64("duration_ms", measured))
	}
	return mismatched
}
