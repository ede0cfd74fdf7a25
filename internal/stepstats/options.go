// Package stepstats aggregates GPU operation timing across ProfileSteps.
//
// A trace is split into per-step operation sequences, prefill steps are
// dropped, each decode step is optionally trimmed to a marker operation, and
// the remaining steps are aligned by position to produce averaged start, end,
// duration and bubble time per operation.
package stepstats

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultDecodeMaxDurationUs is the longest step still counted as decode.
	DefaultDecodeMaxDurationUs = 30000.0

	// DefaultTrimKernel is the marker each decode step is trimmed to.
	DefaultTrimKernel = "recover_decode_task"

	// NoTrimSentinel disables trimming when given as the trim kernel.
	NoTrimSentinel = "none"
)

// AlignmentPolicy decides what happens to steps that cannot be aligned with
// the reference step.
type AlignmentPolicy string

const (
	// AlignStrict fails the run on the first inconsistent step set.
	AlignStrict AlignmentPolicy = "strict"
	// AlignSkip excludes inconsistent steps and reports them.
	AlignSkip AlignmentPolicy = "skip"
)

// ParseAlignmentPolicy validates a policy name.
func ParseAlignmentPolicy(s string) (AlignmentPolicy, error) {
	switch p := AlignmentPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case AlignStrict, AlignSkip:
		return p, nil
	}
	return "", fmt.Errorf("unknown alignment policy %q (want %q or %q)", s, AlignStrict, AlignSkip)
}

// ResolveTrimKernel maps a user-supplied trim argument to the marker used by
// the trimmer: empty selects DefaultTrimKernel, NoTrimSentinel (any case)
// yields "" which disables trimming.
func ResolveTrimKernel(arg string) string {
	switch {
	case arg == "":
		return DefaultTrimKernel
	case strings.EqualFold(arg, NoTrimSentinel):
		return ""
	}
	return arg
}

// Options configures Analyze.
type Options struct {
	DecodeMaxDurationUs float64
	// TrimKernel is the resolved marker substring; empty disables trimming.
	TrimKernel     string
	Alignment      AlignmentPolicy
	NormalizeNames bool
	Logger         *zap.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DecodeMaxDurationUs: DefaultDecodeMaxDurationUs,
		TrimKernel:          DefaultTrimKernel,
		Alignment:           AlignStrict,
		NormalizeNames:      true,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
