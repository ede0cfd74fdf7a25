package stepstats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoSteps           = errors.New("no ProfileStep events found")
	ErrNoDecodeSteps     = errors.New("no decode ProfileStep events found after filtering")
	ErrNoOperations      = errors.New("reference step has no GPU operations")
	ErrAlignmentMismatch = errors.New("operation count mismatch across steps")
	ErrInconsistentTrim  = errors.New("trim kernel found in some steps but not others")
)

// AlignmentMismatch records a step whose operation count differs from the
// reference step after trimming.
type AlignmentMismatch struct {
	StepIndex int
	StepName  string
	Count     int
	Expected  int
}

func (m AlignmentMismatch) Error() string {
	return fmt.Sprintf("step %d (%s) has %d operations, expected %d", m.StepIndex, m.StepName, m.Count, m.Expected)
}

// AlignmentError lists every mismatched step.
type AlignmentError struct {
	Expected   int
	Mismatches []AlignmentMismatch
}

func (e *AlignmentError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.Error()
	}
	return fmt.Sprintf("%v: reference has %d operations; %s", ErrAlignmentMismatch, e.Expected, strings.Join(parts, "; "))
}

func (e *AlignmentError) Unwrap() error { return ErrAlignmentMismatch }

// TrimError lists the steps in which the trim kernel was not found while it
// was found in others.
type TrimError struct {
	Kernel  string
	Missing []int
	Found   int
}

func (e *TrimError) Error() string {
	return fmt.Sprintf("%v: %q missing in steps %v (found in %d)", ErrInconsistentTrim, e.Kernel, e.Missing, e.Found)
}

func (e *TrimError) Unwrap() error { return ErrInconsistentTrim }
