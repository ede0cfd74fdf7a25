// Package trace loads PyTorch Profiler JSON traces and classifies their
// events into GPU operations and ProfileStep boundaries.
package trace

// Event categories and phases recognized in a PyTorch Profiler trace.
const (
	CategoryKernel      = "Kernel"
	CategoryMemcpy      = "Memcpy"
	CategoryMemset      = "Memset"
	CategoryProfileStep = "ProfileStep"

	// PhaseComplete marks a complete event carrying its own duration.
	PhaseComplete = "X"
)

// RawEvent is one element of the traceEvents array
type RawEvent struct {
	Name     string                 `json:"name"`
	Category string                 `json:"cat"`
	Phase    string                 `json:"ph"`
	Args     map[string]interface{} `json:"args,omitempty"`
}

// arg returns a string-valued argument, or false if it is absent or not a string.
func (e RawEvent) arg(key string) (string, bool) {
	if e.Args == nil {
		return "", false
	}
	v, ok := e.Args[key].(string)
	return v, ok
}

// GpuOperation is a kernel, memcpy or memset executed on the device.
// Times are absolute microseconds as recorded by the profiler.
type GpuOperation struct {
	KernelName  string
	Category    string
	StartTimeUs float64
	EndTimeUs   float64
	DurationUs  float64
}

// StepBoundary is the time window of one ProfileStep marker.
type StepBoundary struct {
	Index       int // order of appearance among boundaries
	Name        string
	StartTimeUs float64
	EndTimeUs   float64
	DurationUs  float64
}

// Contains reports whether t lies inside the closed window [start, end].
func (b StepBoundary) Contains(t float64) bool {
	return t >= b.StartTimeUs && t <= b.EndTimeUs
}
