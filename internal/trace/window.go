package trace

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"stepscope/internal/output"
)

// Window is a closed time range in absolute microseconds.
type Window struct {
	StartUs float64
	EndUs   float64
}

// ParseWindow parses "<start_us>,<end_us>".
func ParseWindow(s string) (Window, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid time range %q: expected start,end", s)
	}
	start, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Window{}, fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Window{}, fmt.Errorf("invalid range end %q: %w", parts[1], err)
	}
	if end < start {
		return Window{}, fmt.Errorf("invalid time range %q: end before start", s)
	}
	return Window{StartUs: start, EndUs: end}, nil
}

// Intersects reports whether [op.start, op.end] overlaps the window.
func (w Window) Intersects(op GpuOperation) bool {
	return op.StartTimeUs <= w.EndUs && op.EndTimeUs >= w.StartUs
}

// ExtractWindow returns the operations overlapping w, sorted by start time.
// Operations starting at the same time keep their input order.
func ExtractWindow(ops []GpuOperation, w Window) []GpuOperation {
	var out []GpuOperation
	for _, op := range ops {
		if w.Intersects(op) {
			out = append(out, op)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTimeUs < out[j].StartTimeUs
	})
	return out
}

// OperationColumns is the column layout of the extract table.
var OperationColumns = []output.Column{
	{Name: "kernel_name", Kind: output.KindString},
	{Name: "start_time_us", Kind: output.KindFloat},
	{Name: "end_time_us", Kind: output.KindFloat},
	{Name: "duration_us", Kind: output.KindFloat},
}

// OperationsTable lays out ops for the output writers.
func OperationsTable(ops []GpuOperation) output.Table {
	t := output.Table{
		Name:    "Operations",
		Columns: OperationColumns,
		Rows:    make([][]interface{}, 0, len(ops)),
	}
	for _, op := range ops {
		t.Rows = append(t.Rows, []interface{}{op.KernelName, op.StartTimeUs, op.EndTimeUs, op.DurationUs})
	}
	return t
}
