package stepstats

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Totals sums the averaged timeline of a result.
type Totals struct {
	BusyUs   float64
	BubbleUs float64
	SpanUs   float64 // end of the last averaged operation
}

// ComputeTotals adds up durations and bubbles over rows.
func ComputeTotals(rows []AggregatedOperation) Totals {
	var t Totals
	for _, r := range rows {
		t.BusyUs += r.AvgDurationUs
		t.BubbleUs += r.BubbleTimeUs
	}
	if len(rows) > 0 {
		t.SpanUs = rows[len(rows)-1].AvgEndTimeUs
	}
	return t
}

// WriteSummary writes a human-readable account of the run.
func (r *Result) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\n=== ProfileStep Analysis Summary ===\n")
	fmt.Fprintf(w, "ProfileSteps found: %d\n", r.StepsFound)
	fmt.Fprintf(w, "Prefill steps dropped: %d\n", r.PrefillDropped)
	fmt.Fprintf(w, "Decode steps retained: %d\n", len(r.Decode))
	if r.TrimKernel == "" {
		fmt.Fprintf(w, "Trim kernel: (none)\n")
	} else {
		fmt.Fprintf(w, "Trim kernel: %s\n", r.TrimKernel)
	}
	fmt.Fprintf(w, "Steps aggregated: %d\n", len(r.Contributing))
	fmt.Fprintf(w, "Operations per step: %d\n", len(r.Rows))

	totals := ComputeTotals(r.Rows)
	fmt.Fprintf(w, "Average busy time: %.3f µs (%.4f ms)\n", totals.BusyUs, totals.BusyUs/1000)
	fmt.Fprintf(w, "Average bubble time: %.3f µs (%.4f ms)\n", totals.BubbleUs, totals.BubbleUs/1000)
	if totals.SpanUs > 0 {
		fmt.Fprintf(w, "Bubble share of span: %.2f%%\n", totals.BubbleUs/totals.SpanUs*100)
	}

	if len(r.Excluded) > 0 {
		fmt.Fprintf(w, "\n=== Excluded Steps ===\n")
		for _, e := range r.Excluded {
			fmt.Fprintf(w, "  [%d] %s: %s\n", e.StepIndex, e.StepName, e.Reason)
		}
	}
	if len(r.NameMismatches) > 0 {
		fmt.Fprintf(w, "\nWarning: %d operation name mismatches across aligned steps\n", len(r.NameMismatches))
	}

	var negative int
	for _, row := range r.Rows {
		if row.BubbleTimeUs < 0 {
			negative++
		}
	}
	if negative > 0 {
		fmt.Fprintf(w, "Warning: %d positions have negative bubble time (overlapping operations)\n", negative)
	}

	writeTypeDistribution(w, r.Rows, totals.BusyUs)
}

func writeTypeDistribution(w io.Writer, rows []AggregatedOperation, busy float64) {
	if len(rows) == 0 || busy <= 0 {
		return
	}
	fmt.Fprintf(w, "\n=== Operation Type Distribution ===\n")

	type typeInfo struct {
		name  string
		count int
		dur   float64
	}
	byType := make(map[string]*typeInfo)
	for _, r := range rows {
		name := categorizeKernel(r.OperationName)
		info, ok := byType[name]
		if !ok {
			info = &typeInfo{name: name}
			byType[name] = info
		}
		info.count++
		info.dur += r.AvgDurationUs
	}

	types := make([]*typeInfo, 0, len(byType))
	for _, t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].dur != types[j].dur {
			return types[i].dur > types[j].dur
		}
		return types[i].name < types[j].name
	})

	for _, t := range types {
		fmt.Fprintf(w, "  %-20s: %4d ops, %.2f µs (%.1f%%)\n", t.name, t.count, t.dur, t.dur/busy*100)
	}
}

// WritePreview prints the first count rows as a fixed-width table.
func WritePreview(w io.Writer, rows []AggregatedOperation, count int) {
	if count <= 0 || len(rows) == 0 {
		return
	}
	count = min(count, len(rows))
	fmt.Fprintf(w, "\n--- Preview (first %d records) ---\n", count)
	fmt.Fprintf(w, "%-50s %12s %12s %12s %12s\n", "Operation", "Start(us)", "End(us)", "Dur(us)", "Bubble(us)")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 98))
	for _, r := range rows[:count] {
		fmt.Fprintf(w, "%-50s %12.3f %12.3f %12.3f %12.3f\n",
			truncateString(r.OperationName, 50),
			r.AvgStartTimeUs, r.AvgEndTimeUs, r.AvgDurationUs, r.BubbleTimeUs)
	}
}

// categorizeKernel buckets an operation by well-known name fragments.
func categorizeKernel(name string) string {
	patterns := []struct {
		substr   string
		category string
	}{
		{"memcpy", "Memcpy"},
		{"memset", "Memset"},
		{"cijk_", "GEMM/BLAS"},
		{"gemm", "GEMM/BLAS"},
		{"triton_", "Triton"},
		{"paged_attention", "PagedAttention"},
		{"fmha", "FlashAttention"},
		{"attention", "Attention"},
		{"elementwise", "Elementwise"},
		{"reduce", "Reduce"},
		{"norm", "Normalization"},
		{"softmax", "Softmax"},
		{"embedding", "Embedding"},
		{"nccl", "Communication"},
		{"allreduce", "Communication"},
		{"copy", "Memory"},
		{"fill", "Memory"},
	}

	lower := strings.ToLower(name)
	for _, p := range patterns {
		if strings.Contains(lower, p.substr) {
			return p.category
		}
	}
	return "Other"
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
