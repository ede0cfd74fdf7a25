package stepstats

import (
	"fmt"

	"stepscope/internal/output"
)

// StatsColumns is the column layout of the stats table.
var StatsColumns = []output.Column{
	{Name: "operation_name", Kind: output.KindString},
	{Name: "avg_start_time_us", Kind: output.KindFloat},
	{Name: "avg_end_time_us", Kind: output.KindFloat},
	{Name: "avg_duration_us", Kind: output.KindFloat},
	{Name: "bubble_time_us", Kind: output.KindFloat, HighlightNegative: true},
}

// BuildTable lays out aggregated rows in position order for the writers.
func BuildTable(rows []AggregatedOperation) output.Table {
	t := output.Table{
		Name:    "ProfileStats",
		Columns: StatsColumns,
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.OperationName,
			r.AvgStartTimeUs,
			r.AvgEndTimeUs,
			r.AvgDurationUs,
			r.BubbleTimeUs,
		})
	}
	return t
}

// BuildTimeline converts rows into the stacked bubble/duration chart series.
func BuildTimeline(title string, rows []AggregatedOperation) output.Timeline {
	tl := output.Timeline{
		Title:     title,
		Labels:    make([]string, len(rows)),
		Bubbles:   make([]float64, len(rows)),
		Durations: make([]float64, len(rows)),
	}
	for i, r := range rows {
		tl.Labels[i] = fmt.Sprintf("%d %s", r.Position, truncateString(r.OperationName, 40))
		tl.Bubbles[i] = r.BubbleTimeUs
		tl.Durations[i] = r.AvgDurationUs
	}
	return tl
}
