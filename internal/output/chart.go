package output

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Timeline is the averaged step shape to plot: for each position the idle
// gap before the operation and the operation itself, stacked in order.
type Timeline struct {
	Title     string
	Labels    []string
	Bubbles   []float64
	Durations []float64
}

// WriteTimelineChart renders t as a stacked bar chart into an HTML file.
func WriteTimelineChart(path string, t Timeline) error {
	if len(t.Labels) != len(t.Bubbles) || len(t.Labels) != len(t.Durations) {
		return fmt.Errorf("timeline series length mismatch: %d labels, %d bubbles, %d durations",
			len(t.Labels), len(t.Bubbles), len(t.Durations))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: t.Title, Subtitle: "per-position averages (µs)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "µs"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "600px"}),
	)

	bubbles := make([]opts.BarData, len(t.Bubbles))
	for i, v := range t.Bubbles {
		bubbles[i] = opts.BarData{Value: v}
	}
	durations := make([]opts.BarData, len(t.Durations))
	for i, v := range t.Durations {
		durations[i] = opts.BarData{Value: v}
	}

	bar.SetXAxis(t.Labels).
		AddSeries("bubble", bubbles).
		AddSeries("duration", durations)
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "step"}))

	file, err := createFile(path)
	if err != nil {
		return err
	}
	if err := bar.Render(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return file.Close()
}
