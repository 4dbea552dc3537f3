package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoanalysis"
)

const (
	stackName   = "timeline"
	hoursPerDay = 24
)

// Timeline renders the repository timeline as a horizontal Gantt-style bar
// chart: each bar starts at the repository's first user commit, measured in
// days from the earliest one, and spans its duration.
func Timeline(w io.Writer, timeline []repoanalysis.DateRange) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Project timeline", Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Project timeline", Subtitle: "Days of activity per repository"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Days since first commit"}),
	)

	names, offsets, spans := timelineSeries(timeline)

	bar.SetXAxis(names).
		AddSeries("offset", offsets,
			charts.WithBarChartOpts(opts.BarChart{Stack: stackName}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "transparent"})).
		AddSeries("active days", spans,
			charts.WithBarChartOpts(opts.BarChart{Stack: stackName}))
	bar.XYReversal()

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}

	return nil
}

// timelineSeries lists repositories oldest first so the chart reads top-down.
func timelineSeries(timeline []repoanalysis.DateRange) ([]string, []opts.BarData, []opts.BarData) {
	n := len(timeline)
	names := make([]string, n)
	offsets := make([]opts.BarData, n)
	spans := make([]opts.BarData, n)

	var origin time.Time

	for _, d := range timeline {
		if origin.IsZero() || d.StartDate.Before(origin) {
			origin = d.StartDate
		}
	}

	for i, d := range timeline {
		j := n - 1 - i
		names[j] = d.Name
		offsets[j] = opts.BarData{Value: int(d.StartDate.Sub(origin).Hours() / hoursPerDay)}
		spans[j] = opts.BarData{Value: max(d.DurationDays, 1)}
	}

	return names, offsets, spans
}
