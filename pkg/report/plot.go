package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
)

// ErrNoChart is returned when a section has nothing to plot.
var ErrNoChart = errors.New("section has no chart")

const (
	plotStackName  = "total"
	othersSeries   = "Others"
	maxPlotAuthors = 20
	fullZoomPct    = 100
	chartWidth     = "1200px"
	chartHeight    = "500px"
)

// heatColors runs from cold to hot.
var heatColors = []string{"#f6efa6", "#d88273", "#bf444c"}

// WritePlot renders section of r as a standalone HTML page.
func WritePlot(w io.Writer, r Report, section Section) error {
	chartList, err := Charts(r, section)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = "gitstats"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(chartList...)

	err = page.Render(w)
	if err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}

	return nil
}

// Charts builds the charts of section.
func Charts(r Report, section Section) ([]components.Charter, error) {
	switch section {
	case SectionAuthors:
		return []components.Charter{authorsChart(r)}, nil
	case SectionMonths:
		return []components.Charter{monthsChart(r)}, nil
	case SectionWeekdays:
		return []components.Charter{weekdaysChart(r)}, nil
	case SectionHours:
		return []components.Charter{hoursChart(r)}, nil
	case SectionHeatMap:
		return []components.Charter{heatMapChart(r)}, nil
	case SectionDetail:
		return nil, fmt.Errorf("%w: %s", ErrNoChart, section)
	default:
		return []components.Charter{
			monthsChart(r), authorsChart(r), weekdaysChart(r), hoursChart(r), heatMapChart(r),
		}, nil
	}
}

func newBar(title, subtitle, xName string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle, Left: "2%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "5px", Left: "40%"}),
		charts.WithGridOpts(opts.Grid{Top: "15%", Bottom: "15%", Left: "5%", Right: "5%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Commits"}),
	)

	return bar
}

// plotAuthors returns the authors drawn as their own series, and whether
// the remaining ones need an Others series.
func plotAuthors(r Report) ([]aggregate.GlobalStat, bool) {
	top := r.Authors
	if len(top) > maxPlotAuthors {
		top = top[:maxPlotAuthors]
	}

	return top, len(top) < r.AuthorsCount
}

func monthsChart(r Report) *charts.Bar {
	top, hasOthers := plotAuthors(r)
	months := r.Months.Months()

	bar := newBar("Commits per month", fmt.Sprintf("Top %d authors", len(top)), "Month")
	bar.SetGlobalOptions(
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct}, opts.DataZoom{Type: "inside"}),
	)
	bar.SetXAxis(months)

	drawn := make([]int, len(months))

	for _, g := range top {
		data := make([]opts.BarData, len(months))

		for i, m := range months {
			stat, _ := r.Months[m].Find(g.Author)
			drawn[i] += stat.CommitsCount
			data[i] = opts.BarData{Value: stat.CommitsCount}
		}

		bar.AddSeries(g.Author.Name, data, charts.WithBarChartOpts(opts.BarChart{Stack: plotStackName}))
	}

	if hasOthers {
		totals := r.Months.GlobalStats()
		data := make([]opts.BarData, len(months))

		for i, m := range months {
			data[i] = opts.BarData{Value: totals[m].CommitsCount - drawn[i]}
		}

		bar.AddSeries(othersSeries, data, charts.WithBarChartOpts(opts.BarChart{Stack: plotStackName}))
	}

	return bar
}

func authorsChart(r Report) *charts.Bar {
	top, _ := plotAuthors(r)

	bar := newBar("Commits per author", "Sorted by "+r.SortBy, "Author")

	names := make([]string, len(top))
	commitsData := make([]opts.BarData, len(top))
	addedData := make([]opts.BarData, len(top))
	deletedData := make([]opts.BarData, len(top))

	for i, g := range top {
		names[i] = g.Author.Name
		commitsData[i] = opts.BarData{Value: g.CommitsCount}
		addedData[i] = opts.BarData{Value: g.Stats.LinesAdded}
		deletedData[i] = opts.BarData{Value: g.Stats.LinesDeleted}
	}

	bar.SetXAxis(names)
	bar.AddSeries("Commits", commitsData)
	bar.AddSeries("Lines added", addedData)
	bar.AddSeries("Lines deleted", deletedData)

	return bar
}

func weekdaysChart(r Report) *charts.Bar {
	days := r.Weekdays.Weekdays()
	totals := r.Weekdays.GlobalStats()

	labels := make([]string, len(days))
	data := make([]opts.BarData, len(days))

	for i, d := range days {
		labels[i] = d.String()
		data[i] = opts.BarData{Value: totals[d].CommitsCount}
	}

	bar := newBar("Commits per weekday", "UTC", "Weekday")
	bar.SetXAxis(labels)
	bar.AddSeries("Commits", data)

	return bar
}

func hoursChart(r Report) *charts.Bar {
	hours := r.Hours.Hours()
	totals := r.Hours.GlobalStats()

	labels := make([]string, len(hours))
	data := make([]opts.BarData, len(hours))

	for i, h := range hours {
		labels[i] = strconv.Itoa(h)
		data[i] = opts.BarData{Value: totals[h].CommitsCount}
	}

	bar := newBar("Commits per hour", "UTC", "Hour")
	bar.SetXAxis(labels)
	bar.AddSeries("Commits", data)

	return bar
}

func heatMapChart(r Report) *charts.HeatMap {
	days := r.Weekdays.Weekdays()

	dayLabels := make([]string, len(days))
	for i, d := range days {
		dayLabels[i] = d.String()[:3]
	}

	hourLabels := make([]string, aggregate.HoursPerDay)
	for h := range hourLabels {
		hourLabels[h] = strconv.Itoa(h)
	}

	peak := 0
	data := make([]opts.HeatMapData, 0, aggregate.DaysPerWeek*aggregate.HoursPerDay)

	for d := range aggregate.DaysPerWeek {
		for h := range aggregate.HoursPerDay {
			n := r.HeatMap[d][h].CommitsCount
			peak = max(peak, n)
			// HeatMapData value is [x, y, value].
			data = append(data, opts.HeatMapData{Value: []any{h, d, n}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Weekday x hour", Subtitle: "Commits, UTC", Left: "2%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      hourLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      dayLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max(peak, 1)),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.AddSeries("Commits", data)

	return hm
}
