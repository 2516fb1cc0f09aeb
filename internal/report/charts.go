package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/timmy/redsift/internal/domain"
)

var labelColors = map[domain.Label]drawing.Color{
	domain.LabelPositive: drawing.ColorFromHex("2e7d32"),
	domain.LabelNeutral:  drawing.ColorFromHex("808080"),
	domain.LabelNegative: drawing.ColorFromHex("c62828"),
}

// RenderCharts renders the time-series and distribution charts for a run into
// the paths carried by the artifact set.
// Parameters:
//   - a: artifact set holding the chart output paths.
//   - records: scored comment records (must be non-empty).
// Returns:
//   - error: non-nil if rendering or a write fails.
func RenderCharts(a Artifacts, records []domain.CommentRecord) error {
	if err := renderTimeSeries(a.TimeChart, records); err != nil {
		return err
	}
	return renderDistribution(a.DistChart, records)
}

// renderTimeSeries plots daily counts of each label over the observed range.
func renderTimeSeries(path string, records []domain.CommentRecord) error {
	days, counts := dailyCounts(records)

	series := make([]chart.Series, 0, len(domain.Labels()))
	for _, label := range domain.Labels() {
		ys := make([]float64, len(days))
		for i, day := range days {
			ys[i] = float64(counts[day][label])
		}
		xs := days
		// go-chart refuses to render a series with fewer than two points;
		// a single observed day is extended by one flat day.
		if len(xs) == 1 {
			xs = append(xs, xs[0].Add(24*time.Hour))
			ys = append(ys, ys[0])
		}
		series = append(series, chart.TimeSeries{
			Name:    string(label),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: labelColors[label],
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:  "Sentiment Over Time",
		Width:  1000,
		Height: 500,
		XAxis:  chart.XAxis{Name: "Date"},
		YAxis:  chart.YAxis{Name: "Number of Comments"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, graph.Render)
}

// renderDistribution plots total counts per label as a bar chart.
func renderDistribution(path string, records []domain.CommentRecord) error {
	totals := make(map[domain.Label]int)
	for _, rec := range records {
		totals[rec.Sentiment]++
	}

	maxTotal := 1
	bars := make([]chart.Value, 0, len(domain.Labels()))
	for _, label := range domain.Labels() {
		if totals[label] > maxTotal {
			maxTotal = totals[label]
		}
		color := labelColors[label]
		bars = append(bars, chart.Value{
			Label: string(label),
			Value: float64(totals[label]),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		})
	}

	graph := chart.BarChart{
		Title:    "Overall Sentiment Distribution",
		Width:    600,
		Height:   400,
		BarWidth: 80,
		YAxis: chart.YAxis{
			Name: "Count",
			// An explicit range keeps the renderer happy when every bar has
			// the same height; the derived range would collapse to zero.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxTotal) * 1.1},
		},
		Bars: bars,
	}

	return renderPNG(path, graph.Render)
}

func renderPNG(path string, render func(chart.RendererProvider, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := render(chart.PNG, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}

// dailyCounts buckets records by calendar day (UTC) and label.
func dailyCounts(records []domain.CommentRecord) ([]time.Time, map[time.Time]map[domain.Label]int) {
	counts := make(map[time.Time]map[domain.Label]int)
	for _, rec := range records {
		day := rec.Date.UTC().Truncate(24 * time.Hour)
		if counts[day] == nil {
			counts[day] = make(map[domain.Label]int)
		}
		counts[day][rec.Sentiment]++
	}

	days := make([]time.Time, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return days, counts
}
