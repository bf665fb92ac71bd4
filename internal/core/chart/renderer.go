// Package chart renders transformed series into PNG chart artifacts for the
// report assembler.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

// ErrEmptySeries is returned when every value of every series is missing
// after the transform. Expected and non-fatal: the orchestrator logs it and
// skips the chart.
var ErrEmptySeries = errors.New("no plottable values in series")

// palette is indexed by series order, so rendering is deterministic for a
// given input.
var palette = []drawing.Color{
	{R: 0x0b, G: 0x2e, B: 0x5e, A: 0xff},
	{R: 0xc0, G: 0x3a, B: 0x2b, A: 0xff},
	{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff},
	{R: 0xe6, G: 0x8a, B: 0x00, A: 0xff},
	{R: 0x5e, G: 0x35, B: 0xb1, A: 0xff},
}

// Renderer draws one-or-more series line charts at a fixed canvas size.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer with the report's standard canvas.
func NewRenderer() *Renderer {
	return &Renderer{width: 1050, height: 650}
}

// Render draws the series onto one shared time axis and returns the PNG
// artifact. Missing observations break the line: each maximal run of defined
// values is drawn as its own segment in the series color, and an isolated
// defined value is drawn as a marker. Notes are carried on the artifact for
// page layout, not drawn on the canvas.
func (r *Renderer) Render(ts []*series.TransformedSeries, title, units, notes string) (*series.ChartArtifact, error) {
	allMissing := true
	for _, s := range ts {
		if !s.AllMissing() {
			allMissing = false
			break
		}
	}
	if len(ts) == 0 || allMissing {
		return nil, fmt.Errorf("%w: %s", ErrEmptySeries, title)
	}

	var plots []chart.Series
	plotted := 0
	for i, s := range ts {
		segs := definedSegments(s)
		if len(segs) == 0 {
			continue
		}
		plotted++
		name := s.Label
		if name == "" {
			name = s.ID
		}
		color := palette[i%len(palette)]
		for j, seg := range segs {
			style := chart.Style{
				StrokeColor: color,
				StrokeWidth: 1.5,
			}
			if len(seg.xs) == 1 {
				// Stroking a one-point path draws nothing, so an isolated
				// value gets a dot marker instead.
				style.DotColor = color
				style.DotWidth = 4
			}
			plot := chart.TimeSeries{
				XValues: seg.xs,
				YValues: seg.ys,
				Style:   style,
			}
			// Only the first segment is named; unnamed continuation
			// segments keep the legend to one entry per series.
			if j == 0 {
				plot.Name = name
			}
			plots = append(plots, plot)
		}
	}
	if len(plots) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySeries, title)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		YAxis: chart.YAxis{
			Name: units,
		},
		Series: plots,
	}
	widenDegenerateRanges(&graph, plots)
	if plotted > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart %q: %w", title, err)
	}

	return &series.ChartArtifact{
		PNG:   buf.Bytes(),
		Title: title,
		Units: units,
		Notes: notes,
	}, nil
}

// segment is one maximal run of defined observations.
type segment struct {
	xs []time.Time
	ys []float64
}

// definedSegments splits a series at its missing observations, so the
// plotted line breaks at a gap instead of bridging it.
func definedSegments(s *series.TransformedSeries) []segment {
	var segs []segment
	var cur segment
	flush := func() {
		if len(cur.xs) > 0 {
			segs = append(segs, cur)
			cur = segment{}
		}
	}
	for _, o := range s.Obs {
		if o.Missing {
			flush()
			continue
		}
		cur.xs = append(cur.xs, o.Date)
		cur.ys = append(cur.ys, o.Value)
	}
	flush()
	return segs
}

// widenDegenerateRanges pins explicit axis ranges when every plotted point
// shares one x or one y value. go-chart rejects zero-delta ranges, which
// would otherwise fail a single-point chart or a perfectly flat series.
func widenDegenerateRanges(graph *chart.Chart, plots []chart.Series) {
	var minX, maxX time.Time
	var minY, maxY float64
	first := true
	for _, p := range plots {
		ts := p.(chart.TimeSeries)
		for i, x := range ts.XValues {
			y := ts.YValues[i]
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			if x.Before(minX) {
				minX = x
			}
			if x.After(maxX) {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if first {
		return
	}
	if minX.Equal(maxX) {
		pad := 15 * 24 * time.Hour
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: float64(minX.Add(-pad).UnixNano()),
			Max: float64(maxX.Add(pad).UnixNano()),
		}
	}
	if minY == maxY {
		pad := 1.0
		graph.YAxis.Range = &chart.ContinuousRange{
			Min: minY - pad,
			Max: maxY + pad,
		}
	}
}
