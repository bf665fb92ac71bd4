// Package spec loads and validates the declarative report specification: a
// JSON document naming the report and its ordered chart entries, plus a
// quick-add preset registry.
package spec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

// DefaultReportTitle is used when the specification omits report_title.
const DefaultReportTitle = "Macro Economic Data Archive"

// ReportSpec is a parsed, validated specification. Consumed verbatim by the
// pipeline, never mutated.
type ReportSpec struct {
	ReportTitle string
	AsOf        time.Time
	Charts      []series.ChartSpec
}

// Wire format of the JSON specification file.
type reportJSON struct {
	ReportTitle string      `json:"report_title"`
	AsOf        string      `json:"as_of"`
	Charts      []chartJSON `json:"charts"`
}

type chartJSON struct {
	PageTitle string       `json:"page_title"`
	Series    []seriesJSON `json:"series"`
	Transform string       `json:"transform"`
	Frequency string       `json:"frequency"`
	Units     string       `json:"units"`
	Notes     string       `json:"notes"`
	Start     string       `json:"start"`
}

type seriesJSON struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Load reads and parses a specification file.
func Load(path string) (*ReportSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spec file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a specification, applying the original defaults: transform
// "level", frequency "monthly", as-of today.
func Parse(r io.Reader) (*ReportSpec, error) {
	var wire reportJSON
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}

	out := &ReportSpec{
		ReportTitle: wire.ReportTitle,
		AsOf:        time.Now(),
	}
	if out.ReportTitle == "" {
		out.ReportTitle = DefaultReportTitle
	}
	if wire.AsOf != "" {
		asOf, err := time.Parse("2006-01-02", wire.AsOf)
		if err != nil {
			return nil, fmt.Errorf("invalid as_of date %q: %w", wire.AsOf, err)
		}
		out.AsOf = asOf
	}

	for i, c := range wire.Charts {
		cs, err := c.toChartSpec()
		if err != nil {
			return nil, fmt.Errorf("chart %d (%s): %w", i+1, c.PageTitle, err)
		}
		out.Charts = append(out.Charts, cs)
	}
	return out, nil
}

func (c chartJSON) toChartSpec() (series.ChartSpec, error) {
	cs := series.ChartSpec{
		PageTitle: c.PageTitle,
		Units:     c.Units,
		Notes:     c.Notes,
		Transform: series.TransformLevel,
		Frequency: series.FreqMonthly,
	}
	if c.PageTitle == "" {
		return cs, fmt.Errorf("page_title is required")
	}
	if len(c.Series) == 0 {
		return cs, fmt.Errorf("at least one series is required")
	}
	for _, s := range c.Series {
		if s.ID == "" {
			return cs, fmt.Errorf("series id is required")
		}
		cs.Series = append(cs.Series, series.SeriesRef{ID: s.ID, Label: s.Label})
	}
	if c.Transform != "" {
		kind, err := series.ParseTransform(c.Transform)
		if err != nil {
			return cs, err
		}
		cs.Transform = kind
	}
	if c.Frequency != "" {
		freq, err := series.ParseFrequency(c.Frequency)
		if err != nil {
			return cs, err
		}
		cs.Frequency = freq
	}
	if c.Start != "" {
		start, err := time.Parse("2006-01-02", c.Start)
		if err != nil {
			return cs, fmt.Errorf("invalid start date %q: %w", c.Start, err)
		}
		cs.Start = &start
	}
	return cs, nil
}
