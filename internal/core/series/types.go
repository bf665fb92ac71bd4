package series

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is the native or declared periodicity of a time series.
type Frequency string

const (
	FreqDaily     Frequency = "daily"
	FreqWeekly    Frequency = "weekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
)

// ParseFrequency normalizes a frequency string ("m", "monthly", "Q", ...).
func ParseFrequency(s string) (Frequency, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); {
	case strings.HasPrefix(f, "d"):
		return FreqDaily, nil
	case strings.HasPrefix(f, "w"):
		return FreqWeekly, nil
	case strings.HasPrefix(f, "m"):
		return FreqMonthly, nil
	case strings.HasPrefix(f, "q"):
		return FreqQuarterly, nil
	default:
		return "", fmt.Errorf("unknown frequency: %q", s)
	}
}

// TransformKind names one of the supported statistical transforms.
type TransformKind string

const (
	TransformLevel   TransformKind = "level"
	TransformYoY     TransformKind = "yoy"
	TransformQoQSAAR TransformKind = "qoq_saar"
)

// ParseTransform validates a transform name.
func ParseTransform(s string) (TransformKind, error) {
	switch TransformKind(strings.ToLower(strings.TrimSpace(s))) {
	case TransformLevel:
		return TransformLevel, nil
	case TransformYoY:
		return TransformYoY, nil
	case TransformQoQSAAR:
		return TransformQoQSAAR, nil
	default:
		return "", fmt.Errorf("unknown transform: %q", s)
	}
}

// Observation is a single (date, value) point. A value the source reports
// with a non-numeric placeholder is kept on the date axis with Missing set,
// so lookback-based transforms still line up.
type Observation struct {
	Date    time.Time
	Value   float64
	Missing bool
}

// RawSeries is a fetched series in canonical form. Immutable after creation;
// dates are strictly increasing.
type RawSeries struct {
	ID        string
	Units     string
	Frequency Frequency
	Obs       []Observation
}

// Validate checks the strictly-increasing date invariant.
func (r *RawSeries) Validate() error {
	for i := 1; i < len(r.Obs); i++ {
		if !r.Obs[i].Date.After(r.Obs[i-1].Date) {
			return fmt.Errorf("series %s: dates not strictly increasing at %s",
				r.ID, r.Obs[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// SeriesRef pairs a source identifier with a display label.
type SeriesRef struct {
	ID    string
	Label string
}

// ChartSpec is one declarative report entry. Owned by the caller and
// read-only to the pipeline.
type ChartSpec struct {
	PageTitle string
	Series    []SeriesRef
	Transform TransformKind
	Frequency Frequency
	Units     string
	Notes     string
	Start     *time.Time
}

// Key identifies a chart within one specification. Duplicate keys in a
// specification are a caller error rejected by the orchestrator.
func (c ChartSpec) Key() string {
	ids := make([]string, len(c.Series))
	for i, s := range c.Series {
		ids[i] = s.ID
	}
	return strings.Join(ids, "+")
}

// SeriesIDs returns the identifiers referenced by the chart, in order.
func (c ChartSpec) SeriesIDs() []string {
	ids := make([]string, len(c.Series))
	for i, s := range c.Series {
		ids[i] = s.ID
	}
	return ids
}

// TransformedSeries is a RawSeries after one named transform. Its date range
// is a suffix of the input range, shortened by the transform lookback.
type TransformedSeries struct {
	ID        string
	Label     string
	Transform TransformKind
	Units     string
	Obs       []Observation
}

// AllMissing reports whether no observation carries a defined value.
func (t *TransformedSeries) AllMissing() bool {
	for _, o := range t.Obs {
		if !o.Missing {
			return false
		}
	}
	return true
}

// Latest returns the most recent defined observation, if any.
func (t *TransformedSeries) Latest() (Observation, bool) {
	for i := len(t.Obs) - 1; i >= 0; i-- {
		if !t.Obs[i].Missing {
			return t.Obs[i], true
		}
	}
	return Observation{}, false
}

// ChartArtifact is a rendered chart image plus the presentation metadata the
// assembler needs for page layout. Immutable once rendered.
type ChartArtifact struct {
	PNG   []byte
	Title string
	Units string
	Notes string
}

// ReportEntry pairs a rendered artifact with optional narrative text and an
// explicit ordinal position. Position is the only mutable field; the
// assembler re-reads it at call time so reordering never requires a
// re-render.
type ReportEntry struct {
	Artifact  *ChartArtifact
	Narrative string
	Position  int
}

// Failure records one chart that did not survive the pipeline.
type Failure struct {
	Key    string
	Title  string
	Reason string
}

// RunOutcome is the machine-readable summary of one pipeline invocation.
type RunOutcome struct {
	RunID     string
	Total     int
	Succeeded int
	Failures  []Failure
}
