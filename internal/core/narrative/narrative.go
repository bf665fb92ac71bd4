// Package narrative produces optional per-chart commentary text. The
// pipeline treats the result as an opaque string; a generation failure is a
// warning, never a chart failure.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

// Generator produces commentary for one chart from its spec and transformed
// series.
type Generator interface {
	Generate(ctx context.Context, cs series.ChartSpec, ts []*series.TransformedSeries) (string, error)
	GetProviderName() string
}

// seedFacts summarizes the latest defined value of each series for the
// prompt, e.g. "CPI (All Urban): 3.2 Percent as of 2024-06-01".
func seedFacts(ts []*series.TransformedSeries) string {
	var facts []string
	for _, s := range ts {
		label := s.Label
		if label == "" {
			label = s.ID
		}
		if latest, ok := s.Latest(); ok {
			facts = append(facts, fmt.Sprintf("%s: %.1f %s as of %s",
				label, latest.Value, s.Units, latest.Date.Format("2006-01-02")))
		}
	}
	return strings.Join(facts, "; ")
}
