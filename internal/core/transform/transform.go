// Package transform applies the report's statistical transforms to raw
// series: level (identity), year-over-year percent change, and
// quarter-over-quarter change at a seasonally adjusted annual rate.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

var (
	// ErrUnsupportedFrequency is returned for qoq_saar on non-quarterly data;
	// the 4th-power annualization is specific to quarterly frequency.
	ErrUnsupportedFrequency = errors.New("unsupported frequency for transform")
	// ErrInsufficientHistory is returned when the input is shorter than the
	// transform lookback and the result would be entirely empty.
	ErrInsufficientHistory = errors.New("insufficient history for transform")
)

// YoY lookback counts for sub-monthly data are not exact (leap years, 53-week
// years); they are variables rather than literals so callers can tune them.
var (
	WeeklyYoYPeriods = 52
	DailyYoYPeriods  = 365
)

// YoYPeriods returns the number of periods in one year at the declared
// frequency. The lookback must follow the declared frequency: mixing a fixed
// lookback with a different frequency silently produces wrong percentages.
func YoYPeriods(freq series.Frequency) int {
	switch freq {
	case series.FreqQuarterly:
		return 4
	case series.FreqWeekly:
		return WeeklyYoYPeriods
	case series.FreqDaily:
		return DailyYoYPeriods
	default:
		return 12
	}
}

// Apply derives a TransformedSeries from raw using the named transform. The
// output date range is a suffix of the input range, shortened by the
// transform lookback. Missing operands always produce missing results.
func Apply(raw *series.RawSeries, kind series.TransformKind, freq series.Frequency) (*series.TransformedSeries, error) {
	switch kind {
	case series.TransformLevel:
		return level(raw), nil
	case series.TransformYoY:
		return pctChange(raw, kind, YoYPeriods(freq), 1)
	case series.TransformQoQSAAR:
		if freq != series.FreqQuarterly {
			return nil, fmt.Errorf("%w: qoq_saar requires quarterly data, got %s",
				ErrUnsupportedFrequency, freq)
		}
		return pctChange(raw, kind, 1, 4)
	default:
		return nil, fmt.Errorf("unknown transform: %q", kind)
	}
}

func level(raw *series.RawSeries) *series.TransformedSeries {
	obs := make([]series.Observation, len(raw.Obs))
	copy(obs, raw.Obs)
	return &series.TransformedSeries{
		ID:        raw.ID,
		Transform: series.TransformLevel,
		Units:     raw.Units,
		Obs:       obs,
	}
}

// pctChange computes 100*((v[t]/v[t-lookback])^power - 1). power 1 gives the
// plain YoY percent change; power 4 annualizes a quarterly rate.
func pctChange(raw *series.RawSeries, kind series.TransformKind, lookback int, power float64) (*series.TransformedSeries, error) {
	if len(raw.Obs) <= lookback {
		return nil, fmt.Errorf("%w: series %s has %d periods, lookback is %d",
			ErrInsufficientHistory, raw.ID, len(raw.Obs), lookback)
	}

	obs := make([]series.Observation, 0, len(raw.Obs)-lookback)
	for t := lookback; t < len(raw.Obs); t++ {
		cur, prev := raw.Obs[t], raw.Obs[t-lookback]
		o := series.Observation{Date: cur.Date}
		// Non-positive base would divide by zero or flip the sign of the
		// change, so it is treated as undefined.
		if cur.Missing || prev.Missing || prev.Value <= 0 {
			o.Missing = true
		} else {
			o.Value = 100 * (math.Pow(cur.Value/prev.Value, power) - 1)
		}
		obs = append(obs, o)
	}

	return &series.TransformedSeries{
		ID:        raw.ID,
		Transform: kind,
		Units:     "Percent",
		Obs:       obs,
	}, nil
}
