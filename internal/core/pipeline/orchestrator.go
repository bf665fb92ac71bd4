// Package pipeline drives each chart entry of a report specification through
// fetch, transform, render, and assembly, isolating per-entry failures so one
// bad series never halts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/macroeconlab/macro-report-be/internal/core/chart"
	"github.com/macroeconlab/macro-report-be/internal/core/export"
	"github.com/macroeconlab/macro-report-be/internal/core/narrative"
	"github.com/macroeconlab/macro-report-be/internal/core/report"
	"github.com/macroeconlab/macro-report-be/internal/core/series"
	"github.com/macroeconlab/macro-report-be/internal/core/spec"
	"github.com/macroeconlab/macro-report-be/internal/core/transform"
)

var (
	// ErrInvalidSpec is fatal: empty specification or duplicate chart keys.
	ErrInvalidSpec = errors.New("invalid report specification")
	// ErrNoUsableCharts is fatal: every entry failed, no document produced.
	ErrNoUsableCharts = errors.New("no usable charts")
)

// Options tunes one pipeline run.
type Options struct {
	// Workers bounds concurrent entry processing. Values below 2 select the
	// sequential baseline. Entries share no mutable state, so concurrency is
	// purely a throughput optimization.
	Workers int
	// Start trims fetched data before this date when the chart spec has no
	// start of its own.
	Start *time.Time
	// Narrator, when set, supplies per-chart narrative text. Narrative
	// failures are warnings, never chart failures.
	Narrator narrative.Generator
	// DataExportPath, when set, also writes the surviving transformed series
	// as a data appendix (.csv or .xlsx).
	DataExportPath string
}

// Orchestrator wires the pipeline components together.
type Orchestrator struct {
	fetcher   series.Fetcher
	renderer  *chart.Renderer
	assembler *report.Assembler
	opts      Options
}

// NewOrchestrator creates an orchestrator around a fetcher.
func NewOrchestrator(fetcher series.Fetcher, opts Options) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		renderer:  chart.NewRenderer(),
		assembler: report.NewAssembler(),
		opts:      opts,
	}
}

// entryResult is the per-chart slot a worker writes into. Results are
// indexed by specification position, so assembly order never depends on
// completion order.
type entryResult struct {
	state       State
	entry       *series.ReportEntry
	transformed []*series.TransformedSeries
	err         error
}

// Run processes every chart in the specification and assembles the
// survivors. The RunOutcome summary is returned even when the run fails, so
// callers can report partial failures.
func (o *Orchestrator) Run(ctx context.Context, rs *spec.ReportSpec) (*series.RunOutcome, []byte, error) {
	outcome := &series.RunOutcome{
		RunID: uuid.NewString(),
		Total: len(rs.Charts),
	}

	if err := validateSpec(rs); err != nil {
		return outcome, nil, err
	}

	log.Info().Str("run_id", outcome.RunID).Int("charts", len(rs.Charts)).
		Str("title", rs.ReportTitle).Msg("Starting report run")

	results := make([]*entryResult, len(rs.Charts))
	if o.opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.opts.Workers)
		for i := range rs.Charts {
			i := i
			g.Go(func() error {
				results[i] = o.processEntry(gctx, rs.Charts[i], i)
				return nil
			})
		}
		// Workers never return errors; per-entry failures live in results.
		_ = g.Wait()
	} else {
		for i := range rs.Charts {
			results[i] = o.processEntry(ctx, rs.Charts[i], i)
		}
	}

	var survivors []*series.ReportEntry
	var appendix []export.ChartData
	for i, res := range results {
		cs := rs.Charts[i]
		if res.err != nil {
			outcome.Failures = append(outcome.Failures, series.Failure{
				Key:    cs.Key(),
				Title:  cs.PageTitle,
				Reason: failureReason(res.err),
			})
			continue
		}
		outcome.Succeeded++
		survivors = append(survivors, res.entry)
		appendix = append(appendix, export.ChartData{
			Title:  cs.PageTitle,
			Series: res.transformed,
		})
	}

	if len(survivors) == 0 {
		log.Error().Str("run_id", outcome.RunID).Int("failed", len(outcome.Failures)).
			Msg("No charts survived the run")
		return outcome, nil, ErrNoUsableCharts
	}

	doc, err := o.assembler.Assemble(survivors, rs.ReportTitle, rs.AsOf)
	if err != nil {
		return outcome, nil, fmt.Errorf("failed to assemble report: %w", err)
	}
	for _, res := range results {
		if res.err == nil {
			res.state = StateAssembled
		}
	}

	if o.opts.DataExportPath != "" {
		if err := export.WriteFile(o.opts.DataExportPath, appendix); err != nil {
			// The document is already built; a bad appendix should not
			// discard it.
			log.Warn().Err(err).Str("path", o.opts.DataExportPath).Msg("Data appendix export failed")
		}
	}

	log.Info().Str("run_id", outcome.RunID).
		Int("succeeded", outcome.Succeeded).Int("failed", len(outcome.Failures)).
		Msg("Report run finished")
	return outcome, doc, nil
}

func (o *Orchestrator) processEntry(ctx context.Context, cs series.ChartSpec, pos int) *entryResult {
	res := &entryResult{state: StatePending}
	logger := log.With().Strs("series", cs.SeriesIDs()).Str("title", cs.PageTitle).Logger()

	fail := func(err error) *entryResult {
		res.state = StateFailed
		res.err = err
		logger.Warn().Err(err).Str("reason", failureReason(err)).Msg("Chart failed, skipping")
		return res
	}

	start := cs.Start
	if start == nil {
		start = o.opts.Start
	}

	for _, ref := range cs.Series {
		raw, err := o.fetcher.Fetch(ctx, ref.ID, start)
		if err != nil {
			return fail(err)
		}
		res.state = StateFetched

		ts, err := transform.Apply(raw, cs.Transform, cs.Frequency)
		if err != nil {
			return fail(err)
		}
		ts.Label = ref.Label
		res.transformed = append(res.transformed, ts)
	}
	res.state = StateTransformed
	logger.Debug().Str("state", res.state.String()).Msg("Series transformed")

	artifact, err := o.renderer.Render(res.transformed, cs.PageTitle, cs.Units, cs.Notes)
	if err != nil {
		return fail(err)
	}
	res.state = StateRendered
	logger.Debug().Str("state", res.state.String()).Msg("Chart rendered")

	res.entry = &series.ReportEntry{Artifact: artifact, Position: pos}
	if o.opts.Narrator != nil {
		text, err := o.opts.Narrator.Generate(ctx, cs, res.transformed)
		if err != nil {
			logger.Warn().Err(err).Msg("Narrative generation failed, page will have no commentary")
		} else {
			res.entry.Narrative = text
		}
	}
	return res
}

// validateSpec rejects malformed input up front: an empty chart list and
// duplicate chart keys (the per-run artifact store is keyed by them).
func validateSpec(rs *spec.ReportSpec) error {
	if len(rs.Charts) == 0 {
		return fmt.Errorf("%w: no charts", ErrInvalidSpec)
	}
	seen := make(map[string]bool, len(rs.Charts))
	for _, cs := range rs.Charts {
		key := cs.Key()
		if seen[key] {
			return fmt.Errorf("%w: duplicate chart %q", ErrInvalidSpec, key)
		}
		seen[key] = true
	}
	return nil
}

// failureReason maps an error to its taxonomy name for the run summary.
func failureReason(err error) string {
	switch {
	case errors.Is(err, series.ErrSeriesNotFound):
		return "series_not_found"
	case errors.Is(err, series.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, series.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, transform.ErrUnsupportedFrequency):
		return "unsupported_frequency"
	case errors.Is(err, transform.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, chart.ErrEmptySeries):
		return "empty_series"
	default:
		return "internal"
	}
}
