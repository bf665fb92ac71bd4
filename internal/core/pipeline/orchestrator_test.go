package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/macroeconlab/macro-report-be/internal/core/narrative"
	"github.com/macroeconlab/macro-report-be/internal/core/series"
	"github.com/macroeconlab/macro-report-be/internal/core/spec"
)

// stubFetcher serves canned series or canned failures.
type stubFetcher struct {
	data map[string]*series.RawSeries
	errs map[string]error
}

func (s *stubFetcher) Fetch(ctx context.Context, id string, start *time.Time) (*series.RawSeries, error) {
	if err, ok := s.errs[id]; ok {
		return nil, err
	}
	if raw, ok := s.data[id]; ok {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", series.ErrSeriesNotFound, id)
}

func goodSeries(id string) *series.RawSeries {
	obs := make([]series.Observation, 30)
	for i := range obs {
		obs[i] = series.Observation{
			Date:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0),
			Value: 100 + float64(i),
		}
	}
	return &series.RawSeries{ID: id, Frequency: series.FreqMonthly, Obs: obs}
}

func chartFor(title, id string, kind series.TransformKind) series.ChartSpec {
	return series.ChartSpec{
		PageTitle: title,
		Series:    []series.SeriesRef{{ID: id, Label: id}},
		Transform: kind,
		Frequency: series.FreqMonthly,
	}
}

func TestRun_PartialFailure(t *testing.T) {
	fetcher := &stubFetcher{
		data: map[string]*series.RawSeries{"GOOD": goodSeries("GOOD")},
		errs: map[string]error{"BAD": fmt.Errorf("%w: BAD", series.ErrSeriesNotFound)},
	}
	rs := &spec.ReportSpec{
		ReportTitle: "Test Report",
		AsOf:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Charts: []series.ChartSpec{
			chartFor("Good Chart", "GOOD", series.TransformYoY),
			chartFor("Bad Chart", "BAD", series.TransformLevel),
		},
	}

	outcome, doc, err := NewOrchestrator(fetcher, Options{}).Run(context.Background(), rs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.Total != 2 || outcome.Succeeded != 1 {
		t.Errorf("outcome = %d/%d, want 1/2", outcome.Succeeded, outcome.Total)
	}
	if len(outcome.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(outcome.Failures))
	}
	if f := outcome.Failures[0]; f.Key != "BAD" || f.Reason != "series_not_found" {
		t.Errorf("failure = %+v, want BAD/series_not_found", f)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Error("document missing or not a PDF")
	}
	pages := bytes.Count(doc, []byte("/Type /Page")) - bytes.Count(doc, []byte("/Type /Pages"))
	if pages != 2 {
		t.Errorf("page count = %d, want cover + exactly one chart page", pages)
	}
	if outcome.RunID == "" {
		t.Error("outcome has no run ID")
	}
}

func TestRun_AllEntriesFail(t *testing.T) {
	fetcher := &stubFetcher{errs: map[string]error{
		"A": fmt.Errorf("%w: A", series.ErrSourceUnavailable),
		"B": fmt.Errorf("%w: B", series.ErrSeriesNotFound),
	}}
	rs := &spec.ReportSpec{
		ReportTitle: "Test Report",
		AsOf:        time.Now(),
		Charts: []series.ChartSpec{
			chartFor("A Chart", "A", series.TransformLevel),
			chartFor("B Chart", "B", series.TransformLevel),
		},
	}

	outcome, doc, err := NewOrchestrator(fetcher, Options{}).Run(context.Background(), rs)
	if !errors.Is(err, ErrNoUsableCharts) {
		t.Fatalf("err = %v, want ErrNoUsableCharts", err)
	}
	if doc != nil {
		t.Error("no document should be produced on total failure")
	}
	// The summary is still populated so the caller can report what failed.
	if outcome.Total != 2 || len(outcome.Failures) != 2 {
		t.Errorf("outcome = %+v, want 2 recorded failures", outcome)
	}
}

func TestRun_EmptySpecRejected(t *testing.T) {
	rs := &spec.ReportSpec{ReportTitle: "Empty", AsOf: time.Now()}
	_, _, err := NewOrchestrator(&stubFetcher{}, Options{}).Run(context.Background(), rs)
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
}

func TestRun_DuplicateChartsRejected(t *testing.T) {
	rs := &spec.ReportSpec{
		ReportTitle: "Dup",
		AsOf:        time.Now(),
		Charts: []series.ChartSpec{
			chartFor("First", "X", series.TransformLevel),
			chartFor("Second", "X", series.TransformLevel),
		},
	}
	_, _, err := NewOrchestrator(&stubFetcher{}, Options{}).Run(context.Background(), rs)
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
}

func TestRun_TransformFailureIsolated(t *testing.T) {
	short := goodSeries("SHORT")
	short.Obs = short.Obs[:6] // not enough history for YoY
	fetcher := &stubFetcher{data: map[string]*series.RawSeries{
		"GOOD":  goodSeries("GOOD"),
		"SHORT": short,
	}}
	rs := &spec.ReportSpec{
		ReportTitle: "Test",
		AsOf:        time.Now(),
		Charts: []series.ChartSpec{
			chartFor("Short History", "SHORT", series.TransformYoY),
			chartFor("Good Chart", "GOOD", series.TransformYoY),
		},
	}

	outcome, doc, err := NewOrchestrator(fetcher, Options{}).Run(context.Background(), rs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", outcome.Succeeded)
	}
	if outcome.Failures[0].Reason != "insufficient_history" {
		t.Errorf("reason = %q, want insufficient_history", outcome.Failures[0].Reason)
	}
	if doc == nil {
		t.Error("surviving chart should still produce a document")
	}
}

func TestRun_ConcurrentMatchesSequential(t *testing.T) {
	mk := func() (*stubFetcher, *spec.ReportSpec) {
		fetcher := &stubFetcher{data: map[string]*series.RawSeries{}}
		rs := &spec.ReportSpec{
			ReportTitle: "Parallel",
			AsOf:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Charts:      nil,
		}
		for i := 0; i < 6; i++ {
			id := fmt.Sprintf("S%d", i)
			fetcher.data[id] = goodSeries(id)
			rs.Charts = append(rs.Charts, chartFor("Chart "+id, id, series.TransformLevel))
		}
		return fetcher, rs
	}

	seqFetcher, seqSpec := mk()
	_, seqDoc, err := NewOrchestrator(seqFetcher, Options{}).Run(context.Background(), seqSpec)
	if err != nil {
		t.Fatalf("sequential Run: %v", err)
	}

	parFetcher, parSpec := mk()
	_, parDoc, err := NewOrchestrator(parFetcher, Options{Workers: 4}).Run(context.Background(), parSpec)
	if err != nil {
		t.Fatalf("concurrent Run: %v", err)
	}

	// Assembly order is first-class ordinal position, so worker completion
	// order must not show up in the document.
	if !bytes.Equal(seqDoc, parDoc) {
		t.Error("concurrent run produced a different document than sequential")
	}
}

// stubNarrator counts calls and returns fixed commentary.
type stubNarrator struct {
	calls int
	fail  bool
}

func (s *stubNarrator) Generate(ctx context.Context, cs series.ChartSpec, ts []*series.TransformedSeries) (string, error) {
	s.calls++
	if s.fail {
		return "", errors.New("narrative backend down")
	}
	return "Inflation = 3.2%", nil
}

func (s *stubNarrator) GetProviderName() string { return "stub" }

var _ narrative.Generator = (*stubNarrator)(nil)

func TestRun_NarrativeAttached(t *testing.T) {
	fetcher := &stubFetcher{data: map[string]*series.RawSeries{"GOOD": goodSeries("GOOD")}}
	rs := &spec.ReportSpec{
		ReportTitle: "Test",
		AsOf:        time.Now(),
		Charts:      []series.ChartSpec{chartFor("Good Chart", "GOOD", series.TransformLevel)},
	}

	narrator := &stubNarrator{}
	outcome, _, err := NewOrchestrator(fetcher, Options{Narrator: narrator}).Run(context.Background(), rs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if narrator.calls != 1 {
		t.Errorf("narrator called %d times, want 1", narrator.calls)
	}
	if outcome.Succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", outcome.Succeeded)
	}
}

func TestRun_NarrativeFailureIsNonFatal(t *testing.T) {
	fetcher := &stubFetcher{data: map[string]*series.RawSeries{"GOOD": goodSeries("GOOD")}}
	rs := &spec.ReportSpec{
		ReportTitle: "Test",
		AsOf:        time.Now(),
		Charts:      []series.ChartSpec{chartFor("Good Chart", "GOOD", series.TransformLevel)},
	}

	outcome, doc, err := NewOrchestrator(fetcher, Options{Narrator: &stubNarrator{fail: true}}).Run(context.Background(), rs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Succeeded != 1 || doc == nil {
		t.Error("narrative failure must not fail the chart")
	}
}
