package series

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Fetch error taxonomy. The orchestrator classifies per-chart failures with
// errors.Is against these sentinels.
var (
	ErrSourceUnavailable = errors.New("data source unavailable")
	ErrSeriesNotFound    = errors.New("series not found")
	ErrMalformedResponse = errors.New("malformed source response")
)

// Fetcher retrieves a raw series by identifier. Observations strictly before
// start (when non-nil) are trimmed from the result.
type Fetcher interface {
	Fetch(ctx context.Context, id string, start *time.Time) (*RawSeries, error)
}

// DefaultFREDBaseURL is the public CSV endpoint republished by the
// St. Louis Fed for every FRED series.
const DefaultFREDBaseURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"

// FREDFetcher fetches series from FRED's fredgraph CSV endpoint. Responses
// are cached in memory for the lifetime of the fetcher, so a series shared
// by several charts costs one round trip per run.
type FREDFetcher struct {
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	cache map[string][]byte
}

// NewFREDFetcher creates a FRED fetcher. An empty baseURL selects the public
// endpoint.
func NewFREDFetcher(baseURL string) *FREDFetcher {
	if baseURL == "" {
		baseURL = DefaultFREDBaseURL
	}
	return &FREDFetcher{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		cache: make(map[string][]byte),
	}
}

// Fetch retrieves one series and normalizes it into a RawSeries.
func (f *FREDFetcher) Fetch(ctx context.Context, id string, start *time.Time) (*RawSeries, error) {
	body, err := f.fetchBytes(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, err := parseCSVSeries(id, body)
	if err != nil {
		return nil, err
	}

	if start != nil {
		raw.Obs = trimBefore(raw.Obs, *start)
	}
	return raw, nil
}

func (f *FREDFetcher) fetchBytes(ctx context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	if b, ok := f.cache[id]; ok {
		f.mu.Unlock()
		return b, nil
	}
	f.mu.Unlock()

	reqURL := fmt.Sprintf("%s?id=%s", f.baseURL, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s: status %d", ErrSourceUnavailable, id, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: %s: status %d", ErrSeriesNotFound, id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, id, err)
	}

	f.mu.Lock()
	f.cache[id] = body
	f.mu.Unlock()
	return body, nil
}

// parseCSVSeries normalizes the tabular response. The value column header is
// not guaranteed to match the requested identifier, so the singular non-date
// column is selected; more than one candidate is a malformed response rather
// than a best-effort guess.
func parseCSVSeries(id string, body []byte) (*RawSeries, error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, id, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: empty response", ErrSeriesNotFound, id)
	}

	header := records[0]
	rows := records[1:]
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no observations", ErrSeriesNotFound, id)
	}

	dateIdx := findDateColumn(header, rows[0])
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: %s: no date column", ErrMalformedResponse, id)
	}

	valueIdx := -1
	for i := range header {
		if i == dateIdx {
			continue
		}
		if valueIdx >= 0 {
			return nil, fmt.Errorf("%w: %s: ambiguous value columns %q and %q",
				ErrMalformedResponse, id, header[valueIdx], header[i])
		}
		valueIdx = i
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%w: %s: no value column", ErrMalformedResponse, id)
	}

	obs := make([]Observation, 0, len(rows))
	for _, row := range rows {
		if len(row) <= dateIdx || len(row) <= valueIdx {
			return nil, fmt.Errorf("%w: %s: short row", ErrMalformedResponse, id)
		}
		date, err := time.Parse("2006-01-02", row[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: bad date %q", ErrMalformedResponse, id, row[dateIdx])
		}
		o := Observation{Date: date}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64); err == nil {
			o.Value = v
		} else {
			// FRED reports missing values as ".". Keep the date on the axis.
			o.Missing = true
		}
		obs = append(obs, o)
	}

	raw := &RawSeries{
		ID:        id,
		Frequency: inferFrequency(obs),
		Obs:       obs,
	}
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return raw, nil
}

// findDateColumn matches a known date header, falling back to the first
// column whose first data cell parses as a date.
func findDateColumn(header, firstRow []string) int {
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date", "observation_date":
			return i
		}
	}
	for i, cell := range firstRow {
		if _, err := time.Parse("2006-01-02", cell); err == nil {
			return i
		}
	}
	return -1
}

// inferFrequency guesses the native resolution from the median gap between
// consecutive dates. Declared frequency on the ChartSpec always wins for
// transform lookbacks; this is source metadata only.
func inferFrequency(obs []Observation) Frequency {
	if len(obs) < 2 {
		return FreqMonthly
	}
	gaps := 0
	days := 0.0
	for i := 1; i < len(obs); i++ {
		days += obs[i].Date.Sub(obs[i-1].Date).Hours() / 24
		gaps++
	}
	switch avg := days / float64(gaps); {
	case avg <= 3:
		return FreqDaily
	case avg <= 10:
		return FreqWeekly
	case avg <= 45:
		return FreqMonthly
	default:
		return FreqQuarterly
	}
}

func trimBefore(obs []Observation, start time.Time) []Observation {
	i := 0
	for i < len(obs) && obs[i].Date.Before(start) {
		i++
	}
	return obs[i:]
}
