package spec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

func TestParse_AppliesDefaults(t *testing.T) {
	doc := `{
		"report_title": "Macro Economic Data Archive",
		"as_of": "2024-06-01",
		"charts": [
			{
				"page_title": "Consumer Price Index (YoY %)",
				"series": [{"id": "CPIAUCSL", "label": "CPI, All Urban"}],
				"transform": "yoy",
				"units": "Percent"
			},
			{
				"page_title": "Total Nonfarm Payrolls",
				"series": [{"id": "PAYEMS"}]
			}
		]
	}`

	rs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if rs.ReportTitle != "Macro Economic Data Archive" {
		t.Errorf("ReportTitle = %q", rs.ReportTitle)
	}
	if !rs.AsOf.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("AsOf = %v", rs.AsOf)
	}

	want := []series.ChartSpec{
		{
			PageTitle: "Consumer Price Index (YoY %)",
			Series:    []series.SeriesRef{{ID: "CPIAUCSL", Label: "CPI, All Urban"}},
			Transform: series.TransformYoY,
			Frequency: series.FreqMonthly,
			Units:     "Percent",
		},
		{
			PageTitle: "Total Nonfarm Payrolls",
			Series:    []series.SeriesRef{{ID: "PAYEMS"}},
			Transform: series.TransformLevel,
			Frequency: series.FreqMonthly,
		},
	}
	if diff := cmp.Diff(want, rs.Charts); diff != "" {
		t.Errorf("charts mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TitleDefault(t *testing.T) {
	rs, err := Parse(strings.NewReader(`{"charts": [{"page_title": "X", "series": [{"id": "A"}]}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rs.ReportTitle != DefaultReportTitle {
		t.Errorf("ReportTitle = %q, want default", rs.ReportTitle)
	}
}

func TestParse_PerChartStart(t *testing.T) {
	doc := `{"charts": [{"page_title": "X", "series": [{"id": "A"}], "start": "2000-01-01"}]}`
	rs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rs.Charts[0].Start == nil || !rs.Charts[0].Start.Equal(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", rs.Charts[0].Start)
	}
}

func TestParse_Rejections(t *testing.T) {
	cases := map[string]string{
		"unknown transform": `{"charts": [{"page_title": "X", "series": [{"id": "A"}], "transform": "delta"}]}`,
		"unknown frequency": `{"charts": [{"page_title": "X", "series": [{"id": "A"}], "frequency": "hourly"}]}`,
		"missing title":     `{"charts": [{"series": [{"id": "A"}]}]}`,
		"no series":         `{"charts": [{"page_title": "X"}]}`,
		"empty series id":   `{"charts": [{"page_title": "X", "series": [{"label": "A"}]}]}`,
		"bad as_of":         `{"as_of": "June 2024", "charts": [{"page_title": "X", "series": [{"id": "A"}]}]}`,
		"bad start":         `{"charts": [{"page_title": "X", "series": [{"id": "A"}], "start": "2000"}]}`,
	}
	for name, doc := range cases {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBuiltinPresets(t *testing.T) {
	reg := BuiltinPresets()
	cpi, ok := reg["cpi-yoy"]
	if !ok {
		t.Fatal("cpi-yoy preset missing")
	}
	if cpi.Transform != series.TransformYoY || cpi.Series[0].ID != "CPIAUCSL" {
		t.Errorf("cpi-yoy = %+v", cpi)
	}

	names := reg.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatal("Names() not sorted")
		}
	}
}

func TestLoadPresets(t *testing.T) {
	doc := `
gdp-growth:
  page_title: Real GDP Growth
  transform: qoq_saar
  frequency: quarterly
  units: Percent
  series:
    - id: GDPC1
      label: Real GDP
`
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	got, ok := reg["gdp-growth"]
	if !ok {
		t.Fatal("gdp-growth preset missing")
	}
	want := series.ChartSpec{
		PageTitle: "Real GDP Growth",
		Series:    []series.SeriesRef{{ID: "GDPC1", Label: "Real GDP"}},
		Transform: series.TransformQoQSAAR,
		Frequency: series.FreqQuarterly,
		Units:     "Percent",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preset mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPresets_InvalidChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte("bad:\n  page_title: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresets(path); err == nil {
		t.Error("preset without series should be rejected")
	}
}
