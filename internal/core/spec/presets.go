package spec

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

// Registry maps quick-add preset names to chart specs. It is static
// configuration owned by the caller and passed in where needed, never
// process-wide mutable state.
type Registry map[string]series.ChartSpec

// Names returns the preset names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type presetYAML struct {
	PageTitle string `yaml:"page_title"`
	Series    []struct {
		ID    string `yaml:"id"`
		Label string `yaml:"label"`
	} `yaml:"series"`
	Transform string `yaml:"transform"`
	Frequency string `yaml:"frequency"`
	Units     string `yaml:"units"`
	Notes     string `yaml:"notes"`
}

// LoadPresets reads a preset registry from a YAML file mapping preset name
// to chart definition.
func LoadPresets(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	var wire map[string]presetYAML
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	reg := make(Registry, len(wire))
	for name, p := range wire {
		cj := chartJSON{
			PageTitle: p.PageTitle,
			Transform: p.Transform,
			Frequency: p.Frequency,
			Units:     p.Units,
			Notes:     p.Notes,
		}
		for _, s := range p.Series {
			cj.Series = append(cj.Series, seriesJSON{ID: s.ID, Label: s.Label})
		}
		cs, err := cj.toChartSpec()
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		reg[name] = cs
	}
	return reg, nil
}

// BuiltinPresets returns the stock quick-add charts.
func BuiltinPresets() Registry {
	return Registry{
		"cpi-yoy": {
			PageTitle: "Consumer Price Index (YoY %)",
			Series:    []series.SeriesRef{{ID: "CPIAUCSL", Label: "CPI, All Urban Consumers"}},
			Transform: series.TransformYoY,
			Frequency: series.FreqMonthly,
			Units:     "Percent",
		},
		"real-gdp": {
			PageTitle: "Real GDP Growth (QoQ SAAR %)",
			Series:    []series.SeriesRef{{ID: "GDPC1", Label: "Real Gross Domestic Product"}},
			Transform: series.TransformQoQSAAR,
			Frequency: series.FreqQuarterly,
			Units:     "Percent",
		},
		"payrolls": {
			PageTitle: "Total Nonfarm Payrolls",
			Series:    []series.SeriesRef{{ID: "PAYEMS", Label: "All Employees, Total Nonfarm"}},
			Transform: series.TransformLevel,
			Frequency: series.FreqMonthly,
			Units:     "Thousands of Persons",
		},
		"unemployment": {
			PageTitle: "Unemployment Rate",
			Series:    []series.SeriesRef{{ID: "UNRATE", Label: "Unemployment Rate"}},
			Transform: series.TransformLevel,
			Frequency: series.FreqMonthly,
			Units:     "Percent",
		},
	}
}
