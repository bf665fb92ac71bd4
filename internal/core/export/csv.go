package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

// CSVExporter writes one section per chart: a comment line with the chart
// title, a DATE+labels header, then one row per date. Missing values stay
// empty cells so the date axis is preserved.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Export(charts []ChartData, writer io.Writer) error {
	w := csv.NewWriter(writer)
	for i, c := range charts {
		if i > 0 {
			// Blank line between chart sections.
			if _, err := fmt.Fprintln(writer); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(writer, "# %s\n", c.Title); err != nil {
			return err
		}
		if err := w.Write(headerRow(c.Series)); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, row := range dataRows(c.Series) {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		w.Flush()
	}
	return w.Error()
}

func (e *CSVExporter) GetContentType() string {
	return "text/csv"
}

func (e *CSVExporter) GetFileExtension() string {
	return ".csv"
}

func headerRow(ts []*series.TransformedSeries) []string {
	header := []string{"DATE"}
	for _, s := range ts {
		label := s.Label
		if label == "" {
			label = s.ID
		}
		header = append(header, label)
	}
	return header
}

// mergedRow is one union-axis date with one value slot per series; nil
// marks a missing or absent value.
type mergedRow struct {
	date   string
	values []*float64
}

// mergeRows merges the series onto one union date axis in ascending date
// order, one value column per series. Values stay numeric so the Excel
// exporter can write real number cells; the CSV exporter stringifies them.
func mergeRows(ts []*series.TransformedSeries) []mergedRow {
	dates := make(map[string]bool)
	byDate := make([]map[string]float64, len(ts))
	for i, s := range ts {
		byDate[i] = make(map[string]float64, len(s.Obs))
		for _, o := range s.Obs {
			d := o.Date.Format("2006-01-02")
			dates[d] = true
			if !o.Missing {
				byDate[i][d] = o.Value
			}
		}
	}

	ordered := make([]string, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Strings(ordered)

	rows := make([]mergedRow, 0, len(ordered))
	for _, d := range ordered {
		row := mergedRow{date: d, values: make([]*float64, len(ts))}
		for i := range ts {
			if v, ok := byDate[i][d]; ok {
				row.values[i] = &v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// dataRows is the CSV rendering of mergeRows: empty cells for missing or
// absent dates.
func dataRows(ts []*series.TransformedSeries) [][]string {
	merged := mergeRows(ts)
	rows := make([][]string, 0, len(merged))
	for _, m := range merged {
		row := []string{m.date}
		for _, v := range m.values {
			if v == nil {
				row = append(row, "")
			} else {
				row = append(row, strconv.FormatFloat(*v, 'f', -1, 64))
			}
		}
		rows = append(rows, row)
	}
	return rows
}
