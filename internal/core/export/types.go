// Package export writes the transformed series behind a report's surviving
// charts as a tabular data appendix (CSV or Excel).
package export

import (
	"fmt"
	"io"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

// Format is the appendix file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ChartData is the exportable data of one chart: its transformed series on
// their own date axes.
type ChartData struct {
	Title  string
	Series []*series.TransformedSeries
}

// Exporter writes chart data in one file format.
type Exporter interface {
	Export(charts []ChartData, writer io.Writer) error
	GetContentType() string
	GetFileExtension() string
}

// NewExporter creates an exporter for the given format.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatExcel:
		return NewExcelExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}
