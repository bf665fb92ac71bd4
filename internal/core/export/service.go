package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormatForPath picks the export format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported export extension: %q", ext)
	}
}

// WriteFile exports chart data to path, choosing the format from the
// extension.
func WriteFile(path string, charts []ChartData) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	exporter, err := NewExporter(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := exporter.Export(charts, f); err != nil {
		return fmt.Errorf("failed to export data: %w", err)
	}
	return nil
}
