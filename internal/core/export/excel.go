package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter writes one worksheet per chart using excelize.
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

func (e *ExcelExporter) Export(charts []ChartData, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range charts {
		// Sheet names are capped at 31 chars by the format, so the chart
		// title goes in the sheet's first cell instead.
		sheet := fmt.Sprintf("Chart %02d", i+1)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet: %w", err)
			}
		}

		f.SetCellValue(sheet, "A1", c.Title)

		header := headerRow(c.Series)
		for col, h := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 2)
			f.SetCellValue(sheet, cell, h)
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 2)
		f.SetCellStyle(sheet, "A2", last, headerStyle)

		for rowIdx, row := range mergeRows(c.Series) {
			cell, _ := excelize.CoordinatesToCellName(1, rowIdx+3)
			f.SetCellValue(sheet, cell, row.date)
			for col, v := range row.values {
				if v == nil {
					continue
				}
				// Numeric values stay float64 so the workbook gets number
				// cells, not text.
				cell, _ := excelize.CoordinatesToCellName(col+2, rowIdx+3)
				f.SetCellValue(sheet, cell, *v)
			}
		}
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) GetContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) GetFileExtension() string {
	return ".xlsx"
}
