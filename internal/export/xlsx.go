package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/tallyx-dev/tallyx/internal/report"
)

// XLSXWriter writes one worksheet per section with a bold header row.
type XLSXWriter struct{}

func (XLSXWriter) Format() string { return "xlsx" }

func (XLSXWriter) Write(w io.Writer, exp report.Export) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, t := range Tables(exp) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", t.Name, err)
		}
		if err := writeSheet(f, t, header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	for c, h := range t.Header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Name, cell, h); err != nil {
			return fmt.Errorf("writing %s header: %w", t.Name, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", t.Name, err)
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if d, ok := v.(decimal.Decimal); ok {
				v = d.InexactFloat64()
			}
			if err := f.SetCellValue(t.Name, cell, v); err != nil {
				return fmt.Errorf("writing %s %s: %w", t.Name, cell, err)
			}
		}
	}
	return nil
}
