package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/tallyx-dev/tallyx/internal/report"
)

// PDFWriter writes a printable summary: company header, financial summary
// and trial balance. Ledger and voucher detail is left to the other formats.
type PDFWriter struct{}

func (PDFWriter) Format() string { return "pdf" }

func (PDFWriter) Write(w io.Writer, exp report.Export) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, exp.CompanyInfo.Name)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("Extracted %s via %s", exp.ExtractionTimestamp.Format("2006-01-02 15:04"), exp.ExtractionMethod))
	pdf.Ln(12)

	for _, t := range Tables(exp) {
		switch t.Name {
		case "Financial Summary":
			writePDFTable(pdf, t, []float64{70, 50})
		case "Trial Balance":
			writePDFTable(pdf, t, []float64{70, 50, 35, 35})
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func writePDFTable(pdf *gofpdf.Fpdf, t Table, widths []float64) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, t.Name)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	for i, h := range t.Header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range t.Rows {
		for i, v := range row {
			align := "L"
			if _, ok := v.(string); !ok {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, cellString(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}
