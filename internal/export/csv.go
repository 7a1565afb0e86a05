package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tallyx-dev/tallyx/internal/report"
)

// CSVWriter writes every section into one CSV stream. Each section starts
// with a ("section", name) record followed by its header and rows.
type CSVWriter struct{}

func (CSVWriter) Format() string { return "csv" }

func (CSVWriter) Write(w io.Writer, exp report.Export) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, t := range Tables(exp) {
		if err := cw.Write([]string{"section", t.Name}); err != nil {
			return fmt.Errorf("writing %s section: %w", t.Name, err)
		}
		if err := cw.Write(t.Header); err != nil {
			return fmt.Errorf("writing %s header: %w", t.Name, err)
		}
		for i, row := range t.Rows {
			rec := make([]string, len(row))
			for j, v := range row {
				rec[j] = cellString(v)
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing %s row %d: %w", t.Name, i+1, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
