package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tallyx-dev/tallyx/internal/report"
)

// JSONWriter writes the export as one indented JSON document.
type JSONWriter struct{}

func (JSONWriter) Format() string { return "json" }

func (JSONWriter) Write(w io.Writer, exp report.Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}
