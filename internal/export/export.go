// Package export writes a full company export in the supported file formats.
package export

import (
	"io"
	"slices"
	"strings"

	"github.com/tallyx-dev/tallyx/internal/report"
)

// Writer renders an export in one file format.
type Writer interface {
	Write(w io.Writer, exp report.Export) error
	Format() string
}

// Registry holds named writers.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry creates an empty writer registry.
func NewRegistry() *Registry {
	return &Registry{writers: make(map[string]Writer)}
}

// Register adds a writer. Panics on duplicate format.
func (r *Registry) Register(w Writer) {
	key := strings.ToLower(w.Format())
	if _, ok := r.writers[key]; ok {
		panic("duplicate export format: " + key)
	}
	r.writers[key] = w
}

// Get returns the writer for format, or nil.
func (r *Registry) Get(format string) Writer {
	return r.writers[strings.ToLower(format)]
}

// Formats lists the registered formats in alphabetical order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.writers))
	for k := range r.writers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// DefaultRegistry returns a registry with all built-in writers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&JSONWriter{})
	r.Register(&CSVWriter{})
	r.Register(&XLSXWriter{})
	r.Register(&PDFWriter{})
	return r
}
