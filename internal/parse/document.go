package parse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tallyx-dev/tallyx/internal/apperr"
	"github.com/tallyx-dev/tallyx/internal/repair"
)

// element is a leaf-level view of one XML element: its tag, its own
// character data and its depth below the document root (root = 0).
type element struct {
	Tag   string
	Text  string
	Depth int
}

// withRepair decodes the minimally repaired text and, only if that fails,
// the aggressively repaired text.
func withRepair[T any](raw string, decode func(string) (T, error)) (T, error) {
	out, err := decode(repair.Minimal(raw))
	if err == nil {
		return out, nil
	}
	out, err2 := decode(repair.Aggressive(raw))
	if err2 != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, errors.Join(err, err2))
	}
	return out, nil
}

// newDecoder accepts any declared encoding and reads the bytes as they are.
func newDecoder(doc string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) {
		return in, nil
	}
	return dec
}

// walk returns every element of doc in closing order with its trimmed
// direct text.
func walk(doc string) ([]element, error) {
	dec := newDecoder(doc)
	type frame struct {
		tag  string
		text strings.Builder
	}
	var (
		stack []*frame
		out   []element
		root  bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			root = true
			stack = append(stack, &frame{tag: t.Name.Local})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, element{Tag: f.tag, Text: strings.TrimSpace(f.text.String()), Depth: len(stack)})
		}
	}
	if !root {
		return nil, errors.New("no root element")
	}
	return out, nil
}

// children returns the direct children of the root element in document order.
func children(doc string) ([]element, error) {
	all, err := walk(doc)
	if err != nil {
		return nil, err
	}
	var out []element
	for _, e := range all {
		if e.Depth == 1 {
			out = append(out, e)
		}
	}
	return out, nil
}

// records splits a flat sibling sequence into records, each starting at an
// element tagged nameTag. Elements before the first name tag are dropped.
func records(elems []element, nameTag string) [][]element {
	var (
		out     [][]element
		current []element
	)
	for _, e := range elems {
		if e.Tag == nameTag {
			if current != nil {
				out = append(out, current)
			}
			current = []element{e}
			continue
		}
		if current != nil {
			current = append(current, e)
		}
	}
	if current != nil {
		out = append(out, current)
	}
	return out
}
