// Package repair removes character references that make backend responses
// ill-formed XML.
package repair

import (
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
)

var (
	// Decimal references to control characters other than tab and newline.
	controlRef = regexp.MustCompile(`&#0*(?:[0-8]|1[1-9]|2[0-9]|3[01]);`)
	decimalRef = regexp.MustCompile(`&#[0-9]+;`)
	hexRef     = regexp.MustCompile(`&#[xX][0-9a-fA-F]+;`)
)

// Minimal strips decimal character references for code points 0-8 and
// 11-31. All other text is left untouched, so Minimal(Minimal(s)) == Minimal(s).
func Minimal(s string) string {
	return stripAll(s, controlRef)
}

// Aggressive strips every numeric character reference, decimal or hex.
func Aggressive(s string) string {
	return stripAll(s, hexRef, decimalRef)
}

// stripAll repeats until a fixed point, since removing one reference can
// splice together the text of another ("&#&#4;4;").
func stripAll(s string, patterns ...*regexp.Regexp) string {
	for {
		out := s
		for _, re := range patterns {
			out = re.ReplaceAllString(out, "")
		}
		if out == s {
			return out
		}
		s = out
	}
}

// WellFormed returns the first syntax error in s, or nil.
func WellFormed(s string) error {
	dec := xml.NewDecoder(strings.NewReader(s))
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !sawRoot {
				return errors.New("no root element")
			}
			return nil
		}
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawRoot = true
		}
	}
}
