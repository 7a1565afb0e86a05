// Package parse turns backend responses into canonical records.
package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyx-dev/tallyx/internal/model"
)

// Amount applies the general amount rule used by ledger reports and the
// secondary backend: commas and whitespace are ignored, a trailing "Dr" or
// "Cr" (any case) fixes the side, otherwise negative values are credits.
// Unparseable input yields (0, Dr).
func Amount(s string) (decimal.Decimal, model.Side) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return decimal.Zero, model.Debit
	}

	var forced model.Side
	switch upper := strings.ToUpper(cleaned); {
	case strings.HasSuffix(upper, "DR"):
		forced = model.Debit
		cleaned = cleaned[:len(cleaned)-2]
	case strings.HasSuffix(upper, "CR"):
		forced = model.Credit
		cleaned = cleaned[:len(cleaned)-2]
	}

	val, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, model.Debit
	}
	if forced != "" {
		return val.Abs(), forced
	}
	if val.IsNegative() {
		return val.Abs(), model.Credit
	}
	return val, model.Debit
}

// VoucherEntryAmount applies the voucher collection convention, which is the
// opposite of Amount: a negative raw amount is a debit and anything else is
// a credit. Unparseable input counts as zero.
func VoucherEntryAmount(s string) (decimal.Decimal, model.Side) {
	val, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, model.Credit
	}
	if val.IsNegative() {
		return val.Abs(), model.Debit
	}
	return val, model.Credit
}

// SignedAmount maps a signed numeric value from the secondary backend:
// negative is a credit, everything else a debit.
func SignedAmount(v decimal.Decimal) (decimal.Decimal, model.Side) {
	b := model.BalanceFromSigned(v)
	return b.Amount, b.Side
}

var compactDate = regexp.MustCompile(`^\d{8}$`)

// dateLayouts are tried in order after the compact form.
var dateLayouts = []string{
	"2-Jan-2006",
	"2-Jan-06",
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
}

// Date normalizes the backend's date spellings to YYYY-MM-DD. Input that
// matches no known layout is returned trimmed.
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if compactDate.MatchString(s) {
		return s[:4] + "-" + s[4:6] + "-" + s[6:]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// YesNo reports whether a backend logical value is true.
func YesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}
