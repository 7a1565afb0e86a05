package parse

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/request"
)

// Row is one result row of the secondary backend keyed by column name.
type Row = map[string]any

// cell looks a column up by its selected name ("$Name") and, failing that,
// by the bare name some drivers report ("Name").
func cell(r Row, col string) (any, bool) {
	if v, ok := r[col]; ok {
		return v, true
	}
	v, ok := r[strings.TrimPrefix(col, "$")]
	return v, ok
}

func text(r Row, col string) string {
	v, ok := cell(r, col)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// balance normalizes a balance cell: numbers use the sign rule, text goes
// through Amount, NULL is a zero debit.
func balance(r Row, col string) model.Balance {
	v, _ := cell(r, col)
	var b model.Balance
	switch t := v.(type) {
	case nil:
		b = model.Balance{Amount: decimal.Zero, Side: model.Debit}
	case int64:
		b.Amount, b.Side = SignedAmount(decimal.NewFromInt(t))
	case int:
		b.Amount, b.Side = SignedAmount(decimal.NewFromInt(int64(t)))
	case float64:
		b.Amount, b.Side = SignedAmount(decimal.NewFromFloat(t))
	case float32:
		b.Amount, b.Side = SignedAmount(decimal.NewFromFloat32(t))
	case decimal.Decimal:
		b.Amount, b.Side = SignedAmount(t)
	default:
		b.Amount, b.Side = Amount(text(r, col))
	}
	return b
}

// LedgersFromRows normalizes secondary backend ledger rows.
func LedgersFromRows(rows []Row, company string) []model.Ledger {
	out := make([]model.Ledger, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Ledger{
			Name:        text(r, request.ColName),
			Company:     company,
			ParentGroup: text(r, request.ColParent),
			Opening:     balance(r, request.ColOpeningBalance),
			Closing:     balance(r, request.ColClosingBalance),
			Address:     text(r, request.ColAddress),
			GSTIN:       text(r, request.ColGSTIN),
			PAN:         text(r, request.ColPAN),
			Email:       text(r, request.ColEmail),
			Phone:       text(r, request.ColPhone),
			State:       text(r, request.ColState),
			Pincode:     text(r, request.ColPincode),
		})
	}
	return out
}

// CompaniesFromRows extracts non-empty company names.
func CompaniesFromRows(rows []Row) []string {
	var out []string
	for _, r := range rows {
		if name := text(r, request.ColName); name != "" {
			out = append(out, name)
		}
	}
	return out
}
