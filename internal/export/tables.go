package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/report"
)

// Table is one report section laid out as rows. Cells are string, int or
// decimal.Decimal.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

const (
	ledgerFields   = 9
	colLedgerName  = 0
	colLedgerGroup = 1
	colOpening     = 2
	colOpeningSide = 3
	colClosing     = 4
	colClosingSide = 5
	colNetMovement = 6
	colGSTIN       = 7
	colState       = 8
)

// MarshalLedger converts a Ledger to a table row.
func MarshalLedger(l model.Ledger) []any {
	row := make([]any, ledgerFields)
	row[colLedgerName] = l.Name
	row[colLedgerGroup] = l.ParentGroup
	row[colOpening] = l.Opening.Amount
	row[colOpeningSide] = string(l.Opening.Side)
	row[colClosing] = l.Closing.Amount
	row[colClosingSide] = string(l.Closing.Side)
	row[colNetMovement] = l.NetMovement()
	row[colGSTIN] = l.GSTIN
	row[colState] = l.State
	return row
}

const (
	voucherFields  = 7
	colVchNumber   = 0
	colVchType     = 1
	colVchDate     = 2
	colVchParty    = 3
	colVchParticul = 4
	colVchAmount   = 5
	colVchNarr     = 6
)

// MarshalVoucher converts a Voucher to a table row.
func MarshalVoucher(v model.Voucher) []any {
	row := make([]any, voucherFields)
	row[colVchNumber] = v.Number
	row[colVchType] = string(v.Type)
	row[colVchDate] = v.Date
	row[colVchParty] = v.PartyName
	row[colVchParticul] = v.Particulars
	row[colVchAmount] = v.Amount
	row[colVchNarr] = v.Narration
	return row
}

// Tables lays out every section of exp in export order.
func Tables(exp report.Export) []Table {
	info := exp.CompanyInfo
	company := Table{
		Name:   "Company",
		Header: []string{"field", "value"},
		Rows: [][]any{
			{"company_name", info.Name},
			{"address", info.Address},
			{"state", info.State},
			{"pincode", info.Pincode},
			{"gstin", info.GSTIN},
			{"pan", info.PAN},
			{"books_from", info.BooksFrom},
			{"extraction_method", string(exp.ExtractionMethod)},
			{"extraction_timestamp", exp.ExtractionTimestamp.Format(time.RFC3339)},
		},
	}

	ledgers := Table{
		Name: "Ledgers",
		Header: []string{
			"ledger_name", "parent_group", "opening_balance", "opening_dr_cr",
			"closing_balance", "closing_dr_cr", "net_movement", "gstin", "state",
		},
	}
	for _, l := range exp.Ledgers {
		ledgers.Rows = append(ledgers.Rows, MarshalLedger(l))
	}

	groups := Table{Name: "Groups", Header: []string{"group_name", "parent", "is_primary"}}
	for _, g := range exp.Groups {
		groups.Rows = append(groups.Rows, []any{g.Name, g.Parent, strconv.FormatBool(g.IsPrimary)})
	}

	ccs := Table{Name: "Cost Centres", Header: []string{"cost_centre", "parent"}}
	for _, cc := range exp.CostCentres {
		ccs.Rows = append(ccs.Rows, []any{cc.Name, cc.Parent})
	}

	vouchers := Table{
		Name:   "Vouchers",
		Header: []string{"voucher_number", "voucher_type", "date", "party_name", "particulars", "amount", "narration"},
	}
	for _, v := range exp.Vouchers {
		vouchers.Rows = append(vouchers.Rows, MarshalVoucher(v))
	}

	tb := Table{
		Name:   "Trial Balance",
		Header: []string{"ledger_name", "parent_group", "debit", "credit"},
	}
	for _, e := range exp.TrialBalance.Entries {
		tb.Rows = append(tb.Rows, []any{e.LedgerName, e.ParentGroup, e.Debit, e.Credit})
	}
	tb.Rows = append(tb.Rows, []any{"Total", "", exp.TrialBalance.TotalDebit, exp.TrialBalance.TotalCredit})

	fs := exp.FinancialSummary
	summary := Table{
		Name:   "Financial Summary",
		Header: []string{"metric", "value"},
		Rows: [][]any{
			{"total_ledgers", fs.TotalLedgers},
			{"total_assets", fs.TotalAssets},
			{"total_liabilities", fs.TotalLiabilities},
			{"total_receivables", fs.TotalReceivables},
			{"total_payables", fs.TotalPayables},
			{"total_bank_balance", fs.TotalBankBalance},
			{"total_cash_balance", fs.TotalCashBalance},
			{"total_loans", fs.TotalLoans},
			{"total_fixed_assets", fs.TotalFixedAssets},
		},
	}

	return []Table{company, ledgers, groups, ccs, vouchers, tb, summary}
}

// cellString renders a cell for text formats. Amounts use two decimals.
func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case decimal.Decimal:
		return t.StringFixed(2)
	default:
		return fmt.Sprint(t)
	}
}
