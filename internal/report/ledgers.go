// Package report derives the aggregate reports from canonical records.
// Every function here is pure; fetching is the engine's job.
package report

import (
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyx-dev/tallyx/internal/model"
)

// Well-known group names.
const (
	GroupBankAccounts    = "Bank Accounts"
	GroupCashInHand      = "Cash-in-Hand"
	GroupFixedAssets     = "Fixed Assets"
	GroupSundryDebtors   = "Sundry Debtors"
	GroupSundryCreditors = "Sundry Creditors"
	GroupSecuredLoans    = "Secured Loans"
	GroupUnsecuredLoans  = "Unsecured Loans"
)

// AssetGroups accumulate signed closing balances into total assets.
var AssetGroups = []string{
	GroupBankAccounts, GroupCashInHand, GroupFixedAssets, GroupSundryDebtors,
	"Deposits (Asset)", "Loans & Advances (Asset)", "Investments",
}

// LiabilityGroups accumulate absolute closing balances into total liabilities.
var LiabilityGroups = []string{
	GroupSundryCreditors, GroupSecuredLoans, GroupUnsecuredLoans, "Capital Account",
	"Reserves & Surplus", "Duties & Taxes", "Current Liabilities", "Provisions",
}

// ByName returns the first ledger whose name equals name, ignoring case.
func ByName(ledgers []model.Ledger, name string) (model.Ledger, bool) {
	for _, l := range ledgers {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return model.Ledger{}, false
}

// ByGroup returns the ledgers whose parent group is one of groups, ignoring case.
func ByGroup(ledgers []model.Ledger, groups ...string) []model.Ledger {
	out := []model.Ledger{}
	for _, l := range ledgers {
		for _, g := range groups {
			if strings.EqualFold(l.ParentGroup, g) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// TopByClosing returns at most n ledgers ordered by closing amount,
// largest first. Ties keep their input order.
func TopByClosing(ledgers []model.Ledger, n int) []model.Ledger {
	out := slices.Clone(ledgers)
	slices.SortStableFunc(out, func(a, b model.Ledger) int {
		return b.Closing.Amount.Cmp(a.Closing.Amount)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []model.Ledger{}
	}
	return out
}

// PartyTotals is a list of party ledgers with their summed closing amount.
type PartyTotals struct {
	Ledgers []model.Ledger  `json:"ledgers"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
}

// Parties sums the closing amounts of ledgers.
func Parties(ledgers []model.Ledger) PartyTotals {
	total := decimal.Zero
	for _, l := range ledgers {
		total = total.Add(l.Closing.Amount)
	}
	if ledgers == nil {
		ledgers = []model.Ledger{}
	}
	return PartyTotals{Ledgers: ledgers, Total: total, Count: len(ledgers)}
}

// TrialBalanceLine is one ledger in the trial balance.
type TrialBalanceLine struct {
	LedgerName     string          `json:"ledger_name"`
	ParentGroup    string          `json:"parent_group"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	ClosingSide    model.Side      `json:"closing_dr_cr"`
}

// TrialBalance lists closing balances by side with their totals.
type TrialBalance struct {
	Entries     []TrialBalanceLine `json:"entries"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	Difference  decimal.Decimal    `json:"difference"`
	IsBalanced  bool               `json:"is_balanced"`
}

var balanceTolerance = decimal.NewFromInt(1)

// BuildTrialBalance includes every ledger with a positive opening or
// closing amount. The closing amount goes in the debit or credit column by
// its side. The balance counts as balanced when the totals differ by less
// than one currency unit.
func BuildTrialBalance(ledgers []model.Ledger) TrialBalance {
	tb := TrialBalance{
		Entries:     []TrialBalanceLine{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, l := range ledgers {
		if !l.Closing.Amount.IsPositive() && !l.Opening.Amount.IsPositive() {
			continue
		}
		line := TrialBalanceLine{
			LedgerName:     l.Name,
			ParentGroup:    l.ParentGroup,
			Debit:          decimal.Zero,
			Credit:         decimal.Zero,
			ClosingBalance: l.Closing.Amount,
			ClosingSide:    l.Closing.Side,
		}
		if l.Closing.Side == model.Credit {
			line.Credit = l.Closing.Amount
		} else {
			line.Debit = l.Closing.Amount
		}
		tb.TotalDebit = tb.TotalDebit.Add(line.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(line.Credit)
		tb.Entries = append(tb.Entries, line)
	}
	tb.Difference = tb.TotalDebit.Sub(tb.TotalCredit).Round(2)
	tb.IsBalanced = tb.Difference.Abs().LessThan(balanceTolerance)
	return tb
}

// GroupTotals is one bucket of the group summary.
type GroupTotals struct {
	Count               int             `json:"count"`
	TotalOpeningBalance decimal.Decimal `json:"total_opening_balance"`
	TotalClosingBalance decimal.Decimal `json:"total_closing_balance"`
	TotalNetMovement    decimal.Decimal `json:"total_net_movement"`
}

// UnknownGroup buckets ledgers without a parent group.
const UnknownGroup = "Unknown"

// GroupSummary buckets ledgers by parent group with signed totals.
func GroupSummary(ledgers []model.Ledger) map[string]GroupTotals {
	out := make(map[string]GroupTotals)
	for _, l := range ledgers {
		key := l.ParentGroup
		if key == "" {
			key = UnknownGroup
		}
		g, ok := out[key]
		if !ok {
			g = GroupTotals{
				TotalOpeningBalance: decimal.Zero,
				TotalClosingBalance: decimal.Zero,
				TotalNetMovement:    decimal.Zero,
			}
		}
		g.Count++
		g.TotalOpeningBalance = g.TotalOpeningBalance.Add(l.Opening.Signed())
		g.TotalClosingBalance = g.TotalClosingBalance.Add(l.Closing.Signed())
		g.TotalNetMovement = g.TotalNetMovement.Add(l.NetMovement())
		out[key] = g
	}
	return out
}

// FinancialSummary is the headline balance sheet view.
type FinancialSummary struct {
	TotalLedgers     int             `json:"total_ledgers"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalReceivables decimal.Decimal `json:"total_receivables"`
	TotalPayables    decimal.Decimal `json:"total_payables"`
	TotalBankBalance decimal.Decimal `json:"total_bank_balance"`
	TotalCashBalance decimal.Decimal `json:"total_cash_balance"`
	TotalLoans       decimal.Decimal `json:"total_loans"`
	TotalFixedAssets decimal.Decimal `json:"total_fixed_assets"`
	ExtractionMethod model.Backend   `json:"extraction_method"`
}

// BuildFinancialSummary classifies ledgers by exact parent group name.
func BuildFinancialSummary(ledgers []model.Ledger, method model.Backend) FinancialSummary {
	s := FinancialSummary{
		TotalLedgers:     len(ledgers),
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalReceivables: decimal.Zero,
		TotalPayables:    decimal.Zero,
		TotalBankBalance: decimal.Zero,
		TotalCashBalance: decimal.Zero,
		TotalLoans:       decimal.Zero,
		TotalFixedAssets: decimal.Zero,
		ExtractionMethod: method,
	}
	for _, l := range ledgers {
		grp := l.ParentGroup
		closing := l.Closing.Amount
		signed := l.Closing.Signed()

		if slices.Contains(AssetGroups, grp) {
			s.TotalAssets = s.TotalAssets.Add(signed)
		}
		if slices.Contains(LiabilityGroups, grp) {
			s.TotalLiabilities = s.TotalLiabilities.Add(signed.Abs())
		}
		switch grp {
		case GroupSundryDebtors:
			s.TotalReceivables = s.TotalReceivables.Add(closing)
		case GroupSundryCreditors:
			s.TotalPayables = s.TotalPayables.Add(closing)
		case GroupBankAccounts:
			s.TotalBankBalance = s.TotalBankBalance.Add(closing)
		case GroupCashInHand:
			s.TotalCashBalance = s.TotalCashBalance.Add(closing)
		case GroupSecuredLoans, GroupUnsecuredLoans:
			s.TotalLoans = s.TotalLoans.Add(closing)
		case GroupFixedAssets:
			s.TotalFixedAssets = s.TotalFixedAssets.Add(closing)
		}
	}
	return s
}

// GroupNames returns the group summary keys in alphabetical order.
func GroupNames(summary map[string]GroupTotals) []string {
	return slices.Sorted(maps.Keys(summary))
}
