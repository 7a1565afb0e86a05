package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyx-dev/tallyx/internal/model"
)

func led(name, group, opening string, oside model.Side, closing string, cside model.Side) model.Ledger {
	return model.Ledger{
		Name:        name,
		ParentGroup: group,
		Opening:     model.Balance{Amount: decimal.RequireFromString(opening), Side: oside},
		Closing:     model.Balance{Amount: decimal.RequireFromString(closing), Side: cside},
	}
}

func sampleLedgers() []model.Ledger {
	return []model.Ledger{
		led("HDFC Bank", "Bank Accounts", "0", model.Debit, "75350000", model.Debit),
		led("Cash", "Cash-in-Hand", "0", model.Debit, "500000", model.Debit),
		led("Acme Traders", "Sundry Debtors", "0", model.Debit, "5000000", model.Debit),
		led("Capital Account", "Capital Account", "0", model.Debit, "80000000", model.Credit),
		led("Zenith Supplies", "Sundry Creditors", "0", model.Debit, "850000", model.Credit),
		led("Dormant", "Sundry Debtors", "0", model.Debit, "0", model.Debit),
		led("Term Loan", "Secured Loans", "0", model.Debit, "0", model.Credit),
	}
}

func TestBuildTrialBalance(t *testing.T) {
	tb := BuildTrialBalance(sampleLedgers())

	require.Len(t, tb.Entries, 5, "zero ledgers are excluded")
	assert.Equal(t, "80850000.00", tb.TotalDebit.StringFixed(2))
	assert.Equal(t, "80850000.00", tb.TotalCredit.StringFixed(2))
	assert.Equal(t, "0.00", tb.Difference.StringFixed(2))
	assert.True(t, tb.IsBalanced)

	capital := tb.Entries[3]
	assert.Equal(t, "Capital Account", capital.LedgerName)
	assert.True(t, capital.Debit.IsZero())
	assert.Equal(t, "80000000.00", capital.Credit.StringFixed(2))
}

func TestBuildTrialBalance_Tolerance(t *testing.T) {
	tests := []struct {
		name     string
		credit   string
		balanced bool
		diff     string
	}{
		{"within one unit", "99.01", true, "0.99"},
		{"exactly one unit", "99", false, "1.00"},
		{"credit heavy", "101.5", false, "-1.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := BuildTrialBalance([]model.Ledger{
				led("A", "X", "0", model.Debit, "100", model.Debit),
				led("B", "Y", "0", model.Debit, tt.credit, model.Credit),
			})
			assert.Equal(t, tt.balanced, tb.IsBalanced)
			assert.Equal(t, tt.diff, tb.Difference.StringFixed(2))
		})
	}
}

func TestBuildTrialBalance_OpeningOnly(t *testing.T) {
	tb := BuildTrialBalance([]model.Ledger{led("Closed", "X", "10", model.Debit, "0", model.Debit)})
	require.Len(t, tb.Entries, 1)
	assert.True(t, tb.Entries[0].Debit.IsZero())
}

func TestBuildTrialBalance_Empty(t *testing.T) {
	tb := BuildTrialBalance(nil)
	assert.NotNil(t, tb.Entries)
	assert.True(t, tb.IsBalanced)
}

func TestGroupSummary(t *testing.T) {
	ledgers := append(sampleLedgers(),
		led("Suspense", "", "10", model.Credit, "40", model.Debit),
	)
	s := GroupSummary(ledgers)

	debtors := s["Sundry Debtors"]
	assert.Equal(t, 2, debtors.Count)
	assert.Equal(t, "5000000.00", debtors.TotalClosingBalance.StringFixed(2))

	capital := s["Capital Account"]
	assert.Equal(t, "-80000000.00", capital.TotalClosingBalance.StringFixed(2))
	assert.Equal(t, "-80000000.00", capital.TotalNetMovement.StringFixed(2))

	unknown := s[UnknownGroup]
	assert.Equal(t, 1, unknown.Count)
	assert.Equal(t, "-10.00", unknown.TotalOpeningBalance.StringFixed(2))
	assert.Equal(t, "50.00", unknown.TotalNetMovement.StringFixed(2))

	assert.Equal(t, []string{
		"Bank Accounts", "Capital Account", "Cash-in-Hand", "Secured Loans",
		"Sundry Creditors", "Sundry Debtors", "Unknown",
	}, GroupNames(s))
}

func TestBuildFinancialSummary(t *testing.T) {
	ledgers := append(sampleLedgers(),
		led("Bank OD", "Bank Accounts", "0", model.Debit, "350000", model.Credit),
		led("Machinery", "Fixed Assets", "0", model.Debit, "1200000", model.Debit),
		led("Car Loan", "Unsecured Loans", "0", model.Debit, "300000", model.Credit),
	)
	s := BuildFinancialSummary(ledgers, model.BackendXML)

	assert.Equal(t, 10, s.TotalLedgers)
	// 75,350,000 + 500,000 + 5,000,000 + 0 - 350,000 + 1,200,000
	assert.Equal(t, "81700000.00", s.TotalAssets.StringFixed(2))
	// 80,000,000 + 850,000 + 0 + 300,000
	assert.Equal(t, "81150000.00", s.TotalLiabilities.StringFixed(2))
	assert.Equal(t, "5000000.00", s.TotalReceivables.StringFixed(2))
	assert.Equal(t, "850000.00", s.TotalPayables.StringFixed(2))
	assert.Equal(t, "75700000.00", s.TotalBankBalance.StringFixed(2), "bank balance adds unsigned amounts")
	assert.Equal(t, "500000.00", s.TotalCashBalance.StringFixed(2))
	assert.Equal(t, "300000.00", s.TotalLoans.StringFixed(2))
	assert.Equal(t, "1200000.00", s.TotalFixedAssets.StringFixed(2))
	assert.Equal(t, model.BackendXML, s.ExtractionMethod)
}

func TestByNameAndGroup(t *testing.T) {
	ledgers := sampleLedgers()

	l, ok := ByName(ledgers, "hdfc bank")
	require.True(t, ok)
	assert.Equal(t, "HDFC Bank", l.Name)

	_, ok = ByName(ledgers, "Nope")
	assert.False(t, ok)

	assert.Len(t, ByGroup(ledgers, "sundry debtors"), 2)
	assert.Len(t, ByGroup(ledgers, GroupSecuredLoans, GroupUnsecuredLoans), 1)
	assert.NotNil(t, ByGroup(ledgers, "Nothing"))
}

func TestTopByClosing(t *testing.T) {
	ledgers := []model.Ledger{
		led("A", "Sundry Debtors", "0", model.Debit, "10", model.Debit),
		led("B", "Sundry Debtors", "0", model.Debit, "30", model.Debit),
		led("C", "Sundry Debtors", "0", model.Debit, "20", model.Debit),
		led("D", "Sundry Debtors", "0", model.Debit, "30", model.Debit),
	}
	top := TopByClosing(ledgers, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"B", "D", "C"}, []string{top[0].Name, top[1].Name, top[2].Name})
	assert.Equal(t, "A", ledgers[0].Name, "input is not reordered")

	assert.Len(t, TopByClosing(ledgers, 10), 4)
	assert.Empty(t, TopByClosing(nil, 10))
}

func TestParties(t *testing.T) {
	p := Parties(ByGroup(sampleLedgers(), GroupSundryDebtors))
	assert.Equal(t, 2, p.Count)
	assert.Equal(t, "5000000.00", p.Total.StringFixed(2))
}
