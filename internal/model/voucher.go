package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VoucherType names a transaction class.
type VoucherType string

const (
	VoucherSales      VoucherType = "Sales"
	VoucherPurchase   VoucherType = "Purchase"
	VoucherReceipt    VoucherType = "Receipt"
	VoucherPayment    VoucherType = "Payment"
	VoucherJournal    VoucherType = "Journal"
	VoucherContra     VoucherType = "Contra"
	VoucherCreditNote VoucherType = "Credit Note"
	VoucherDebitNote  VoucherType = "Debit Note"
)

// KnownVoucherTypes lists the enumerated voucher types.
var KnownVoucherTypes = []VoucherType{
	VoucherSales,
	VoucherPurchase,
	VoucherReceipt,
	VoucherPayment,
	VoucherJournal,
	VoucherContra,
	VoucherCreditNote,
	VoucherDebitNote,
}

// NormalizeVoucherType maps s onto one of the enumerated types, ignoring case.
// Unknown (user-defined) types are returned trimmed.
func NormalizeVoucherType(s string) VoucherType {
	s = strings.TrimSpace(s)
	for _, vt := range KnownVoucherTypes {
		if strings.EqualFold(s, string(vt)) {
			return vt
		}
	}
	return VoucherType(s)
}

// Matches reports whether t equals filter, ignoring case.
func (t VoucherType) Matches(filter string) bool {
	return strings.EqualFold(string(t), strings.TrimSpace(filter))
}

// LedgerEntry is one line of a voucher.
type LedgerEntry struct {
	LedgerName       string          `json:"ledger_name"`
	Amount           decimal.Decimal `json:"amount"`
	Side             Side            `json:"dr_cr"`
	IsDeemedPositive bool            `json:"is_debit"`
}

// Voucher is a dated, typed transaction.
type Voucher struct {
	Number      string          `json:"voucher_number"`
	Company     string          `json:"company"`
	Type        VoucherType     `json:"voucher_type"`
	Date        string          `json:"date"`
	PartyName   string          `json:"party_name"`
	Particulars string          `json:"particulars"`
	Narration   string          `json:"narration"`
	Amount      decimal.Decimal `json:"amount"`
	Entries     []LedgerEntry   `json:"ledger_entries,omitempty"`
}

// Totals returns the debit and credit sums over the entries.
func (v Voucher) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range v.Entries {
		switch e.Side {
		case Debit:
			debit = debit.Add(e.Amount)
		case Credit:
			credit = credit.Add(e.Amount)
		}
	}
	return debit, credit
}

// Complete derives the computed fields once all entries are known:
// amount is the debit total when non-zero, otherwise the credit total;
// particulars is the first entry's ledger; party falls back to particulars.
func (v *Voucher) Complete() {
	debit, credit := v.Totals()
	if !debit.IsZero() {
		v.Amount = debit
	} else {
		v.Amount = credit
	}
	if len(v.Entries) > 0 {
		v.Particulars = v.Entries[0].LedgerName
	}
	if v.PartyName == "" {
		v.PartyName = v.Particulars
	}
}
