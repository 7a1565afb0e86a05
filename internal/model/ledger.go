package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Side is the debit/credit orientation of an amount.
type Side string

const (
	Debit  Side = "Dr"
	Credit Side = "Cr"
)

// Balance is an unsigned amount with its side.
type Balance struct {
	Amount decimal.Decimal
	Side   Side
}

// Signed returns +amount for debit balances and -amount for credit balances.
func (b Balance) Signed() decimal.Decimal {
	if b.Side == Credit {
		return b.Amount.Neg()
	}
	return b.Amount
}

// BalanceFromSigned converts a signed value back into amount and side.
// Zero is a debit.
func BalanceFromSigned(v decimal.Decimal) Balance {
	if v.IsNegative() {
		return Balance{Amount: v.Abs(), Side: Credit}
	}
	return Balance{Amount: v, Side: Debit}
}

// Ledger is an account in the backend's chart of accounts.
type Ledger struct {
	Name         string
	Company      string
	ParentGroup  string
	Opening      Balance
	Closing      Balance
	Address      string
	GSTIN        string
	PAN          string
	Email        string
	Phone        string
	State        string
	Pincode      string
	CreditPeriod string
}

// NetMovement is signed(closing) - signed(opening), rounded to 2 places.
func (l Ledger) NetMovement() decimal.Decimal {
	return l.Closing.Signed().Sub(l.Opening.Signed()).Round(2)
}

type ledgerJSON struct {
	Name           string          `json:"ledger_name"`
	Company        string          `json:"company"`
	ParentGroup    string          `json:"parent_group"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	OpeningSide    Side            `json:"opening_dr_cr"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	ClosingSide    Side            `json:"closing_dr_cr"`
	Address        string          `json:"address"`
	GSTIN          string          `json:"gstin"`
	PAN            string          `json:"pan"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	State          string          `json:"state"`
	Pincode        string          `json:"pincode"`
	CreditPeriod   string          `json:"credit_period,omitempty"`
	NetMovement    decimal.Decimal `json:"net_movement"`
}

// MarshalJSON flattens the balances and emits the derived net movement.
func (l Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(ledgerJSON{
		Name:           l.Name,
		Company:        l.Company,
		ParentGroup:    l.ParentGroup,
		OpeningBalance: l.Opening.Amount,
		OpeningSide:    l.Opening.Side,
		ClosingBalance: l.Closing.Amount,
		ClosingSide:    l.Closing.Side,
		Address:        l.Address,
		GSTIN:          l.GSTIN,
		PAN:            l.PAN,
		Email:          l.Email,
		Phone:          l.Phone,
		State:          l.State,
		Pincode:        l.Pincode,
		CreditPeriod:   l.CreditPeriod,
		NetMovement:    l.NetMovement(),
	})
}

// UnmarshalJSON accepts the flattened form. net_movement is ignored and
// recomputed on demand.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var raw ledgerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Ledger{
		Name:         raw.Name,
		Company:      raw.Company,
		ParentGroup:  raw.ParentGroup,
		Opening:      Balance{Amount: raw.OpeningBalance, Side: raw.OpeningSide},
		Closing:      Balance{Amount: raw.ClosingBalance, Side: raw.ClosingSide},
		Address:      raw.Address,
		GSTIN:        raw.GSTIN,
		PAN:          raw.PAN,
		Email:        raw.Email,
		Phone:        raw.Phone,
		State:        raw.State,
		Pincode:      raw.Pincode,
		CreditPeriod: raw.CreditPeriod,
	}
	return nil
}

// Group is a node in the chart-of-accounts hierarchy.
type Group struct {
	Name      string `json:"group_name"`
	Parent    string `json:"parent"`
	IsPrimary bool   `json:"is_primary"`
}

// CostCentre is an analytic dimension.
type CostCentre struct {
	Name   string `json:"cost_centre"`
	Parent string `json:"parent"`
}

// CompanyInfo is the company master record.
type CompanyInfo struct {
	Name      string `json:"company_name"`
	Address   string `json:"address"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	GSTIN     string `json:"gstin"`
	PAN       string `json:"pan"`
	BooksFrom string `json:"books_from"`
}
