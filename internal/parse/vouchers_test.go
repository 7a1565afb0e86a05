package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyx-dev/tallyx/internal/model"
)

func TestVouchers(t *testing.T) {
	vs, err := Vouchers(fixture(t, "vouchers.xml"), "Nimona", VoucherFilter{IncludeEntries: true})
	require.NoError(t, err)
	require.Len(t, vs, 4, "voucher without a number is skipped")

	j := vs[0]
	assert.Equal(t, "1", j.Number)
	assert.Equal(t, model.VoucherJournal, j.Type)
	assert.Equal(t, "2025-04-01", j.Date)
	assert.Equal(t, "Nimona", j.Company)
	assert.Equal(t, "Capital introduced", j.Narration)
	assert.Equal(t, "5500000.00", j.Amount.StringFixed(2))
	assert.Equal(t, "HDFC Bank", j.Particulars)
	assert.Equal(t, "HDFC Bank", j.PartyName)
	require.Len(t, j.Entries, 2)
	assert.Equal(t, model.Debit, j.Entries[0].Side)
	assert.True(t, j.Entries[0].IsDeemedPositive)
	assert.Equal(t, model.Credit, j.Entries[1].Side)
	assert.False(t, j.Entries[1].IsDeemedPositive)

	s := vs[1]
	assert.Equal(t, model.VoucherSales, s.Type)
	assert.Equal(t, "Acme Traders", s.PartyName)
	assert.Equal(t, "11800.00", s.Amount.StringFixed(2))

	p := vs[2]
	assert.Equal(t, model.VoucherPayment, p.Type, "type name normalized")

	r := vs[3]
	assert.Equal(t, model.VoucherReceipt, r.Type, "type from VCHTYPE attribute")
	assert.Equal(t, "2025-04-05", r.Date)
	assert.Equal(t, "Acme Traders", r.PartyName)
	assert.Equal(t, "HDFC Bank", r.Particulars)
}

func TestVouchers_Filter(t *testing.T) {
	raw := fixture(t, "vouchers.xml")

	vs, err := Vouchers(raw, "Nimona", VoucherFilter{Type: "SALES"})
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "2", vs[0].Number)
	assert.Nil(t, vs[0].Entries)

	vs, err = Vouchers(raw, "Nimona", VoucherFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, vs, 2)

	vs, err = Vouchers(raw, "Nimona", VoucherFilter{Type: "Contra"})
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestVouchers_PartyLedgerPreferred(t *testing.T) {
	raw := `<ENVELOPE><VOUCHER VCHTYPE="Sales">
		<VOUCHERNUMBER>9</VOUCHERNUMBER>
		<PARTYLEDGERNAME>Ledger Party</PARTYLEDGERNAME>
		<PARTYNAME>Display Party</PARTYNAME>
	</VOUCHER></ENVELOPE>`
	vs, err := Vouchers(raw, "Nimona", VoucherFilter{})
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "Ledger Party", vs[0].PartyName)
	assert.True(t, vs[0].Amount.IsZero())
}

func TestVouchers_HexReferenceNeedsAggressivePass(t *testing.T) {
	raw := `<ENVELOPE><VOUCHER VCHTYPE="Journal"><VOUCHERNUMBER>3</VOUCHERNUMBER><NARRATION>a&#x1F;b</NARRATION></VOUCHER></ENVELOPE>`
	vs, err := Vouchers(raw, "Nimona", VoucherFilter{})
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "ab", vs[0].Narration)
}

func TestVouchers_AmountIdentity(t *testing.T) {
	vs, err := Vouchers(fixture(t, "vouchers.xml"), "Nimona", VoucherFilter{IncludeEntries: true})
	require.NoError(t, err)
	for _, v := range vs {
		debit, credit := v.Totals()
		if !debit.IsZero() {
			assert.True(t, v.Amount.Equal(debit), v.Number)
		} else {
			assert.True(t, v.Amount.Equal(credit), v.Number)
		}
	}
}
