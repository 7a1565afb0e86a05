package report

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyx-dev/tallyx/internal/model"
)

// dayBookOrder ranks voucher types in the day book; other types follow.
var dayBookOrder = map[model.VoucherType]int{
	model.VoucherPayment:  0,
	model.VoucherReceipt:  1,
	model.VoucherJournal:  2,
	model.VoucherSales:    3,
	model.VoucherPurchase: 4,
}

const otherRank = 9

// TypeTotals is the per-type line of the day book summary.
type TypeTotals struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DayBook is the list of vouchers for one date.
type DayBook struct {
	Date          string                `json:"date"`
	Vouchers      []model.Voucher       `json:"vouchers"`
	TotalVouchers int                   `json:"total_vouchers"`
	SummaryByType map[string]TypeTotals `json:"summary_by_type"`
}

// OtherType labels vouchers without a type in the day book summary.
const OtherType = "Other"

// BuildDayBook orders vouchers by type rank, then by voucher number
// (numeric numbers first, in numeric order; the rest by text), and
// summarizes count and amount per type.
func BuildDayBook(date string, vouchers []model.Voucher) DayBook {
	sorted := slices.Clone(vouchers)
	if sorted == nil {
		sorted = []model.Voucher{}
	}
	slices.SortStableFunc(sorted, compareDayBook)

	summary := make(map[string]TypeTotals)
	for _, v := range sorted {
		key := string(v.Type)
		if key == "" {
			key = OtherType
		}
		tt, ok := summary[key]
		if !ok {
			tt.Total = decimal.Zero
		}
		tt.Count++
		tt.Total = tt.Total.Add(v.Amount)
		summary[key] = tt
	}
	return DayBook{
		Date:          date,
		Vouchers:      sorted,
		TotalVouchers: len(sorted),
		SummaryByType: summary,
	}
}

func rank(t model.VoucherType) int {
	if r, ok := dayBookOrder[t]; ok {
		return r
	}
	return otherRank
}

func compareDayBook(a, b model.Voucher) int {
	if ra, rb := rank(a.Type), rank(b.Type); ra != rb {
		return cmp.Compare(ra, rb)
	}
	na, errA := strconv.Atoi(strings.TrimSpace(a.Number))
	nb, errB := strconv.Atoi(strings.TrimSpace(b.Number))
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a.Number, b.Number)
}
