package engine

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/tallyx-dev/tallyx/internal/audit"
	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/parse"
	"github.com/tallyx-dev/tallyx/internal/repair"
	"github.com/tallyx-dev/tallyx/internal/report"
	"github.com/tallyx-dev/tallyx/internal/request"
)

// DefaultVoucherLimit caps voucher results when a query sets no limit.
const DefaultVoucherLimit = 500

// rawVoucherPreview is how much of the raw voucher response RawVoucherXML returns.
const rawVoucherPreview = 20000

// VoucherQuery selects vouchers. Empty dates default to the financial year.
type VoucherQuery struct {
	Type           string
	From           string // YYYYMMDD
	To             string // YYYYMMDD
	Limit          int
	IncludeEntries bool
}

func (e *Engine) withDefaults(q VoucherQuery) VoucherQuery {
	if q.From == "" {
		q.From = e.cfg.Fiscal.YearStart
	}
	if q.To == "" {
		q.To = e.cfg.Fiscal.YearEnd
	}
	if q.Limit <= 0 {
		q.Limit = DefaultVoucherLimit
	}
	return q
}

// Vouchers returns the vouchers matching q. The type filter and limit are
// applied after the whole collection is fetched. The report has no fallback.
func (e *Engine) Vouchers(ctx context.Context, q VoucherQuery) ([]model.Voucher, error) {
	vs, err := e.vouchers(ctx, q)
	if err != nil {
		return []model.Voucher{}, e.degrade(ctx, "vouchers", err)
	}
	return vs, nil
}

func (e *Engine) vouchers(ctx context.Context, q VoucherQuery) ([]model.Voucher, error) {
	q = e.withDefaults(q)
	raw, err := e.xml(ctx, request.Vouchers(e.Company(), q.From, q.To), e.cfg.Backend.VoucherTimeout)
	if err != nil {
		return nil, err
	}
	vs, err := parse.Vouchers(raw, e.Company(), parse.VoucherFilter{
		Type:           q.Type,
		Limit:          q.Limit,
		IncludeEntries: q.IncludeEntries,
	})
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"report": "vouchers",
		"type":   q.Type,
		"from":   q.From,
		"to":     q.To,
		"count":  len(vs),
	}).Info("extracted vouchers")
	return orEmpty(vs), nil
}

func (e *Engine) ofType(ctx context.Context, t model.VoucherType, from, to string) ([]model.Voucher, error) {
	return e.Vouchers(ctx, VoucherQuery{Type: string(t), From: from, To: to})
}

// SalesVouchers returns the Sales vouchers of from..to.
func (e *Engine) SalesVouchers(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherSales, from, to)
}

// PurchaseVouchers returns the Purchase vouchers of from..to.
func (e *Engine) PurchaseVouchers(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherPurchase, from, to)
}

// ReceiptVouchers returns the Receipt vouchers of from..to.
func (e *Engine) ReceiptVouchers(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherReceipt, from, to)
}

// PaymentVouchers returns the Payment vouchers of from..to.
func (e *Engine) PaymentVouchers(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherPayment, from, to)
}

// JournalVouchers returns the Journal vouchers of from..to.
func (e *Engine) JournalVouchers(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherJournal, from, to)
}

// ContraVouchers returns the Contra vouchers of from..to.
func (e *Engine) ContraVouchers(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherContra, from, to)
}

// CreditNotes returns the Credit Note vouchers of from..to.
func (e *Engine) CreditNotes(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherCreditNote, from, to)
}

// DebitNotes returns the Debit Note vouchers of from..to.
func (e *Engine) DebitNotes(ctx context.Context, from, to string) ([]model.Voucher, error) {
	return e.ofType(ctx, model.VoucherDebitNote, from, to)
}

// DayBook returns the vouchers of date (YYYYMMDD, default today) in day
// book order.
func (e *Engine) DayBook(ctx context.Context, date string) (report.DayBook, error) {
	if date == "" {
		date = e.now().Format("20060102")
	}
	vs, err := e.Vouchers(ctx, VoucherQuery{From: date, To: date})
	return report.BuildDayBook(date, vs), err
}

// AuditVouchers checks the vouchers matching q, with their entries, for
// bookkeeping inconsistencies.
func (e *Engine) AuditVouchers(ctx context.Context, q VoucherQuery) ([]audit.Issue, error) {
	q.IncludeEntries = true
	vs, err := e.Vouchers(ctx, q)
	if err != nil {
		return nil, err
	}
	issues := audit.Vouchers(vs)
	if issues == nil {
		issues = []audit.Issue{}
	}
	return issues, nil
}

// RawVoucherXML returns the start of the unparsed voucher response for
// from..to, for diagnosing backend output.
func (e *Engine) RawVoucherXML(ctx context.Context, from, to string) (string, error) {
	q := e.withDefaults(VoucherQuery{From: from, To: to})
	raw, err := e.xml(ctx, request.Vouchers(e.Company(), q.From, q.To), 60*time.Second)
	if err != nil {
		return "", err
	}
	if err := repair.WellFormed(repair.Minimal(raw)); err != nil {
		e.log.WithError(err).Warn("voucher XML is ill-formed after minimal repair")
	}
	return preview(raw, rawVoucherPreview), nil
}

// preview cuts s to at most n bytes without splitting a rune.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
