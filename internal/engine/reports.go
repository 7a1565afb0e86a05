package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/report"
)

// ExportVoucherLimit caps the vouchers of a full export.
const ExportVoucherLimit = 10000

// TrialBalance builds the trial balance from the cached ledgers.
func (e *Engine) TrialBalance(ctx context.Context) (report.TrialBalance, error) {
	ledgers, err := e.Ledgers(ctx, false)
	return report.BuildTrialBalance(ledgers), err
}

// GroupSummary totals the ledgers per parent group.
func (e *Engine) GroupSummary(ctx context.Context) (map[string]report.GroupTotals, error) {
	ledgers, err := e.Ledgers(ctx, false)
	return report.GroupSummary(ledgers), err
}

// FinancialSummary builds the headline balance sheet totals.
func (e *Engine) FinancialSummary(ctx context.Context) (report.FinancialSummary, error) {
	ledgers, err := e.Ledgers(ctx, false)
	return report.BuildFinancialSummary(ledgers, e.ActiveMethod()), err
}

// ExportAll extracts every report in turn. A failing section is recorded
// in Errors and leaves its field empty; the other sections still run.
func (e *Engine) ExportAll(ctx context.Context) report.Export {
	start := e.now()
	out := report.Export{
		CompanyInfo: model.CompanyInfo{Name: e.Company()},
		Groups:      []model.Group{},
		Ledgers:     []model.Ledger{},
		CostCentres: []model.CostCentre{},
		Vouchers:    []model.Voucher{},
		Errors:      map[string]string{},
	}

	sections := []struct {
		name string
		run  func() error
	}{
		{"company_info", func() (err error) {
			out.CompanyInfo, err = e.companyInfo(ctx)
			return err
		}},
		{"groups", func() error {
			gs, err := e.groups(ctx)
			out.Groups = orEmpty(gs)
			return err
		}},
		{"ledgers", func() (err error) {
			out.Ledgers, err = e.cachedLedgers(ctx, false)
			return err
		}},
		{"cost_centres", func() error {
			ccs, err := e.costCentres(ctx)
			out.CostCentres = orEmpty(ccs)
			return err
		}},
		{"vouchers", func() error {
			vs, err := e.vouchers(ctx, VoucherQuery{Limit: ExportVoucherLimit})
			out.Vouchers = orEmpty(vs)
			return err
		}},
		{"trial_balance", func() error {
			out.TrialBalance = report.BuildTrialBalance(out.Ledgers)
			return nil
		}},
		{"financial_summary", func() error {
			out.FinancialSummary = report.BuildFinancialSummary(out.Ledgers, e.ActiveMethod())
			return nil
		}},
	}
	for _, s := range sections {
		if err := isolate(s.run); err != nil {
			out.Errors[s.name] = err.Error()
			e.metrics.ExportFailure(s.name)
			e.log.WithField("section", s.name).WithError(err).Error("export section failed")
		}
	}

	end := e.now()
	out.ExtractionTimestamp = end
	out.ExtractionMethod = e.ActiveMethod()
	out.DurationSeconds = end.Sub(start).Seconds()
	if len(out.Errors) == 0 {
		out.Errors = nil
	}
	e.log.WithFields(logrus.Fields{
		"ledgers":  len(out.Ledgers),
		"vouchers": len(out.Vouchers),
		"failed":   len(out.Errors),
		"duration": out.DurationSeconds,
	}).Info("full export finished")
	return out
}

// isolate runs fn and turns a panic into an error.
func isolate(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
