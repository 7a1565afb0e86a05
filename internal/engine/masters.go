package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tallyx-dev/tallyx/internal/apperr"
	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/parse"
	"github.com/tallyx-dev/tallyx/internal/report"
	"github.com/tallyx-dev/tallyx/internal/request"
)

var errNoCompanies = errors.New("no companies returned")

// TestConnection probes both backends for their company lists. The active
// method is the first backend that returned at least one company.
func (e *Engine) TestConnection(ctx context.Context) model.ConnectionStatus {
	st := model.ConnectionStatus{
		XMLAPI: model.BackendStatus{Companies: []string{}},
		ODBC:   model.BackendStatus{Companies: []string{}},
	}
	probe := func(s *model.BackendStatus, backend model.Backend, list func(context.Context) ([]string, error)) {
		companies, err := list(ctx)
		if err != nil {
			s.Error = err.Error()
			return
		}
		s.Connected = true
		s.Companies = companies
		if st.ActiveMethod == model.BackendNone {
			st.ActiveMethod = backend
		}
	}
	if !e.cfg.ODBC.Force {
		probe(&st.XMLAPI, model.BackendXML, e.xmlCompanies)
	}
	probe(&st.ODBC, model.BackendODBC, e.sqlCompanies)
	return st
}

func (e *Engine) xmlCompanies(ctx context.Context) ([]string, error) {
	raw, err := e.xml(ctx, request.CompanyList(), e.cfg.Backend.Timeout)
	if err != nil {
		return nil, err
	}
	companies, err := parse.CompanyList(raw)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, errNoCompanies
	}
	return companies, nil
}

func (e *Engine) sqlCompanies(ctx context.Context) ([]string, error) {
	rows, err := e.sql(ctx, request.CompanySQL)
	if err != nil {
		return nil, err
	}
	companies := parse.CompaniesFromRows(rows)
	if len(companies) == 0 {
		return nil, errNoCompanies
	}
	return companies, nil
}

// CompanyList returns the names of all companies loaded in the backend,
// falling back to the secondary backend when the primary returns none.
func (e *Engine) CompanyList(ctx context.Context) ([]string, error) {
	res, err := e.companyList(ctx)
	if err != nil {
		return []string{}, e.degrade(ctx, "companies", err)
	}
	return res.Value, nil
}

func (e *Engine) companyList(ctx context.Context) (Sourced[[]string], error) {
	return firstOf(ctx, e, "companies",
		stage[[]string]{model.BackendXML, e.xmlCompanies},
		stage[[]string]{model.BackendODBC, e.sqlCompanies},
	)
}

// CompanyInfo returns the master record of the configured company. On
// failure a record holding only the company name is returned.
func (e *Engine) CompanyInfo(ctx context.Context) (model.CompanyInfo, error) {
	info, err := e.companyInfo(ctx)
	if err != nil {
		return info, e.degrade(ctx, "company_info", err)
	}
	return info, nil
}

func (e *Engine) companyInfo(ctx context.Context) (model.CompanyInfo, error) {
	raw, err := e.xml(ctx, request.CompanyInfo(e.Company()), e.cfg.Backend.Timeout)
	if err != nil {
		return model.CompanyInfo{Name: e.Company()}, err
	}
	return parse.CompanyInfo(raw, e.Company())
}

// Ledgers returns every ledger of the company from the cache, fetching when
// the entry is missing, expired or forceRefresh is set. When both backends
// fail the previous entry is served, or nothing if there is none.
func (e *Engine) Ledgers(ctx context.Context, forceRefresh bool) ([]model.Ledger, error) {
	ledgers, err := e.cachedLedgers(ctx, forceRefresh)
	if err != nil {
		return ledgers, e.degrade(ctx, "ledgers", err)
	}
	return ledgers, nil
}

func (e *Engine) cachedLedgers(ctx context.Context, forceRefresh bool) ([]model.Ledger, error) {
	ledgers, result, err := e.ledgers.Get(ctx, forceRefresh, e.fetchLedgers)
	e.metrics.CacheLookup(string(result))
	if age, ok := e.ledgers.Age(); ok {
		e.log.WithFields(logrus.Fields{"result": result, "age": age}).Debug("ledger cache")
	}
	return orEmpty(ledgers), err
}

func (e *Engine) fetchLedgers(ctx context.Context) ([]model.Ledger, error) {
	res, err := firstOf(ctx, e, "ledgers",
		stage[[]model.Ledger]{model.BackendXML, e.xmlLedgers},
		stage[[]model.Ledger]{model.BackendODBC, e.sqlLedgers},
	)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"report":  "ledgers",
		"backend": res.Backend,
		"count":   len(res.Value),
	}).Info("fetched ledgers")
	return res.Value, nil
}

func (e *Engine) xmlLedgers(ctx context.Context) ([]model.Ledger, error) {
	raw, err := e.xml(ctx, request.Ledgers(e.Company()), e.cfg.Backend.Timeout)
	if err != nil {
		return nil, err
	}
	return parse.Ledgers(raw, e.Company())
}

func (e *Engine) sqlLedgers(ctx context.Context) ([]model.Ledger, error) {
	rows, err := e.sql(ctx, request.LedgerSQL)
	if err != nil {
		return nil, err
	}
	ledgers := parse.LedgersFromRows(rows, e.Company())
	if len(ledgers) == 0 {
		return nil, errors.New("no ledgers returned")
	}
	return ledgers, nil
}

// LedgerByName returns the ledger whose name matches, ignoring case.
func (e *Engine) LedgerByName(ctx context.Context, name string) (model.Ledger, error) {
	ledgers, err := e.Ledgers(ctx, false)
	if err != nil {
		return model.Ledger{}, err
	}
	l, ok := report.ByName(ledgers, name)
	if !ok {
		return model.Ledger{}, fmt.Errorf("ledger %q: %w", name, apperr.ErrNotFound)
	}
	return l, nil
}

// LedgersByGroup returns the ledgers whose parent group matches any of
// groups, ignoring case.
func (e *Engine) LedgersByGroup(ctx context.Context, groups ...string) ([]model.Ledger, error) {
	ledgers, err := e.Ledgers(ctx, false)
	if err != nil {
		return []model.Ledger{}, err
	}
	return report.ByGroup(ledgers, groups...), nil
}

// BankAccounts returns the ledgers under Bank Accounts.
func (e *Engine) BankAccounts(ctx context.Context) ([]model.Ledger, error) {
	return e.LedgersByGroup(ctx, report.GroupBankAccounts)
}

// CashAccounts returns the ledgers under Cash-in-Hand.
func (e *Engine) CashAccounts(ctx context.Context) ([]model.Ledger, error) {
	return e.LedgersByGroup(ctx, report.GroupCashInHand)
}

// Debtors returns the ledgers under Sundry Debtors.
func (e *Engine) Debtors(ctx context.Context) ([]model.Ledger, error) {
	return e.LedgersByGroup(ctx, report.GroupSundryDebtors)
}

// Creditors returns the ledgers under Sundry Creditors.
func (e *Engine) Creditors(ctx context.Context) ([]model.Ledger, error) {
	return e.LedgersByGroup(ctx, report.GroupSundryCreditors)
}

// FixedAssets returns the ledgers under Fixed Assets.
func (e *Engine) FixedAssets(ctx context.Context) ([]model.Ledger, error) {
	return e.LedgersByGroup(ctx, report.GroupFixedAssets)
}

// Loans returns secured loans followed by unsecured loans.
func (e *Engine) Loans(ctx context.Context) ([]model.Ledger, error) {
	secured, err := e.LedgersByGroup(ctx, report.GroupSecuredLoans)
	if err != nil {
		return secured, err
	}
	unsecured, err := e.LedgersByGroup(ctx, report.GroupUnsecuredLoans)
	return append(secured, unsecured...), err
}

// Receivables totals the sundry debtors.
func (e *Engine) Receivables(ctx context.Context) (report.PartyTotals, error) {
	debtors, err := e.Debtors(ctx)
	return report.Parties(debtors), err
}

// Payables totals the sundry creditors.
func (e *Engine) Payables(ctx context.Context) (report.PartyTotals, error) {
	creditors, err := e.Creditors(ctx)
	return report.Parties(creditors), err
}

// TopDebtors returns the n debtors with the largest closing balance.
func (e *Engine) TopDebtors(ctx context.Context, n int) ([]model.Ledger, error) {
	debtors, err := e.Debtors(ctx)
	return report.TopByClosing(debtors, n), err
}

// TopCreditors returns the n creditors with the largest closing balance.
func (e *Engine) TopCreditors(ctx context.Context, n int) ([]model.Ledger, error) {
	creditors, err := e.Creditors(ctx)
	return report.TopByClosing(creditors, n), err
}

// Groups returns every account group. The report has no fallback.
func (e *Engine) Groups(ctx context.Context) ([]model.Group, error) {
	groups, err := e.groups(ctx)
	if err != nil {
		return []model.Group{}, e.degrade(ctx, "groups", err)
	}
	return orEmpty(groups), nil
}

func (e *Engine) groups(ctx context.Context) ([]model.Group, error) {
	raw, err := e.xml(ctx, request.Groups(e.Company()), e.cfg.Backend.Timeout)
	if err != nil {
		return nil, err
	}
	return parse.Groups(raw)
}

// CostCentres returns every cost centre. The report has no fallback.
func (e *Engine) CostCentres(ctx context.Context) ([]model.CostCentre, error) {
	ccs, err := e.costCentres(ctx)
	if err != nil {
		return []model.CostCentre{}, e.degrade(ctx, "cost_centres", err)
	}
	return orEmpty(ccs), nil
}

func (e *Engine) costCentres(ctx context.Context) ([]model.CostCentre, error) {
	raw, err := e.xml(ctx, request.CostCentres(e.Company()), e.cfg.Backend.Timeout)
	if err != nil {
		return nil, err
	}
	return parse.CostCentres(raw)
}
