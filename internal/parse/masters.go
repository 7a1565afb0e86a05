package parse

import (
	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/request"
)

// Ledgers parses the ledger report. Every record carries company.
func Ledgers(raw, company string) ([]model.Ledger, error) {
	return withRepair(raw, func(doc string) ([]model.Ledger, error) {
		elems, err := children(doc)
		if err != nil {
			return nil, err
		}
		var out []model.Ledger
		for _, rec := range records(elems, request.FldName.Tag()) {
			out = append(out, ledgerFromRecord(rec, company))
		}
		return out, nil
	})
}

func ledgerFromRecord(rec []element, company string) model.Ledger {
	l := model.Ledger{
		Company: company,
		Opening: model.Balance{Side: model.Debit},
		Closing: model.Balance{Side: model.Debit},
	}
	for _, e := range rec {
		switch e.Tag {
		case request.FldName.Tag():
			l.Name = e.Text
		case request.FldParent.Tag():
			l.ParentGroup = e.Text
		case request.FldOpeningBalance.Tag():
			l.Opening.Amount, l.Opening.Side = Amount(e.Text)
		case request.FldClosingBalance.Tag():
			l.Closing.Amount, l.Closing.Side = Amount(e.Text)
		case request.FldAddress.Tag():
			l.Address = e.Text
		case request.FldGSTIN.Tag():
			l.GSTIN = e.Text
		case request.FldPAN.Tag():
			l.PAN = e.Text
		case request.FldEmail.Tag():
			l.Email = e.Text
		case request.FldPhone.Tag():
			l.Phone = e.Text
		case request.FldState.Tag():
			l.State = e.Text
		case request.FldPincode.Tag():
			l.Pincode = e.Text
		case request.FldCreditPeriod.Tag():
			l.CreditPeriod = e.Text
		}
	}
	return l
}

// Groups parses the group report.
func Groups(raw string) ([]model.Group, error) {
	return withRepair(raw, func(doc string) ([]model.Group, error) {
		elems, err := children(doc)
		if err != nil {
			return nil, err
		}
		var out []model.Group
		for _, rec := range records(elems, request.FldGrpName.Tag()) {
			var g model.Group
			for _, e := range rec {
				switch e.Tag {
				case request.FldGrpName.Tag():
					g.Name = e.Text
				case request.FldGrpParent.Tag():
					g.Parent = e.Text
				case request.FldGrpPrimary.Tag():
					g.IsPrimary = YesNo(e.Text)
				}
			}
			out = append(out, g)
		}
		return out, nil
	})
}

// CostCentres parses the cost centre report.
func CostCentres(raw string) ([]model.CostCentre, error) {
	return withRepair(raw, func(doc string) ([]model.CostCentre, error) {
		elems, err := children(doc)
		if err != nil {
			return nil, err
		}
		var out []model.CostCentre
		for _, rec := range records(elems, request.FldCCName.Tag()) {
			var cc model.CostCentre
			for _, e := range rec {
				switch e.Tag {
				case request.FldCCName.Tag():
					cc.Name = e.Text
				case request.FldCCParent.Tag():
					cc.Parent = e.Text
				}
			}
			out = append(out, cc)
		}
		return out, nil
	})
}

// CompanyList collects every non-empty company name at any depth.
func CompanyList(raw string) ([]string, error) {
	return withRepair(raw, func(doc string) ([]string, error) {
		all, err := walk(doc)
		if err != nil {
			return nil, err
		}
		var out []string
		for _, e := range all {
			if e.Tag == request.FldCompanyName.Tag() && e.Text != "" {
				out = append(out, e.Text)
			}
		}
		return out, nil
	})
}

// CompanyInfo parses the company master. An empty name is replaced by
// fallbackName.
func CompanyInfo(raw, fallbackName string) (model.CompanyInfo, error) {
	info, err := withRepair(raw, func(doc string) (model.CompanyInfo, error) {
		all, err := walk(doc)
		if err != nil {
			return model.CompanyInfo{}, err
		}
		var info model.CompanyInfo
		targets := map[string]*string{
			request.FldCmpName.Tag():      &info.Name,
			request.FldCmpAddr.Tag():      &info.Address,
			request.FldCmpState.Tag():     &info.State,
			request.FldCmpPin.Tag():       &info.Pincode,
			request.FldCmpPhone.Tag():     &info.Phone,
			request.FldCmpEmail.Tag():     &info.Email,
			request.FldCmpGSTIN.Tag():     &info.GSTIN,
			request.FldCmpPAN.Tag():       &info.PAN,
			request.FldCmpBooksFrom.Tag(): &info.BooksFrom,
		}
		for _, e := range all {
			if dst, ok := targets[e.Tag]; ok && e.Text != "" {
				*dst = e.Text
			}
		}
		return info, nil
	})
	if info.Name == "" {
		info.Name = fallbackName
	}
	return info, err
}
