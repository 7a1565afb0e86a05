package report

import (
	"time"

	"github.com/tallyx-dev/tallyx/internal/model"
)

// Export is the full dataset of one company.
type Export struct {
	CompanyInfo         model.CompanyInfo  `json:"company_info"`
	Groups              []model.Group      `json:"groups"`
	Ledgers             []model.Ledger     `json:"ledgers"`
	CostCentres         []model.CostCentre `json:"cost_centres"`
	Vouchers            []model.Voucher    `json:"vouchers"`
	TrialBalance        TrialBalance       `json:"trial_balance"`
	FinancialSummary    FinancialSummary   `json:"financial_summary"`
	ExtractionTimestamp time.Time          `json:"extraction_timestamp"`
	ExtractionMethod    model.Backend      `json:"extraction_method"`
	DurationSeconds     float64            `json:"export_duration_seconds"`
	Errors              map[string]string  `json:"errors,omitempty"`
}
