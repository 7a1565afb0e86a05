package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tallyx-dev/tallyx/internal/model"
	"github.com/tallyx-dev/tallyx/internal/report"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleExport() report.Export {
	ledgers := []model.Ledger{
		{
			Name: "HDFC Bank", ParentGroup: "Bank Accounts",
			Opening: model.Balance{Amount: d("100000"), Side: model.Debit},
			Closing: model.Balance{Amount: d("150250.5"), Side: model.Debit},
			State:   "Maharashtra",
		},
		{
			Name: "Capital Account", ParentGroup: "Capital Account",
			Opening: model.Balance{Amount: decimal.Zero, Side: model.Debit},
			Closing: model.Balance{Amount: d("150250.5"), Side: model.Credit},
		},
	}
	return report.Export{
		CompanyInfo: model.CompanyInfo{Name: "Nimona", State: "Karnataka"},
		Groups:      []model.Group{{Name: "Bank Accounts", Parent: "Current Assets"}},
		Ledgers:     ledgers,
		CostCentres: []model.CostCentre{{Name: "Head Office"}},
		Vouchers: []model.Voucher{{
			Number: "1", Type: model.VoucherJournal, Date: "2025-04-01",
			Particulars: "HDFC Bank", Amount: d("5500000"), Narration: "Capital, introduced",
		}},
		TrialBalance:        report.BuildTrialBalance(ledgers),
		FinancialSummary:    report.BuildFinancialSummary(ledgers, model.BackendXML),
		ExtractionTimestamp: time.Date(2025, 4, 5, 9, 0, 0, 0, time.UTC),
		ExtractionMethod:    model.BackendXML,
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"csv", "json", "pdf", "xlsx"}, r.Formats())
	assert.NotNil(t, r.Get("XLSX"))
	assert.Nil(t, r.Get("xml"))
	assert.Panics(t, func() { r.Register(&JSONWriter{}) })
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONWriter{}.Write(&buf, sampleExport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "xml_api", got["extraction_method"])
	assert.Len(t, got["ledgers"], 2)
	assert.NotContains(t, got, "errors")
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, sampleExport()))

	cr := csv.NewReader(&buf)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	require.NoError(t, err)

	sections := map[string][][]string{}
	var current string
	for _, rec := range records {
		if len(rec) == 2 && rec[0] == "section" {
			current = rec[1]
			continue
		}
		sections[current] = append(sections[current], rec)
	}

	require.Contains(t, sections, "Ledgers")
	ledgers := sections["Ledgers"]
	require.Len(t, ledgers, 3)
	assert.Equal(t, "ledger_name", ledgers[0][colLedgerName])
	assert.Equal(t, "150250.50", ledgers[1][colClosing])
	assert.Equal(t, "50250.50", ledgers[1][colNetMovement])
	assert.Equal(t, "Cr", ledgers[2][colClosingSide])

	vouchers := sections["Vouchers"]
	require.Len(t, vouchers, 2)
	assert.Equal(t, "Capital, introduced", vouchers[1][colVchNarr])
	assert.Equal(t, "5500000.00", vouchers[1][colVchAmount])

	tb := sections["Trial Balance"]
	assert.Equal(t, []string{"Total", "", "150250.50", "150250.50"}, tb[len(tb)-1])
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXWriter{}.Write(&buf, sampleExport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Company", "Ledgers", "Groups", "Cost Centres", "Vouchers", "Trial Balance", "Financial Summary",
	}, f.GetSheetList())

	name, err := f.GetCellValue("Ledgers", "A2")
	require.NoError(t, err)
	assert.Equal(t, "HDFC Bank", name)

	closing, err := f.GetCellValue("Ledgers", "E2")
	require.NoError(t, err)
	assert.Equal(t, "150250.5", closing)

	header, err := f.GetCellValue("Vouchers", "F1")
	require.NoError(t, err)
	assert.Equal(t, "amount", header)
}

func TestPDFWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDFWriter{}.Write(&buf, sampleExport()))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "12.30", cellString(d("12.3")))
	assert.Equal(t, "7", cellString(7))
	assert.Equal(t, "Dr", cellString("Dr"))
}
