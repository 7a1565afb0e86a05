package engine

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyx-dev/tallyx/internal/apperr"
	"github.com/tallyx-dev/tallyx/internal/cache"
	"github.com/tallyx-dev/tallyx/internal/config"
	"github.com/tallyx-dev/tallyx/internal/metrics"
	"github.com/tallyx-dev/tallyx/internal/model"
)

// fakeBackend serves testdata fixtures keyed by the request ID.
type fakeBackend struct {
	t *testing.T

	mu     sync.Mutex
	bodies map[string]string
	failed map[string]bool
	hits   map[string]int
	last   map[string]string
}

var fixtureByID = map[string]string{
	"LedgerTable":       "ledgers.xml",
	"GroupReport":       "groups.xml",
	"CostCentreReport":  "cost_centres.xml",
	"List of Companies": "companies.xml",
	"CompanyInfoReport": "company_info.xml",
	"VchCollection":     "vouchers.xml",
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		t:      t,
		bodies: map[string]string{},
		failed: map[string]bool{},
		hits:   map[string]int{},
		last:   map[string]string{},
	}
	for id, name := range fixtureByID {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
		require.NoError(t, err)
		fb.bodies[id] = string(data)
	}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, srv
}

func requestID(body string) string {
	start := strings.Index(body, "<ID>")
	end := strings.Index(body, "</ID>")
	if start < 0 || end < start {
		return ""
	}
	return body[start+len("<ID>") : end]
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	id := requestID(string(b))

	fb.mu.Lock()
	fb.hits[id]++
	fb.last[id] = string(b)
	failed := fb.failed[id] || fb.failed["*"]
	body, ok := fb.bodies[id]
	fb.mu.Unlock()

	if failed || !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = io.WriteString(w, body)
}

func (fb *fakeBackend) fail(id string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failed[id] = true
}

func (fb *fakeBackend) recover(id string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	delete(fb.failed, id)
}

func (fb *fakeBackend) set(id, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.bodies[id] = body
}

func (fb *fakeBackend) hitCount(id string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[id]
}

func (fb *fakeBackend) lastRequest(id string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.last[id]
}

var testNow = time.Date(2025, 4, 5, 9, 0, 0, 0, time.UTC)

func noSleep(context.Context, time.Duration) error { return nil }

func noDriver(string, string) (*sql.DB, error) {
	return nil, errors.New(`sql: unknown driver "odbc"`)
}

type testEngine struct {
	*Engine
	reg  *prometheus.Registry
	hook *test.Hook
}

func newTestEngine(t *testing.T, url string, open func(string, string) (*sql.DB, error), tweak ...func(*config.Config)) testEngine {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.URL = url
	cfg.Backend.RetryUnit = time.Millisecond
	cfg.Backend.MaxRetries = 2
	for _, f := range tweak {
		f(cfg)
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	reg := prometheus.NewRegistry()
	e := New(*cfg, Options{
		Logger:  logger,
		Open:    open,
		Metrics: metrics.New(reg),
		Sleep:   noSleep,
		Now:     func() time.Time { return testNow },
	})
	return testEngine{Engine: e, reg: reg, hook: hook}
}

// sqlRows returns an opener serving one query result from sqlmock.
func sqlRows(t *testing.T, query string, rows *sqlmock.Rows) func(string, string) (*sql.DB, error) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectQuery(query).WillReturnRows(rows)
	mock.ExpectClose()
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return func(string, string) (*sql.DB, error) { return db, nil }
}

func TestLedgers_Primary(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	ledgers, err := e.Ledgers(ctx, false)
	require.NoError(t, err)
	require.Len(t, ledgers, 4)
	assert.Equal(t, "HDFC Bank", ledgers[0].Name)
	assert.Equal(t, "MG Road, Pune", ledgers[0].Address)
	assert.Equal(t, "Nimona", ledgers[0].Company)
	assert.Equal(t, model.BackendXML, e.ActiveMethod())
	assert.Contains(t, fb.lastRequest("LedgerTable"), "<SVCURRENTCOMPANY>Nimona</SVCURRENTCOMPANY>")

	_, err = e.Ledgers(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fb.hitCount("LedgerTable"), "second read is served from cache")

	_, err = e.Ledgers(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, fb.hitCount("LedgerTable"), "force refresh always fetches")
	assert.Equal(t, float64(1), counterValue(t, e.reg, "tallyx_ledger_cache_lookups_total", "hit"))
}

func TestLedgers_FallbackToSecondary(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.fail("LedgerTable")

	rows := sqlmock.NewRows([]string{"$Name", "$Parent", "$OpeningBalance", "$ClosingBalance"}).
		AddRow("Cash", "Cash-in-Hand", float64(1000), float64(-250)).
		AddRow("Petty Cash", "Cash-in-Hand", nil, "300.00")
	e := newTestEngine(t, srv.URL, sqlRows(t, `SELECT \$Name, \$Parent`, rows))

	ledgers, err := e.Ledgers(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, ledgers, 2)
	assert.Equal(t, "Cash", ledgers[0].Name)
	assert.Equal(t, model.Credit, ledgers[0].Closing.Side)
	assert.Equal(t, "250", ledgers[0].Closing.Amount.String())
	assert.Equal(t, model.BackendODBC, e.ActiveMethod())
	assert.Equal(t, 2, fb.hitCount("LedgerTable"), "primary retried before falling back")
	assert.Equal(t, 1, gatherCount(t, e.reg, "tallyx_fallbacks_total"))
}

func TestLedgers_BothBackendsFail(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.fail("LedgerTable")
	e := newTestEngine(t, srv.URL, noDriver)

	ledgers, err := e.Ledgers(context.Background(), false)
	require.NoError(t, err, "failures degrade to an empty result")
	assert.NotNil(t, ledgers)
	assert.Empty(t, ledgers)
}

func TestLedgers_StaleEntryServedOnFailure(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	first, err := e.Ledgers(ctx, false)
	require.NoError(t, err)

	fb.fail("LedgerTable")
	again, err := e.Ledgers(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	fb.recover("LedgerTable")
	_, err = e.Ledgers(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1+2, fb.hitCount("LedgerTable"), "entry stays fresh after a failed refresh")
}

func TestLedgers_CallerCancellation(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ledgers, err := e.Ledgers(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ledgers)
}

func TestLedgerByName(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	l, err := e.LedgerByName(ctx, "acme traders")
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", l.Name)
	assert.Equal(t, "30 Days", l.CreditPeriod)

	_, err = e.LedgerByName(ctx, "Nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLedgerShortcuts(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	banks, err := e.BankAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "HDFC Bank", banks[0].Name)

	cash, err := e.CashAccounts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cash)
	assert.Empty(t, cash)

	grouped, err := e.LedgersByGroup(ctx, "sundry debtors", "SUNDRY CREDITORS")
	require.NoError(t, err)
	assert.Len(t, grouped, 2)

	rec, err := e.Receivables(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, "45500", rec.Total.String())

	pay, err := e.Payables(ctx)
	require.NoError(t, err)
	assert.Equal(t, "18250.75", pay.Total.String())

	top, err := e.TopCreditors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Zenith Supplies", top[0].Name)

	top, err = e.TopDebtors(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)

	loans, err := e.Loans(ctx)
	require.NoError(t, err)
	assert.Empty(t, loans)

	fixed, err := e.FixedAssets(ctx)
	require.NoError(t, err)
	assert.Empty(t, fixed)
}

func TestCompanyList(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)

	companies, err := e.CompanyList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nimona", "Nimona Exports"}, companies)
}

func TestCompanyList_EmptyPrimaryFallsBack(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.set("List of Companies", "<ENVELOPE></ENVELOPE>")
	rows := sqlmock.NewRows([]string{"Name"}).AddRow("Nimona")
	e := newTestEngine(t, srv.URL, sqlRows(t, `SELECT \$Name FROM Company`, rows))

	companies, err := e.CompanyList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nimona"}, companies)
	assert.Equal(t, model.BackendODBC, e.ActiveMethod())
}

func TestTestConnection(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)

	st := e.TestConnection(context.Background())
	assert.True(t, st.XMLAPI.Connected)
	assert.Equal(t, []string{"Nimona", "Nimona Exports"}, st.XMLAPI.Companies)
	assert.False(t, st.ODBC.Connected)
	assert.Contains(t, st.ODBC.Error, "backend unavailable")
	assert.Equal(t, model.BackendXML, st.ActiveMethod)
}

func TestTestConnection_NothingReachable(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.fail("*")
	e := newTestEngine(t, srv.URL, noDriver)

	st := e.TestConnection(context.Background())
	assert.False(t, st.XMLAPI.Connected)
	assert.Contains(t, st.XMLAPI.Error, "transport failure")
	assert.Equal(t, model.BackendNone, st.ActiveMethod)
}

func TestForceODBC_SkipsPrimary(t *testing.T) {
	fb, srv := newFakeBackend(t)
	rows := sqlmock.NewRows([]string{"$Name"}).AddRow("Nimona")
	e := newTestEngine(t, srv.URL, sqlRows(t, `SELECT \$Name FROM Company`, rows), func(c *config.Config) {
		c.ODBC.Force = true
	})
	assert.Equal(t, model.BackendODBC, e.ActiveMethod())

	st := e.TestConnection(context.Background())
	assert.False(t, st.XMLAPI.Connected)
	assert.True(t, st.ODBC.Connected)
	assert.Equal(t, model.BackendODBC, st.ActiveMethod)

	groups, err := e.Groups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Zero(t, fb.hitCount("List of Companies"))
	assert.Zero(t, fb.hitCount("GroupReport"))
}

func TestCompanyInfo(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	info, err := e.CompanyInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Karnataka", info.State)
	assert.Equal(t, "1-Apr-2025", info.BooksFrom)

	fb.fail("CompanyInfoReport")
	info, err = e.CompanyInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CompanyInfo{Name: "Nimona"}, info)
}

func TestGroupsAndCostCentres(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	groups, err := e.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.True(t, groups[0].IsPrimary)

	ccs, err := e.CostCentres(ctx)
	require.NoError(t, err)
	require.Len(t, ccs, 2)
	assert.Equal(t, "Head Office", ccs[1].Parent)

	fb.fail("CostCentreReport")
	ccs, err = e.CostCentres(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ccs)
	assert.Empty(t, ccs)
}

func TestVouchers(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	vs, err := e.Vouchers(ctx, VoucherQuery{})
	require.NoError(t, err)
	require.Len(t, vs, 4)
	assert.Nil(t, vs[0].Entries)
	assert.Contains(t, fb.lastRequest("VchCollection"), "<SVFROMDATE>20250401</SVFROMDATE>")
	assert.Contains(t, fb.lastRequest("VchCollection"), "<SVTODATE>20260331</SVTODATE>")

	vs, err = e.Vouchers(ctx, VoucherQuery{Type: "PAYMENT", From: "20250405", To: "20250405", IncludeEntries: true})
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, model.VoucherPayment, vs[0].Type)
	assert.Len(t, vs[0].Entries, 2)
	assert.Contains(t, fb.lastRequest("VchCollection"), "<SVFROMDATE>20250405</SVFROMDATE>")

	vs, err = e.Vouchers(ctx, VoucherQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, vs, 2)
	assert.Equal(t, 3, fb.hitCount("VchCollection"))
}

func TestVoucherShortcuts(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func(context.Context, string, string) ([]model.Voucher, error)
		want int
	}{
		{"sales", e.SalesVouchers, 1},
		{"purchase", e.PurchaseVouchers, 0},
		{"receipt", e.ReceiptVouchers, 1},
		{"payment", e.PaymentVouchers, 1},
		{"journal", e.JournalVouchers, 1},
		{"contra", e.ContraVouchers, 0},
		{"credit notes", e.CreditNotes, 0},
		{"debit notes", e.DebitNotes, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs, err := tt.fn(ctx, "", "")
			require.NoError(t, err)
			assert.Len(t, vs, tt.want)
		})
	}
}

func TestVouchers_PrimaryFailureDegrades(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.fail("VchCollection")
	e := newTestEngine(t, srv.URL, noDriver)

	vs, err := e.Vouchers(context.Background(), VoucherQuery{})
	require.NoError(t, err)
	assert.NotNil(t, vs)
	assert.Empty(t, vs)
}

func TestDayBook(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)

	db, err := e.DayBook(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "20250405", db.Date, "defaults to today")
	assert.Contains(t, fb.lastRequest("VchCollection"), "<SVFROMDATE>20250405</SVFROMDATE>")
	assert.Contains(t, fb.lastRequest("VchCollection"), "<SVTODATE>20250405</SVTODATE>")

	var order []model.VoucherType
	for _, v := range db.Vouchers {
		order = append(order, v.Type)
	}
	assert.Equal(t, []model.VoucherType{
		model.VoucherPayment, model.VoucherReceipt, model.VoucherJournal, model.VoucherSales,
	}, order)
	assert.Equal(t, 4, db.TotalVouchers)
	assert.Equal(t, "11800", db.SummaryByType["Sales"].Total.String())
}

func TestLedgerReports(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	tb, err := e.TrialBalance(ctx)
	require.NoError(t, err)
	assert.Len(t, tb.Entries, 4)
	assert.Equal(t, "195750.5", tb.TotalDebit.String())
	assert.Equal(t, "8018250.75", tb.TotalCredit.String())
	assert.False(t, tb.IsBalanced)

	gs, err := e.GroupSummary(ctx)
	require.NoError(t, err)
	assert.Len(t, gs, 4)
	assert.Equal(t, 1, gs["Bank Accounts"].Count)

	fs, err := e.FinancialSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fs.TotalLedgers)
	assert.Equal(t, "195750.5", fs.TotalAssets.String())
	assert.Equal(t, "8018250.75", fs.TotalLiabilities.String())
	assert.Equal(t, "150250.5", fs.TotalBankBalance.String())
	assert.Equal(t, model.BackendXML, fs.ExtractionMethod)
}

func TestExportAll(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)

	exp := e.ExportAll(context.Background())
	assert.Nil(t, exp.Errors)
	assert.Equal(t, "Nimona", exp.CompanyInfo.Name)
	assert.Len(t, exp.Groups, 3)
	assert.Len(t, exp.Ledgers, 4)
	assert.Len(t, exp.CostCentres, 2)
	assert.Len(t, exp.Vouchers, 4)
	assert.Len(t, exp.TrialBalance.Entries, 4)
	assert.Equal(t, 4, exp.FinancialSummary.TotalLedgers)
	assert.Equal(t, model.BackendXML, exp.ExtractionMethod)
	assert.Equal(t, testNow, exp.ExtractionTimestamp)
}

func TestExportAll_SectionFailureIsIsolated(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.fail("GroupReport")
	fb.set("VchCollection", "<ENVELOPE><VOUCHER>")
	e := newTestEngine(t, srv.URL, noDriver)

	exp := e.ExportAll(context.Background())
	require.Len(t, exp.Errors, 2)
	assert.Contains(t, exp.Errors["groups"], "transport failure")
	assert.Contains(t, exp.Errors["vouchers"], "malformed response")
	assert.NotNil(t, exp.Groups)
	assert.Empty(t, exp.Groups)
	assert.Len(t, exp.Ledgers, 4, "later sections still run")
	assert.Equal(t, 2, gatherCount(t, e.reg, "tallyx_export_section_failures_total"))
}

func TestIsolate_RecoversPanic(t *testing.T) {
	err := isolate(func() error { panic("boom") })
	require.Error(t, err)
	assert.Equal(t, "panic: boom", err.Error())
}

func TestAuditVouchers(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	issues, err := e.AuditVouchers(ctx, VoucherQuery{})
	require.NoError(t, err)
	assert.Empty(t, issues)

	fb.set("VchCollection", `<ENVELOPE>
<VOUCHER VCHTYPE="Journal"><DATE>20250401</DATE><VOUCHERNUMBER>7</VOUCHERNUMBER>
<ALLLEDGERENTRIES.LIST><LEDGERNAME>A</LEDGERNAME><ISDEEMEDPOSITIVE>Yes</ISDEEMEDPOSITIVE><AMOUNT>-100</AMOUNT></ALLLEDGERENTRIES.LIST>
<ALLLEDGERENTRIES.LIST><LEDGERNAME>B</LEDGERNAME><ISDEEMEDPOSITIVE>No</ISDEEMEDPOSITIVE><AMOUNT>90</AMOUNT></ALLLEDGERENTRIES.LIST>
</VOUCHER></ENVELOPE>`)
	issues, err = e.AuditVouchers(ctx, VoucherQuery{})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Journal #7", issues[0].Voucher)
}

func TestRawVoucherXML(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.set("VchCollection", "<ENVELOPE>"+strings.Repeat("x", 30000)+"</ENVELOPE>")
	e := newTestEngine(t, srv.URL, noDriver)

	raw, err := e.RawVoucherXML(context.Background(), "20250401", "20250430")
	require.NoError(t, err)
	assert.Len(t, raw, rawVoucherPreview)
	assert.True(t, strings.HasPrefix(raw, "<ENVELOPE>"))
	assert.Contains(t, fb.lastRequest("VchCollection"), "<SVTODATE>20250430</SVTODATE>")

	fb.fail("VchCollection")
	_, err = e.RawVoucherXML(context.Background(), "", "")
	assert.ErrorIs(t, err, apperr.ErrTransport)
}

func TestRawVoucherXML_CutsOnRuneBoundary(t *testing.T) {
	fb, srv := newFakeBackend(t)
	head := "<ENVELOPE>" + strings.Repeat("x", rawVoucherPreview-11)
	fb.set("VchCollection", head+"₹"+strings.Repeat("y", 100)+"</ENVELOPE>")
	e := newTestEngine(t, srv.URL, noDriver)

	raw, err := e.RawVoucherXML(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(raw))
	assert.Equal(t, head, raw)
}

func TestRawVoucherXML_WarnsWhenIllFormed(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.set("VchCollection", "<ENVELOPE><NARRATION>a&#x4;b</NARRATION></ENVELOPE>")
	e := newTestEngine(t, srv.URL, noDriver)

	_, err := e.RawVoucherXML(context.Background(), "", "")
	require.NoError(t, err)
	entry := e.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "voucher XML is ill-formed after minimal repair", entry.Message)

	e.hook.Reset()
	fb.set("VchCollection", "<ENVELOPE><NARRATION>a&#4;b</NARRATION></ENVELOPE>")
	_, err = e.RawVoucherXML(context.Background(), "", "")
	require.NoError(t, err)
	for _, en := range e.hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, en.Level)
	}
}

func TestLedgers_LogsCacheAge(t *testing.T) {
	_, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	_, err := e.Ledgers(ctx, false)
	require.NoError(t, err)
	_, err = e.Ledgers(ctx, false)
	require.NoError(t, err)

	var results []any
	for _, en := range e.hook.AllEntries() {
		if en.Message == "ledger cache" {
			results = append(results, en.Data["result"])
			assert.Equal(t, time.Duration(0), en.Data["age"])
		}
	}
	assert.Equal(t, []any{cache.Refreshed, cache.Hit}, results)
}

func TestConcurrentReports(t *testing.T) {
	fb, srv := newFakeBackend(t)
	e := newTestEngine(t, srv.URL, noDriver)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = e.TrialBalance(ctx)
		}()
		go func() {
			defer wg.Done()
			_, _ = e.Groups(ctx)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fb.hitCount("LedgerTable"))
	assert.Equal(t, 8, fb.hitCount("GroupReport"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func gatherCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	return n
}
