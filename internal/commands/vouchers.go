package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tallyx-dev/tallyx/internal/engine"
	"github.com/tallyx-dev/tallyx/internal/model"
)

func addVoucherFlags(cmd *cobra.Command, q *engine.VoucherQuery) {
	cmd.Flags().StringVar(&q.Type, "type", "", "voucher type, e.g. Sales or \"Credit Note\"")
	cmd.Flags().StringVar(&q.From, "from", "", "start date YYYYMMDD (default: financial year start)")
	cmd.Flags().StringVar(&q.To, "to", "", "end date YYYYMMDD (default: financial year end)")
	cmd.Flags().IntVar(&q.Limit, "limit", engine.DefaultVoucherLimit, "maximum vouchers returned")
}

func newVouchersCommand(a *app) *cobra.Command {
	var q engine.VoucherQuery

	cmd := &cobra.Command{
		Use:   "vouchers",
		Short: "List vouchers of the financial year",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.Vouchers(ctx, q)
		}),
	}

	addVoucherFlags(cmd, &q)
	cmd.Flags().BoolVar(&q.IncludeEntries, "entries", false, "include ledger entries")
	cmd.AddCommand(newVouchersAuditCommand(a))
	for _, k := range voucherKinds {
		cmd.AddCommand(newVoucherKindCommand(a, k.use, k.short, k.list))
	}

	return cmd
}

type voucherLister func(*engine.Engine, context.Context, string, string) ([]model.Voucher, error)

var voucherKinds = []struct {
	use, short string
	list       voucherLister
}{
	{"sales", "Sales vouchers", (*engine.Engine).SalesVouchers},
	{"purchases", "Purchase vouchers", (*engine.Engine).PurchaseVouchers},
	{"receipts", "Receipt vouchers", (*engine.Engine).ReceiptVouchers},
	{"payments", "Payment vouchers", (*engine.Engine).PaymentVouchers},
	{"journals", "Journal vouchers", (*engine.Engine).JournalVouchers},
	{"contras", "Contra vouchers", (*engine.Engine).ContraVouchers},
	{"credit-notes", "Credit notes", (*engine.Engine).CreditNotes},
	{"debit-notes", "Debit notes", (*engine.Engine).DebitNotes},
}

func newVoucherKindCommand(a *app, use, short string, list voucherLister) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   use,
		Short: short + " of the financial year",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return list(eng, ctx, from, to)
		}),
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYYMMDD (default: financial year start)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYYMMDD (default: financial year end)")

	return cmd
}

func newVouchersAuditCommand(a *app) *cobra.Command {
	var q engine.VoucherQuery

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check vouchers for unbalanced entries, odd dates and duplicate numbers",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.AuditVouchers(ctx, q)
		}),
	}

	addVoucherFlags(cmd, &q)

	return cmd
}

func newDayBookCommand(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "daybook",
		Short: "Vouchers of one day in day book order",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.DayBook(ctx, date)
		}),
	}

	cmd.Flags().StringVar(&date, "date", "", "date YYYYMMDD (default: today)")

	return cmd
}

func newDebugCommand(a *app) *cobra.Command {
	debugCmd := &cobra.Command{
		Use:   "debug",
		Short: "Diagnostics",
	}

	var from, to string
	raw := &cobra.Command{
		Use:   "raw-vouchers",
		Short: "Show the start of the raw voucher XML",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.RawVoucherXML(ctx, from, to)
		}),
	}
	raw.Flags().StringVar(&from, "from", "", "start date YYYYMMDD")
	raw.Flags().StringVar(&to, "to", "", "end date YYYYMMDD")

	debugCmd.AddCommand(raw)
	return debugCmd
}
