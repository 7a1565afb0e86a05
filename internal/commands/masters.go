package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tallyx-dev/tallyx/internal/engine"
	"github.com/tallyx-dev/tallyx/internal/model"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe both backends and report which one is active",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.TestConnection(ctx), nil
		}),
	}
}

func newCompaniesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List the companies loaded in Tally",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.CompanyList(ctx)
		}),
	}
}

func newCompanyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "company",
		Short: "Show the master record of the company",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.CompanyInfo(ctx)
		}),
	}
}

func newLedgersCommand(a *app) *cobra.Command {
	var refresh bool
	var group, name string

	cmd := &cobra.Command{
		Use:   "ledgers",
		Short: "List ledgers with opening and closing balances",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			if refresh {
				if _, err := eng.Ledgers(ctx, true); err != nil {
					return nil, err
				}
			}
			switch {
			case name != "":
				return eng.LedgerByName(ctx, name)
			case group != "":
				return eng.LedgersByGroup(ctx, group)
			default:
				return eng.Ledgers(ctx, false)
			}
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the ledger cache")
	cmd.Flags().StringVar(&group, "group", "", "only ledgers under this parent group")
	cmd.Flags().StringVar(&name, "name", "", "a single ledger by name")
	cmd.MarkFlagsMutuallyExclusive("group", "name")

	return cmd
}

var accountKinds = map[string]func(*engine.Engine, context.Context) ([]model.Ledger, error){
	"bank":         (*engine.Engine).BankAccounts,
	"cash":         (*engine.Engine).CashAccounts,
	"fixed-assets": (*engine.Engine).FixedAssets,
	"loans":        (*engine.Engine).Loans,
}

func newAccountsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "accounts <bank|cash|fixed-assets|loans>",
		Short:     "List ledgers of a well-known account kind",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bank", "cash", "fixed-assets", "loans"},
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, args []string) (any, error) {
			fn, ok := accountKinds[args[0]]
			if !ok {
				return nil, errUnknown("account kind", args[0])
			}
			return fn(eng, ctx)
		}),
	}
}

func newPartyCommand(a *app, use, short string) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			if use == "debtors" {
				if top > 0 {
					return eng.TopDebtors(ctx, top)
				}
				return eng.Receivables(ctx)
			}
			if top > 0 {
				return eng.TopCreditors(ctx, top)
			}
			return eng.Payables(ctx)
		}),
	}

	cmd.Flags().IntVar(&top, "top", 0, "only the N largest closing balances")

	return cmd
}

func newGroupsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List account groups",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.Groups(ctx)
		}),
	}
}

func newCostCentresCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cost-centres",
		Short: "List cost centres",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.CostCentres(ctx)
		}),
	}
}
