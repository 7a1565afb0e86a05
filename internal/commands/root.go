package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyx-dev/tallyx/internal/apperr"
	"github.com/tallyx-dev/tallyx/internal/buildinfo"
	"github.com/tallyx-dev/tallyx/internal/config"
)

// Exit codes of the tallyx binary.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitNotFound = 2
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, apperr.ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "tallyx",
		Short:   "Extract accounting data from Tally Prime",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	flags.StringVar(&a.company, "company", "", "company name (overrides config)")
	flags.StringVar(&a.url, "url", "", "backend URL (overrides config)")
	flags.BoolVar(&a.forceODBC, "force-odbc", false, "skip the XML API and query ODBC only")
	flags.BoolVar(&a.showMetrics, "metrics", false, "log collected metrics on exit")

	rootCmd.AddCommand(
		newInitCommand(a),
		newCheckCommand(a),
		newCompaniesCommand(a),
		newCompanyCommand(a),
		newLedgersCommand(a),
		newAccountsCommand(a),
		newPartyCommand(a, "debtors", "Sundry debtors with their total"),
		newPartyCommand(a, "creditors", "Sundry creditors with their total"),
		newGroupsCommand(a),
		newCostCentresCommand(a),
		newVouchersCommand(a),
		newDayBookCommand(a),
		newTrialBalanceCommand(a),
		newGroupSummaryCommand(a),
		newFinancialSummaryCommand(a),
		newExportCommand(a),
		newDebugCommand(a),
	)

	return rootCmd
}

func errUnknown(kind, value string) error {
	return fmt.Errorf("unknown %s %q", kind, value)
}
