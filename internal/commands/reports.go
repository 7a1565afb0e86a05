package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyx-dev/tallyx/internal/engine"
	"github.com/tallyx-dev/tallyx/internal/export"
	"github.com/tallyx-dev/tallyx/internal/report"
)

func newTrialBalanceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance from closing balances",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.TrialBalance(ctx)
		}),
	}
}

func newGroupSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "group-summary",
		Short: "Ledger totals per parent group",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.GroupSummary(ctx)
		}),
	}
}

func newFinancialSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "financial-summary",
		Short: "Assets, liabilities, receivables and payables",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			return eng.FinancialSummary(ctx)
		}),
	}
}

// exportResult is the envelope payload of the export command.
type exportResult struct {
	File            string            `json:"file"`
	Format          string            `json:"format"`
	Ledgers         int               `json:"ledgers"`
	Vouchers        int               `json:"vouchers"`
	DurationSeconds float64           `json:"export_duration_seconds"`
	Errors          map[string]string `json:"errors,omitempty"`
}

func newExportCommand(a *app) *cobra.Command {
	var format, out string
	registry := export.DefaultRegistry()

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every report of the company to a file",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, eng *engine.Engine, _ []string) (any, error) {
			w := registry.Get(format)
			if w == nil {
				return nil, fmt.Errorf("%w (available: %s)", errUnknown("format", format), strings.Join(registry.Formats(), ", "))
			}
			path := out
			if path == "" {
				path = defaultExportName(eng.Company(), w.Format(), time.Now())
			}

			exp := eng.ExportAll(ctx)
			if err := writeExport(path, w, exp); err != nil {
				return nil, err
			}
			return exportResult{
				File:            path,
				Format:          w.Format(),
				Ledgers:         len(exp.Ledgers),
				Vouchers:        len(exp.Vouchers),
				DurationSeconds: exp.DurationSeconds,
				Errors:          exp.Errors,
			}, nil
		}),
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: "+strings.Join(registry.Formats(), ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: tally_export_<company>_<timestamp>.<format>)")

	return cmd
}

func defaultExportName(company, format string, now time.Time) string {
	slug := strings.ToLower(strings.Join(strings.Fields(company), "_"))
	return fmt.Sprintf("tally_export_%s_%s.%s", slug, now.Format("20060102_150405"), format)
}

func writeExport(path string, w export.Writer, exp report.Export) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := w.Write(f, exp); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	return nil
}
