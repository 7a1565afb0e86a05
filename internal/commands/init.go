package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyx-dev/tallyx/internal/config"
)

func newInitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default tallyx.yaml and create the working directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default()
			if a.company != "" {
				cfg.Company.Name = a.company
			}
			if a.url != "" {
				cfg.Backend.URL = a.url
			}
			cfg.ODBC.Force = a.forceODBC
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return runInit(cmd, absDir, cfg)
		},
	}

	return cmd
}

func runInit(cmd *cobra.Command, dir string, cfg *config.Config) error {
	path := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	// Create directory structure.
	for _, d := range []string{cfg.Logging.Dir, "exports"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write .gitignore.
	gitignore := cfg.Logging.Dir + "/\nexports/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tallyx project at %s (company: %s)\n", dir, cfg.Company.Name)
	return nil
}
