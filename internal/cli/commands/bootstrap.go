package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/causeway/internal/cli/ui"
	"github.com/conduit-lang/causeway/internal/store"
)

// NewBootstrapCommand creates the bootstrap command
func NewBootstrapCommand(opts *options) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create missing tables",
		Long: `Create every table and index the server needs if it does not exist yet.

This command is idempotent - it's safe to run multiple times.`,
		Example: `  # Create tables in the configured database
  causeway bootstrap

  # Print the statements for the configured driver without running them
  causeway bootstrap --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return printStatements(cmd, opts)
			}
			return runBootstrap(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print statements instead of executing them")

	return cmd
}

func printStatements(cmd *cobra.Command, opts *options) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	dialect, err := store.DialectFor(cfg.Database.Driver)
	if err != nil {
		return err
	}
	for _, stmt := range store.Statements(dialect) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt)
	}
	return nil
}

func runBootstrap(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := store.Bootstrap(ctx, a.db, a.dialect, a.logger.Named("store")); err != nil {
		return err
	}
	ui.Success(cmd.OutOrStdout(), opts.noColor, "%s schema is up to date", a.dialect)
	return nil
}
