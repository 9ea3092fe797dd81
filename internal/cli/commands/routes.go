package commands

import (
	"github.com/spf13/cobra"

	"github.com/conduit-lang/causeway/internal/cli/ui"
	"github.com/conduit-lang/causeway/internal/store"
	"github.com/conduit-lang/causeway/internal/web/cache"
)

// NewRoutesCommand creates the routes command
func NewRoutesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the API routes",
		Long:  "Print every route the server registers, with its method and name, without connecting to the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			dialect, err := store.DialectFor(cfg.Database.Driver)
			if err != nil {
				return err
			}

			api, err := newAPI(cfg, store.NewRepositories(nil, dialect, logger), cache.Noop{}, nil, logger)
			if err != nil {
				return err
			}

			table := ui.NewTable(cmd.OutOrStdout(), opts.noColor, "METHOD", "PATH", "NAME")
			for _, route := range api.Routes() {
				table.AddRow(route.Method, route.Pattern, route.Name)
			}
			table.Render()
			return nil
		},
	}
}
