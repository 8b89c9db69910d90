package commands

import (
	"fmt"

	"github.com/bissquit/store-rating/internal/app"
	"github.com/spf13/cobra"
)

// migrateCmd applies pending schema migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply the embedded schema migrations to the configured database.

Examples:
  store-rating migrate --config configs/config.yaml
  STORERATING_STORAGE__DRIVER=postgres STORERATING_STORAGE__URL=postgres://... store-rating migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := app.MigrateSchema(cfg.Storage); err != nil {
			return fmt.Errorf("migrate %s: %w", cfg.Storage.Driver, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.Storage.Driver)
		return nil
	},
}
