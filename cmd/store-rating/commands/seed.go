package commands

import (
	"fmt"

	"github.com/bissquit/store-rating/internal/app"
	"github.com/spf13/cobra"
)

// seedCmd loads the demo accounts, stores and ratings.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into an empty database",
	Long: `Create the demo administrator, user, owners, stores and ratings.

A database that already contains users is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		backend, _, err := app.OpenBackend(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		seeded, err := app.SeedBackend(cmd.Context(), backend, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}

		if seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "demo data loaded")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "database already has users, nothing to do")
		}
		return nil
	},
}
