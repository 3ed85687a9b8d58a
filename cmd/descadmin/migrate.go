package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"descsvc/internal/bootstrap"
	"descsvc/internal/prompts"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Applies the embedded goose migrations for the database named by DATABASE_URL.

postgres:// URLs use the Postgres migrations, sqlite://path the SQLite ones.
Safe to run multiple times.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, *envFile, func(ctx context.Context, stores *bootstrap.Stores, logger zerolog.Logger) error {
				if err := stores.Migrate(ctx, logger); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema up to date\n", stores.Driver)
				if !seed {
					return nil
				}
				n, err := prompts.Seed(ctx, stores.Prompts, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d default prompts inserted\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert missing default prompts after migrating")
	return cmd
}
