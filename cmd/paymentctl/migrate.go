package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger's tables",
		Long: `Provision storage for the configured LEDGER_BACKEND:
- dynamodb: creates the payments and idempotency tables
- postgres, sqlite: applies the embedded schema`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := build(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ledger %s migrated\n", a.Config.LedgerBackend)
			return nil
		},
	}
}
