package main

import (
	"fmt"

	"ssea/internal/migration"

	"github.com/spf13/cobra"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	var dbURL string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the run catalog tables",
		Long: `Create the Postgres tables that record runs and their per-set results.

Every statement is idempotent. Use --dry-run to print the DDL instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := migration.NewRunner()
			if dryRun {
				for _, stmt := range runner.Statements() {
					fmt.Fprintln(cmd.OutOrStdout(), stmt)
				}
				return nil
			}

			_, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			db, _, err := openCatalog(cmd.Context(), databaseURL(dbURL))
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("Run catalog schema %s is up to date", runner.Version())
			return nil
		},
	}

	cmd.Flags().StringVar(&dbURL, "db", "", "Postgres connection string (default $"+envDatabaseURL+")")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the DDL without connecting")

	return cmd
}
