package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/internal/storage"
)

func newMigrateCmd(a *app) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath := a.cfg.SQLiteDBPath
			out := cmd.OutOrStdout()

			if !status {
				if err := storage.RunMigrations(dbPath); err != nil {
					return err
				}
				a.logger.Info("Migrations applied", "path", dbPath)
			}

			st, err := storage.ReadMigrationStatus(dbPath)
			if err != nil {
				return err
			}
			if !st.Applied {
				fmt.Fprintf(out, "%s: no migrations applied\n", dbPath)
				return nil
			}
			fmt.Fprintf(out, "%s: schema version %d (dirty=%t)\n", dbPath, st.Version, st.Dirty)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print the schema version without migrating")
	return cmd
}
