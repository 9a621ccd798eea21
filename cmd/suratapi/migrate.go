package main

import (
	"github.com/spf13/cobra"

	"suratapi/internal/database/migration"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL schema if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migration.EnsureMigrated(ctx, db, a.log, a.cfg.Database.Host); err != nil {
				return err
			}
			cmd.Println(okStyle.Render("schema ready"))
			return nil
		},
	}
}
