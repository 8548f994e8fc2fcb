package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventcheckin/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := migrations.Apply(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if len(applied) == 0 {
			known, err := migrations.Names()
			if err != nil {
				return err
			}
			logger.Info("schema up to date", "known", len(known))
			return nil
		}
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
		}
		return nil
	},
}
