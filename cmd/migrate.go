package cmd

import (
	"casegrader/pkg/database"
	"casegrader/pkg/logger"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		db, err := database.InitDB(&cfg.Database, true)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database migration completed")
		return nil
	},
}
