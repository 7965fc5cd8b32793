package cmd

import (
	"casegrader/internal/app"
	"casegrader/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Run database migrations on start even in release mode")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("migrate"); f != nil {
		cfg.ForceMigrate, _ = cmd.Flags().GetBool("migrate")
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
	return nil
}
