package cmd

import (
	"casegrader/internal/repository"
	"casegrader/internal/service"
	"casegrader/pkg/database"
	"casegrader/pkg/logger"
	"fmt"

	"github.com/spf13/cobra"
)

var importCasesCmd = &cobra.Command{
	Use:     "import-cases",
	Short:   "Load diagnostic cases from a YAML file",
	Example: "  casegrader import-cases --file configs/cases.example.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		db, err := database.InitDB(&cfg.Database, true)
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}()

		importer := service.NewCaseImportService(repository.NewCaseRepository(db))
		n, err := importer.ImportFile(cmd.Context(), file)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d case(s)\n", n)
		return nil
	},
}

func init() {
	importCasesCmd.Flags().String("file", "", "YAML file with a top-level cases list")
}
