package main

import (
	"os"

	"maze-quiz-system/config"
	"maze-quiz-system/models"
	"maze-quiz-system/services"
	"maze-quiz-system/utils"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func openAndMigrate(cfg *config.Config) (*gorm.DB, error) {
	db, err := utils.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			utils.SetupLogger(cfg.LogLevel)
			if _, err := openAndMigrate(cfg); err != nil {
				return err
			}
			log.Info("✅ schema migrated")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load achievements and questions from a catalog YAML (embedded default if --file is empty)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			utils.SetupLogger(cfg.LogLevel)

			data := config.DefaultCatalogYAML()
			if file != "" {
				if data, err = os.ReadFile(file); err != nil {
					return err
				}
			}

			db, err := openAndMigrate(cfg)
			if err != nil {
				return err
			}
			summary, err := services.NewCatalogService(db).SeedYAML(cmd.Context(), data)
			if err != nil {
				return err
			}
			log.Info("✅ catalog seeded", "achievements", summary.Achievements, "questions", summary.Questions)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	return cmd
}
