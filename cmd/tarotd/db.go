package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ArielDRighi/tarot/internal/adapters/sqlstore"
	"github.com/ArielDRighi/tarot/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer sqlstore.Close(db)

		logger.Info("schema migrated", "driver", cfg.DBDriver)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in decks and spreads into an empty database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer sqlstore.Close(db)

		res, err := sqlstore.Seed(cmd.Context(), db)
		if err != nil {
			return err
		}
		if res == (sqlstore.SeedResult{}) {
			logger.Info("catalogue already present, nothing seeded")
			return nil
		}
		logger.Info("catalogue seeded", "decks", res.Decks, "cards", res.Cards, "spreads", res.Spreads)
		return nil
	},
}

// openDB connects and migrates.
func openDB(cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return nil, err
	}
	if err := sqlstore.Migrate(db); err != nil {
		_ = sqlstore.Close(db)
		return nil, err
	}
	return db, nil
}
