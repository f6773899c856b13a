package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/config"
	"github.com/SAP-F-2025/testing-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/testing-service/pkg"
)

// NewMigrateCmd applies the database schema.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("Migrations applied")
	return nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func migrateOnStart(ctx context.Context, db *gorm.DB) error {
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("startup migration failed: %w", err)
	}
	return nil
}
