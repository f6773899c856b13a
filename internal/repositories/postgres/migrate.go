package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

// Migrate creates or updates the schema. Foreign keys come from the model
// constraint tags: cascading for questions, options and graph edges,
// restricting for test results.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}
