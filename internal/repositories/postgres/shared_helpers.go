package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

// translateError maps driver and gorm errors onto the repository sentinels
// so services can classify failures without knowing about gorm or pgx.
// The original error stays in the chain.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", repositories.ErrNotFound, err)
	case repositories.IsDuplicateError(err):
		return fmt.Errorf("%w: %w", repositories.ErrDuplicate, err)
	case repositories.IsForeignKeyError(err):
		return fmt.Errorf("%w: %w", repositories.ErrForeignKey, err)
	default:
		return err
	}
}

// pluckIDs runs query and collects a single uint column
func pluckIDs(query *gorm.DB, column string) ([]uint, error) {
	ids := make([]uint, 0)
	if err := query.Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
