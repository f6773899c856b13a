package repositories

import (
	"context"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

// UserRepository is the read-only identity directory. The service never
// owns user data; it only decorates projections with names and emails.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByIDs returns the users it could resolve. Unknown ids are skipped,
	// not reported as errors.
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}
