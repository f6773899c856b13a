package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

// QuestionRepository manages questions. Callers own the MaxScore recompute
// that must follow Create and Delete.
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// OptionRepository manages answer options of a question
type OptionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, option *models.Option) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Option, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
