package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (r *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	return translateError(r.getDB(tx).WithContext(ctx).Create(test).Error)
}

func (r *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	var test models.Test
	if err := r.getDB(tx).WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &test, nil
}

// GetWithQuestions loads the test with questions and options, both ordered by id
func (r *TestPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	var test models.Test
	err := r.getDB(tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.id ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &test, nil
}

// Delete removes the test; questions and options go with it through the
// cascading foreign keys. Results block the delete with ErrForeignKey.
func (r *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := r.getDB(tx).WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// LockForUpdate serializes question edits on a test. NO KEY UPDATE leaves
// the KEY SHARE locks taken by result and question inserts unblocked.
func (r *TestPostgreSQL) LockForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	var test models.Test
	err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).
		First(&test, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &test, nil
}

// RecomputeMaxScore derives MaxScore from the current question set in a
// single statement, so the read of the sum and the write cannot interleave
// with another writer holding the row.
func (r *TestPostgreSQL) RecomputeMaxScore(ctx context.Context, tx *gorm.DB, id uint) (int, error) {
	test := models.Test{ID: id}
	result := r.getDB(tx).WithContext(ctx).
		Model(&test).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "max_score"}}}).
		Update("max_score", gorm.Expr(
			"(SELECT COALESCE(SUM(q.points), 0) FROM questions q WHERE q.test_id = ?)", id))
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, repositories.ErrNotFound
	}
	return test.MaxScore, nil
}

func (r *TestPostgreSQL) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]repositories.TestSummaryRow, error) {
	rows := make([]repositories.TestSummaryRow, 0)
	err := r.getDB(tx).WithContext(ctx).
		Table("tests AS t").
		Select(`t.id AS test_id,
			t.title AS title,
			t.description AS description,
			t.created_at AS created_at,
			t.max_score AS max_score,
			(SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id) AS questions_count`).
		Joins("JOIN teacher_tests tt ON tt.test_id = t.id").
		Where("tt.teacher_id = ?", teacherID).
		Order("t.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAvailableForStudent returns the union of tests across the student's
// teachers, one row per test, attributed to the lowest linking teacher id.
func (r *TestPostgreSQL) ListAvailableForStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]repositories.AvailableTestRow, error) {
	rows := make([]repositories.AvailableTestRow, 0)
	err := r.getDB(tx).WithContext(ctx).Raw(`
		SELECT DISTINCT ON (t.id)
			t.id AS test_id,
			t.title AS title,
			t.max_score AS max_score,
			(SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id) AS questions_count,
			te.user_id AS teacher_user_id
		FROM tests t
		JOIN teacher_tests tt ON tt.test_id = t.id
		JOIN teacher_students ts ON ts.teacher_id = tt.teacher_id
		JOIN teachers te ON te.id = tt.teacher_id
		WHERE ts.student_id = ?
		ORDER BY t.id ASC, tt.teacher_id ASC`, studentID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
