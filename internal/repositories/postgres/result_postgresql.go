package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts the result. The unique (student_id, test_id) index turns a
// concurrent second insert into ErrDuplicate.
func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	return translateError(r.getDB(tx).WithContext(ctx).Create(result).Error)
}

func (r *ResultPostgreSQL) GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error) {
	var result models.TestResult
	err := r.getDB(tx).WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		First(&result).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &result, nil
}

func (r *ResultPostgreSQL) DeleteByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (bool, error) {
	result := r.getDB(tx).WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Delete(&models.TestResult{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ResultPostgreSQL) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TestResult{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	return count, err
}

func (r *ResultPostgreSQL) CountByStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TestResult{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}

func (r *ResultPostgreSQL) CompletedTestIDs(ctx context.Context, tx *gorm.DB, studentID uint) ([]uint, error) {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.TestResult{}).
		Where("student_id = ?", studentID).
		Order("test_id ASC")
	return pluckIDs(query, "test_id")
}

// ListByTeacher flattens results on every test the teacher owns, newest first
func (r *ResultPostgreSQL) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]repositories.TeacherResultRow, error) {
	rows := make([]repositories.TeacherResultRow, 0)
	err := r.getDB(tx).WithContext(ctx).
		Table("test_results AS tr").
		Select(`tr.test_id AS test_id,
			t.title AS test_title,
			t.max_score AS max_score,
			tr.student_id AS student_id,
			s.user_id AS student_user_id,
			tr.score AS score,
			tr.completed_at AS completed_at`).
		Joins("JOIN tests t ON t.id = tr.test_id").
		Joins("JOIN students s ON s.id = tr.student_id").
		Where("EXISTS (SELECT 1 FROM teacher_tests tt WHERE tt.test_id = tr.test_id AND tt.teacher_id = ?)", teacherID).
		Order("tr.completed_at DESC, tr.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ResultPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]repositories.StudentResultRow, error) {
	rows := make([]repositories.StudentResultRow, 0)
	err := r.getDB(tx).WithContext(ctx).
		Table("test_results AS tr").
		Select(`tr.test_id AS test_id,
			t.title AS test_title,
			tr.score AS score,
			t.max_score AS max_score,
			tr.completed_at AS completed_at`).
		Joins("JOIN tests t ON t.id = tr.test_id").
		Where("tr.student_id = ?", studentID).
		Order("tr.completed_at DESC, tr.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
