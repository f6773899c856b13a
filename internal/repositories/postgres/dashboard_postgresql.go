package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== TEACHER DASHBOARD =====

func (r *dashboardRepository) CountStudentsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TeacherStudent{}).
		Where("teacher_id = ?", teacherID).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountTestsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TeacherTest{}).
		Where("teacher_id = ?", teacherID).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountResultsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TestResult{}).
		Where("test_id IN (?)", r.getDB(tx).
			Model(&models.TeacherTest{}).
			Select("test_id").
			Where("teacher_id = ?", teacherID)).
		Count(&count).Error
	return count, err
}

// ===== STUDENT DASHBOARD =====

func (r *dashboardRepository) CountTeachersOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TeacherStudent{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}

// CountAvailableTestsOfStudent counts the distinct tests reachable through
// any linked teacher
func (r *dashboardRepository) CountAvailableTestsOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Table("teacher_tests AS tt").
		Joins("JOIN teacher_students ts ON ts.teacher_id = tt.teacher_id").
		Where("ts.student_id = ?", studentID).
		Distinct("tt.test_id").
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountResultsOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TestResult{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}
