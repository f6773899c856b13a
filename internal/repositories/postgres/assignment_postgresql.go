package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

// AssignmentPostgreSQL stores the assignment graph as plain edge tables
type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (r *AssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== TEACHER <-> STUDENT =====

func (r *AssignmentPostgreSQL) LinkStudent(ctx context.Context, tx *gorm.DB, teacherID, studentID uint) error {
	edge := &models.TeacherStudent{TeacherID: teacherID, StudentID: studentID}
	err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(edge).Error
	return translateError(err)
}

func (r *AssignmentPostgreSQL) UnlinkStudent(ctx context.Context, tx *gorm.DB, teacherID, studentID uint) error {
	return r.getDB(tx).WithContext(ctx).
		Where("teacher_id = ? AND student_id = ?", teacherID, studentID).
		Delete(&models.TeacherStudent{}).Error
}

func (r *AssignmentPostgreSQL) StudentIDsOf(ctx context.Context, tx *gorm.DB, teacherID uint) ([]uint, error) {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.TeacherStudent{}).
		Where("teacher_id = ?", teacherID).
		Order("student_id ASC")
	return pluckIDs(query, "student_id")
}

// StudentsOf lists linked students with their overall result count and mean
// score. The mean is NULL, and so nil, for students without results.
func (r *AssignmentPostgreSQL) StudentsOf(ctx context.Context, tx *gorm.DB, teacherID uint) ([]repositories.StudentLinkRow, error) {
	rows := make([]repositories.StudentLinkRow, 0)
	err := r.getDB(tx).WithContext(ctx).
		Table("students AS s").
		Select(`s.id AS student_id,
			s.user_id AS user_id,
			s.enrolled_at AS enrolled_at,
			COUNT(tr.id) AS tests_passed,
			AVG(tr.score)::float8 AS average_score`).
		Joins("JOIN teacher_students ts ON ts.student_id = s.id").
		Joins("LEFT JOIN test_results tr ON tr.student_id = s.id").
		Where("ts.teacher_id = ?", teacherID).
		Group("s.id, s.user_id, s.enrolled_at").
		Order("s.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AssignmentPostgreSQL) TeachersOf(ctx context.Context, tx *gorm.DB, studentID uint) ([]repositories.TeacherLinkRow, error) {
	rows := make([]repositories.TeacherLinkRow, 0)
	err := r.getDB(tx).WithContext(ctx).
		Table("teachers AS t").
		Select(`t.id AS teacher_id,
			t.user_id AS user_id,
			t.joined_at AS joined_at,
			(SELECT COUNT(*) FROM teacher_tests tt WHERE tt.teacher_id = t.id) AS tests_count`).
		Joins("JOIN teacher_students ts ON ts.teacher_id = t.id").
		Where("ts.student_id = ?", studentID).
		Order("t.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ===== TEACHER <-> TEST =====

func (r *AssignmentPostgreSQL) LinkTest(ctx context.Context, tx *gorm.DB, teacherID, testID uint) error {
	edge := &models.TeacherTest{TeacherID: teacherID, TestID: testID}
	err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(edge).Error
	return translateError(err)
}

func (r *AssignmentPostgreSQL) IsTestOwner(ctx context.Context, tx *gorm.DB, teacherID, testID uint) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.TeacherTest{}).
		Where("teacher_id = ? AND test_id = ?", teacherID, testID).
		Count(&count).Error
	return count > 0, err
}

func (r *AssignmentPostgreSQL) SharesTeacher(ctx context.Context, tx *gorm.DB, studentID, testID uint) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Table("teacher_tests AS tt").
		Joins("JOIN teacher_students ts ON ts.teacher_id = tt.teacher_id").
		Where("tt.test_id = ? AND ts.student_id = ?", testID, studentID).
		Count(&count).Error
	return count > 0, err
}
