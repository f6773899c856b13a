package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type TeacherPostgreSQL struct {
	db *gorm.DB
}

func NewTeacherPostgreSQL(db *gorm.DB) repositories.TeacherRepository {
	return &TeacherPostgreSQL{db: db}
}

func (r *TeacherPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *TeacherPostgreSQL) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	return translateError(r.getDB(tx).WithContext(ctx).Create(teacher).Error)
}

func (r *TeacherPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.getDB(tx).WithContext(ctx).First(&teacher, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &teacher, nil
}

func (r *TeacherPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.getDB(tx).WithContext(ctx).Where("user_id = ?", userID).First(&teacher).Error; err != nil {
		return nil, translateError(err)
	}
	return &teacher, nil
}

func (r *TeacherPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return translateError(r.getDB(tx).WithContext(ctx).Delete(&models.Teacher{}, id).Error)
}

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (r *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	return translateError(r.getDB(tx).WithContext(ctx).Create(student).Error)
}

func (r *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	var student models.Student
	if err := r.getDB(tx).WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &student, nil
}

func (r *StudentPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error) {
	var student models.Student
	if err := r.getDB(tx).WithContext(ctx).Where("user_id = ?", userID).First(&student).Error; err != nil {
		return nil, translateError(err)
	}
	return &student, nil
}

// Delete fails with ErrForeignKey while the student still has results
func (r *StudentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return translateError(r.getDB(tx).WithContext(ctx).Delete(&models.Student{}, id).Error)
}

func (r *StudentPostgreSQL) ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []uint) ([]*models.Student, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Student{})
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	students := make([]*models.Student, 0)
	if err := query.Order("id ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
