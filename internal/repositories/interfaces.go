package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

// Every method takes an optional tx. A nil tx means the connection the
// repository was built with, which inside WithTransaction is already the
// transaction.

// TeacherRepository manages teacher profiles
type TeacherRepository interface {
	Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Teacher, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// StudentRepository manages student profiles
type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ListExcluding returns every student whose id is not in excludeIDs
	ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []uint) ([]*models.Student, error)
}

// AssignmentRepository is the relation store behind the assignment graph.
// Link operations are idempotent in both directions.
type AssignmentRepository interface {
	// Teacher <-> Student
	LinkStudent(ctx context.Context, tx *gorm.DB, teacherID, studentID uint) error
	UnlinkStudent(ctx context.Context, tx *gorm.DB, teacherID, studentID uint) error
	StudentIDsOf(ctx context.Context, tx *gorm.DB, teacherID uint) ([]uint, error)
	StudentsOf(ctx context.Context, tx *gorm.DB, teacherID uint) ([]StudentLinkRow, error)
	TeachersOf(ctx context.Context, tx *gorm.DB, studentID uint) ([]TeacherLinkRow, error)

	// Teacher <-> Test
	LinkTest(ctx context.Context, tx *gorm.DB, teacherID, testID uint) error
	IsTestOwner(ctx context.Context, tx *gorm.DB, teacherID, testID uint) (bool, error)

	// SharesTeacher reports whether some teacher linked to the test is also
	// linked to the student
	SharesTeacher(ctx context.Context, tx *gorm.DB, studentID, testID uint) (bool, error)
}

// TestRepository manages tests and the derived MaxScore
type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// LockForUpdate takes a row lock on the test for the rest of the transaction
	LockForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)

	// RecomputeMaxScore writes the sum of the test's question points to
	// MaxScore and returns it
	RecomputeMaxScore(ctx context.Context, tx *gorm.DB, id uint) (int, error)

	ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]TestSummaryRow, error)
	ListAvailableForStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]AvailableTestRow, error)
}

// ResultRepository manages test results. Create returns ErrDuplicate when
// the student already has a result for the test.
type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error
	GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error)
	DeleteByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (bool, error)
	CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)
	CountByStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error)
	CompletedTestIDs(ctx context.Context, tx *gorm.DB, studentID uint) ([]uint, error)
	ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]TeacherResultRow, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]StudentResultRow, error)
}
