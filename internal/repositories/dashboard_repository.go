package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository runs the aggregate counts behind the dashboards
type DashboardRepository interface {
	// Teacher dashboard
	CountStudentsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error)
	CountTestsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error)
	CountResultsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error)

	// Student dashboard
	CountTeachersOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error)
	CountAvailableTestsOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error)
	CountResultsOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error)
}

// Row types shared by the read queries

type StudentLinkRow struct {
	StudentID    uint
	UserID       string
	EnrolledAt   time.Time
	TestsPassed  int64
	AverageScore *float64
}

type TeacherLinkRow struct {
	TeacherID  uint
	UserID     string
	JoinedAt   time.Time
	TestsCount int64
}

type TestSummaryRow struct {
	TestID         uint
	Title          string
	Description    string
	CreatedAt      time.Time
	MaxScore       int
	QuestionsCount int64
}

// AvailableTestRow is one test reachable by a student. TeacherUserID is the
// first linking teacher by teacher id.
type AvailableTestRow struct {
	TestID         uint
	Title          string
	MaxScore       int
	QuestionsCount int64
	TeacherUserID  string
}

type TeacherResultRow struct {
	TestID        uint
	TestTitle     string
	MaxScore      int
	StudentID     uint
	StudentUserID string
	Score         int
	CompletedAt   time.Time
}

type StudentResultRow struct {
	TestID      uint
	TestTitle   string
	Score       int
	MaxScore    int
	CompletedAt time.Time
}
