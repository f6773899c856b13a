package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

// ===== REQUEST DTOs =====

type CreateTestRequest = models.TestCreateRequest
type CreateQuestionRequest = models.QuestionCreateRequest
type CreateOptionRequest = models.OptionCreateRequest
type SubmitTestRequest = models.SubmitTestRequest

// ===== ASSIGNMENT GRAPH =====

// AssignmentService maintains the teacher<->student graph. Callers are
// identified by user id; students are addressed by their profile id.
type AssignmentService interface {
	ListStudentsOf(ctx context.Context, teacherUserID string) ([]models.TeacherStudentResponse, error)
	ListUnassignedStudents(ctx context.Context, teacherUserID string) ([]models.TeacherStudentResponse, error)
	Attach(ctx context.Context, teacherUserID string, studentID uint) error
	Detach(ctx context.Context, teacherUserID string, studentID uint) error
	ListTeachersOf(ctx context.Context, studentUserID string) ([]models.StudentTeacherResponse, error)
}

// ===== AUTHORING =====

// AuthoringService edits tests owned by the calling teacher. Every question
// mutation keeps Test.MaxScore equal to the sum of question points.
type AuthoringService interface {
	CreateTest(ctx context.Context, teacherUserID string, req *CreateTestRequest) (*models.TeacherTestResponse, error)
	DeleteTest(ctx context.Context, teacherUserID string, testID uint) error
	AddQuestion(ctx context.Context, teacherUserID string, testID uint, req *CreateQuestionRequest) (*models.EditorQuestionResponse, error)
	DeleteQuestion(ctx context.Context, teacherUserID string, questionID uint) error
	AddOption(ctx context.Context, teacherUserID string, questionID uint, req *CreateOptionRequest) (*models.EditorOptionResponse, error)
	DeleteOption(ctx context.Context, teacherUserID string, optionID uint) error

	ListTests(ctx context.Context, teacherUserID string) ([]models.TeacherTestResponse, error)
	GetTestForEditing(ctx context.Context, teacherUserID string, testID uint) (*models.TestEditorResponse, error)
}

// ===== ATTEMPTS =====

// AttemptService runs the NotVisible -> Available -> Completed lifecycle
type AttemptService interface {
	GetTest(ctx context.Context, studentUserID string, testID uint) (*models.StudentTestResponse, error)
	Submit(ctx context.Context, studentUserID string, req *SubmitTestRequest) (*models.SubmitTestResponse, error)
	Reset(ctx context.Context, teacherUserID string, studentID, testID uint) error
}

// ===== READ SIDE =====

type ProjectionService interface {
	TeacherDashboard(ctx context.Context, teacherUserID string) (*models.TeacherDashboardResponse, error)
	StudentDashboard(ctx context.Context, studentUserID string) (*models.StudentDashboardResponse, error)
	TeacherResults(ctx context.Context, teacherUserID string) ([]models.TeacherResultResponse, error)
	StudentResults(ctx context.Context, studentUserID string) ([]models.StudentResultResponse, error)
	StudentAvailableTests(ctx context.Context, studentUserID string) ([]models.StudentAvailableTestResponse, error)
}

type ExportService interface {
	// ExportTeacherResults writes the teacher's results as an xlsx workbook
	ExportTeacherResults(ctx context.Context, teacherUserID string, w io.Writer) error
}

// ===== ROLE SYNC =====

type RoleSyncService interface {
	// SyncRole creates or removes the profile backing a role
	SyncRole(ctx context.Context, userID string, role models.UserRole, enabled bool) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Assignment() AssignmentService
	Authoring() AuthoringService
	Attempt() AttemptService
	Projection() ProjectionService
	Export() ExportService
	RoleSync() RoleSyncService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
