package models

import "time"

// ===== REQUESTS =====

type TestCreateRequest struct {
	Title       string `json:"title" validate:"required,test_title"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

type QuestionCreateRequest struct {
	Text   string `json:"text" validate:"required,question_text"`
	Points int    `json:"points" validate:"required,points_range"`
}

type OptionCreateRequest struct {
	Text      string `json:"text" validate:"required,option_text"`
	IsCorrect bool   `json:"is_correct"`
}

// SubmitTestRequest carries a student's answers. Questions missing from the
// map score zero.
type SubmitTestRequest struct {
	TestID  uint    `json:"test_id" validate:"required"`
	Answers Answers `json:"answers"`
}

// ===== TEACHER PROJECTIONS =====

type TeacherStudentResponse struct {
	StudentID    uint      `json:"student_id"`
	UserID       string    `json:"user_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	EnrolledAt   time.Time `json:"enrolled_at"`
	TestsPassed  int64     `json:"tests_passed"`
	AverageScore *float64  `json:"average_score"`
}

type TeacherTestResponse struct {
	TestID         uint      `json:"test_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	QuestionsCount int64     `json:"questions_count"`
	MaxScore       int       `json:"max_score"`
}

// TestEditorResponse is the owner's view of a test, correctness flags included
type TestEditorResponse struct {
	TestID      uint                     `json:"test_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	MaxScore    int                      `json:"max_score"`
	Questions   []EditorQuestionResponse `json:"questions"`
}

type EditorQuestionResponse struct {
	QuestionID uint                   `json:"question_id"`
	Text       string                 `json:"text"`
	Points     int                    `json:"points"`
	Options    []EditorOptionResponse `json:"options"`
}

type EditorOptionResponse struct {
	OptionID  uint   `json:"option_id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type TeacherResultResponse struct {
	TestID       uint      `json:"test_id"`
	TestTitle    string    `json:"test_title"`
	StudentID    uint      `json:"student_id"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"max_score"`
	CompletedAt  time.Time `json:"completed_at"`
}

type TeacherDashboardResponse struct {
	TeacherID     uint  `json:"teacher_id"`
	StudentsCount int64 `json:"students_count"`
	TestsCount    int64 `json:"tests_count"`
	ResultsCount  int64 `json:"results_count"`
}

// ===== STUDENT PROJECTIONS =====

type StudentTeacherResponse struct {
	TeacherID  uint      `json:"teacher_id"`
	UserID     string    `json:"user_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	JoinedAt   time.Time `json:"joined_at"`
	TestsCount int64     `json:"tests_count"`
}

type StudentAvailableTestResponse struct {
	TestID         uint   `json:"test_id"`
	Title          string `json:"title"`
	TeacherName    string `json:"teacher_name"`
	QuestionsCount int64  `json:"questions_count"`
	MaxScore       int    `json:"max_score"`
	Completed      bool   `json:"completed"`
}

// StudentTestResponse is what a student sees when opening a test. Once the
// attempt is completed it carries the outcome only, never the content.
type StudentTestResponse struct {
	TestID      uint                      `json:"test_id"`
	Title       string                    `json:"title"`
	State       AttemptState              `json:"state"`
	MaxScore    int                       `json:"max_score"`
	Score       *int                      `json:"score,omitempty"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
	Questions   []StudentQuestionResponse `json:"questions,omitempty"`
}

type StudentQuestionResponse struct {
	QuestionID uint                    `json:"question_id"`
	Text       string                  `json:"text"`
	Points     int                     `json:"points"`
	Options    []StudentOptionResponse `json:"options"`
}

// StudentOptionResponse deliberately has no correctness field
type StudentOptionResponse struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
}

type SubmitTestResponse struct {
	TestID      uint      `json:"test_id"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
}

type StudentResultResponse struct {
	TestID      uint      `json:"test_id"`
	TestTitle   string    `json:"test_title"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
}

type StudentDashboardResponse struct {
	StudentID           uint  `json:"student_id"`
	TeachersCount       int64 `json:"teachers_count"`
	AvailableTestsCount int64 `json:"available_tests_count"`
	ResultsCount        int64 `json:"results_count"`
}
