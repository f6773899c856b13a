package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/events"
	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
	"github.com/SAP-F-2025/testing-service/internal/validator"
)

// AttemptConfig tunes the attempt lifecycle
type AttemptConfig struct {
	// EnforceSubmitAccess applies the shared-teacher check on submit as
	// well as on GetTest
	EnforceSubmitAccess bool
}

type attemptService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    AttemptConfig

	now func() time.Time
}

func NewAttemptService(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config AttemptConfig,
) AttemptService {
	return &attemptService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
		now:       time.Now,
	}
}

// GetTest returns the student's view of a test: the score once completed,
// otherwise the questions without correctness flags
func (s *attemptService) GetTest(ctx context.Context, studentUserID string, testID uint) (*models.StudentTestResponse, error) {
	student, err := resolveStudent(ctx, s.repo, studentUserID)
	if err != nil {
		return nil, err
	}

	test, err := getTest(ctx, s.repo, testID)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(ctx, student, testID, "view"); err != nil {
		return nil, err
	}

	result, err := s.repo.Result().GetByStudentAndTest(ctx, nil, student.ID, testID)
	switch {
	case err == nil:
		completedAt := result.CompletedAt
		score := result.Score
		return &models.StudentTestResponse{
			TestID:      test.ID,
			Title:       test.Title,
			State:       models.AttemptCompleted,
			MaxScore:    test.MaxScore,
			Score:       &score,
			CompletedAt: &completedAt,
		}, nil
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	full, err := s.repo.Test().GetWithQuestions(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test questions: %w", err)
	}

	response := &models.StudentTestResponse{
		TestID:    full.ID,
		Title:     full.Title,
		State:     models.AttemptAvailable,
		MaxScore:  full.MaxScore,
		Questions: make([]models.StudentQuestionResponse, 0, len(full.Questions)),
	}
	for _, q := range full.Questions {
		question := models.StudentQuestionResponse{
			QuestionID: q.ID,
			Text:       q.Text,
			Points:     q.Points,
			Options:    make([]models.StudentOptionResponse, 0, len(q.Options)),
		}
		for _, opt := range q.Options {
			question.Options = append(question.Options, models.StudentOptionResponse{
				OptionID: opt.ID,
				Text:     opt.Text,
			})
		}
		response.Questions = append(response.Questions, question)
	}

	return response, nil
}

// Submit scores the answers and stores the single result for the pair
func (s *attemptService) Submit(ctx context.Context, studentUserID string, req *SubmitTestRequest) (*models.SubmitTestResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Submitting test", "student_user_id", studentUserID, "test_id", req.TestID)

	student, err := resolveStudent(ctx, s.repo, studentUserID)
	if err != nil {
		return nil, err
	}

	if _, err := getTest(ctx, s.repo, req.TestID); err != nil {
		return nil, err
	}

	if s.config.EnforceSubmitAccess {
		if err := s.checkAccess(ctx, student, req.TestID, "submit"); err != nil {
			return nil, err
		}
	}

	answers := req.Answers
	if answers == nil {
		answers = models.Answers{}
	}

	var (
		result   *models.TestResult
		maxScore int
	)
	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		_, err := r.Result().GetByStudentAndTest(ctx, nil, student.ID, req.TestID)
		if err == nil {
			return ErrAlreadySubmitted
		}
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check existing result: %w", err)
		}

		test, err := r.Test().GetWithQuestions(ctx, nil, req.TestID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTestNotFound
			}
			return fmt.Errorf("failed to get test questions: %w", err)
		}
		maxScore = test.MaxScore

		result = &models.TestResult{
			StudentID:   student.ID,
			TestID:      test.ID,
			Score:       scoreAnswers(test.Questions, answers),
			CompletedAt: s.now().UTC(),
			Answers:     datatypes.NewJSONType(answers),
		}

		if err := r.Result().Create(ctx, nil, result); err != nil {
			switch {
			case repositories.IsDuplicateError(err):
				return ErrAlreadySubmitted
			case repositories.IsForeignKeyError(err):
				return fmt.Errorf("test or student removed during submit: %w", ErrConflict)
			}
			return fmt.Errorf("failed to save result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test submitted",
		"student_id", student.ID,
		"test_id", result.TestID,
		"score", result.Score,
		"max_score", maxScore)

	publishEvent(ctx, s.publisher, s.logger, events.TopicResultSubmitted, events.ResultSubmittedEvent{
		StudentID:   student.ID,
		TestID:      result.TestID,
		Score:       result.Score,
		MaxScore:    maxScore,
		CompletedAt: result.CompletedAt,
	})
	cache.InvalidateStudentDashboard(ctx, s.cache, studentUserID)
	cache.InvalidateTeacherDashboards(ctx, s.cache)

	return &models.SubmitTestResponse{
		TestID:      result.TestID,
		Score:       result.Score,
		MaxScore:    maxScore,
		CompletedAt: result.CompletedAt,
	}, nil
}

// Reset removes a student's result so the test becomes available again.
// Resetting a pair without a result is a no-op.
func (s *attemptService) Reset(ctx context.Context, teacherUserID string, studentID, testID uint) error {
	s.logger.Info("Resetting result", "teacher_user_id", teacherUserID, "student_id", studentID, "test_id", testID)

	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return err
	}

	if _, err := authorizeTest(ctx, s.repo, teacher, testID, "reset_result"); err != nil {
		return err
	}

	removed, err := s.repo.Result().DeleteByStudentAndTest(ctx, nil, studentID, testID)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	if !removed {
		return nil
	}

	publishEvent(ctx, s.publisher, s.logger, events.TopicResultReset, events.ResultResetEvent{
		StudentID:     studentID,
		TestID:        testID,
		TeacherUserID: teacherUserID,
	})
	cache.InvalidateTeacherDashboards(ctx, s.cache)
	if student, err := s.repo.Student().GetByID(ctx, nil, studentID); err == nil {
		cache.InvalidateStudentDashboard(ctx, s.cache, student.UserID)
	}

	return nil
}

// checkAccess requires a teacher linked to both the student and the test
func (s *attemptService) checkAccess(ctx context.Context, student *models.Student, testID uint, action string) error {
	shared, err := s.repo.Assignment().SharesTeacher(ctx, nil, student.ID, testID)
	if err != nil {
		return fmt.Errorf("failed to check test access: %w", err)
	}
	if !shared {
		return NewPermissionError(student.UserID, testID, "test", action, "no shared teacher")
	}
	return nil
}

// scoreAnswers sums the points of questions answered with their correct
// option. Unanswered, unknown and unscorable questions contribute nothing.
func scoreAnswers(questions []models.Question, answers models.Answers) int {
	score := 0
	for i := range questions {
		q := &questions[i]
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		if correct := q.CorrectOption(); correct != nil && correct.ID == chosen {
			score += q.Points
		}
	}
	return score
}
