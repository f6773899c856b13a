package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
	"github.com/SAP-F-2025/testing-service/internal/validator"
)

type authoringService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthoringService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) AuthoringService {
	return &authoringService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

// ===== TESTS =====

func (s *authoringService) CreateTest(ctx context.Context, teacherUserID string, req *CreateTestRequest) (*models.TeacherTestResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateTestCreate(req); len(errs) > 0 {
		return nil, errs
	}

	s.logger.Info("Creating test", "teacher_user_id", teacherUserID, "title", req.Title)

	test := &models.Test{
		Title:       req.Title,
		Description: req.Description,
	}

	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := resolveTeacher(ctx, r, teacherUserID)
		if err != nil {
			return err
		}

		if err := r.Test().Create(ctx, nil, test); err != nil {
			return fmt.Errorf("failed to create test: %w", err)
		}

		if err := r.Assignment().LinkTest(ctx, nil, teacher.ID, test.ID); err != nil {
			return fmt.Errorf("failed to link test: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test created", "test_id", test.ID)
	s.invalidateForTestSet(ctx, teacherUserID)

	return &models.TeacherTestResponse{
		TestID:      test.ID,
		Title:       test.Title,
		Description: test.Description,
		CreatedAt:   test.CreatedAt,
		MaxScore:    test.MaxScore,
	}, nil
}

// DeleteTest removes the test with its questions and options. Tests with
// submitted results are kept.
func (s *authoringService) DeleteTest(ctx context.Context, teacherUserID string, testID uint) error {
	s.logger.Info("Deleting test", "teacher_user_id", teacherUserID, "test_id", testID)

	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := resolveTeacher(ctx, r, teacherUserID)
		if err != nil {
			return err
		}

		if _, err := authorizeTest(ctx, r, teacher, testID, "delete"); err != nil {
			return err
		}

		results, err := r.Result().CountByTest(ctx, nil, testID)
		if err != nil {
			return fmt.Errorf("failed to count results: %w", err)
		}
		if results > 0 {
			return ErrTestHasResults
		}

		if err := r.Test().Delete(ctx, nil, testID); err != nil {
			switch {
			case repositories.IsForeignKeyError(err):
				// a result landed after the count
				return ErrTestHasResults
			case repositories.IsNotFoundError(err):
				return ErrTestNotFound
			}
			return fmt.Errorf("failed to delete test: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateForTestSet(ctx, teacherUserID)
	return nil
}

func (s *authoringService) ListTests(ctx context.Context, teacherUserID string) ([]models.TeacherTestResponse, error) {
	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Test().ListByTeacher(ctx, nil, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	tests := make([]models.TeacherTestResponse, 0, len(rows))
	for _, row := range rows {
		tests = append(tests, models.TeacherTestResponse{
			TestID:         row.TestID,
			Title:          row.Title,
			Description:    row.Description,
			CreatedAt:      row.CreatedAt,
			QuestionsCount: row.QuestionsCount,
			MaxScore:       row.MaxScore,
		})
	}

	return tests, nil
}

func (s *authoringService) GetTestForEditing(ctx context.Context, teacherUserID string, testID uint) (*models.TestEditorResponse, error) {
	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return nil, err
	}

	if _, err := authorizeTest(ctx, s.repo, teacher, testID, "edit"); err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetWithQuestions(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	editor := &models.TestEditorResponse{
		TestID:      test.ID,
		Title:       test.Title,
		Description: test.Description,
		MaxScore:    test.MaxScore,
		Questions:   make([]models.EditorQuestionResponse, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		editor.Questions = append(editor.Questions, buildEditorQuestion(&q))
	}

	return editor, nil
}

// ===== QUESTIONS =====

// AddQuestion inserts the question and recomputes MaxScore under a lock on
// the test row
func (s *authoringService) AddQuestion(ctx context.Context, teacherUserID string, testID uint, req *CreateQuestionRequest) (*models.EditorQuestionResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	question := &models.Question{
		TestID: testID,
		Text:   req.Text,
		Points: req.Points,
	}

	var maxScore int
	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := resolveTeacher(ctx, r, teacherUserID)
		if err != nil {
			return err
		}

		if _, err := authorizeTest(ctx, r, teacher, testID, "add_question"); err != nil {
			return err
		}

		if err := s.lockTest(ctx, r, testID); err != nil {
			return err
		}

		if err := r.Question().Create(ctx, nil, question); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		maxScore, err = r.Test().RecomputeMaxScore(ctx, nil, testID)
		if err != nil {
			return fmt.Errorf("failed to recompute max score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question added", "test_id", testID, "question_id", question.ID, "max_score", maxScore)

	response := buildEditorQuestion(question)
	return &response, nil
}

func (s *authoringService) DeleteQuestion(ctx context.Context, teacherUserID string, questionID uint) error {
	var (
		testID   uint
		maxScore int
	)
	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := resolveTeacher(ctx, r, teacherUserID)
		if err != nil {
			return err
		}

		question, err := authorizeQuestion(ctx, r, teacher, questionID, "delete_question")
		if err != nil {
			return err
		}
		testID = question.TestID

		if err := s.lockTest(ctx, r, testID); err != nil {
			return err
		}

		if err := r.Question().Delete(ctx, nil, questionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to delete question: %w", err)
		}

		maxScore, err = r.Test().RecomputeMaxScore(ctx, nil, testID)
		if err != nil {
			return fmt.Errorf("failed to recompute max score: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Question deleted", "test_id", testID, "question_id", questionID, "max_score", maxScore)
	return nil
}

// ===== OPTIONS =====

func (s *authoringService) AddOption(ctx context.Context, teacherUserID string, questionID uint, req *CreateOptionRequest) (*models.EditorOptionResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateOptionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	option := &models.Option{
		QuestionID: questionID,
		Text:       req.Text,
		IsCorrect:  req.IsCorrect,
	}

	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := resolveTeacher(ctx, r, teacherUserID)
		if err != nil {
			return err
		}

		if _, err := authorizeQuestion(ctx, r, teacher, questionID, "add_option"); err != nil {
			return err
		}

		if err := r.Option().Create(ctx, nil, option); err != nil {
			if repositories.IsForeignKeyError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to create option: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.EditorOptionResponse{
		OptionID:  option.ID,
		Text:      option.Text,
		IsCorrect: option.IsCorrect,
	}, nil
}

func (s *authoringService) DeleteOption(ctx context.Context, teacherUserID string, optionID uint) error {
	return s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := resolveTeacher(ctx, r, teacherUserID)
		if err != nil {
			return err
		}

		option, err := r.Option().GetByID(ctx, nil, optionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrOptionNotFound
			}
			return fmt.Errorf("failed to get option: %w", err)
		}

		if _, err := authorizeQuestion(ctx, r, teacher, option.QuestionID, "delete_option"); err != nil {
			return err
		}

		if err := r.Option().Delete(ctx, nil, optionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrOptionNotFound
			}
			return fmt.Errorf("failed to delete option: %w", err)
		}
		return nil
	})
}

// ===== HELPERS =====

func (s *authoringService) lockTest(ctx context.Context, r repositories.Repository, testID uint) error {
	if _, err := r.Test().LockForUpdate(ctx, nil, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to lock test: %w", err)
	}
	return nil
}

// invalidateForTestSet drops dashboards whose test counts may have changed
func (s *authoringService) invalidateForTestSet(ctx context.Context, teacherUserID string) {
	cache.InvalidateTeacherDashboard(ctx, s.cache, teacherUserID)
	cache.InvalidateStudentDashboards(ctx, s.cache)
}

func buildEditorQuestion(q *models.Question) models.EditorQuestionResponse {
	response := models.EditorQuestionResponse{
		QuestionID: q.ID,
		Text:       q.Text,
		Points:     q.Points,
		Options:    make([]models.EditorOptionResponse, 0, len(q.Options)),
	}
	for _, opt := range q.Options {
		response.Options = append(response.Options, models.EditorOptionResponse{
			OptionID:  opt.ID,
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
		})
	}
	return response
}
