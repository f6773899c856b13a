package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/testing-service/internal/events"
	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

// ===== PROFILE RESOLUTION =====

// resolveTeacher maps a caller's user id to their teacher profile
func resolveTeacher(ctx context.Context, repo repositories.Repository, userID string) (*models.Teacher, error) {
	teacher, err := repo.Teacher().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return teacher, nil
}

// resolveStudent maps a caller's user id to their student profile
func resolveStudent(ctx context.Context, repo repositories.Repository, userID string) (*models.Student, error) {
	student, err := repo.Student().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func getStudentByID(ctx context.Context, repo repositories.Repository, studentID uint) (*models.Student, error) {
	student, err := repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func getTest(ctx context.Context, repo repositories.Repository, testID uint) (*models.Test, error) {
	test, err := repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

// ===== OWNERSHIP =====

// authorizeTest loads the test and checks that the teacher is linked to it
func authorizeTest(ctx context.Context, repo repositories.Repository, teacher *models.Teacher, testID uint, action string) (*models.Test, error) {
	test, err := getTest(ctx, repo, testID)
	if err != nil {
		return nil, err
	}

	owner, err := repo.Assignment().IsTestOwner(ctx, nil, teacher.ID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to check test ownership: %w", err)
	}
	if !owner {
		return nil, NewPermissionError(teacher.UserID, testID, "test", action, "teacher is not linked to the test")
	}

	return test, nil
}

// authorizeQuestion resolves the question and checks ownership of its test
func authorizeQuestion(ctx context.Context, repo repositories.Repository, teacher *models.Teacher, questionID uint, action string) (*models.Question, error) {
	question, err := repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if _, err := authorizeTest(ctx, repo, teacher, question.TestID, action); err != nil {
		return nil, err
	}

	return question, nil
}

// ===== IDENTITY DECORATION =====

// lookupUsers resolves display identities. The directory is best-effort:
// failures are logged and yield an empty map.
func lookupUsers(ctx context.Context, repo repositories.Repository, logger *slog.Logger, userIDs []string) map[string]*models.User {
	users := make(map[string]*models.User, len(userIDs))
	if len(userIDs) == 0 {
		return users
	}

	found, err := repo.User().GetByIDs(ctx, userIDs)
	if err != nil {
		logger.Warn("Failed to resolve user identities", "count", len(userIDs), "error", err)
		return users
	}

	for _, user := range found {
		users[user.ID] = user
	}
	return users
}

// identity returns the display name and email for a user id, falling back
// to the id itself when the directory does not know the user
func identity(users map[string]*models.User, userID string) (string, string) {
	if user, ok := users[userID]; ok {
		return user.DisplayName(), user.Email
	}
	return userID, ""
}

// ===== EVENTS =====

// publishEvent publishes after commit. Failures are logged only.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, topic string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, data); err != nil {
		logger.Error("Failed to publish event", "topic", topic, "error", err)
	}
}
