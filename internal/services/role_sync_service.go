package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/events"
	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type roleSyncService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewRoleSyncService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger) RoleSyncService {
	return &roleSyncService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

// SyncRole keeps the teacher and student profiles in line with the identity
// provider. Repeated calls with the same arguments are no-ops.
func (s *roleSyncService) SyncRole(ctx context.Context, userID string, role models.UserRole, enabled bool) error {
	if userID == "" {
		return ValidationErrors{{Field: "user_id", Message: "is required", Rule: "required"}}
	}

	switch role {
	case models.RoleTeacher:
		return s.syncTeacher(ctx, userID, enabled)
	case models.RoleStudent:
		return s.syncStudent(ctx, userID, enabled)
	case models.RoleAdmin:
		// admins hold no profile
		return nil
	default:
		return ValidationErrors{{Field: "role", Message: "must be teacher, student or admin", Value: role, Rule: "oneof"}}
	}
}

func (s *roleSyncService) syncTeacher(ctx context.Context, userID string, enabled bool) error {
	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := r.Teacher().GetByUserID(ctx, nil, userID)
		exists := err == nil
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to get teacher: %w", err)
		}

		switch {
		case enabled && !exists:
			if err := r.Teacher().Create(ctx, nil, &models.Teacher{UserID: userID}); err != nil {
				return fmt.Errorf("failed to create teacher: %w", err)
			}
			s.logger.Info("Teacher profile created", "user_id", userID)
		case !enabled && exists:
			// graph edges cascade; tests stay for their results
			if err := r.Teacher().Delete(ctx, nil, teacher.ID); err != nil && !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to delete teacher: %w", err)
			}
			s.logger.Info("Teacher profile removed", "user_id", userID)
		}
		return nil
	})
	if repositories.IsDuplicateError(err) {
		// created concurrently by another delivery
		err = nil
	}
	if err != nil {
		return err
	}

	cache.InvalidateTeacherDashboard(ctx, s.cache, userID)
	cache.InvalidateStudentDashboards(ctx, s.cache)
	return nil
}

func (s *roleSyncService) syncStudent(ctx context.Context, userID string, enabled bool) error {
	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		student, err := r.Student().GetByUserID(ctx, nil, userID)
		exists := err == nil
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to get student: %w", err)
		}

		switch {
		case enabled && !exists:
			if err := r.Student().Create(ctx, nil, &models.Student{UserID: userID}); err != nil {
				return fmt.Errorf("failed to create student: %w", err)
			}
			s.logger.Info("Student profile created", "user_id", userID)
		case !enabled && exists:
			results, err := r.Result().CountByStudent(ctx, nil, student.ID)
			if err != nil {
				return fmt.Errorf("failed to count results: %w", err)
			}
			if results > 0 {
				return ErrStudentHasResults
			}
			if err := r.Student().Delete(ctx, nil, student.ID); err != nil {
				switch {
				case repositories.IsForeignKeyError(err):
					return ErrStudentHasResults
				case repositories.IsNotFoundError(err):
					return nil
				}
				return fmt.Errorf("failed to delete student: %w", err)
			}
			s.logger.Info("Student profile removed", "user_id", userID)
		}
		return nil
	})
	if repositories.IsDuplicateError(err) {
		// created concurrently by another delivery
		err = nil
	}
	if err != nil {
		return err
	}

	cache.InvalidateStudentDashboard(ctx, s.cache, userID)
	cache.InvalidateTeacherDashboards(ctx, s.cache)
	return nil
}

// HandleRoleChanged adapts SyncRole to the role change consumer. Business
// rejections are permanent; everything else is retried.
func HandleRoleChanged(service RoleSyncService) events.RoleChangedHandler {
	return func(ctx context.Context, event events.RoleChangedEvent) error {
		err := service.SyncRole(ctx, event.UserID, models.UserRole(event.Role), event.Enabled)
		if err == nil {
			return nil
		}

		var verrs ValidationErrors
		if errors.As(err, &verrs) || errors.Is(err, ErrConflict) {
			return events.Permanent(err)
		}
		return err
	}
}
