package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type assignmentService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewAssignmentService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger) AssignmentService {
	return &assignmentService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

func (s *assignmentService) ListStudentsOf(ctx context.Context, teacherUserID string) ([]models.TeacherStudentResponse, error) {
	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Assignment().StudentsOf(ctx, nil, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	userIDs := make([]string, len(rows))
	for i, row := range rows {
		userIDs[i] = row.UserID
	}
	users := lookupUsers(ctx, s.repo, s.logger, userIDs)

	students := make([]models.TeacherStudentResponse, 0, len(rows))
	for _, row := range rows {
		name, email := identity(users, row.UserID)
		students = append(students, models.TeacherStudentResponse{
			StudentID:    row.StudentID,
			UserID:       row.UserID,
			FullName:     name,
			Email:        email,
			EnrolledAt:   row.EnrolledAt,
			TestsPassed:  row.TestsPassed,
			AverageScore: row.AverageScore,
		})
	}

	return students, nil
}

// ListUnassignedStudents is the complement of ListStudentsOf over all students
func (s *assignmentService) ListUnassignedStudents(ctx context.Context, teacherUserID string) ([]models.TeacherStudentResponse, error) {
	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return nil, err
	}

	linked, err := s.repo.Assignment().StudentIDsOf(ctx, nil, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked students: %w", err)
	}

	candidates, err := s.repo.Student().ListExcluding(ctx, nil, linked)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	userIDs := make([]string, len(candidates))
	for i, student := range candidates {
		userIDs[i] = student.UserID
	}
	users := lookupUsers(ctx, s.repo, s.logger, userIDs)

	students := make([]models.TeacherStudentResponse, 0, len(candidates))
	for _, student := range candidates {
		name, email := identity(users, student.UserID)
		students = append(students, models.TeacherStudentResponse{
			StudentID:  student.ID,
			UserID:     student.UserID,
			FullName:   name,
			Email:      email,
			EnrolledAt: student.EnrolledAt,
		})
	}

	return students, nil
}

func (s *assignmentService) Attach(ctx context.Context, teacherUserID string, studentID uint) error {
	s.logger.Info("Attaching student", "teacher_user_id", teacherUserID, "student_id", studentID)

	var student *models.Student
	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		teacher, err := resolveTeacher(ctx, r, teacherUserID)
		if err != nil {
			return err
		}

		student, err = getStudentByID(ctx, r, studentID)
		if err != nil {
			return err
		}

		if err := r.Assignment().LinkStudent(ctx, nil, teacher.ID, student.ID); err != nil {
			if repositories.IsForeignKeyError(err) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to link student: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateTeacherDashboard(ctx, s.cache, teacherUserID)
	cache.InvalidateStudentDashboard(ctx, s.cache, student.UserID)

	return nil
}

// Detach removes the link if present. A missing link or student is a no-op.
func (s *assignmentService) Detach(ctx context.Context, teacherUserID string, studentID uint) error {
	s.logger.Info("Detaching student", "teacher_user_id", teacherUserID, "student_id", studentID)

	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return err
	}

	if err := s.repo.Assignment().UnlinkStudent(ctx, nil, teacher.ID, studentID); err != nil {
		return fmt.Errorf("failed to unlink student: %w", err)
	}

	cache.InvalidateTeacherDashboard(ctx, s.cache, teacherUserID)
	if student, err := s.repo.Student().GetByID(ctx, nil, studentID); err == nil {
		cache.InvalidateStudentDashboard(ctx, s.cache, student.UserID)
	}

	return nil
}

func (s *assignmentService) ListTeachersOf(ctx context.Context, studentUserID string) ([]models.StudentTeacherResponse, error) {
	student, err := resolveStudent(ctx, s.repo, studentUserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Assignment().TeachersOf(ctx, nil, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}

	userIDs := make([]string, len(rows))
	for i, row := range rows {
		userIDs[i] = row.UserID
	}
	users := lookupUsers(ctx, s.repo, s.logger, userIDs)

	teachers := make([]models.StudentTeacherResponse, 0, len(rows))
	for _, row := range rows {
		name, email := identity(users, row.UserID)
		teachers = append(teachers, models.StudentTeacherResponse{
			TeacherID:  row.TeacherID,
			UserID:     row.UserID,
			FullName:   name,
			Email:      email,
			JoinedAt:   row.JoinedAt,
			TestsCount: row.TestsCount,
		})
	}

	return teachers, nil
}
