package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type projectionService struct {
	repo         repositories.Repository
	cache        *cache.CacheManager
	logger       *slog.Logger
	dashboardTTL time.Duration
}

func NewProjectionService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, dashboardTTL time.Duration) ProjectionService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	if dashboardTTL <= 0 {
		dashboardTTL = cache.DashboardCacheConfig.TTL
	}
	return &projectionService{
		repo:         repo,
		cache:        cacheManager,
		logger:       logger,
		dashboardTTL: dashboardTTL,
	}
}

// ===== DASHBOARDS =====

func (s *projectionService) TeacherDashboard(ctx context.Context, teacherUserID string) (*models.TeacherDashboardResponse, error) {
	var dashboard models.TeacherDashboardResponse
	err := s.cache.Dashboard.CacheOrExecute(ctx, cache.TeacherDashboardKey(teacherUserID), &dashboard, s.dashboardTTL, func() (interface{}, error) {
		return s.buildTeacherDashboard(ctx, teacherUserID)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *projectionService) buildTeacherDashboard(ctx context.Context, teacherUserID string) (*models.TeacherDashboardResponse, error) {
	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return nil, err
	}

	dashboard := &models.TeacherDashboardResponse{TeacherID: teacher.ID}
	counts := s.repo.Dashboard()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := counts.CountStudentsOfTeacher(gctx, nil, teacher.ID)
		dashboard.StudentsCount = n
		return err
	})
	g.Go(func() error {
		n, err := counts.CountTestsOfTeacher(gctx, nil, teacher.ID)
		dashboard.TestsCount = n
		return err
	})
	g.Go(func() error {
		n, err := counts.CountResultsOfTeacher(gctx, nil, teacher.ID)
		dashboard.ResultsCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build teacher dashboard: %w", err)
	}

	return dashboard, nil
}

func (s *projectionService) StudentDashboard(ctx context.Context, studentUserID string) (*models.StudentDashboardResponse, error) {
	var dashboard models.StudentDashboardResponse
	err := s.cache.Dashboard.CacheOrExecute(ctx, cache.StudentDashboardKey(studentUserID), &dashboard, s.dashboardTTL, func() (interface{}, error) {
		return s.buildStudentDashboard(ctx, studentUserID)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *projectionService) buildStudentDashboard(ctx context.Context, studentUserID string) (*models.StudentDashboardResponse, error) {
	student, err := resolveStudent(ctx, s.repo, studentUserID)
	if err != nil {
		return nil, err
	}

	dashboard := &models.StudentDashboardResponse{StudentID: student.ID}
	counts := s.repo.Dashboard()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := counts.CountTeachersOfStudent(gctx, nil, student.ID)
		dashboard.TeachersCount = n
		return err
	})
	g.Go(func() error {
		n, err := counts.CountAvailableTestsOfStudent(gctx, nil, student.ID)
		dashboard.AvailableTestsCount = n
		return err
	})
	g.Go(func() error {
		n, err := counts.CountResultsOfStudent(gctx, nil, student.ID)
		dashboard.ResultsCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build student dashboard: %w", err)
	}

	return dashboard, nil
}

// ===== RESULT LISTINGS =====

// TeacherResults lists results on every test the teacher owns, newest first
func (s *projectionService) TeacherResults(ctx context.Context, teacherUserID string) ([]models.TeacherResultResponse, error) {
	teacher, err := resolveTeacher(ctx, s.repo, teacherUserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Result().ListByTeacher(ctx, nil, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	userIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.StudentUserID)
	}
	users := lookupUsers(ctx, s.repo, s.logger, userIDs)

	results := make([]models.TeacherResultResponse, 0, len(rows))
	for _, row := range rows {
		name, email := identity(users, row.StudentUserID)
		results = append(results, models.TeacherResultResponse{
			TestID:       row.TestID,
			TestTitle:    row.TestTitle,
			StudentID:    row.StudentID,
			StudentName:  name,
			StudentEmail: email,
			Score:        row.Score,
			MaxScore:     row.MaxScore,
			CompletedAt:  row.CompletedAt,
		})
	}

	return results, nil
}

func (s *projectionService) StudentResults(ctx context.Context, studentUserID string) ([]models.StudentResultResponse, error) {
	student, err := resolveStudent(ctx, s.repo, studentUserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Result().ListByStudent(ctx, nil, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]models.StudentResultResponse, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.StudentResultResponse{
			TestID:      row.TestID,
			TestTitle:   row.TestTitle,
			Score:       row.Score,
			MaxScore:    row.MaxScore,
			CompletedAt: row.CompletedAt,
		})
	}

	return results, nil
}

// StudentAvailableTests lists each reachable test once, attributed to the
// first linking teacher, with the student's completion flag
func (s *projectionService) StudentAvailableTests(ctx context.Context, studentUserID string) ([]models.StudentAvailableTestResponse, error) {
	student, err := resolveStudent(ctx, s.repo, studentUserID)
	if err != nil {
		return nil, err
	}

	var (
		rows      []repositories.AvailableTestRow
		completed []uint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.Test().ListAvailableForStudent(gctx, nil, student.ID)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.repo.Result().CompletedTestIDs(gctx, nil, student.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list available tests: %w", err)
	}

	done := make(map[uint]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	userIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.TeacherUserID)
	}
	users := lookupUsers(ctx, s.repo, s.logger, userIDs)

	tests := make([]models.StudentAvailableTestResponse, 0, len(rows))
	for _, row := range rows {
		name, _ := identity(users, row.TeacherUserID)
		_, isDone := done[row.TestID]
		tests = append(tests, models.StudentAvailableTestResponse{
			TestID:         row.TestID,
			Title:          row.Title,
			TeacherName:    name,
			QuestionsCount: row.QuestionsCount,
			MaxScore:       row.MaxScore,
			Completed:      isDone,
		})
	}

	return tests, nil
}
