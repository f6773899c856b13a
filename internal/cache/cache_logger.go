package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and only logs failures
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and only logs failures
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateTeacherDashboard drops the cached dashboard of one teacher.
// All invalidation helpers accept a nil manager.
func InvalidateTeacherDashboard(ctx context.Context, cm *CacheManager, teacherUserID string) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Dashboard, TeacherDashboardKey(teacherUserID))
}

// InvalidateStudentDashboard drops the cached dashboard of one student
func InvalidateStudentDashboard(ctx context.Context, cm *CacheManager, studentUserID string) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Dashboard, StudentDashboardKey(studentUserID))
}

// InvalidateTeacherDashboards drops the dashboards of every teacher
func InvalidateTeacherDashboards(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.Dashboard, TeacherDashboardKey("*"))
}

// InvalidateStudentDashboards drops the dashboards of every student
func InvalidateStudentDashboards(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.Dashboard, StudentDashboardKey("*"))
}
