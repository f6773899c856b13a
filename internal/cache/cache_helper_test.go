package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type dashboard struct {
	Students int64 `json:"students"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheOrExecute(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &dashboard{Students: 3}, nil
	}

	var first dashboard
	if err := cm.Dashboard.CacheOrExecute(ctx, TeacherDashboardKey("t1"), &first, time.Minute, fetch); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Students != 3 {
		t.Fatalf("expected 3 students, got %d", first.Students)
	}
	if !mr.Exists("dashboard:teacher:t1") {
		t.Fatalf("expected value to be stored under the prefixed key")
	}

	var second dashboard
	if err := cm.Dashboard.CacheOrExecute(ctx, TeacherDashboardKey("t1"), &second, time.Minute, fetch); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected fetch to run once, ran %d times", calls)
	}
	if second.Students != 3 {
		t.Fatalf("expected cached value, got %+v", second)
	}
}

func TestCacheOrExecutePropagatesFetchError(t *testing.T) {
	cm, mr := newTestManager(t)
	boom := errors.New("boom")

	var out dashboard
	err := cm.Dashboard.CacheOrExecute(context.Background(), "k", &out, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if mr.Exists("dashboard:k") {
		t.Fatalf("failed fetch must not be cached")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	calls := 0
	var out dashboard
	for i := 0; i < 2; i++ {
		err := cm.Dashboard.CacheOrExecute(ctx, "k", &out, time.Minute, func() (interface{}, error) {
			calls++
			return dashboard{Students: 1}, nil
		})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected every call to fetch without a cache, got %d", calls)
	}
	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable, got %v", err)
	}
	InvalidateTeacherDashboards(ctx, cm)
	InvalidateStudentDashboard(ctx, cm, "s1")
}

func TestInvalidation(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, key := range []string{TeacherDashboardKey("t1"), TeacherDashboardKey("t2"), StudentDashboardKey("s1")} {
		if err := cm.Dashboard.Set(ctx, key, dashboard{Students: 1}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := cm.User.Set(ctx, "id:u1", map[string]string{"id": "u1"}, time.Minute); err != nil {
		t.Fatalf("set user: %v", err)
	}

	InvalidateTeacherDashboard(ctx, cm, "t1")
	if mr.Exists("dashboard:teacher:t1") {
		t.Fatalf("teacher dashboard should be gone")
	}
	if !mr.Exists("dashboard:teacher:t2") {
		t.Fatalf("other teacher dashboard should remain")
	}

	InvalidateTeacherDashboards(ctx, cm)
	InvalidateStudentDashboards(ctx, cm)
	if mr.Exists("dashboard:teacher:t2") || mr.Exists("dashboard:student:s1") {
		t.Fatalf("all dashboards should be gone")
	}
	if !mr.Exists("user:id:u1") {
		t.Fatalf("user cache must not be touched by dashboard invalidation")
	}
}

func TestGetMultiple(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	if err := cm.User.SetMultiple(ctx, map[string]interface{}{
		"id:a": map[string]string{"id": "a"},
		"id:b": map[string]string{"id": "b"},
	}, time.Minute); err != nil {
		t.Fatalf("set multiple: %v", err)
	}

	got, err := cm.User.GetMultiple(ctx, []string{"id:a", "id:missing", "id:b"})
	if err != nil {
		t.Fatalf("get multiple: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if _, ok := got["id:missing"]; ok {
		t.Fatalf("missing key must not be reported")
	}
}

func TestInvalidateByRole(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, key := range []string{TeacherDashboardKey("t1"), StudentDashboardKey("s1"), StudentDashboardKey("s2")} {
		if err := cm.Dashboard.Set(ctx, key, dashboard{Students: 1}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	InvalidateStudentDashboards(ctx, cm)
	if mr.Exists("dashboard:student:s1") || mr.Exists("dashboard:student:s2") {
		t.Fatalf("student dashboards should be gone")
	}
	if !mr.Exists("dashboard:teacher:t1") {
		t.Fatalf("teacher dashboard should remain")
	}

	InvalidateTeacherDashboards(ctx, cm)
	if mr.Exists("dashboard:teacher:t1") {
		t.Fatalf("teacher dashboard should be gone")
	}
}
