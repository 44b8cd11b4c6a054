package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/farm-dashboard/internal/repository"
	"github.com/example/farm-dashboard/internal/timewindow"
)

type stubRepository struct {
	mu sync.Mutex

	visibleIDs []string
	visibleErr error

	totals     repository.Totals
	cumulative map[string]repository.Totals
	visitors   repository.VisitorCounts
	logLevels  repository.LogLevelCounts
	farmTypes  []repository.LabelCount
	roles      repository.UserRoleCounts
	farmAddrs  []repository.LabelCount
	recent     []repository.RecentLog
	daily      []repository.DailyCount
	purposes   []repository.LabelCount
	hours      []repository.BucketCount
	weekdays   []repository.BucketCount
	visitAddrs []repository.LabelCount

	// errs fails the named method.
	errs map[string]error

	calls  map[string]int
	scopes []repository.Scope
}

func (s *stubRepository) record(method string, scope *repository.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
	if scope != nil {
		s.scopes = append(s.scopes, *scope)
	}
	return s.errs[method]
}

func (s *stubRepository) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *stubRepository) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *stubRepository) VisibleFarmIDs(ctx context.Context, userID string) ([]string, error) {
	if err := s.record("VisibleFarmIDs", nil); err != nil {
		return nil, err
	}
	return s.visibleIDs, s.visibleErr
}

func (s *stubRepository) Totals(ctx context.Context) (repository.Totals, error) {
	return s.totals, s.record("Totals", nil)
}

func (s *stubRepository) CumulativeTotals(ctx context.Context, asOf time.Time) (repository.Totals, error) {
	err := s.record("CumulativeTotals", nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cumulative[asOf.UTC().Format(time.RFC3339)], err
}

func (s *stubRepository) VisitorCounts(ctx context.Context, scope repository.Scope, w timewindow.Windows) (repository.VisitorCounts, error) {
	return s.visitors, s.record("VisitorCounts", &scope)
}

func (s *stubRepository) LogLevels(ctx context.Context, rng timewindow.Range) (repository.LogLevelCounts, error) {
	return s.logLevels, s.record("LogLevels", nil)
}

func (s *stubRepository) FarmTypes(ctx context.Context) ([]repository.LabelCount, error) {
	return s.farmTypes, s.record("FarmTypes", nil)
}

func (s *stubRepository) UserRoles(ctx context.Context) (repository.UserRoleCounts, error) {
	return s.roles, s.record("UserRoles", nil)
}

func (s *stubRepository) FarmAddresses(ctx context.Context) ([]repository.LabelCount, error) {
	return s.farmAddrs, s.record("FarmAddresses", nil)
}

func (s *stubRepository) RecentLogs(ctx context.Context, limit int) ([]repository.RecentLog, error) {
	return s.recent, s.record("RecentLogs", nil)
}

func (s *stubRepository) VisitorDaily(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.DailyCount, error) {
	return s.daily, s.record("VisitorDaily", &scope)
}

func (s *stubRepository) VisitorPurposes(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.LabelCount, error) {
	return s.purposes, s.record("VisitorPurposes", &scope)
}

func (s *stubRepository) VisitorHours(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.BucketCount, error) {
	return s.hours, s.record("VisitorHours", &scope)
}

func (s *stubRepository) VisitorWeekdays(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.BucketCount, error) {
	return s.weekdays, s.record("VisitorWeekdays", &scope)
}

func (s *stubRepository) VisitorAddresses(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.LabelCount, error) {
	return s.visitAddrs, s.record("VisitorAddresses", &scope)
}

type stubCache struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	setErr  error
	setKeys []string
	getKeys []string
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setKeys = append(s.setKeys, key)
	if s.setErr != nil {
		return s.setErr
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value.(string)
	return nil
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getKeys = append(s.getKeys, key)
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}
