package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/farm-dashboard/internal/apperror"
	"github.com/example/farm-dashboard/internal/logging"
	"github.com/example/farm-dashboard/internal/repository"
	"github.com/example/farm-dashboard/internal/timewindow"
)

// DashboardRepository defines the read operations needed by the use case.
type DashboardRepository interface {
	VisibleFarmIDs(ctx context.Context, userID string) ([]string, error)
	Totals(ctx context.Context) (repository.Totals, error)
	CumulativeTotals(ctx context.Context, asOf time.Time) (repository.Totals, error)
	VisitorCounts(ctx context.Context, scope repository.Scope, w timewindow.Windows) (repository.VisitorCounts, error)
	LogLevels(ctx context.Context, rng timewindow.Range) (repository.LogLevelCounts, error)
	FarmTypes(ctx context.Context) ([]repository.LabelCount, error)
	UserRoles(ctx context.Context) (repository.UserRoleCounts, error)
	FarmAddresses(ctx context.Context) ([]repository.LabelCount, error)
	RecentLogs(ctx context.Context, limit int) ([]repository.RecentLog, error)
	VisitorDaily(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.DailyCount, error)
	VisitorPurposes(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.LabelCount, error)
	VisitorHours(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.BucketCount, error)
	VisitorWeekdays(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.BucketCount, error)
	VisitorAddresses(ctx context.Context, scope repository.Scope, rng timewindow.Range) ([]repository.LabelCount, error)
}

// Request identifies the caller and the farm filter they asked for.
type Request struct {
	RequestID string
	UserID    string
	IsAdmin   bool
	FarmID    string
}

const (
	monthlyTrendMonths = 4
	recentActivityRows = 5
)

// DashboardUseCase builds the admin dashboard payload.
type DashboardUseCase struct {
	repo     DashboardRepository
	cache    Cache
	logger   *zap.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// Option customizes a DashboardUseCase.
type Option func(*DashboardUseCase)

// WithCacheTTL sets how long assembled payloads are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *DashboardUseCase) { uc.cacheTTL = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(uc *DashboardUseCase) { uc.now = now }
}

// NewDashboardUseCase constructs a new use case instance. A nil cache disables caching.
func NewDashboardUseCase(repo DashboardRepository, cache Cache, logger *zap.Logger, opts ...Option) *DashboardUseCase {
	InitMetrics()
	if cache == nil {
		cache = noopCache{}
	}
	uc := &DashboardUseCase{
		repo:     repo,
		cache:    cache,
		logger:   logger.Named("dashboard_usecase"),
		cacheTTL: 5 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetDashboard resolves the caller's scope and returns the assembled payload.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, req Request) (*Dashboard, error) {
	dashboard, _, err := uc.load(ctx, req)
	return dashboard, err
}

// load returns the payload and whether the caller could see any farm at all.
func (uc *DashboardUseCase) load(ctx context.Context, req Request) (*Dashboard, bool, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.get_dashboard", req.RequestID)
	now := uc.now()

	scope, visible, err := uc.ResolveScope(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if !visible {
		opLogger.Info("caller has no visible farms", zap.String("user_id", req.UserID))
		return emptyDashboard(now), false, nil
	}

	key := dashboardCacheKey(now, scope)
	if cached, ok := uc.readCache(ctx, opLogger, key); ok {
		return cached, true, nil
	}

	dashboard, err := uc.build(ctx, scope, now)
	if err != nil {
		opLogger.Error("dashboard build failed", zap.Stringer("scope", scope), zap.Error(err))
		return nil, true, err
	}
	uc.writeCache(ctx, opLogger, key, dashboard)
	return dashboard, true, nil
}

// Warm rebuilds the all-farms payload and stores it in the cache.
func (uc *DashboardUseCase) Warm(ctx context.Context) error {
	opLogger := logging.WithOperation(uc.logger, "usecase.warm_cache", "")
	now := uc.now()
	scope := repository.AllFarms()

	dashboard, err := uc.build(ctx, scope, now)
	if err != nil {
		return err
	}
	uc.writeCache(ctx, opLogger, dashboardCacheKey(now, scope), dashboard)
	return nil
}

type aggregateTask struct {
	name string
	run  func(ctx context.Context) error
}

// build runs every aggregate concurrently and assembles the result. The first
// failure cancels the remaining queries.
func (uc *DashboardUseCase) build(ctx context.Context, scope repository.Scope, now time.Time) (*Dashboard, error) {
	started := time.Now()
	defer func() { DashboardBuildSeconds.Observe(time.Since(started).Seconds()) }()

	windows := timewindow.Resolve(now)
	months := timewindow.LastMonths(now, monthlyTrendMonths)
	current := months[len(months)-1]

	var a aggregates
	tasks := []aggregateTask{
		{"dashboardTotals", func(ctx context.Context) (err error) {
			a.totals, err = uc.repo.Totals(ctx)
			return err
		}},
		{"visitorCounts", func(ctx context.Context) (err error) {
			a.visitors, err = uc.repo.VisitorCounts(ctx, scope, windows)
			return err
		}},
		{"systemUsage", func(ctx context.Context) (err error) {
			a.logLevels, err = uc.repo.LogLevels(ctx, windows.Today)
			return err
		}},
		{"farmTypes", func(ctx context.Context) (err error) {
			a.farmTypes, err = uc.repo.FarmTypes(ctx)
			return err
		}},
		{"userRoles", func(ctx context.Context) (err error) {
			a.roles, err = uc.repo.UserRoles(ctx)
			return err
		}},
		{"farmRegions", func(ctx context.Context) (err error) {
			a.farmAddresses, err = uc.repo.FarmAddresses(ctx)
			return err
		}},
		{"monthlyTrend", func(ctx context.Context) error {
			monthly := make([]monthlyTotals, 0, len(months))
			for _, m := range months {
				totals, err := uc.repo.CumulativeTotals(ctx, m.End)
				if err != nil {
					return err
				}
				monthly = append(monthly, monthlyTotals{month: m, totals: totals})
			}
			a.monthly = monthly
			return nil
		}},
		{"monthlyComparison", func(ctx context.Context) (err error) {
			if a.thisMonth, err = uc.repo.CumulativeTotals(ctx, current.End); err != nil {
				return err
			}
			a.lastMonth, err = uc.repo.CumulativeTotals(ctx, current.Start)
			return err
		}},
		{"recentActivities", func(ctx context.Context) (err error) {
			a.recent, err = uc.repo.RecentLogs(ctx, recentActivityRows)
			return err
		}},
		{"visitorTrend", func(ctx context.Context) (err error) {
			a.daily, err = uc.repo.VisitorDaily(ctx, scope, windows.Last30Days)
			return err
		}},
		{"purposeStats", func(ctx context.Context) (err error) {
			a.purposes, err = uc.repo.VisitorPurposes(ctx, scope, windows.Last30Days)
			return err
		}},
		{"timeStats", func(ctx context.Context) (err error) {
			a.hours, err = uc.repo.VisitorHours(ctx, scope, windows.Last30Days)
			return err
		}},
		{"weekdayStats", func(ctx context.Context) (err error) {
			a.weekdays, err = uc.repo.VisitorWeekdays(ctx, scope, windows.Last30Days)
			return err
		}},
		{"regionStats", func(ctx context.Context) (err error) {
			a.visitorAddresses, err = uc.repo.VisitorAddresses(ctx, scope, windows.Last30Days)
			return err
		}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			taskStarted := time.Now()
			err := task.run(gctx)
			observeAggregate(task.name, taskStarted, err)
			if err != nil {
				return apperror.QueryFailed(task.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(a, now), nil
}

func (uc *DashboardUseCase) readCache(ctx context.Context, opLogger *zap.Logger, key string) (*Dashboard, bool) {
	if uc.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := uc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observeCacheLookup("miss")
		} else {
			observeCacheLookup("error")
			opLogger.Warn("failed to read dashboard cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var dashboard Dashboard
	if err := json.Unmarshal([]byte(raw), &dashboard); err != nil {
		observeCacheLookup("error")
		opLogger.Warn("failed to decode cached dashboard", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	observeCacheLookup("hit")
	return &dashboard, true
}

func (uc *DashboardUseCase) writeCache(ctx context.Context, opLogger *zap.Logger, key string, dashboard *Dashboard) {
	if uc.cacheTTL <= 0 {
		return
	}
	serialized, err := json.Marshal(dashboard)
	if err != nil {
		opLogger.Warn("failed to serialize dashboard", zap.Error(err))
		return
	}
	if err := uc.cache.Set(ctx, key, string(serialized), uc.cacheTTL); err != nil {
		opLogger.Warn("failed to cache dashboard", zap.String("key", key), zap.Error(err))
	}
}
