package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/farm-dashboard/internal/logging"
	"github.com/example/farm-dashboard/internal/timewindow"
)

// Totals are row counts over the four core tables.
type Totals struct {
	Users    int64 `gorm:"column:users"`
	Farms    int64 `gorm:"column:farms"`
	Visitors int64 `gorm:"column:visitors"`
	Logs     int64 `gorm:"column:logs"`
}

// VisitorCounts are the time-bucketed visitor counts for a scope.
type VisitorCounts struct {
	Today                 int64 `gorm:"column:today"`
	Yesterday             int64 `gorm:"column:yesterday"`
	ThisWeek              int64 `gorm:"column:this_week"`
	PreviousWeek          int64 `gorm:"column:previous_week"`
	Last30Days            int64 `gorm:"column:last_30_days"`
	Previous30Days        int64 `gorm:"column:previous_30_days"`
	DisinfectedLast30     int64 `gorm:"column:disinfected_last_30_days"`
	DisinfectedPrevious30 int64 `gorm:"column:disinfected_previous_30_days"`
}

// LogLevelCounts splits log lines by level.
type LogLevelCounts struct {
	Info  int64 `gorm:"column:info_count"`
	Warn  int64 `gorm:"column:warn_count"`
	Error int64 `gorm:"column:error_count"`
}

// UserRoleCounts is the user role distribution. Farm roles count distinct users.
type UserRoleCounts struct {
	Admins   int64 `gorm:"column:admins"`
	Owners   int64 `gorm:"column:owners"`
	Managers int64 `gorm:"column:managers"`
	Viewers  int64 `gorm:"column:viewers"`
	General  int64 `gorm:"column:general"`
}

// LabelCount is a count grouped by a free-form text column.
type LabelCount struct {
	Label string `gorm:"column:label"`
	Count int64  `gorm:"column:count"`
}

// BucketCount is a count grouped by an integer bucket (hour, weekday).
type BucketCount struct {
	Bucket int   `gorm:"column:bucket"`
	Count  int64 `gorm:"column:count"`
}

// DailyCount is the per-KST-day visitor count.
type DailyCount struct {
	Day         string `gorm:"column:day"`
	Count       int64  `gorm:"column:count"`
	Disinfected int64  `gorm:"column:disinfected"`
}

// RecentLog is a system log line joined with the acting user's name.
type RecentLog struct {
	ID        string    `gorm:"column:id"`
	Level     string    `gorm:"column:level"`
	Action    string    `gorm:"column:action"`
	Message   string    `gorm:"column:message"`
	UserName  string    `gorm:"column:user_name"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

const (
	visibleFarmsSQL = `SELECT id FROM (
	SELECT f.id, f.created_at FROM farms f WHERE f.owner_id = ?
	UNION
	SELECT f.id, f.created_at FROM farms f JOIN farm_members m ON m.farm_id = f.id WHERE m.user_id = ?
) visible
ORDER BY created_at, id`

	totalsSQL = `SELECT
	(SELECT COUNT(*) FROM profiles) AS users,
	(SELECT COUNT(*) FROM farms) AS farms,
	(SELECT COUNT(*) FROM visitor_entries) AS visitors,
	(SELECT COUNT(*) FROM system_logs) AS logs`

	cumulativeTotalsSQL = `SELECT
	(SELECT COUNT(*) FROM profiles WHERE created_at < ?) AS users,
	(SELECT COUNT(*) FROM farms WHERE created_at < ?) AS farms,
	(SELECT COUNT(*) FROM visitor_entries WHERE visit_datetime < ?) AS visitors,
	(SELECT COUNT(*) FROM system_logs WHERE created_at < ?) AS logs`

	visitorCountsSQL = `SELECT
	COUNT(*) FILTER (WHERE v.visit_datetime >= ? AND v.visit_datetime < ?) AS today,
	COUNT(*) FILTER (WHERE v.visit_datetime >= ? AND v.visit_datetime < ?) AS yesterday,
	COUNT(*) FILTER (WHERE v.visit_datetime >= ? AND v.visit_datetime < ?) AS this_week,
	COUNT(*) FILTER (WHERE v.visit_datetime >= ? AND v.visit_datetime < ?) AS previous_week,
	COUNT(*) FILTER (WHERE v.visit_datetime >= ? AND v.visit_datetime < ?) AS last_30_days,
	COUNT(*) FILTER (WHERE v.visit_datetime >= ? AND v.visit_datetime < ?) AS previous_30_days,
	COUNT(*) FILTER (WHERE v.disinfection_check AND v.visit_datetime >= ? AND v.visit_datetime < ?) AS disinfected_last_30_days,
	COUNT(*) FILTER (WHERE v.disinfection_check AND v.visit_datetime >= ? AND v.visit_datetime < ?) AS disinfected_previous_30_days
FROM visitor_entries v
WHERE v.visit_datetime >= ? AND %s`

	logLevelsSQL = `SELECT
	COUNT(*) FILTER (WHERE level = 'info') AS info_count,
	COUNT(*) FILTER (WHERE level = 'warn') AS warn_count,
	COUNT(*) FILTER (WHERE level = 'error') AS error_count
FROM system_logs
WHERE created_at >= ? AND created_at < ?`

	farmTypesSQL = `SELECT COALESCE(farm_type, '') AS label, COUNT(*) AS count
FROM farms
GROUP BY 1
ORDER BY count DESC, label`

	userRolesSQL = `SELECT
	(SELECT COUNT(*) FROM profiles WHERE account_type = 'admin') AS admins,
	(SELECT COUNT(DISTINCT user_id) FROM farm_members WHERE role = 'owner') AS owners,
	(SELECT COUNT(DISTINCT user_id) FROM farm_members WHERE role = 'manager') AS managers,
	(SELECT COUNT(DISTINCT user_id) FROM farm_members WHERE role = 'viewer') AS viewers,
	(SELECT COUNT(*) FROM profiles p
		WHERE p.account_type <> 'admin'
		AND NOT EXISTS (SELECT 1 FROM farm_members m WHERE m.user_id = p.id)) AS general`

	farmAddressesSQL = `SELECT COALESCE(farm_address, '') AS label, COUNT(*) AS count
FROM farms
GROUP BY 1`

	recentLogsSQL = `SELECT l.id, COALESCE(l.level, '') AS level, COALESCE(l.action, '') AS action,
	COALESCE(l.message, '') AS message,
	COALESCE(p.name, '') AS user_name, l.created_at
FROM system_logs l
LEFT JOIN profiles p ON p.id = l.user_id
ORDER BY l.created_at DESC
LIMIT ?`

	visitorDailySQL = `SELECT to_char(v.visit_datetime AT TIME ZONE 'Asia/Seoul', 'YYYY-MM-DD') AS day,
	COUNT(*) AS count,
	COUNT(*) FILTER (WHERE v.disinfection_check) AS disinfected
FROM visitor_entries v
WHERE v.visit_datetime >= ? AND v.visit_datetime < ? AND %s
GROUP BY 1
ORDER BY 1`

	visitorPurposesSQL = `SELECT COALESCE(btrim(v.visitor_purpose), '') AS label, COUNT(*) AS count
FROM visitor_entries v
WHERE v.visit_datetime >= ? AND v.visit_datetime < ? AND %s
GROUP BY 1
ORDER BY count DESC, label`

	visitorHoursSQL = `SELECT EXTRACT(HOUR FROM v.visit_datetime AT TIME ZONE 'Asia/Seoul')::int AS bucket, COUNT(*) AS count
FROM visitor_entries v
WHERE v.visit_datetime >= ? AND v.visit_datetime < ? AND %s
GROUP BY 1`

	visitorWeekdaysSQL = `SELECT EXTRACT(DOW FROM v.visit_datetime AT TIME ZONE 'Asia/Seoul')::int AS bucket, COUNT(*) AS count
FROM visitor_entries v
WHERE v.visit_datetime >= ? AND v.visit_datetime < ? AND %s
GROUP BY 1`

	visitorAddressesSQL = `SELECT COALESCE(v.visitor_address, '') AS label, COUNT(*) AS count
FROM visitor_entries v
WHERE v.visit_datetime >= ? AND v.visit_datetime < ? AND %s
GROUP BY 1`
)

// DashboardRepository runs the read-only dashboard queries.
type DashboardRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewDashboardRepository creates a new repository instance.
func NewDashboardRepository(db *gorm.DB, logger *zap.Logger) *DashboardRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardRepository{
		db:             db,
		logger:         logger.Named("dashboard_repository"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// Ping verifies the database connection.
func (r *DashboardRepository) Ping(ctx context.Context) error {
	requestID := logging.RequestIDFromContext(ctx)
	sqlDB, err := r.db.DB()
	if err != nil {
		return logging.NewOperationError("repository.ping", requestID, err)
	}
	return logging.NewOperationError("repository.ping", requestID, sqlDB.PingContext(ctx))
}

// FindProfile loads a profile by id.
func (r *DashboardRepository) FindProfile(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	err := r.executeWithRetry(ctx, "repository.find_profile", logging.RequestIDFromContext(ctx), func() error {
		return r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// VisibleFarmIDs returns the farms userID owns or is a member of, oldest first.
func (r *DashboardRepository) VisibleFarmIDs(ctx context.Context, userID string) ([]string, error) {
	type farmIDRow struct {
		ID string `gorm:"column:id"`
	}
	var rows []farmIDRow
	if err := r.raw(ctx, "repository.visible_farms", &rows, visibleFarmsSQL, userID, userID); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// Totals counts every user, farm, visitor entry and log line.
func (r *DashboardRepository) Totals(ctx context.Context) (Totals, error) {
	var totals Totals
	err := r.raw(ctx, "repository.totals", &totals, totalsSQL)
	return totals, err
}

// CumulativeTotals counts the rows created strictly before asOf.
func (r *DashboardRepository) CumulativeTotals(ctx context.Context, asOf time.Time) (Totals, error) {
	var totals Totals
	err := r.raw(ctx, "repository.cumulative_totals", &totals, cumulativeTotalsSQL, asOf, asOf, asOf, asOf)
	return totals, err
}

// VisitorCounts computes the time-bucketed visitor counts for scope.
func (r *DashboardRepository) VisitorCounts(ctx context.Context, scope Scope, w timewindow.Windows) (VisitorCounts, error) {
	cond, condArgs := scope.Condition("v.farm_id")
	args := make([]interface{}, 0, 17+len(condArgs))
	for _, rng := range []timewindow.Range{
		w.Today, w.Yesterday, w.ThisWeek, w.PreviousWeek,
		w.Last30Days, w.Previous30Days, w.Last30Days, w.Previous30Days,
	} {
		args = append(args, rng.Start, rng.Until())
	}
	args = append(args, earliest(w.Previous30Days.Start, w.PreviousWeek.Start))
	args = append(args, condArgs...)

	var counts VisitorCounts
	err := r.raw(ctx, "repository.visitor_counts", &counts, fmt.Sprintf(visitorCountsSQL, cond), args...)
	return counts, err
}

// LogLevels counts log lines per level inside rng.
func (r *DashboardRepository) LogLevels(ctx context.Context, rng timewindow.Range) (LogLevelCounts, error) {
	var counts LogLevelCounts
	err := r.raw(ctx, "repository.log_levels", &counts, logLevelsSQL, rng.Start, rng.Until())
	return counts, err
}

// FarmTypes groups every farm by its raw farm_type.
func (r *DashboardRepository) FarmTypes(ctx context.Context) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.raw(ctx, "repository.farm_types", &rows, farmTypesSQL)
	return rows, err
}

// UserRoles computes the role distribution.
func (r *DashboardRepository) UserRoles(ctx context.Context) (UserRoleCounts, error) {
	var counts UserRoleCounts
	err := r.raw(ctx, "repository.user_roles", &counts, userRolesSQL)
	return counts, err
}

// FarmAddresses groups every farm by its raw address.
func (r *DashboardRepository) FarmAddresses(ctx context.Context) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.raw(ctx, "repository.farm_addresses", &rows, farmAddressesSQL)
	return rows, err
}

// RecentLogs returns the newest log lines.
func (r *DashboardRepository) RecentLogs(ctx context.Context, limit int) ([]RecentLog, error) {
	var rows []RecentLog
	err := r.raw(ctx, "repository.recent_logs", &rows, recentLogsSQL, limit)
	return rows, err
}

// VisitorDaily counts visitors per KST day inside rng.
func (r *DashboardRepository) VisitorDaily(ctx context.Context, scope Scope, rng timewindow.Range) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.scoped(ctx, "repository.visitor_daily", &rows, visitorDailySQL, scope, rng)
	return rows, err
}

// VisitorPurposes counts visitors per visit purpose inside rng.
func (r *DashboardRepository) VisitorPurposes(ctx context.Context, scope Scope, rng timewindow.Range) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.scoped(ctx, "repository.visitor_purposes", &rows, visitorPurposesSQL, scope, rng)
	return rows, err
}

// VisitorHours counts visitors per KST hour of day inside rng.
func (r *DashboardRepository) VisitorHours(ctx context.Context, scope Scope, rng timewindow.Range) ([]BucketCount, error) {
	var rows []BucketCount
	err := r.scoped(ctx, "repository.visitor_hours", &rows, visitorHoursSQL, scope, rng)
	return rows, err
}

// VisitorWeekdays counts visitors per KST weekday (0 = Sunday) inside rng.
func (r *DashboardRepository) VisitorWeekdays(ctx context.Context, scope Scope, rng timewindow.Range) ([]BucketCount, error) {
	var rows []BucketCount
	err := r.scoped(ctx, "repository.visitor_weekdays", &rows, visitorWeekdaysSQL, scope, rng)
	return rows, err
}

// VisitorAddresses groups visitors by raw address inside rng.
func (r *DashboardRepository) VisitorAddresses(ctx context.Context, scope Scope, rng timewindow.Range) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.scoped(ctx, "repository.visitor_addresses", &rows, visitorAddressesSQL, scope, rng)
	return rows, err
}

func (r *DashboardRepository) scoped(ctx context.Context, operation string, dest interface{}, query string, scope Scope, rng timewindow.Range) error {
	cond, condArgs := scope.Condition("v.farm_id")
	args := append([]interface{}{rng.Start, rng.Until()}, condArgs...)
	return r.raw(ctx, operation, dest, fmt.Sprintf(query, cond), args...)
}

func (r *DashboardRepository) raw(ctx context.Context, operation string, dest interface{}, query string, args ...interface{}) error {
	return r.executeWithRetry(ctx, operation, logging.RequestIDFromContext(ctx), func() error {
		return r.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
	})
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
