package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/example/farm-dashboard/internal/repository"
	"github.com/example/farm-dashboard/internal/timewindow"
)

// aggregates holds the raw results of every dashboard query. Each task writes
// a disjoint set of fields.
type aggregates struct {
	totals           repository.Totals
	visitors         repository.VisitorCounts
	logLevels        repository.LogLevelCounts
	farmTypes        []repository.LabelCount
	roles            repository.UserRoleCounts
	farmAddresses    []repository.LabelCount
	monthly          []monthlyTotals
	thisMonth        repository.Totals
	lastMonth        repository.Totals
	recent           []repository.RecentLog
	daily            []repository.DailyCount
	purposes         []repository.LabelCount
	hours            []repository.BucketCount
	weekdays         []repository.BucketCount
	visitorAddresses []repository.LabelCount
}

type monthlyTotals struct {
	month  timewindow.Month
	totals repository.Totals
}

// CalculateTrend is the rounded percentage change from previous to current.
// A zero previous value yields 0.
func CalculateTrend(current, previous int64) int {
	if previous == 0 {
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// DisinfectionRate is the share of disinfected visits in percent, rounded to
// one decimal and clamped to [0, 100].
func DisinfectionRate(disinfected, total int64) float64 {
	if total <= 0 {
		return 0
	}
	rate := math.Round(float64(disinfected)/float64(total)*1000) / 10
	return math.Max(0, math.Min(100, rate))
}

// Percentage is count as a share of total, unrounded.
func Percentage(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// assemble shapes raw aggregates into the response payload.
func assemble(a aggregates, now time.Time) *Dashboard {
	d := &Dashboard{
		TotalUsers:    int(a.totals.Users),
		TotalFarms:    int(a.totals.Farms),
		TotalVisitors: int(a.totals.Visitors),
		TotalLogs:     int(a.totals.Logs),
		GeneratedAt:   now.UTC(),
	}

	d.Trends = Trends{
		UserGrowth:    CalculateTrend(a.thisMonth.Users, a.lastMonth.Users),
		FarmGrowth:    CalculateTrend(a.thisMonth.Farms, a.lastMonth.Farms),
		VisitorGrowth: CalculateTrend(a.thisMonth.Visitors, a.lastMonth.Visitors),
		LogGrowth:     CalculateTrend(a.thisMonth.Logs, a.lastMonth.Logs),
	}
	d.Trends.Directions = TrendDirections{
		Users:    GrowthDirection(d.Trends.UserGrowth),
		Farms:    GrowthDirection(d.Trends.FarmGrowth),
		Visitors: GrowthDirection(d.Trends.VisitorGrowth),
		Logs:     GrowthDirection(d.Trends.LogGrowth),
	}

	d.FarmTypeData = farmTypeStats(a.farmTypes)
	d.UserRoleData = userRoleStats(a.roles)
	d.RegionData = farmRegionStats(a.farmAddresses)
	d.MonthlyData = monthlyStats(a.monthly)
	d.SystemUsageData = systemUsageStats(a.logLevels)
	d.RecentActivities = activities(a.recent)

	d.Stats = visitorSummary(a.visitors)
	d.VisitorTrend = visitorTrend(a.daily, timewindow.Resolve(now).Last30Days)
	total := a.visitors.Last30Days
	d.PurposeStats = purposeStats(a.purposes, total)
	d.TimeStats = timeStats(a.hours)
	d.WeekdayStats = weekdayStats(a.weekdays, total)
	d.RegionStats = visitorRegionStats(a.visitorAddresses, total)
	return d
}

func visitorSummary(v repository.VisitorCounts) VisitorSummary {
	rate := DisinfectionRate(v.DisinfectedLast30, v.Last30Days)
	summary := VisitorSummary{
		TotalVisitors:     int(v.Last30Days),
		TodayVisitors:     int(v.Today),
		WeeklyVisitors:    int(v.ThisWeek),
		DisinfectionRate:  rate,
		DisinfectionGrade: DisinfectionGrade(rate),
		Trends: VisitorTrends{
			TotalVisitorsTrend:  CalculateTrend(v.Last30Days, v.Previous30Days),
			TodayVisitorsTrend:  CalculateTrend(v.Today, v.Yesterday),
			WeeklyVisitorsTrend: CalculateTrend(v.ThisWeek, v.PreviousWeek),
		},
	}
	if v.Previous30Days > 0 {
		previous := DisinfectionRate(v.DisinfectedPrevious30, v.Previous30Days)
		summary.Trends.DisinfectionTrend = math.Round((rate-previous)*10) / 10
	}
	return summary
}

func farmTypeStats(rows []repository.LabelCount) []FarmTypeStat {
	index := make(map[string]int)
	stats := make([]FarmTypeStat, 0, len(rows))
	for _, row := range rows {
		key, label := FarmTypeLabel(row.Label)
		if i, ok := index[key]; ok {
			stats[i].Count += int(row.Count)
			continue
		}
		index[key] = len(stats)
		stats = append(stats, FarmTypeStat{Type: key, Label: label, Count: int(row.Count)})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Type < stats[j].Type
	})
	return stats
}

func userRoleStats(r repository.UserRoleCounts) []UserRoleStat {
	ordered := []struct {
		role  string
		count int64
	}{
		{repository.AccountTypeAdmin, r.Admins},
		{repository.RoleOwner, r.Owners},
		{repository.RoleManager, r.Managers},
		{repository.RoleViewer, r.Viewers},
		{roleGeneral, r.General},
	}
	stats := make([]UserRoleStat, 0, len(ordered))
	for _, o := range ordered {
		if o.count == 0 {
			continue
		}
		stats = append(stats, UserRoleStat{Role: o.role, Label: RoleLabel(o.role), Count: int(o.count)})
	}
	return stats
}

// groupRegions folds address counts into region counts, largest first.
func groupRegions(rows []repository.LabelCount) []RegionStat {
	index := make(map[string]int)
	stats := make([]RegionStat, 0, len(rows))
	for _, row := range rows {
		region := ExtractRegion(row.Label)
		if i, ok := index[region]; ok {
			stats[i].Count += int(row.Count)
			continue
		}
		index[region] = len(stats)
		stats = append(stats, RegionStat{Region: region, Count: int(row.Count)})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Region < stats[j].Region
	})
	return stats
}

func farmRegionStats(rows []repository.LabelCount) []RegionStat {
	return groupRegions(rows)
}

func visitorRegionStats(rows []repository.LabelCount, total int64) []VisitorRegionStat {
	regions := groupRegions(rows)
	stats := make([]VisitorRegionStat, 0, len(regions))
	for _, r := range regions {
		stats = append(stats, VisitorRegionStat{
			Region:     r.Region,
			Count:      r.Count,
			Percentage: Percentage(int64(r.Count), total),
		})
	}
	return stats
}

func monthlyStats(rows []monthlyTotals) []MonthlyStat {
	stats := make([]MonthlyStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, MonthlyStat{
			Month: row.month.Label,
			Users: int(row.totals.Users),
			Farms: int(row.totals.Farms),
		})
	}
	return stats
}

func systemUsageStats(l repository.LogLevelCounts) []SystemUsageStat {
	return []SystemUsageStat{
		{Level: "info", Label: LogLevelLabel("info"), Count: int(l.Info)},
		{Level: "warn", Label: LogLevelLabel("warn"), Count: int(l.Warn)},
		{Level: "error", Label: LogLevelLabel("error"), Count: int(l.Error)},
	}
}

func activities(rows []repository.RecentLog) []Activity {
	list := make([]Activity, 0, len(rows))
	for _, row := range rows {
		list = append(list, Activity{
			ID:        row.ID,
			Level:     row.Level,
			Action:    row.Action,
			Message:   row.Message,
			UserName:  row.UserName,
			Timestamp: row.CreatedAt.UTC(),
		})
	}
	return list
}

// visitorTrend is dense over rng: one point per KST day, oldest first. Rows
// for days outside rng are dropped.
func visitorTrend(rows []repository.DailyCount, rng timewindow.Range) []VisitorTrendPoint {
	byDay := make(map[string]repository.DailyCount, len(rows))
	for _, row := range rows {
		byDay[row.Day] = row
	}
	days := timewindow.Days(rng)
	points := make([]VisitorTrendPoint, 0, len(days))
	for _, day := range days {
		row := byDay[day]
		points = append(points, VisitorTrendPoint{
			Date:        day,
			Visitors:    int(row.Count),
			Disinfected: int(row.Disinfected),
		})
	}
	return points
}

func purposeStats(rows []repository.LabelCount, total int64) []PurposeStat {
	index := make(map[string]int)
	stats := make([]PurposeStat, 0, len(rows))
	for _, row := range rows {
		purpose := PurposeLabel(row.Label)
		if i, ok := index[purpose]; ok {
			stats[i].Count += int(row.Count)
			continue
		}
		index[purpose] = len(stats)
		stats = append(stats, PurposeStat{Purpose: purpose, Count: int(row.Count)})
	}
	for i := range stats {
		stats[i].Percentage = Percentage(int64(stats[i].Count), total)
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats
}

const hoursPerDay = 24

// timeStats is dense: one entry per hour even when no visit fell in it.
func timeStats(rows []repository.BucketCount) []TimeStat {
	var counts [hoursPerDay]int
	for _, row := range rows {
		if row.Bucket >= 0 && row.Bucket < hoursPerDay {
			counts[row.Bucket] += int(row.Count)
		}
	}
	stats := make([]TimeStat, hoursPerDay)
	for h := range stats {
		stats[h] = TimeStat{Hour: fmt.Sprintf("%02d:00", h), Count: counts[h]}
	}
	return stats
}

// weekdayStats is dense and Sunday first.
func weekdayStats(rows []repository.BucketCount, total int64) []WeekdayStat {
	var counts [len(weekdayLabels)]int
	for _, row := range rows {
		if row.Bucket >= 0 && row.Bucket < len(counts) {
			counts[row.Bucket] += int(row.Count)
		}
	}
	stats := make([]WeekdayStat, len(counts))
	for i := range stats {
		stats[i] = WeekdayStat{
			Day:        WeekdayLabel(i),
			Index:      i,
			Count:      counts[i],
			Percentage: Percentage(int64(counts[i]), total),
		}
	}
	return stats
}

// emptyDashboard is the payload for a caller with no visible farms.
func emptyDashboard(now time.Time) *Dashboard {
	return assemble(aggregates{}, now)
}
