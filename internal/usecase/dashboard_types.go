package usecase

import "time"

// Dashboard is the chart-ready payload served by GET /api/admin/dashboard.
type Dashboard struct {
	TotalUsers       int                 `json:"totalUsers"`
	TotalFarms       int                 `json:"totalFarms"`
	TotalVisitors    int                 `json:"totalVisitors"`
	TotalLogs        int                 `json:"totalLogs"`
	Trends           Trends              `json:"trends"`
	FarmTypeData     []FarmTypeStat      `json:"farmTypeData"`
	UserRoleData     []UserRoleStat      `json:"userRoleData"`
	RegionData       []RegionStat        `json:"regionData"`
	MonthlyData      []MonthlyStat       `json:"monthlyData"`
	SystemUsageData  []SystemUsageStat   `json:"systemUsageData"`
	RecentActivities []Activity          `json:"recentActivities"`
	Stats            VisitorSummary      `json:"dashboardStats"`
	VisitorTrend     []VisitorTrendPoint `json:"visitorTrend"`
	PurposeStats     []PurposeStat       `json:"purposeStats"`
	TimeStats        []TimeStat          `json:"timeStats"`
	WeekdayStats     []WeekdayStat       `json:"weekdayStats"`
	RegionStats      []VisitorRegionStat `json:"regionStats"`
	GeneratedAt      time.Time           `json:"generatedAt"`
}

// Trends are month-over-month growth percentages of the global totals.
type Trends struct {
	UserGrowth    int             `json:"userGrowth"`
	FarmGrowth    int             `json:"farmGrowth"`
	VisitorGrowth int             `json:"visitorGrowth"`
	LogGrowth     int             `json:"logGrowth"`
	Directions    TrendDirections `json:"directions"`
}

// TrendDirections carries the growth arrow for each trend.
type TrendDirections struct {
	Users    string `json:"users"`
	Farms    string `json:"farms"`
	Visitors string `json:"visitors"`
	Logs     string `json:"logs"`
}

// FarmTypeStat is one farm type slice; Label is the Korean display name.
type FarmTypeStat struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UserRoleStat counts users holding Role.
type UserRoleStat struct {
	Role  string `json:"role"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RegionStat counts farms per province.
type RegionStat struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// MonthlyStat holds cumulative users and farms at the end of Month (YYYY-MM).
type MonthlyStat struct {
	Month string `json:"month"`
	Users int    `json:"users"`
	Farms int    `json:"farms"`
}

// SystemUsageStat counts log lines of one level over the last 30 days.
type SystemUsageStat struct {
	Level string `json:"level"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Activity is one of the most recent system log lines.
type Activity struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
}

// VisitorSummary is the scoped visitor card block. TotalVisitors covers the
// last 30 KST days and is the denominator of every visitor percentage.
type VisitorSummary struct {
	TotalVisitors     int           `json:"totalVisitors"`
	TodayVisitors     int           `json:"todayVisitors"`
	WeeklyVisitors    int           `json:"weeklyVisitors"`
	DisinfectionRate  float64       `json:"disinfectionRate"`
	DisinfectionGrade string        `json:"disinfectionGrade"`
	Trends            VisitorTrends `json:"trends"`
}

// VisitorTrends compare each visitor figure with the preceding period.
// DisinfectionTrend is a difference in percentage points.
type VisitorTrends struct {
	TotalVisitorsTrend  int     `json:"totalVisitorsTrend"`
	TodayVisitorsTrend  int     `json:"todayVisitorsTrend"`
	WeeklyVisitorsTrend int     `json:"weeklyVisitorsTrend"`
	DisinfectionTrend   float64 `json:"disinfectionTrend"`
}

// VisitorTrendPoint is one KST day of the visitor trend. Days without
// visitors are present with zero counts.
type VisitorTrendPoint struct {
	Date        string `json:"date"`
	Visitors    int    `json:"visitors"`
	Disinfected int    `json:"disinfected"`
}

// PurposeStat is a visit purpose and its share of TotalVisitors.
type PurposeStat struct {
	Purpose    string  `json:"purpose"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TimeStat is an hour-of-day bucket, labelled "HH:00".
type TimeStat struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// WeekdayStat is one KST weekday. Index 0 is Sunday.
type WeekdayStat struct {
	Day        string  `json:"day"`
	Index      int     `json:"index"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// VisitorRegionStat counts visitors per province.
type VisitorRegionStat struct {
	Region     string  `json:"region"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
