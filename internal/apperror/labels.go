package apperror

// resource names used by the dashboard and their display labels
var resourceLabels = map[string]string{
	"dashboard":         "대시보드",
	"dashboardTotals":   "전체 통계",
	"farmScope":         "농장 접근 범위",
	"visitorCounts":     "방문자 통계",
	"systemUsage":       "시스템 사용 현황",
	"farmTypes":         "농장 유형 분포",
	"userRoles":         "사용자 역할 분포",
	"farmRegions":       "농장 지역 분포",
	"monthlyTrend":      "월별 추이",
	"monthlyComparison": "전월 대비 통계",
	"recentActivities":  "최근 활동",
	"visitorTrend":      "방문자 추이",
	"purposeStats":      "방문 목적 통계",
	"timeStats":         "시간대별 통계",
	"weekdayStats":      "요일별 통계",
	"regionStats":       "지역별 통계",
	"profile":           "사용자",
	"farm":              "농장",
	"visitor":           "방문자",
	"systemLog":         "시스템 로그",
	"dashboardReport":   "대시보드 보고서",
}

var fieldLabels = map[string]string{
	"farmId": "농장 ID",
	"userId": "사용자 ID",
}

func resourceLabel(resource string) string {
	if label, ok := resourceLabels[resource]; ok {
		return label
	}
	return "데이터"
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	if field != "" {
		return field
	}
	return "요청"
}
