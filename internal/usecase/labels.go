package usecase

import (
	"strings"

	"github.com/example/farm-dashboard/internal/repository"
)

const otherLabel = "기타"

var farmTypeLabels = map[string]string{
	"livestock": "축산",
	"cattle":    "한우",
	"dairy":     "낙농",
	"swine":     "양돈",
	"pig":       "양돈",
	"poultry":   "가금",
	"chicken":   "양계",
	"duck":      "오리",
	"horse":     "말",
	"goat":      "염소",
	"other":     otherLabel,
}

// FarmTypeLabel translates a stored farm type. Unknown or empty types fall
// back to the "other" bucket.
func FarmTypeLabel(farmType string) (key, label string) {
	key = strings.ToLower(strings.TrimSpace(farmType))
	if label, ok := farmTypeLabels[key]; ok {
		return key, label
	}
	return "other", otherLabel
}

const roleGeneral = "general"

var roleLabels = map[string]string{
	repository.AccountTypeAdmin: "시스템 관리자",
	repository.RoleOwner:        "농장 소유자",
	repository.RoleManager:      "농장 관리자",
	repository.RoleViewer:       "농장 조회자",
	roleGeneral:                 "일반 사용자",
}

// RoleLabel translates an account type or farm role.
func RoleLabel(role string) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return otherLabel
}

var weekdayLabels = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// WeekdayLabel names a weekday index where 0 is Sunday.
func WeekdayLabel(index int) string {
	if index < 0 || index >= len(weekdayLabels) {
		return "알 수 없음"
	}
	return weekdayLabels[index]
}

var logLevelLabels = map[string]string{
	"info":  "정상",
	"warn":  "경고",
	"error": "오류",
}

// LogLevelLabel translates a system log level.
func LogLevelLabel(level string) string {
	if label, ok := logLevelLabels[level]; ok {
		return label
	}
	return otherLabel
}

// ExtractRegion takes the first whitespace-separated token of an address as a
// coarse region. Empty or blank addresses map to "기타".
func ExtractRegion(address string) string {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return otherLabel
	}
	return fields[0]
}

// PurposeLabel normalizes a visit purpose, mapping blanks to "기타".
func PurposeLabel(purpose string) string {
	if p := strings.TrimSpace(purpose); p != "" {
		return p
	}
	return otherLabel
}

// DisinfectionGrade grades a disinfection rate in percent.
func DisinfectionGrade(rate float64) string {
	switch {
	case rate >= 95:
		return "우수"
	case rate >= 80:
		return "양호"
	case rate >= 60:
		return "보통"
	default:
		return "미흡"
	}
}

// Growth directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// GrowthDirection turns a trend percentage into an arrow.
func GrowthDirection(trend int) string {
	switch {
	case trend > 0:
		return DirectionUp
	case trend < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}
