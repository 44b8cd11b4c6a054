// Package timewindow computes the KST calendar ranges used to filter
// dashboard aggregates. All ranges are returned in UTC.
package timewindow

import "time"

// KST is Korea Standard Time. Korea observes no daylight saving, so a fixed
// offset is exact and avoids depending on the host tzdata.
var KST = time.FixedZone("KST", 9*60*60)

const lastMillisecond = time.Millisecond

// Range is a closed interval [Start, End] where End is the last millisecond
// that still belongs to the range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Until returns the exclusive upper bound, suitable for `< ?` filters.
func (r Range) Until() time.Time {
	return r.End.Add(lastMillisecond)
}

// Windows holds every range the dashboard filters on.
type Windows struct {
	Now            time.Time
	Today          Range
	Yesterday      Range
	ThisWeek       Range
	PreviousWeek   Range
	Last30Days     Range
	Previous30Days Range
}

// Resolve derives the dashboard windows for the reference instant now.
// Weeks start on Sunday, matching the 0=Sunday weekday histogram.
func Resolve(now time.Time) Windows {
	todayStart := StartOfDay(now)
	today := span(todayStart, 1)

	weekStart := todayStart.AddDate(0, 0, -int(todayStart.In(KST).Weekday()))
	last30Start := todayStart.AddDate(0, 0, -29)

	return Windows{
		Now:            now.UTC(),
		Today:          today,
		Yesterday:      span(todayStart.AddDate(0, 0, -1), 1),
		ThisWeek:       Range{Start: weekStart.UTC(), End: today.End},
		PreviousWeek:   span(weekStart.AddDate(0, 0, -7), 7),
		Last30Days:     Range{Start: last30Start.UTC(), End: today.End},
		Previous30Days: span(last30Start.AddDate(0, 0, -30), 30),
	}
}

// StartOfDay returns midnight KST of the KST calendar day containing t.
// The result is expressed in the KST location so AddDate walks KST days.
func StartOfDay(t time.Time) time.Time {
	local := t.In(KST)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, KST)
}

// StartOfMonth returns the first instant of the KST month containing t.
func StartOfMonth(t time.Time) time.Time {
	local := t.In(KST)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, KST)
}

// span covers days whole KST days starting at start (a KST midnight).
func span(start time.Time, days int) Range {
	end := start.AddDate(0, 0, days).Add(-lastMillisecond)
	return Range{Start: start.UTC(), End: end.UTC()}
}

// Month is a KST calendar month and the exclusive instant it ends at.
type Month struct {
	Label string
	Start time.Time
	End   time.Time
}

// LastMonths returns the n KST calendar months ending with the month of now,
// oldest first. End is the first instant of the following month in UTC.
func LastMonths(now time.Time, n int) []Month {
	if n <= 0 {
		return nil
	}
	current := StartOfMonth(now)
	months := make([]Month, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		months = append(months, Month{
			Label: start.Format("2006-01"),
			Start: start.UTC(),
			End:   start.AddDate(0, 1, 0).UTC(),
		})
	}
	return months
}

// DayLabel formats t as the KST calendar date it falls on.
func DayLabel(t time.Time) string {
	return t.In(KST).Format("2006-01-02")
}

// Days lists the KST date labels covered by r, in order.
func Days(r Range) []string {
	var labels []string
	for d := StartOfDay(r.Start); d.Before(r.Until()); d = d.AddDate(0, 0, 1) {
		labels = append(labels, d.Format("2006-01-02"))
	}
	return labels
}
