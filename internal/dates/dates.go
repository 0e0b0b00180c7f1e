package dates

import (
	"sort"
	"time"
)

// KeyLayout is the date key format used for daily buckets.
const KeyLayout = "2006-01-02"

// DayCount is a (date key, count) pair used for streak computation.
type DayCount struct {
	Date  string
	Count int
}

// Streaks holds consecutive-active-day run lengths.
type Streaks struct {
	Current int
	Longest int
}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// FormatDateKey formats t as YYYY-MM-DD in t's own location.
func FormatDateKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// DaysInYear returns 366 for Gregorian leap years, 365 otherwise.
func DaysInYear(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}

// YearDateRange returns midnight of every day from Jan 1 to Dec 31 of year in loc.
func YearDateRange(year int, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	days := make([]time.Time, 0, DaysInYear(year))
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, loc); d.Year() == year; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ActivityLevel buckets count relative to maxCount into 0..4.
func ActivityLevel(count, maxCount int) int {
	if count == 0 || maxCount == 0 {
		return 0
	}
	pct := float64(count) / float64(maxCount)
	switch {
	case pct <= 0.25:
		return 1
	case pct <= 0.5:
		return 2
	case pct <= 0.75:
		return 3
	default:
		return 4
	}
}

// DayOfWeekName maps 0..6 to Sunday..Saturday and anything else to "Unknown".
func DayOfWeekName(index int) string {
	if index < 0 || index >= len(weekdayNames) {
		return "Unknown"
	}
	return weekdayNames[index]
}

// ComputeStreaks sorts a copy of days by date and returns the longest run of
// active days and the run ending at the last entry.
func ComputeStreaks(days []DayCount) Streaks {
	if len(days) == 0 {
		return Streaks{}
	}

	sorted := make([]DayCount, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	var s Streaks
	run := 0
	for _, d := range sorted {
		if d.Count > 0 {
			run++
			s.Longest = max(s.Longest, run)
		} else {
			run = 0
		}
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Count <= 0 {
			break
		}
		s.Current++
	}

	return s
}
