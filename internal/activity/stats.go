package activity

import (
	"math"
	"strconv"
	"time"

	"github.com/suykerbuyk/x-heatmap/internal/dates"
)

// ComputeStats derives the summary for a materialized year sequence.
// totalDays is len(activities); an empty sequence yields zero averages.
func ComputeStats(activities []DailyActivity, year int) Stats {
	s := Stats{
		TotalDays: len(activities),
		YearRange: strconv.Itoa(year),
	}

	var (
		bestDate  string
		bestCount int
		weekdays  [7]int
	)
	counts := make([]dates.DayCount, len(activities))

	for i, a := range activities {
		s.TotalTweets += a.Count
		if a.Count > 0 {
			s.ActiveDays++
		}
		// strict > keeps the earliest day on ties
		if a.Count > bestCount {
			bestDate, bestCount = a.Date, a.Count
		}
		if t, err := time.Parse(dates.KeyLayout, a.Date); err == nil {
			weekdays[t.Weekday()] += a.Count
		}
		counts[i] = dates.DayCount{Date: a.Date, Count: a.Count}
	}

	streaks := dates.ComputeStreaks(counts)
	s.LongestStreak = streaks.Longest
	s.CurrentStreak = streaks.Current
	s.MostActiveDay = bestDate

	if s.TotalDays > 0 {
		s.AveragePerDay = math.Round(float64(s.TotalTweets)/float64(s.TotalDays)*100) / 100
	}

	top := 0
	for i := 1; i < len(weekdays); i++ {
		if weekdays[i] > weekdays[top] {
			top = i
		}
	}
	s.MostActiveDayOfWeek = dates.DayOfWeekName(top)

	return s
}

// CalendarDays annotates each day with its level relative to the busiest day.
func CalendarDays(activities []DailyActivity) []CalendarDay {
	maxCount := 0
	for _, a := range activities {
		maxCount = max(maxCount, a.Count)
	}
	out := make([]CalendarDay, len(activities))
	for i, a := range activities {
		out[i] = CalendarDay{DailyActivity: a, Level: dates.ActivityLevel(a.Count, maxCount)}
	}
	return out
}

// ActivePercent is the share of days with at least one record, 0..100.
func ActivePercent(s Stats) float64 {
	if s.TotalDays == 0 {
		return 0
	}
	return float64(s.ActiveDays) / float64(s.TotalDays) * 100
}

// EngagementLabel names the engagement tier for a year's active-day share.
func EngagementLabel(s Stats) string {
	pct := ActivePercent(s)
	switch {
	case pct >= 80:
		return "Very Active"
	case pct >= 60:
		return "Active"
	case pct >= 40:
		return "Moderate"
	case pct >= 20:
		return "Light"
	default:
		return "Minimal"
	}
}
