package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suykerbuyk/x-heatmap/internal/dates"
)

func seq(year int, counts map[string]int) []DailyActivity {
	var out []DailyActivity
	for _, d := range dates.YearDateRange(year, nil) {
		key := dates.FormatDateKey(d)
		out = append(out, DailyActivity{Date: key, Count: counts[key]})
	}
	return out
}

func TestComputeStats_ZeroYear(t *testing.T) {
	s := ComputeStats(seq(2023, nil), 2023)
	assert.Equal(t, Stats{
		TotalDays:           365,
		MostActiveDayOfWeek: "Sunday",
		YearRange:           "2023",
	}, s)
}

func TestComputeStats_MostActiveDayTieBreak(t *testing.T) {
	s := ComputeStats(seq(2024, map[string]int{
		"2024-03-01": 5,
		"2024-02-01": 5,
		"2024-04-01": 2,
	}), 2024)
	assert.Equal(t, "2024-02-01", s.MostActiveDay)
}

func TestComputeStats_WeekdayTieBreak(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-02 a Tuesday
	s := ComputeStats(seq(2024, map[string]int{
		"2024-01-02": 3,
		"2024-01-01": 3,
	}), 2024)
	assert.Equal(t, "Monday", s.MostActiveDayOfWeek)
}

func TestComputeStats_Average(t *testing.T) {
	s := ComputeStats(seq(2023, map[string]int{"2023-05-05": 100}), 2023)
	assert.Equal(t, 0.27, s.AveragePerDay)

	assert.Equal(t, 0.0, ComputeStats(nil, 2023).AveragePerDay)
}

func TestComputeStats_Streaks(t *testing.T) {
	acts := []DailyActivity{
		{Date: "2024-01-01", Count: 1},
		{Date: "2024-01-02", Count: 0},
		{Date: "2024-01-03", Count: 2},
		{Date: "2024-01-04", Count: 3},
		{Date: "2024-01-05", Count: 0},
		{Date: "2024-01-06", Count: 1},
		{Date: "2024-01-07", Count: 1},
		{Date: "2024-01-08", Count: 1},
	}
	s := ComputeStats(acts, 2024)
	assert.Equal(t, 3, s.LongestStreak)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 9, s.TotalTweets)
	assert.Equal(t, 6, s.ActiveDays)
	assert.Equal(t, "2024-01-04", s.MostActiveDay)
	assert.Equal(t, 1.13, s.AveragePerDay)
}

func TestCalendarDays(t *testing.T) {
	days := CalendarDays([]DailyActivity{
		{Date: "2024-01-01", Count: 0},
		{Date: "2024-01-02", Count: 1},
		{Date: "2024-01-03", Count: 2},
		{Date: "2024-01-04", Count: 3},
		{Date: "2024-01-05", Count: 4},
	})
	levels := make([]int, len(days))
	for i, d := range days {
		levels[i] = d.Level
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, levels)
	assert.Equal(t, "2024-01-03", days[2].Date)

	for _, d := range CalendarDays(seq(2023, nil)) {
		assert.Equal(t, 0, d.Level)
	}
}

func TestEngagementLabel(t *testing.T) {
	tests := []struct {
		active, total int
		want          string
	}{
		{80, 100, "Very Active"},
		{60, 100, "Active"},
		{59, 100, "Moderate"},
		{40, 100, "Moderate"},
		{20, 100, "Light"},
		{1, 100, "Minimal"},
		{0, 0, "Minimal"},
	}
	for _, tt := range tests {
		got := EngagementLabel(Stats{ActiveDays: tt.active, TotalDays: tt.total})
		assert.Equal(t, tt.want, got, "%d/%d", tt.active, tt.total)
	}
}
