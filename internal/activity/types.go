package activity

import "github.com/suykerbuyk/x-heatmap/internal/tweets"

// DailyActivity holds the records authored on one calendar day.
// Count always equals len(Tweets).
type DailyActivity struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Tweets []tweets.Record `json:"tweets"`
}

// Stats summarizes one year's activity sequence.
type Stats struct {
	TotalTweets         int     `json:"totalTweets"`
	LongestStreak       int     `json:"longestStreak"`
	CurrentStreak       int     `json:"currentStreak"`
	MostActiveDay       string  `json:"mostActiveDay"`
	AveragePerDay       float64 `json:"averagePerDay"`
	TotalDays           int     `json:"totalDays"`
	ActiveDays          int     `json:"activeDays"`
	MostActiveDayOfWeek string  `json:"mostActiveDayOfWeek"`
	YearRange           string  `json:"yearRange"`
}

// CalendarDay is a DailyActivity with its intensity level (0..4).
type CalendarDay struct {
	DailyActivity
	Level int `json:"level"`
}

// HeatmapData is the complete result of one pipeline run.
type HeatmapData struct {
	Activities        []DailyActivity         `json:"activities"`
	Stats             Stats                   `json:"stats"`
	Year              int                     `json:"year"`
	AvailableYears    []int                   `json:"availableYears"`
	AllYearActivities map[int][]DailyActivity `json:"allYearActivities"`
	AllYearStats      map[int]Stats           `json:"allYearStats"`
}

// ForYear returns the materialized sequence and stats for year.
func (d *HeatmapData) ForYear(year int) ([]DailyActivity, Stats, bool) {
	if acts, ok := d.AllYearActivities[year]; ok {
		return acts, d.AllYearStats[year], true
	}
	if year == d.Year {
		return d.Activities, d.Stats, true
	}
	return nil, Stats{}, false
}

// TotalRecords sums the record counts of every materialized year.
func (d *HeatmapData) TotalRecords() int {
	total := 0
	for _, s := range d.AllYearStats {
		total += s.TotalTweets
	}
	return total
}
