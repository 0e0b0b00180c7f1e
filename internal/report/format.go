package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/suykerbuyk/x-heatmap/internal/activity"
	"github.com/suykerbuyk/x-heatmap/internal/dates"
)

const barWidth = 30

// Format renders one year of a HeatmapData as aligned terminal output.
// year 0 selects the default year.
func Format(data *activity.HeatmapData, year int) (string, error) {
	if year == 0 {
		year = data.Year
	}
	acts, s, ok := data.ForYear(year)
	if !ok {
		return "", fmt.Errorf("year %d not in archive (available: %s)", year, joinYears(data.AvailableYears))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Year %d\n", year)

	b.WriteString("\nOverview\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "posts", humanize.Comma(int64(s.TotalTweets)))
	fmt.Fprintf(&b, "  %-20s %d of %d (%.0f%%)\n", "active days", s.ActiveDays, s.TotalDays, activity.ActivePercent(s))
	fmt.Fprintf(&b, "  %-20s %s\n", "engagement", activity.EngagementLabel(s))
	fmt.Fprintf(&b, "  %-20s %s\n", "average per day", humanize.FormatFloat("#,###.##", s.AveragePerDay))

	b.WriteString("\nStreaks\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "longest", plural(s.LongestStreak, "day"))
	fmt.Fprintf(&b, "  %-20s %s\n", "current", plural(s.CurrentStreak, "day"))

	b.WriteString("\nPeaks\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "most active day", formatPeak(acts, s.MostActiveDay))
	fmt.Fprintf(&b, "  %-20s %s\n", "busiest weekday", s.MostActiveDayOfWeek)

	if months := monthTotals(acts); len(months) > 0 {
		b.WriteString("\nMonthly\n")
		peak := 0
		for _, n := range months {
			peak = max(peak, n)
		}
		for i, n := range months {
			fmt.Fprintf(&b, "  %-5s %6s  %s\n", time.Month(i + 1).String()[:3], humanize.Comma(int64(n)), bar(n, peak))
		}
	}

	if len(data.AvailableYears) > 1 {
		fmt.Fprintf(&b, "\nOther years: %s\n", joinYears(without(data.AvailableYears, year)))
	}

	return b.String(), nil
}

// FormatYears renders a one-line summary per available year.
func FormatYears(data *activity.HeatmapData) string {
	var b strings.Builder
	b.WriteString("Years\n")
	if len(data.AvailableYears) == 0 {
		b.WriteString("  No activity.\n")
		return b.String()
	}
	for _, y := range data.AvailableYears {
		s := data.AllYearStats[y]
		fmt.Fprintf(&b, "  %-6d %8s posts   %3d active days   %s\n",
			y, humanize.Comma(int64(s.TotalTweets)), s.ActiveDays, activity.EngagementLabel(s))
	}
	fmt.Fprintf(&b, "\n  %-6s %8s posts\n", "total", humanize.Comma(int64(data.TotalRecords())))
	return b.String()
}

func formatPeak(acts []activity.DailyActivity, date string) string {
	if date == "" {
		return "-"
	}
	count := 0
	for _, a := range acts {
		if a.Date == date {
			count = a.Count
			break
		}
	}
	label := date
	if t, err := time.Parse(dates.KeyLayout, date); err == nil {
		label = t.Format("Mon Jan 2, 2006")
	}
	return fmt.Sprintf("%s (%s)", label, plural(count, "post"))
}

// monthTotals returns twelve monthly sums, or nil for an empty sequence.
func monthTotals(acts []activity.DailyActivity) []int {
	if len(acts) == 0 {
		return nil
	}
	months := make([]int, 12)
	for _, a := range acts {
		t, err := time.Parse(dates.KeyLayout, a.Date)
		if err != nil {
			continue
		}
		months[t.Month()-1] += a.Count
	}
	return months
}

func bar(n, peak int) string {
	if n == 0 || peak == 0 {
		return ""
	}
	w := max(n*barWidth/peak, 1)
	return strings.Repeat("#", w)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return humanize.Comma(int64(n)) + " " + unit + "s"
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprint(y)
	}
	return strings.Join(parts, ", ")
}

func without(years []int, drop int) []int {
	out := make([]int, 0, len(years))
	for _, y := range years {
		if y != drop {
			out = append(out, y)
		}
	}
	return out
}
