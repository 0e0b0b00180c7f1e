package activity

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/suykerbuyk/x-heatmap/internal/dates"
	"github.com/suykerbuyk/x-heatmap/internal/tweets"
)

// civilDate identifies a calendar day independent of any string encoding.
type civilDate struct {
	Year  int
	Month time.Month
	Day   int
}

func civilOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{Year: y, Month: m, Day: d}
}

func (c civilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.Year, int(c.Month), c.Day)
}

// Aggregator buckets records into per-day activity and computes per-year stats.
type Aggregator struct {
	Parser   *dates.Parser
	Location *time.Location
	// Workers bounds the per-year fan-out; <= 0 means GOMAXPROCS.
	Workers int
	Now     func() time.Time
}

// NewAggregator returns an Aggregator using parser's location.
func NewAggregator(parser *dates.Parser, workers int) *Aggregator {
	a := &Aggregator{Parser: parser, Workers: workers, Now: time.Now}
	if parser != nil {
		a.Location = parser.Location
	}
	return a
}

func (a *Aggregator) location() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.Local
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Aggregate groups records by calendar day in the aggregator's location and
// materializes a full activity sequence for every year that has records.
func (a *Aggregator) Aggregate(ctx context.Context, records []tweets.Record) (*HeatmapData, error) {
	loc := a.location()
	parser := a.Parser
	if parser == nil {
		parser = dates.NewParser(loc, zerolog.Nop())
	}

	byYear := make(map[int]map[civilDate]*DailyActivity)
	for i, r := range records {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		key := civilOf(parser.Parse(r.CreatedAt()).In(loc))
		days, ok := byYear[key.Year]
		if !ok {
			days = make(map[civilDate]*DailyActivity)
			byYear[key.Year] = days
		}
		day, ok := days[key]
		if !ok {
			day = &DailyActivity{Date: key.String()}
			days[key] = day
		}
		day.Tweets = append(day.Tweets, r)
		day.Count++
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	sequences := make([][]DailyActivity, len(years))
	stats := make([]Stats, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, year := range years {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sequences[i] = materialize(year, byYear[year], loc)
			stats[i] = ComputeStats(sequences[i], year)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &HeatmapData{
		AvailableYears:    years,
		AllYearActivities: make(map[int][]DailyActivity, len(years)),
		AllYearStats:      make(map[int]Stats, len(years)),
	}
	for i, year := range years {
		data.AllYearActivities[year] = sequences[i]
		data.AllYearStats[year] = stats[i]
	}

	if len(years) > 0 {
		data.Year = years[0]
		data.Activities = sequences[0]
		data.Stats = stats[0]
	} else {
		data.Year = a.now().In(loc).Year()
		data.Activities = []DailyActivity{}
		data.Stats = ComputeStats(nil, data.Year)
	}
	return data, nil
}

func (a *Aggregator) workers() int {
	if a.Workers > 0 {
		return a.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// materialize returns one entry per day of year, reusing buckets where present.
func materialize(year int, buckets map[civilDate]*DailyActivity, loc *time.Location) []DailyActivity {
	days := dates.YearDateRange(year, loc)
	seq := make([]DailyActivity, len(days))
	for i, d := range days {
		if b, ok := buckets[civilOf(d)]; ok {
			seq[i] = *b
			continue
		}
		seq[i] = DailyActivity{Date: dates.FormatDateKey(d), Tweets: []tweets.Record{}}
	}
	return seq
}
