// Package store exports heatmap data into a local SQLite file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/suykerbuyk/x-heatmap/internal/activity"
	"github.com/suykerbuyk/x-heatmap/internal/dates"
	"github.com/suykerbuyk/x-heatmap/internal/tweets"
)

// ErrNotFound is returned by lookups for a year that was never exported.
var ErrNotFound = errors.New("not found")

// Store wraps a SQLite database holding exported activity.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS daily_activity (
	date TEXT PRIMARY KEY,
	year INTEGER NOT NULL,
	count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS daily_activity_year ON daily_activity (year);

CREATE TABLE IF NOT EXISTS year_stats (
	year INTEGER PRIMARY KEY,
	total_tweets INTEGER NOT NULL,
	longest_streak INTEGER NOT NULL,
	current_streak INTEGER NOT NULL,
	most_active_day TEXT NOT NULL,
	average_per_day REAL NOT NULL,
	total_days INTEGER NOT NULL,
	active_days INTEGER NOT NULL,
	most_active_day_of_week TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tweets (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	created_at TEXT,
	full_text TEXT,
	retweet_count INTEGER,
	favorite_count INTEGER,
	in_reply_to_status_id TEXT,
	is_reply INTEGER NOT NULL DEFAULT 0
);
`

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveHeatmap writes every materialized year in one transaction, replacing
// rows from earlier exports of the same dates, years, and post ids.
func (s *Store) SaveHeatmap(ctx context.Context, data *activity.HeatmapData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	dayStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO daily_activity (date, year, count) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare daily insert: %w", err)
	}
	defer dayStmt.Close()

	tweetStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO tweets (id, date, created_at, full_text, retweet_count, favorite_count, in_reply_to_status_id, is_reply)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare tweet insert: %w", err)
	}
	defer tweetStmt.Close()

	for _, year := range data.AvailableYears {
		for _, day := range data.AllYearActivities[year] {
			if _, err := dayStmt.ExecContext(ctx, day.Date, year, day.Count); err != nil {
				return fmt.Errorf("save day %s: %w", day.Date, err)
			}
			for _, r := range day.Tweets {
				tw := r.Tweet
				_, err := tweetStmt.ExecContext(ctx,
					r.ID(), day.Date, tw.CreatedAtRaw, tw.FullText,
					int(tw.RetweetCount), int(tw.FavoriteCount), string(tw.InReplyToStatusID), r.IsReply(),
				)
				if err != nil {
					return fmt.Errorf("save tweet %s: %w", r.ID(), err)
				}
			}
		}

		st := data.AllYearStats[year]
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO year_stats (year, total_tweets, longest_streak, current_streak, most_active_day,
			 average_per_day, total_days, active_days, most_active_day_of_week)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			year, st.TotalTweets, st.LongestStreak, st.CurrentStreak, st.MostActiveDay,
			st.AveragePerDay, st.TotalDays, st.ActiveDays, st.MostActiveDayOfWeek,
		)
		if err != nil {
			return fmt.Errorf("save stats %d: %w", year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

// Years returns the exported years, most recent first.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT year FROM year_stats ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// DailyCounts returns the stored day counts of year in date order.
func (s *Store) DailyCounts(ctx context.Context, year int) ([]dates.DayCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, count FROM daily_activity WHERE year = ? ORDER BY date`, year)
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer rows.Close()

	var days []dates.DayCount
	for rows.Next() {
		var d dates.DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("daily counts %d: %w", year, ErrNotFound)
	}
	return days, nil
}

// YearStats returns the stored stats of year.
func (s *Store) YearStats(ctx context.Context, year int) (activity.Stats, error) {
	var st activity.Stats
	var y int
	err := s.db.QueryRowContext(ctx,
		`SELECT year, total_tweets, longest_streak, current_streak, most_active_day, average_per_day,
		 total_days, active_days, most_active_day_of_week FROM year_stats WHERE year = ?`, year,
	).Scan(&y, &st.TotalTweets, &st.LongestStreak, &st.CurrentStreak, &st.MostActiveDay, &st.AveragePerDay,
		&st.TotalDays, &st.ActiveDays, &st.MostActiveDayOfWeek)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.Stats{}, fmt.Errorf("year stats %d: %w", year, ErrNotFound)
	}
	if err != nil {
		return activity.Stats{}, fmt.Errorf("query year stats %d: %w", year, err)
	}
	st.YearRange = fmt.Sprint(y)
	return st, nil
}

// LoadHeatmap rebuilds a HeatmapData from the stored counts and stats.
// Post bodies are not read back, so every day carries an empty Tweets list.
func (s *Store) LoadHeatmap(ctx context.Context) (*activity.HeatmapData, error) {
	years, err := s.Years(ctx)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("load heatmap: %w", ErrNotFound)
	}

	data := &activity.HeatmapData{
		Year:              years[0],
		AvailableYears:    years,
		AllYearActivities: make(map[int][]activity.DailyActivity, len(years)),
		AllYearStats:      make(map[int]activity.Stats, len(years)),
	}
	for _, year := range years {
		days, err := s.DailyCounts(ctx, year)
		if err != nil {
			return nil, err
		}
		st, err := s.YearStats(ctx, year)
		if err != nil {
			return nil, err
		}

		acts := make([]activity.DailyActivity, len(days))
		for i, d := range days {
			acts[i] = activity.DailyActivity{Date: d.Date, Count: d.Count, Tweets: []tweets.Record{}}
		}
		data.AllYearActivities[year] = acts
		data.AllYearStats[year] = st
	}
	data.Activities = data.AllYearActivities[data.Year]
	data.Stats = data.AllYearStats[data.Year]
	return data, nil
}

// ReplyCount returns the number of stored posts that answer another post or user.
func (s *Store) ReplyCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tweets WHERE is_reply = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return n, nil
}

// TweetCount returns the number of stored posts.
func (s *Store) TweetCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tweets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tweets: %w", err)
	}
	return n, nil
}
