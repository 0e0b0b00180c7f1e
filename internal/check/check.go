package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/suykerbuyk/x-heatmap/internal/archive"
	"github.com/suykerbuyk/x-heatmap/internal/config"
	"github.com/suykerbuyk/x-heatmap/internal/dates"
	"github.com/suykerbuyk/x-heatmap/internal/tweets"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "xh check\n\n  no checks ran\n"
	}

	maxName := 0
	for _, res := range r.Results {
		maxName = max(maxName, len(res.Name))
	}

	var b strings.Builder
	b.WriteString("xh check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports which config file is in effect.
func CheckConfig(cfg config.Config) Result {
	if cfg.Path == "" {
		cfgPath := filepath.Join(config.ConfigDir(), "config.toml")
		return Result{Name: "config", Status: Pass, Detail: "defaults (" + config.CompressHome(cfgPath) + " not found)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(cfg.Path)}
}

// CheckTimezone checks that the configured zone loads.
func CheckTimezone(cfg config.Config) Result {
	loc, err := cfg.Location()
	if err != nil {
		return Result{Name: "timezone", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "timezone", Status: Pass, Detail: loc.String()}
}

// CheckExportDir checks whether the export directory exists yet.
func CheckExportDir(dir string) Result {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return Result{Name: "export", Status: Pass, Detail: config.CompressHome(dir)}
	}
	return Result{Name: "export", Status: Warn, Detail: config.CompressHome(dir) + " not found (created on first export)"}
}

// CheckCache reports the result cache settings.
func CheckCache(c config.CacheConfig) Result {
	if !c.Enabled {
		return Result{Name: "cache", Status: Pass, Detail: "disabled"}
	}
	return Result{Name: "cache", Status: Pass, Detail: fmt.Sprintf("%s, ttl %s", humanize.IBytes(uint64(c.SizeMB)<<20), ttlLabel(c))}
}

func ttlLabel(c config.CacheConfig) string {
	if c.TTL() == 0 {
		return "none"
	}
	return c.TTL().String()
}

// CheckMetrics checks that the textfile directory exists when metrics are on.
func CheckMetrics(m config.MetricsConfig) Result {
	if !m.Enabled {
		return Result{Name: "metrics", Status: Pass, Detail: "disabled"}
	}
	dir := filepath.Dir(m.Textfile)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return Result{Name: "metrics", Status: Pass, Detail: config.CompressHome(m.Textfile)}
	}
	return Result{Name: "metrics", Status: Fail, Detail: config.CompressHome(dir) + " not found"}
}

// CheckArchive inspects an archive file without aggregating it. Checks stop
// at the first failure, since later ones depend on it.
func CheckArchive(ctx context.Context, path string, cfg config.Config) []Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Result{{Name: "archive", Status: Fail, Detail: err.Error()}}
	}

	entries, err := archive.ListEntries(data)
	if err != nil {
		return []Result{{Name: "archive", Status: Fail, Detail: "not a zip archive: " + err.Error()}}
	}
	results := []Result{{
		Name:   "archive",
		Status: Pass,
		Detail: fmt.Sprintf("%s (%s, %d entries)", filepath.Base(path), humanize.Bytes(uint64(len(data))), len(entries)),
	}}

	payload, err := archive.NewExtractor(cfg.Archive.CandidatePaths).Extract(ctx, data)
	if err != nil {
		detail := err.Error()
		if errors.Is(err, archive.ErrRecordSourceNotFound) {
			detail = "none of " + strings.Join(cfg.Archive.CandidatePaths, ", ")
		}
		return append(results, Result{Name: "source", Status: Fail, Detail: detail})
	}
	results = append(results, Result{Name: "source", Status: Pass, Detail: payload.Path})

	return append(results, checkPayload(payload.Text, cfg)...)
}

// CheckPayloadFile inspects an already extracted payload such as data/tweets.js.
func CheckPayloadFile(path string, cfg config.Config) []Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Result{{Name: "source", Status: Fail, Detail: err.Error()}}
	}
	results := []Result{{Name: "source", Status: Pass, Detail: filepath.Base(path)}}
	return append(results, checkPayload(string(data), cfg)...)
}

func checkPayload(text string, cfg config.Config) []Result {
	var results []Result

	if prefix := tweets.MatchedPrefix(text, cfg.Archive.RecordPrefixes); prefix != "" {
		results = append(results, Result{Name: "prefix", Status: Pass, Detail: strings.TrimSpace(prefix)})
	} else {
		results = append(results, Result{Name: "prefix", Status: Warn, Detail: "no known prefix, reading as bare JSON"})
	}

	records, err := tweets.NewParser(cfg.Archive.RecordPrefixes).Parse(text)
	if err != nil {
		return append(results, Result{Name: "records", Status: Fail, Detail: err.Error()})
	}
	if len(records) == 0 {
		return append(results, Result{Name: "records", Status: Fail, Detail: "empty record array"})
	}
	results = append(results, Result{Name: "records", Status: Pass, Detail: humanize.Comma(int64(len(records))) + " records"})

	return append(results, checkTimestamps(records, cfg)...)
}

func checkTimestamps(records []tweets.Record, cfg config.Config) []Result {
	loc, err := cfg.Location()
	if err != nil {
		return nil
	}

	bad := 0
	seen := make(map[int]bool)
	for _, r := range records {
		t, ok := dates.ParseTimestamp(r.CreatedAt(), loc)
		if !ok {
			bad++
			continue
		}
		seen[t.Year()] = true
	}

	var results []Result
	if bad > 0 {
		results = append(results, Result{
			Name:   "timestamps",
			Status: Warn,
			Detail: fmt.Sprintf("%d of %d unparseable (counted on the processing date)", bad, len(records)),
		})
	} else {
		results = append(results, Result{Name: "timestamps", Status: Pass, Detail: "all parseable"})
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprint(y)
	}
	if len(parts) > 0 {
		results = append(results, Result{Name: "years", Status: Pass, Detail: strings.Join(parts, ", ")})
	}
	return results
}

// Run executes the configuration checks and, when archivePath is set, the
// archive checks. A path ending in .js is treated as an extracted payload.
func Run(ctx context.Context, cfg config.Config, archivePath string) Report {
	var results []Result

	results = append(results, CheckConfig(cfg))
	results = append(results, CheckTimezone(cfg))
	results = append(results, CheckExportDir(cfg.Export.Dir))
	results = append(results, CheckCache(cfg.Cache))
	results = append(results, CheckMetrics(cfg.Metrics))

	switch {
	case archivePath == "":
	case strings.HasSuffix(archivePath, ".js"):
		results = append(results, CheckPayloadFile(archivePath, cfg)...)
	default:
		results = append(results, CheckArchive(ctx, archivePath, cfg)...)
	}

	return Report{Results: results}
}
