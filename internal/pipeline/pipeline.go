// Package pipeline runs archive bytes through extraction, parsing and
// aggregation and converts every failure into a Result.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/suykerbuyk/x-heatmap/internal/activity"
	"github.com/suykerbuyk/x-heatmap/internal/archive"
	"github.com/suykerbuyk/x-heatmap/internal/cache"
	"github.com/suykerbuyk/x-heatmap/internal/config"
	"github.com/suykerbuyk/x-heatmap/internal/dates"
	"github.com/suykerbuyk/x-heatmap/internal/metrics"
	"github.com/suykerbuyk/x-heatmap/internal/tweets"
)

// Result is the outcome of one run. Exactly one of Data and Error is set.
type Result struct {
	Success bool                  `json:"success"`
	Data    *activity.HeatmapData `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
	Kind    Kind                  `json:"-"`
}

// Processor holds the collaborators for pipeline runs. It keeps no state
// between runs apart from the optional serialized-result cache.
type Processor struct {
	extractor *archive.Extractor
	parser    *tweets.Parser
	location  *time.Location
	workers   int
	maxBytes  int64

	logger  zerolog.Logger
	metrics metrics.Recorder
	cache   cache.Cache
	now     func() time.Time
}

// Option customizes a Processor.
type Option func(*Processor)

// WithClock overrides the clock used for timestamp fallbacks and the
// default year of an empty result.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New builds a Processor from cfg. A nil recorder or cache disables that concern.
func New(cfg config.Config, logger zerolog.Logger, rec metrics.Recorder, c cache.Cache, opts ...Option) (*Processor, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = metrics.New(config.MetricsConfig{})
	}
	if c == nil {
		c = cache.New(config.CacheConfig{}, logger)
	}

	p := &Processor{
		extractor: archive.NewExtractor(cfg.Archive.CandidatePaths),
		parser:    tweets.NewParser(cfg.Archive.RecordPrefixes),
		location:  loc,
		workers:   cfg.Aggregation.Workers,
		maxBytes:  cfg.MaxArchiveBytes(),
		logger:    logger,
		metrics:   rec,
		cache:     c,
		now:       time.Now,
	}
	p.extractor.MaxEntrySize = p.maxBytes
	p.parser.Logger = logger
	p.parser.OnIgnored = rec.AddIgnoredFields
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProcessArchive runs the pipeline and converts any failure into a Result.
func (p *Processor) ProcessArchive(ctx context.Context, data []byte) Result {
	heat, err := p.Process(ctx, data)
	return toResult(heat, err)
}

// ProcessFile reads path and runs the pipeline on its contents.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("read archive failed")
		p.metrics.ObserveRun(ArchiveReadError.String(), 0)
		return toResult(nil, &archive.ReadError{Op: "read archive", Path: path, Err: err})
	}
	return p.ProcessArchive(ctx, data)
}

func toResult(heat *activity.HeatmapData, err error) Result {
	if err != nil {
		kind := Classify(err)
		return Result{Success: false, Error: Message(kind, err), Kind: kind}
	}
	return Result{Success: true, Data: heat}
}

// Process runs the pipeline and returns typed errors; see Classify.
func (p *Processor) Process(ctx context.Context, data []byte) (*activity.HeatmapData, error) {
	start := time.Now()
	heat, err := p.process(ctx, data)
	kind := Classify(err)
	p.metrics.ObserveRun(kind.String(), time.Since(start))

	if err != nil {
		p.logger.Warn().Err(err).Str("kind", kind.String()).Msg("processing failed")
		return nil, err
	}
	return heat, nil
}

func (p *Processor) process(ctx context.Context, data []byte) (*activity.HeatmapData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, &archive.ReadError{
			Op:  "open archive",
			Err: fmt.Errorf("archive is %s, limit is %s", humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(p.maxBytes))),
		}
	}

	key := digest(data)
	if heat, ok := p.cached(key); ok {
		return heat, nil
	}

	payload, err := p.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract records: %w", err)
	}
	p.logger.Debug().Str("entry", payload.Path).Str("size", humanize.Bytes(uint64(len(payload.Text)))).Msg("record source found")

	records, err := p.parser.Parse(payload.Text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", payload.Path, err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecordsFound
	}
	p.metrics.AddRecords(len(records))

	dp := dates.NewParser(p.location, p.logger)
	dp.Now = p.now
	dp.OnFallback = func(string) { p.metrics.IncTimestampFallbacks() }

	agg := &activity.Aggregator{
		Parser:   dp,
		Location: p.location,
		Workers:  p.workers,
		Now:      p.now,
	}
	heat, err := agg.Aggregate(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("aggregate records: %w", err)
	}
	p.metrics.SetYears(len(heat.AvailableYears))

	p.logger.Info().
		Int("records", len(records)).
		Ints("years", heat.AvailableYears).
		Int("year", heat.Year).
		Msg("archive processed")

	p.store(key, heat)
	return heat, nil
}

func (p *Processor) cached(key string) (*activity.HeatmapData, bool) {
	packed, ok := p.cache.Get(key)
	if !ok {
		p.metrics.IncCacheMisses()
		return nil, false
	}

	var heat activity.HeatmapData
	raw, err := archive.Decompress(packed)
	if err == nil {
		err = json.Unmarshal(raw, &heat)
	}
	if err != nil {
		p.logger.Debug().Err(err).Msg("discarding undecodable cache entry")
		p.metrics.IncCacheMisses()
		return nil, false
	}
	p.metrics.IncCacheHits()
	p.logger.Debug().Str("digest", key[:12]).Msg("result cache hit")
	return &heat, true
}

func (p *Processor) store(key string, heat *activity.HeatmapData) {
	raw, err := json.Marshal(heat)
	if err != nil {
		p.logger.Debug().Err(err).Msg("encode result for cache")
		return
	}
	packed, err := archive.Compress(raw)
	if err != nil {
		p.logger.Debug().Err(err).Msg("compress result for cache")
		return
	}
	if err := p.cache.Set(key, packed); err != nil {
		p.logger.Debug().Err(err).Str("size", humanize.Bytes(uint64(len(packed)))).Msg("result not cached")
	}
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
