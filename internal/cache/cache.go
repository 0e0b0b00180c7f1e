// Package cache holds serialized pipeline results keyed by archive digest.
package cache

import (
	"fmt"
	"unsafe"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog"

	"github.com/suykerbuyk/x-heatmap/internal/config"
)

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

type FreeCache struct {
	cache *freecache.Cache
	ttl   int
}

// New returns a freecache-backed Cache, or a no-op Cache when disabled.
func New(cfg config.CacheConfig, logger zerolog.Logger) Cache {
	if !cfg.Enabled || cfg.SizeMB <= 0 {
		logger.Debug().Msg("result cache disabled")
		return &noopCache{}
	}

	logger.Debug().Int("size_mb", cfg.SizeMB).Dur("ttl", cfg.TTL()).Msg("result cache initialized")
	return NewFreeCache(cfg.SizeMB*1024*1024, cfg.TTLSeconds)
}

// NewFreeCache allocates sizeBytes up front. ttlSeconds <= 0 never expires.
func NewFreeCache(sizeBytes, ttlSeconds int) *FreeCache {
	return &FreeCache{
		cache: freecache.NewCache(sizeBytes),
		ttl:   max(ttlSeconds, 0),
	}
}

// unsafeStringToBytes converts s without allocating. freecache copies keys,
// so the result is never written through.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set fails with freecache.ErrLargeEntry when value exceeds 1/1024 of the
// cache size.
func (c *FreeCache) Set(key string, value []byte) error {
	if err := c.cache.Set(unsafeStringToBytes(key), value, c.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// EntryCount returns the number of live entries.
func (c *FreeCache) EntryCount() int64 {
	return c.cache.EntryCount()
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)  { return nil, false }
func (n *noopCache) Set(_ string, _ []byte) error { return nil }
