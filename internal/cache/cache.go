// Package cache stores finished verification results keyed by the
// normalized (entity, name) pair, with outcome-dependent TTLs.
package cache

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nameclear/nameclear/internal/format"
	"github.com/nameclear/nameclear/internal/similarity"
)

// minConfidence is the floor below which results are not worth keeping.
const minConfidence = 0.3

const sweepInterval = 10 * time.Minute

// Cache wraps an in-memory TTL store with hit/miss accounting and
// admission rules that keep low-quality results out.
type Cache struct {
	store  *gocache.Cache
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Keys    int     `json:"keys"`
}

func New(logger *slog.Logger) *Cache {
	return &Cache{
		store:  gocache.New(gocache.NoExpiration, sweepInterval),
		logger: logger.With(slog.String("component", "cache")),
	}
}

// Key builds the canonical cache key. Names differing only in case,
// diacritics, or whitespace share an entry.
func Key(entity similarity.EntityType, name string) string {
	return string(entity) + "\x1f" + similarity.Normalize(name)
}

func (c *Cache) Get(entity similarity.EntityType, name string) (format.Result, bool) {
	v, ok := c.store.Get(Key(entity, name))
	if !ok {
		c.misses.Add(1)
		return format.Result{}, false
	}
	c.hits.Add(1)
	return v.(format.Result), true
}

// Set stores a result for ttl. It reports false when the result is
// refused: zero TTL (shortcut results), confidence below the floor, or
// an explanation produced while catalogs were unreachable.
func (c *Cache) Set(entity similarity.EntityType, name string, r format.Result, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	if r.Confidence < minConfidence {
		c.logger.Debug("refusing low-confidence result",
			slog.String("name", name),
			slog.Float64("confidence", r.Confidence))
		return false
	}
	if strings.Contains(r.Explanation, format.DegradedNotice) {
		c.logger.Debug("refusing degraded result", slog.String("name", name))
		return false
	}
	c.store.Set(Key(entity, name), r, ttl)
	return true
}

func (c *Cache) Delete(entity similarity.EntityType, name string) {
	c.store.Delete(Key(entity, name))
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.store.Flush()
	c.hits.Store(0)
	c.misses.Store(0)
}

func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Keys:   c.store.ItemCount(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
