package source

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Default rate limits per catalog (requests per second). MusicBrainz
// enforces 1 req/s for anonymous clients; the others are looser.
var defaultRateLimits = map[Name]rate.Limit{
	NameMusicBrainz: 1,
	NameITunes:      3,
	NameDeezer:      5,
	NameLastFM:      5,
}

// RateLimiterMap holds one rate.Limiter per catalog, created once at startup.
type RateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[Name]*rate.Limiter
}

// NewRateLimiterMap creates all catalog rate limiters.
func NewRateLimiterMap() *RateLimiterMap {
	m := &RateLimiterMap{
		limiters: make(map[Name]*rate.Limiter, len(defaultRateLimits)),
	}
	for name, limit := range defaultRateLimits {
		m.limiters[name] = rate.NewLimiter(limit, 1)
	}
	return m
}

// Wait blocks until the rate limiter for the given catalog allows a request,
// or the context is canceled.
func (m *RateLimiterMap) Wait(ctx context.Context, name Name) error {
	m.mu.RLock()
	limiter, ok := m.limiters[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
