// Package deezer implements source.Source for Deezer's public API. No
// authentication is required.
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
)

const defaultBaseURL = "https://api.deezer.com"

// deezerRankScale converts Deezer's 0..1,000,000 track rank to 0..100.
const deezerRankScale = 10000

// Adapter implements source.Source for Deezer.
type Adapter struct {
	client  *http.Client
	limiter *source.RateLimiterMap
	logger  *slog.Logger
	baseURL string
}

// New creates a Deezer adapter with the default base URL.
func New(limiter *source.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates a Deezer adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *source.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("source", "deezer")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the catalog identifier.
func (a *Adapter) Name() source.Name { return source.NameDeezer }

// ReliabilityWeight returns the trust weight of Deezer's existence signal.
func (a *Adapter) ReliabilityWeight() float64 {
	return source.ReliabilityWeights[source.NameDeezer]
}

// RequiresAuth returns false since Deezer's public API needs no API key.
func (a *Adapter) RequiresAuth() bool { return false }

// Search queries Deezer for artists or tracks matching the given name.
func (a *Adapter) Search(ctx context.Context, name string, entity similarity.EntityType) ([]source.Match, int, error) {
	if name == "" {
		return nil, 0, nil
	}
	if entity == similarity.EntitySong {
		return a.searchTracks(ctx, name)
	}
	return a.searchArtists(ctx, name)
}

// HealthCheck verifies connectivity to the Deezer API.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	params := url.Values{"q": {"test"}, "limit": {"1"}}
	_, err := a.doRequest(ctx, a.baseURL+"/search/artist?"+params.Encode())
	return err
}

func (a *Adapter) searchArtists(ctx context.Context, name string) ([]source.Match, int, error) {
	params := url.Values{
		"q":     {name},
		"limit": {"25"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/search/artist?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}

	var resp searchArtistResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &source.ErrMalformedResponse{Source: source.NameDeezer, Cause: err}
	}

	matches := make([]source.Match, 0, len(resp.Data))
	for _, r := range resp.Data {
		matches = append(matches, source.Match{
			Name:      r.Name,
			Artist:    r.Name,
			Followers: r.NbFan,
			URL:       r.Link,
		})
	}

	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(matches)),
		slog.Int("total", resp.Total))

	return matches, resp.Total, nil
}

func (a *Adapter) searchTracks(ctx context.Context, name string) ([]source.Match, int, error) {
	params := url.Values{
		"q":     {name},
		"limit": {"25"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/search/track?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}

	var resp searchTrackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &source.ErrMalformedResponse{Source: source.NameDeezer, Cause: err}
	}

	matches := make([]source.Match, 0, len(resp.Data))
	for _, r := range resp.Data {
		matches = append(matches, source.Match{
			Name:       r.Title,
			Artist:     r.Artist.Name,
			Album:      r.Album.Title,
			Popularity: r.Rank / deezerRankScale,
			Followers:  r.Artist.NbFan,
			URL:        r.Link,
		})
	}

	a.logger.Debug("track search completed",
		slog.String("query", name),
		slog.Int("results", len(matches)),
		slog.Int("total", resp.Total))

	return matches, resp.Total, nil
}

// doRequest executes a GET request and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, source.NameDeezer); err != nil {
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameDeezer,
			Cause:  fmt.Errorf("rate limiter: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameDeezer,
			Cause:  err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusTooManyRequests:
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameDeezer,
			Cause:  fmt.Errorf("rate limited by server"),
		}
	default:
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameDeezer,
			Cause:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
}
