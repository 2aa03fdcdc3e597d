// Package lastfm implements source.Source for the Last.fm audioscrobbler
// API. An API key is required; without one, every query fails with
// ErrAuthRequired and the pipeline records the catalog as unreachable.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0"

// Adapter implements source.Source for Last.fm.
type Adapter struct {
	client  *http.Client
	limiter *source.RateLimiterMap
	logger  *slog.Logger
	baseURL string
	apiKey  string
}

// New creates a Last.fm adapter with the default base URL.
func New(limiter *source.RateLimiterMap, logger *slog.Logger, apiKey string) *Adapter {
	return NewWithBaseURL(limiter, logger, apiKey, defaultBaseURL)
}

// NewWithBaseURL creates a Last.fm adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *source.RateLimiterMap, logger *slog.Logger, apiKey, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 8 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("source", "lastfm")),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Name returns the catalog identifier.
func (a *Adapter) Name() source.Name { return source.NameLastFM }

// ReliabilityWeight returns the trust weight of the Last.fm existence signal.
func (a *Adapter) ReliabilityWeight() float64 {
	return source.ReliabilityWeights[source.NameLastFM]
}

// RequiresAuth returns whether this catalog needs an API key.
func (a *Adapter) RequiresAuth() bool { return true }

// Search queries Last.fm for artists or tracks matching the given name.
func (a *Adapter) Search(ctx context.Context, name string, entity similarity.EntityType) ([]source.Match, int, error) {
	if name == "" {
		return nil, 0, nil
	}
	if a.apiKey == "" {
		return nil, 0, &source.ErrAuthRequired{Source: source.NameLastFM}
	}
	if entity == similarity.EntitySong {
		return a.searchTracks(ctx, name)
	}
	return a.searchArtists(ctx, name)
}

// HealthCheck verifies connectivity and key validity against Last.fm.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.apiKey == "" {
		return &source.ErrAuthRequired{Source: source.NameLastFM}
	}
	_, _, err := a.searchArtists(ctx, "test")
	return err
}

func (a *Adapter) searchArtists(ctx context.Context, name string) ([]source.Match, int, error) {
	params := url.Values{
		"method":  {"artist.search"},
		"artist":  {name},
		"api_key": {a.apiKey},
		"format":  {"json"},
		"limit":   {"25"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}

	var resp artistSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &source.ErrMalformedResponse{Source: source.NameLastFM, Cause: err}
	}
	if resp.Error != 0 {
		return nil, 0, apiError(resp.Error, resp.Message)
	}
	if resp.Results == nil {
		return nil, 0, nil
	}

	matches := make([]source.Match, 0, len(resp.Results.ArtistMatches.Artist))
	for _, ar := range resp.Results.ArtistMatches.Artist {
		matches = append(matches, source.Match{
			Name:      ar.Name,
			Artist:    ar.Name,
			Followers: atoiLoose(ar.Listeners),
			URL:       ar.URL,
		})
	}

	total := atoiLoose(resp.Results.TotalResults)
	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(matches)),
		slog.Int("total", total))

	return matches, total, nil
}

func (a *Adapter) searchTracks(ctx context.Context, name string) ([]source.Match, int, error) {
	params := url.Values{
		"method":  {"track.search"},
		"track":   {name},
		"api_key": {a.apiKey},
		"format":  {"json"},
		"limit":   {"25"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}

	var resp trackSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &source.ErrMalformedResponse{Source: source.NameLastFM, Cause: err}
	}
	if resp.Error != 0 {
		return nil, 0, apiError(resp.Error, resp.Message)
	}
	if resp.Results == nil {
		return nil, 0, nil
	}

	matches := make([]source.Match, 0, len(resp.Results.TrackMatches.Track))
	for _, tr := range resp.Results.TrackMatches.Track {
		matches = append(matches, source.Match{
			Name:      tr.Name,
			Artist:    tr.Artist,
			Followers: atoiLoose(tr.Listeners),
			URL:       tr.URL,
		})
	}

	total := atoiLoose(resp.Results.TotalResults)
	a.logger.Debug("track search completed",
		slog.String("query", name),
		slog.Int("results", len(matches)),
		slog.Int("total", total))

	return matches, total, nil
}

// doRequest executes a GET request and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, source.NameLastFM); err != nil {
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameLastFM,
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
			Source: source.NameLastFM,
			Cause:  err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	// Last.fm reports most errors in the JSON body with HTTP 200; only
	// transport-level failures surface as non-200 statuses.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusForbidden {
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameLastFM,
			Cause:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
}

// apiError maps a Last.fm error payload to a typed source error. Codes 10
// and 26 indicate key problems; everything else is treated as transient.
func apiError(code int, message string) error {
	if code == 10 || code == 26 {
		return &source.ErrAuthRequired{Source: source.NameLastFM}
	}
	return &source.ErrSourceUnavailable{
		Source: source.NameLastFM,
		Cause:  fmt.Errorf("API error %d: %s", code, message),
	}
}

// atoiLoose parses Last.fm's stringly-typed counters, returning 0 on junk.
func atoiLoose(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
