// Package itunes implements source.Source for the iTunes Search API. No
// authentication is required; Apple serves JSON with a text/javascript
// content type, which is parsed as plain JSON here.
package itunes

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

const defaultBaseURL = "https://itunes.apple.com"

// Adapter implements source.Source for the iTunes Search API.
type Adapter struct {
	client  *http.Client
	limiter *source.RateLimiterMap
	logger  *slog.Logger
	baseURL string
}

// New creates an iTunes adapter with the default base URL.
func New(limiter *source.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates an iTunes adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *source.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("source", "itunes")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the catalog identifier.
func (a *Adapter) Name() source.Name { return source.NameITunes }

// ReliabilityWeight returns the trust weight of the iTunes existence signal.
func (a *Adapter) ReliabilityWeight() float64 {
	return source.ReliabilityWeights[source.NameITunes]
}

// RequiresAuth returns false since the iTunes Search API needs no API key.
func (a *Adapter) RequiresAuth() bool { return false }

// Search queries iTunes for artists or songs matching the given name.
func (a *Adapter) Search(ctx context.Context, name string, entity similarity.EntityType) ([]source.Match, int, error) {
	if name == "" {
		return nil, 0, nil
	}

	apiEntity := "musicArtist"
	if entity == similarity.EntitySong {
		apiEntity = "song"
	}

	params := url.Values{
		"term":   {name},
		"media":  {"music"},
		"entity": {apiEntity},
		"limit":  {"25"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &source.ErrMalformedResponse{Source: source.NameITunes, Cause: err}
	}

	matches := make([]source.Match, 0, len(resp.Results))
	for _, r := range resp.Results {
		matches = append(matches, matchFromResult(&r, entity))
	}

	a.logger.Debug("search completed",
		slog.String("query", name),
		slog.String("entity", apiEntity),
		slog.Int("results", len(matches)))

	return matches, resp.ResultCount, nil
}

// HealthCheck verifies connectivity to the iTunes Search API.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	params := url.Values{
		"term":  {"test"},
		"media": {"music"},
		"limit": {"1"},
	}
	_, err := a.doRequest(ctx, a.baseURL+"/search?"+params.Encode())
	return err
}

// matchFromResult normalizes one iTunes result into the common match shape.
func matchFromResult(r *searchResult, entity similarity.EntityType) source.Match {
	m := source.Match{
		Artist:      r.ArtistName,
		ReleaseDate: r.ReleaseDate,
	}
	if r.PrimaryGenreName != "" {
		m.Genres = []string{r.PrimaryGenreName}
	}

	if entity == similarity.EntitySong {
		m.Name = r.TrackName
		m.Album = r.CollectionName
		m.URL = r.TrackViewURL
	} else {
		m.Name = r.ArtistName
		m.URL = r.ArtistLinkURL
	}
	return m
}

// doRequest executes a GET request and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, source.NameITunes); err != nil {
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameITunes,
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
			Source: source.NameITunes,
			Cause:  err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusForbidden, http.StatusTooManyRequests:
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameITunes,
			Cause:  fmt.Errorf("rate limited by server (HTTP %d)", resp.StatusCode),
		}
	default:
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameITunes,
			Cause:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
}
