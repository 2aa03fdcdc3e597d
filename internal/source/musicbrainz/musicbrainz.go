// Package musicbrainz implements the source.Source interface for the
// MusicBrainz ws/2 API, the authoritative catalog in the verification set.
package musicbrainz

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
	"github.com/nameclear/nameclear/internal/version"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// Adapter implements source.Source for MusicBrainz.
type Adapter struct {
	client  *http.Client
	limiter *source.RateLimiterMap
	logger  *slog.Logger
	baseURL string
}

// New creates a MusicBrainz adapter with the default base URL.
func New(limiter *source.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates a MusicBrainz adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *source.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client: &http.Client{
			Timeout: 12 * time.Second,
		},
		limiter: limiter,
		logger:  logger.With(slog.String("source", "musicbrainz")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the catalog identifier.
func (a *Adapter) Name() source.Name { return source.NameMusicBrainz }

// ReliabilityWeight returns the trust weight of MusicBrainz's existence signal.
func (a *Adapter) ReliabilityWeight() float64 {
	return source.ReliabilityWeights[source.NameMusicBrainz]
}

// RequiresAuth returns whether this catalog needs an API key.
func (a *Adapter) RequiresAuth() bool { return false }

// Search queries MusicBrainz for artists or recordings matching the name.
func (a *Adapter) Search(ctx context.Context, name string, entity similarity.EntityType) ([]source.Match, int, error) {
	if name == "" {
		return nil, 0, nil
	}
	if entity == similarity.EntitySong {
		return a.searchRecordings(ctx, name)
	}
	return a.searchArtists(ctx, name)
}

// HealthCheck verifies connectivity to the MusicBrainz API.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	params := url.Values{
		"query": {"test"},
		"fmt":   {"json"},
		"limit": {"1"},
	}
	_, err := a.doRequest(ctx, a.baseURL+"/artist?"+params.Encode())
	return err
}

func (a *Adapter) searchArtists(ctx context.Context, name string) ([]source.Match, int, error) {
	params := url.Values{
		"query": {luceneQuoted("artist", name)},
		"fmt":   {"json"},
		"limit": {"25"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/artist?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}

	var resp artistSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &source.ErrMalformedResponse{Source: source.NameMusicBrainz, Cause: err}
	}

	matches := make([]source.Match, 0, len(resp.Artists))
	for _, ar := range resp.Artists {
		matches = append(matches, source.Match{
			Name:        ar.Name,
			Artist:      ar.Name,
			Popularity:  ar.Score,
			Genres:      artistGenres(&ar),
			ReleaseDate: ar.LifeSpan.Begin,
			URL:         "https://musicbrainz.org/artist/" + ar.ID,
		})
	}

	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(matches)),
		slog.Int("total", resp.Count))

	return matches, resp.Count, nil
}

func (a *Adapter) searchRecordings(ctx context.Context, name string) ([]source.Match, int, error) {
	params := url.Values{
		"query": {luceneQuoted("recording", name)},
		"fmt":   {"json"},
		"limit": {"25"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/recording?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}

	var resp recordingSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &source.ErrMalformedResponse{Source: source.NameMusicBrainz, Cause: err}
	}

	matches := make([]source.Match, 0, len(resp.Recordings))
	for _, rec := range resp.Recordings {
		m := source.Match{
			Name:        rec.Title,
			Popularity:  rec.Score,
			ReleaseDate: rec.FirstReleaseDate,
			URL:         "https://musicbrainz.org/recording/" + rec.ID,
		}
		if len(rec.ArtistCredit) > 0 {
			m.Artist = rec.ArtistCredit[0].Name
			if m.Artist == "" && rec.ArtistCredit[0].Artist != nil {
				m.Artist = rec.ArtistCredit[0].Artist.Name
			}
		}
		if len(rec.Releases) > 0 {
			m.Album = rec.Releases[0].Title
		}
		for _, tag := range rec.Tags {
			if tag.Name != "" && tag.Count > 0 {
				m.Genres = append(m.Genres, tag.Name)
			}
		}
		matches = append(matches, m)
	}

	a.logger.Debug("recording search completed",
		slog.String("query", name),
		slog.Int("results", len(matches)),
		slog.Int("total", resp.Count))

	return matches, resp.Count, nil
}

// doRequest executes an HTTP GET with rate limiting and standard headers.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, source.NameMusicBrainz); err != nil {
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameMusicBrainz,
			Cause:  fmt.Errorf("rate limiter: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameMusicBrainz,
			Cause:  err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameMusicBrainz,
			Cause:  fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &source.ErrSourceUnavailable{
			Source: source.NameMusicBrainz,
			Cause:  fmt.Errorf("unexpected HTTP %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 512*1024))
}

// luceneQuoted builds a fielded Lucene query with the name quoted, escaping
// embedded quotes so user input cannot break out of the phrase.
func luceneQuoted(field, name string) string {
	return field + `:"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

// artistGenres prefers the curated genre list and falls back to tags.
func artistGenres(ar *mbArtist) []string {
	var genres []string
	for _, g := range ar.Genres {
		if g.Name != "" {
			genres = append(genres, g.Name)
		}
	}
	if len(genres) > 0 {
		return genres
	}
	for _, t := range ar.Tags {
		if t.Name != "" && t.Count > 0 {
			genres = append(genres, t.Name)
		}
	}
	return genres
}

func userAgent() string {
	return fmt.Sprintf("nameclear/%s (https://github.com/nameclear/nameclear)", version.Version)
}
