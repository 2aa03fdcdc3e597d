// Package source defines the adapter contract for external music catalogs
// and the evidence model the verification pipeline consumes. One adapter
// package per catalog lives below this one.
package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nameclear/nameclear/internal/similarity"
)

// Name uniquely identifies a catalog adapter.
type Name string

// Known catalog names.
const (
	NameMusicBrainz Name = "musicbrainz"
	NameITunes      Name = "itunes"
	NameDeezer      Name = "deezer"
	NameLastFM      Name = "lastfm"
)

// AllNames returns all known catalog names in display order.
func AllNames() []Name {
	return []Name{NameMusicBrainz, NameITunes, NameDeezer, NameLastFM}
}

// DisplayName returns a human-readable name for the catalog.
func (n Name) DisplayName() string {
	switch n {
	case NameMusicBrainz:
		return "MusicBrainz"
	case NameITunes:
		return "iTunes"
	case NameDeezer:
		return "Deezer"
	case NameLastFM:
		return "Last.fm"
	default:
		return string(n)
	}
}

// ReliabilityWeights holds how trustworthy each catalog's "this name exists"
// signal is. MusicBrainz is the authoritative catalog; Last.fm is the least
// complete one.
var ReliabilityWeights = map[Name]float64{
	NameMusicBrainz: 1.00,
	NameITunes:      0.90,
	NameDeezer:      0.85,
	NameLastFM:      0.75,
}

// DefaultTimeouts bounds each catalog query independently. Overall request
// latency is bounded by the slowest of these, not their sum.
var DefaultTimeouts = map[Name]time.Duration{
	NameMusicBrainz: 10 * time.Second,
	NameITunes:      8 * time.Second,
	NameDeezer:      8 * time.Second,
	NameLastFM:      6 * time.Second,
}

// Match is one candidate found by one catalog. Immutable after creation;
// the aggregator's merge step produces new records rather than mutating.
type Match struct {
	Name               string               `json:"name"`
	Artist             string               `json:"artist,omitempty"`
	Album              string               `json:"album,omitempty"`
	Popularity         int                  `json:"popularity,omitempty"`
	Followers          int                  `json:"followers,omitempty"`
	Genres             []string             `json:"genres,omitempty"`
	ReleaseDate        string               `json:"release_date,omitempty"`
	URL                string               `json:"url,omitempty"`
	Similarity         float64              `json:"similarity"`
	PhoneticSimilarity float64              `json:"phonetic_similarity"`
	IsExact            bool                 `json:"is_exact"`
	Tier               similarity.MatchTier `json:"tier"`
	SourceID           Name                 `json:"source_id"`
}

// Quality grades how well one catalog answered a query.
type Quality string

// Search quality grades.
const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityFailed    Quality = "failed"
)

// Evidence is the per-catalog result envelope. Created once per catalog per
// request; immutable afterward. A failed catalog still yields Evidence with
// Reachable false so one catalog's failure never aborts the pipeline.
type Evidence struct {
	SourceID          Name          `json:"source_id"`
	Reachable         bool          `json:"reachable"`
	ReliabilityWeight float64       `json:"reliability_weight"`
	Matches           []Match       `json:"matches"`
	ExactMatches      []Match       `json:"exact_matches"`
	SimilarMatches    []Match       `json:"similar_matches"`
	TotalResults      int           `json:"total_results"`
	Quality           Quality       `json:"quality"`
	ResponseTime      time.Duration `json:"response_time"`
	ErrorMessage      string        `json:"error_message,omitempty"`
}

// Source is the interface all catalog adapters must implement. Search
// returns normalized raw matches plus the catalog's reported total result
// count; similarity scoring happens in BuildEvidence, never in adapters.
type Source interface {
	// Name returns the unique catalog identifier.
	Name() Name

	// ReliabilityWeight returns the fixed trust weight of this catalog's
	// existence signal, in [0,1].
	ReliabilityWeight() float64

	// RequiresAuth returns true if this catalog needs an API key to function.
	RequiresAuth() bool

	// Search queries the catalog for the given name and entity type.
	Search(ctx context.Context, name string, entity similarity.EntityType) ([]Match, int, error)

	// HealthCheck verifies connectivity to the catalog.
	HealthCheck(ctx context.Context) error
}

// Link is a labelled manual-verification URL surfaced to callers.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SearchURL returns the catalog's public search page for manual verification.
func SearchURL(n Name, query string, entity similarity.EntityType) string {
	q := url.QueryEscape(query)
	switch n {
	case NameMusicBrainz:
		if entity == similarity.EntitySong {
			return "https://musicbrainz.org/search?query=" + q + "&type=recording"
		}
		return "https://musicbrainz.org/search?query=" + q + "&type=artist"
	case NameITunes:
		return "https://music.apple.com/search?term=" + q
	case NameDeezer:
		return "https://www.deezer.com/search/" + q
	case NameLastFM:
		return "https://www.last.fm/search?q=" + q
	default:
		return ""
	}
}

// ErrSourceUnavailable indicates a transient catalog failure (rate limited,
// timeout, server error).
type ErrSourceUnavailable struct {
	Source Name
	Cause  error
}

func (e *ErrSourceUnavailable) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Cause)
}

func (e *ErrSourceUnavailable) Unwrap() error { return e.Cause }

// ErrMalformedResponse indicates the catalog returned a payload the adapter
// could not parse.
type ErrMalformedResponse struct {
	Source Name
	Cause  error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("source %s: malformed response: %v", e.Source, e.Cause)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Cause }

// ErrAuthRequired indicates the catalog needs an API key but none is configured.
type ErrAuthRequired struct {
	Source Name
}

func (e *ErrAuthRequired) Error() string {
	return fmt.Sprintf("source %s: API key not configured", e.Source)
}
