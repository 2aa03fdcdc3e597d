// Package shortcut holds the pre-pipeline checks that can answer a
// verification request without querying any catalog: curated delight
// strings, the famous-artist table, and alternative-name suggestion.
// All collaborators are optional; a nil collaborator is skipped.
package shortcut

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nameclear/nameclear/internal/decision"
	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
)

// Canned is a pre-built verification verdict for a curated delight name.
// Canned results are never written to the cache.
type Canned struct {
	Outcome     decision.Outcome
	Confidence  float64
	Explanation string
	DetailText  string
	Links       []source.Link
}

// EasterEggLookup resolves curated delight names to canned results.
type EasterEggLookup interface {
	Lookup(name string, entity similarity.EntityType) (Canned, bool)
}

// FamousMatch is a curated high-confidence match that short-circuits the
// catalog fan-out. Unlike easter eggs it is cacheable at the long TTL.
type FamousMatch struct {
	Match        source.Match
	Alternatives []string
	Links        []source.Link
}

// FamousArtistLookup resolves household names against a curated table.
type FamousArtistLookup interface {
	Lookup(name string, entity similarity.EntityType) (FamousMatch, bool)
}

// SuggestionGenerator produces alternative name strings and extra
// manual-verification links for taken or similar names.
type SuggestionGenerator interface {
	Alternatives(name string, entity similarity.EntityType) []string
	Links(name string, entity similarity.EntityType) []source.Link
}

// StaticEasterEggs is the built-in delight table, keyed by normalized name.
type StaticEasterEggs struct {
	bands map[string]Canned
	songs map[string]Canned
}

func NewStaticEasterEggs() *StaticEasterEggs {
	e := &StaticEasterEggs{
		bands: make(map[string]Canned),
		songs: make(map[string]Canned),
	}
	e.bands[similarity.Normalize("Spinal Tap")] = Canned{
		Outcome:     decision.OutcomeTaken,
		Confidence:  1.0,
		Explanation: "This one goes to eleven.",
		DetailText:  "Spinal Tap is already one of England's loudest bands. Pick a name that only goes to ten.",
	}
	e.songs[similarity.Normalize("Never Gonna Give You Up")] = Canned{
		Outcome:     decision.OutcomeTaken,
		Confidence:  1.0,
		Explanation: "Never gonna give you up, never gonna let you down.",
		DetailText:  "Rick Astley claimed this one in 1987 and he is never gonna say goodbye.",
		Links: []source.Link{
			{Label: "You know what this is", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
	}
	e.songs[similarity.Normalize("Free Bird")] = Canned{
		Outcome:     decision.OutcomeTaken,
		Confidence:  1.0,
		Explanation: "Someone in the crowd already shouted it.",
		DetailText:  "Lynyrd Skynyrd has this one covered, solo and all.",
	}
	return e
}

func (e *StaticEasterEggs) Lookup(name string, entity similarity.EntityType) (Canned, bool) {
	key := similarity.Normalize(name)
	if entity == similarity.EntitySong {
		c, ok := e.songs[key]
		return c, ok
	}
	c, ok := e.bands[key]
	return c, ok
}

type famousEntry struct {
	artist     string
	genre      string
	popularity int
	followers  int
}

// StaticFamousArtists is the built-in household-name table. It covers bands
// and performing artists only; song titles always fall through to the
// catalog fan-out.
type StaticFamousArtists struct {
	entries map[string]famousEntry
}

func NewStaticFamousArtists() *StaticFamousArtists {
	f := &StaticFamousArtists{entries: make(map[string]famousEntry)}
	for _, e := range []famousEntry{
		{"The Beatles", "Rock", 100, 25000000},
		{"Queen", "Rock", 98, 33000000},
		{"Led Zeppelin", "Rock", 96, 15000000},
		{"Pink Floyd", "Progressive Rock", 95, 17000000},
		{"The Rolling Stones", "Rock", 95, 14000000},
		{"Metallica", "Metal", 94, 20000000},
		{"Nirvana", "Grunge", 93, 16000000},
		{"Radiohead", "Alternative", 91, 10000000},
		{"AC/DC", "Hard Rock", 93, 19000000},
		{"Coldplay", "Alternative", 92, 37000000},
		{"U2", "Rock", 89, 11000000},
		{"Daft Punk", "Electronic", 90, 9000000},
		{"Madonna", "Pop", 90, 12000000},
		{"Beyonce", "Pop", 96, 31000000},
		{"Taylor Swift", "Pop", 100, 80000000},
		{"Eminem", "Hip-Hop", 95, 50000000},
		{"Drake", "Hip-Hop", 96, 60000000},
		{"Rihanna", "Pop", 94, 45000000},
		{"Adele", "Pop", 93, 30000000},
		{"Bob Dylan", "Folk", 88, 6000000},
	} {
		f.entries[similarity.Normalize(e.artist)] = e
	}
	return f
}

func (f *StaticFamousArtists) Lookup(name string, entity similarity.EntityType) (FamousMatch, bool) {
	if entity == similarity.EntitySong {
		return FamousMatch{}, false
	}
	e, ok := f.entries[similarity.Normalize(name)]
	if !ok {
		return FamousMatch{}, false
	}
	m := FamousMatch{
		Match: source.Match{
			Name:               e.artist,
			Artist:             e.artist,
			Popularity:         e.popularity,
			Followers:          e.followers,
			Genres:             []string{e.genre},
			Similarity:         1.0,
			PhoneticSimilarity: 1.0,
			IsExact:            true,
			Tier:               similarity.TierExact,
			SourceID:           "curated",
		},
		Alternatives: DefaultSuggestions{}.Alternatives(name, entity),
		Links: []source.Link{
			{Label: "Search the web", URL: WebSearchURL(e.artist)},
		},
	}
	return m, true
}

// DefaultSuggestions derives alternative names from the query itself.
// It is deterministic so repeated requests suggest the same names.
type DefaultSuggestions struct{}

var bandSuffixes = []string{"Collective", "Project", "Revival", "Society", "Syndicate"}

func (DefaultSuggestions) Alternatives(name string, entity similarity.EntityType) []string {
	if name == "" {
		return nil
	}
	if entity == similarity.EntitySong {
		return []string{
			name + " (Reprise)",
			name + " Again",
			"After " + name,
		}
	}
	out := make([]string, 0, len(bandSuffixes)+1)
	if !strings.HasPrefix(similarity.Normalize(name), "the ") {
		out = append(out, "The "+name)
	}
	for _, s := range bandSuffixes {
		out = append(out, name+" "+s)
	}
	return out
}

func (DefaultSuggestions) Links(name string, entity similarity.EntityType) []source.Link {
	return nil
}

// WebSearchURL builds a general web search link for a name.
func WebSearchURL(query string) string {
	return fmt.Sprintf("https://duckduckgo.com/?q=%s", url.QueryEscape(query+" band"))
}
