package verify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
)

// maxNameRunes bounds request names; anything longer is junk input.
const maxNameRunes = 200

// Request is a single verification query. Sources restricts the fan-out
// to the named catalogs; empty means all registered catalogs.
type Request struct {
	Name          string                `json:"name"`
	Entity        similarity.EntityType `json:"entity_type"`
	Genre         string                `json:"genre,omitempty"`
	SkipCache     bool                  `json:"skip_cache,omitempty"`
	SkipShortcuts bool                  `json:"skip_shortcuts,omitempty"`
	Sources       []source.Name         `json:"sources,omitempty"`
}

// ErrInvalidInput rejects a malformed request before any work happens.
type ErrInvalidInput struct {
	Field  string
	Reason string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Validate trims the name in place and rejects empty names, oversized
// names, and unknown entity types.
func (r *Request) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return &ErrInvalidInput{Field: "name", Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(r.Name); n > maxNameRunes {
		return &ErrInvalidInput{Field: "name", Reason: fmt.Sprintf("%d runes exceeds the %d-rune limit", n, maxNameRunes)}
	}
	if !r.Entity.Valid() {
		return &ErrInvalidInput{Field: "entity_type", Reason: fmt.Sprintf("unknown entity type %q", r.Entity)}
	}
	for _, n := range r.Sources {
		if !knownSource(n) {
			return &ErrInvalidInput{Field: "sources", Reason: fmt.Sprintf("unknown catalog %q", n)}
		}
	}
	return nil
}

func knownSource(n source.Name) bool {
	for _, known := range source.AllNames() {
		if n == known {
			return true
		}
	}
	return false
}

// allowsSource reports whether the request's allow list permits a catalog.
func (r *Request) allowsSource(n source.Name) bool {
	if len(r.Sources) == 0 {
		return true
	}
	for _, allowed := range r.Sources {
		if allowed == n {
			return true
		}
	}
	return false
}
