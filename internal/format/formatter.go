// Package format renders a decision plus its evidence into the public
// verification result. Everything here is pure; no clocks, no I/O.
package format

import (
	"fmt"
	"strings"

	"github.com/nameclear/nameclear/internal/decision"
	"github.com/nameclear/nameclear/internal/evidence"
	"github.com/nameclear/nameclear/internal/shortcut"
	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
	"github.com/nameclear/nameclear/internal/uniqueness"
)

// DegradedNotice marks explanations produced while catalogs were
// unreachable. The cache refuses to persist results carrying it.
const DegradedNotice = "verification temporarily limited"

const (
	maxAlternatives = 5
	maxLinks        = 6
)

// Result is the public output of a verification request.
type Result struct {
	Name              string                  `json:"name"`
	EntityType        similarity.EntityType   `json:"entity_type"`
	Status            decision.Outcome        `json:"status"`
	Confidence        float64                 `json:"confidence"`
	ConfidenceBand    decision.ConfidenceBand `json:"confidence_band"`
	Explanation       string                  `json:"explanation"`
	DetailText        string                  `json:"detail_text,omitempty"`
	RecommendedAction decision.Action         `json:"recommended_action"`
	AlternativeNames  []string                `json:"alternative_names,omitempty"`
	VerificationLinks []source.Link           `json:"verification_links,omitempty"`
	SourcesChecked    []source.Name           `json:"sources_checked,omitempty"`
	SourcesFailed     []source.Name           `json:"sources_failed,omitempty"`
	Uniqueness        *uniqueness.Score       `json:"uniqueness,omitempty"`
}

// Build assembles the user-facing result. famous is non-nil only when the
// curated famous-artist table answered the request; alternatives and
// extraLinks come from the suggestion collaborators and may be empty.
func Build(name string, entity similarity.EntityType, dec decision.Decision, agg evidence.Aggregated, famous *shortcut.FamousMatch, alternatives []string, extraLinks []source.Link) Result {
	top := topMatch(agg, famous)

	r := Result{
		Name:              name,
		EntityType:        entity,
		Status:            dec.Outcome,
		Confidence:        dec.Confidence,
		ConfidenceBand:    dec.ConfidenceBand,
		RecommendedAction: dec.RecommendedAction,
		SourcesChecked:    agg.SourcesQueried,
		SourcesFailed:     agg.SourcesFailed,
	}
	r.Explanation, r.DetailText = narrate(name, entity, dec, agg, top)

	if dec.Outcome == decision.OutcomeTaken || dec.Outcome == decision.OutcomeSimilar {
		r.AlternativeNames = capStrings(alternatives, maxAlternatives)
	}
	r.VerificationLinks = buildLinks(name, entity, extraLinks)
	return r
}

// FromCanned converts a curated delight result into the public shape.
func FromCanned(name string, entity similarity.EntityType, c shortcut.Canned) Result {
	return Result{
		Name:              name,
		EntityType:        entity,
		Status:            c.Outcome,
		Confidence:        c.Confidence,
		ConfidenceBand:    decision.BandFor(c.Confidence),
		Explanation:       c.Explanation,
		DetailText:        c.DetailText,
		RecommendedAction: decision.ActionFor(c.Outcome, c.Confidence),
		VerificationLinks: c.Links,
	}
}

func topMatch(agg evidence.Aggregated, famous *shortcut.FamousMatch) *source.Match {
	if famous != nil {
		m := famous.Match
		return &m
	}
	if len(agg.AllMatches) > 0 {
		m := agg.AllMatches[0]
		return &m
	}
	return nil
}

func narrate(name string, entity similarity.EntityType, dec decision.Decision, agg evidence.Aggregated, top *source.Match) (explanation, detail string) {
	kind := "band name"
	if entity == similarity.EntitySong {
		kind = "song title"
	}

	switch dec.Outcome {
	case decision.OutcomeTaken:
		explanation = fmt.Sprintf("The %s %q is already taken.", kind, name)
		detail = describeMatch(top)
	case decision.OutcomeSimilar:
		explanation = fmt.Sprintf("Names very similar to %q already exist.", name)
		if top != nil {
			detail = fmt.Sprintf("Closest existing name is %q (%.0f%% similar). %s",
				top.Name, top.Similarity*100, describeMatch(top))
		}
	case decision.OutcomeAvailable:
		explanation = fmt.Sprintf("The %s %q appears to be available.", kind, name)
		detail = fmt.Sprintf("No significant matches across %d of %d catalogs checked.",
			len(agg.SourcesSucceeded), len(agg.SourcesQueried))
	default:
		if dec.PrimaryReason == decision.ReasonPlatformsDown || dec.PrimaryReason == decision.ReasonInternalError {
			explanation = fmt.Sprintf("Could not verify %q: %s.", name, DegradedNotice)
			detail = fmt.Sprintf("%d of %d catalogs were unreachable. Try again shortly.",
				len(agg.SourcesFailed), len(agg.SourcesQueried))
		} else {
			explanation = fmt.Sprintf("Not enough evidence to verify %q.", name)
			detail = fmt.Sprintf("Only %d of %d catalogs returned usable answers.",
				len(agg.SourcesSucceeded), len(agg.SourcesQueried))
		}
	}

	if detail != "" && len(dec.ContributingFactors) > 0 {
		detail += " (" + strings.Join(dec.ContributingFactors, "; ") + ")"
	}
	return explanation, detail
}

func describeMatch(m *source.Match) string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found as %q", m.Name)
	if m.Artist != "" && m.Artist != m.Name {
		fmt.Fprintf(&b, " by %s", m.Artist)
	}
	if m.SourceID != "" {
		fmt.Fprintf(&b, " on %s", m.SourceID.DisplayName())
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(&b, " (genre: %s)", m.Genres[0])
	}
	if m.Popularity > 0 {
		fmt.Fprintf(&b, " with popularity %d/100", m.Popularity)
	}
	b.WriteString(".")
	return b.String()
}

func buildLinks(name string, entity similarity.EntityType, extra []source.Link) []source.Link {
	links := make([]source.Link, 0, maxLinks)
	links = append(links, extra...)
	for _, n := range source.AllNames() {
		if len(links) >= maxLinks {
			return links[:maxLinks]
		}
		if u := source.SearchURL(n, name, entity); u != "" {
			links = append(links, source.Link{
				Label: "Search " + n.DisplayName(),
				URL:   u,
			})
		}
	}
	if len(links) < maxLinks {
		links = append(links, source.Link{
			Label: "Search the web",
			URL:   shortcut.WebSearchURL(name),
		})
	}
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	return links
}

func capStrings(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
