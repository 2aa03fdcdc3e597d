// Package evidence merges per-catalog search evidence into one deduplicated,
// quality-ranked view for the decision engine.
package evidence

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
)

// Quality grades how much of the aggregated evidence is trustworthy.
type Quality string

// Aggregation quality grades.
const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// duplicateThreshold is the dedup-key similarity above which two matches are
// treated as the same real-world entity.
const duplicateThreshold = 0.85

// maxCategorized caps the exact and similar lists to bound downstream work.
const maxCategorized = 20

// oldReleaseYears is the age beyond which a release draws a recency penalty.
const oldReleaseYears = 30

// Aggregated is the merged view across all catalogs. Built once per request;
// read-only afterward.
type Aggregated struct {
	QueryName        string                          `json:"query_name"`
	AllMatches       []source.Match                  `json:"all_matches"`
	ExactMatches     []source.Match                  `json:"exact_matches"`
	SimilarMatches   []source.Match                  `json:"similar_matches"`
	PerSource        map[source.Name]source.Evidence `json:"per_source"`
	TotalResults     int                             `json:"total_results"`
	TopSimilarity    float64                         `json:"top_similarity"`
	AvgReliability   float64                         `json:"avg_reliability"`
	SourcesQueried   []source.Name                   `json:"sources_queried"`
	SourcesSucceeded []source.Name                   `json:"sources_succeeded"`
	SourcesFailed    []source.Name                   `json:"sources_failed"`
	Quality          Quality                         `json:"quality"`
}

// Aggregator deduplicates, merges, and ranks evidence across catalogs.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an Aggregator.
func New(logger *slog.Logger) *Aggregator {
	return &Aggregator{
		logger: logger.With(slog.String("component", "aggregator")),
	}
}

// Aggregate merges per-catalog evidence into one view. It is deterministic
// and idempotent: the same evidence set always yields the same result,
// regardless of map iteration order.
func (a *Aggregator) Aggregate(query string, entity similarity.EntityType, perSource map[source.Name]source.Evidence) Aggregated {
	agg := Aggregated{
		QueryName: query,
		PerSource: perSource,
	}

	var names []source.Name
	for name := range perSource {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var candidates []source.Match
	var reliabilitySum float64
	goodOrExcellent := 0
	for _, name := range names {
		ev := perSource[name]
		agg.SourcesQueried = append(agg.SourcesQueried, name)
		if !ev.Reachable {
			agg.SourcesFailed = append(agg.SourcesFailed, name)
			continue
		}
		agg.SourcesSucceeded = append(agg.SourcesSucceeded, name)
		reliabilitySum += ev.ReliabilityWeight
		if ev.Quality == source.QualityGood || ev.Quality == source.QualityExcellent {
			goodOrExcellent++
		}
		agg.TotalResults += ev.TotalResults
		candidates = append(candidates, ev.Matches...)
	}
	if n := len(agg.SourcesSucceeded); n > 0 {
		agg.AvgReliability = reliabilitySum / float64(n)
	}

	deduped := a.dedupe(entity, candidates)
	sort.SliceStable(deduped, func(i, j int) bool {
		return rankScore(deduped[i]) > rankScore(deduped[j])
	})
	agg.AllMatches = deduped

	for _, m := range deduped {
		if m.Similarity > agg.TopSimilarity {
			agg.TopSimilarity = m.Similarity
		}
		if m.IsExact || m.Similarity >= 0.95 {
			if len(agg.ExactMatches) < maxCategorized {
				agg.ExactMatches = append(agg.ExactMatches, m)
			}
		} else if m.Similarity >= 0.75 {
			if len(agg.SimilarMatches) < maxCategorized {
				agg.SimilarMatches = append(agg.SimilarMatches, m)
			}
		}
	}

	agg.Quality = grade(len(agg.SourcesQueried), len(agg.SourcesSucceeded), goodOrExcellent, agg.AvgReliability)

	a.logger.Debug("aggregation completed",
		slog.Int("candidates", len(candidates)),
		slog.Int("deduped", len(deduped)),
		slog.Int("exact", len(agg.ExactMatches)),
		slog.Int("similar", len(agg.SimilarMatches)),
		slog.String("quality", string(agg.Quality)))

	return agg
}

// dedupe collapses matches that describe the same real-world entity.
// Candidates are visited best-first so the kept record starts from the
// strongest observation; duplicates either improve it or are discarded.
func (a *Aggregator) dedupe(entity similarity.EntityType, candidates []source.Match) []source.Match {
	sorted := make([]source.Match, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		x, y := sorted[i], sorted[j]
		if x.Similarity != y.Similarity {
			return x.Similarity > y.Similarity
		}
		rx, ry := source.ReliabilityWeights[x.SourceID], source.ReliabilityWeights[y.SourceID]
		if rx != ry {
			return rx > ry
		}
		if kx, ky := dedupKey(x), dedupKey(y); kx != ky {
			return kx < ky
		}
		return x.SourceID < y.SourceID
	})

	var kept []source.Match
	for _, cand := range sorted {
		idx := -1
		candKey := dedupKey(cand)
		for i, k := range kept {
			if similarity.Compare(candKey, dedupKey(k), entity).Overall >= duplicateThreshold {
				idx = i
				break
			}
		}
		if idx < 0 {
			kept = append(kept, cand)
			continue
		}
		kept[idx] = merge(kept[idx], cand)
	}
	return kept
}

// merge reconciles a kept match with a duplicate. The duplicate replaces the
// kept record only when it comes from a more reliable catalog; either way,
// previously-missing fields are filled in. A new record is returned; inputs
// are never mutated.
func merge(kept, dup source.Match) source.Match {
	base, donor := kept, dup
	if source.ReliabilityWeights[dup.SourceID] > source.ReliabilityWeights[kept.SourceID] {
		base, donor = dup, kept
		// Keep the stronger similarity observation either way.
		if kept.Similarity > base.Similarity {
			base.Similarity = kept.Similarity
			base.PhoneticSimilarity = kept.PhoneticSimilarity
			base.Tier = kept.Tier
			base.IsExact = kept.IsExact
		}
	}
	if base.Popularity == 0 {
		base.Popularity = donor.Popularity
	}
	if base.Followers == 0 {
		base.Followers = donor.Followers
	}
	if base.URL == "" {
		base.URL = donor.URL
	}
	if base.Album == "" {
		base.Album = donor.Album
	}
	if base.ReleaseDate == "" {
		base.ReleaseDate = donor.ReleaseDate
	}
	if len(base.Genres) == 0 {
		base.Genres = donor.Genres
	}
	return base
}

// rankScore orders deduplicated matches: similarity dominates, then catalog
// reliability, a log-scaled popularity bonus, an exact-match bonus, and a
// small penalty for very old releases.
func rankScore(m source.Match) float64 {
	score := 0.60*m.Similarity + 0.25*source.ReliabilityWeights[m.SourceID]
	score += popularityBonus(m)
	if m.IsExact {
		score += 0.10
	}
	if year := releaseYear(m.ReleaseDate); year > 0 && time.Now().Year()-year > oldReleaseYears {
		score -= 0.05
	}
	return score
}

// popularityBonus rewards well-known matches without letting raw follower
// counts dominate the ranking.
func popularityBonus(m source.Match) float64 {
	mass := float64(m.Popularity) + float64(m.Followers)
	if mass <= 0 {
		return 0
	}
	bonus := 0.01 * math.Log10(1+mass)
	if bonus > 0.08 {
		bonus = 0.08
	}
	return bonus
}

// grade applies the evidence-sufficiency rule: high needs three quarters of
// catalogs reachable, half answering well, and strong average reliability;
// low means fewer than half the catalogs answered at all.
func grade(queried, succeeded, goodOrExcellent int, avgReliability float64) Quality {
	if queried == 0 {
		return QualityLow
	}
	succRatio := float64(succeeded) / float64(queried)
	goodRatio := float64(goodOrExcellent) / float64(queried)
	switch {
	case succRatio >= 0.75 && goodRatio >= 0.5 && avgReliability >= 0.8:
		return QualityHigh
	case succRatio < 0.5:
		return QualityLow
	default:
		return QualityMedium
	}
}

func dedupKey(m source.Match) string {
	return similarity.Normalize(m.Name) + " " + similarity.Normalize(m.Artist)
}

// releaseYear extracts the leading year from a date string such as
// "1987-06-01" or "1987". Returns 0 when unparsable.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1000 {
		return 0
	}
	return year
}
