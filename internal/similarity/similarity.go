// Package similarity scores how close two creative-work names are, with
// entity-specific collision policy. Bands treat a shared name as a real
// conflict; songs legitimately share titles, so their thresholds are looser.
package similarity

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EntityType distinguishes band names from song titles.
type EntityType string

// Known entity types.
const (
	EntityBand EntityType = "band"
	EntitySong EntityType = "song"
)

// Valid reports whether e is a recognized entity type.
func (e EntityType) Valid() bool {
	return e == EntityBand || e == EntitySong
}

// MatchTier classifies the strength of a name match.
type MatchTier string

// Match tiers, strongest first.
const (
	TierExact    MatchTier = "exact"
	TierPhonetic MatchTier = "phonetic"
	TierPartial  MatchTier = "partial"
	TierFuzzy    MatchTier = "fuzzy"
	TierNone     MatchTier = "none"
)

// Thresholds holds the per-entity tier cutoffs.
type Thresholds struct {
	Exact    float64
	Phonetic float64
	Partial  float64
}

// ThresholdsFor returns the tier cutoffs for an entity type. Band thresholds
// are strict; song thresholds are looser because shared titles are common.
func ThresholdsFor(entity EntityType) Thresholds {
	if entity == EntitySong {
		return Thresholds{Exact: 0.98, Phonetic: 0.90, Partial: 0.85}
	}
	return Thresholds{Exact: 0.95, Phonetic: 0.85, Partial: 0.80}
}

// fuzzyFloor is the minimum overall similarity for the fuzzy tier.
const fuzzyFloor = 0.60

// shortNameRunes bounds the "short common word" down-weighting rule.
const shortNameRunes = 8

// Result holds the component scores of one name comparison.
type Result struct {
	Overall      float64   `json:"overall"`
	Phonetic     float64   `json:"phonetic"`
	EditDistance int       `json:"edit_distance"`
	Token        float64   `json:"token"`
	Confidence   float64   `json:"confidence"`
	Tier         MatchTier `json:"tier"`
}

// Normalize lowercases, strips diacritics, and collapses whitespace.
// Cache keys and all comparisons go through this.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Compare scores two names against each other. All component measures are
// symmetric in their arguments.
func Compare(a, b string, entity EntityType) Result {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return Result{Tier: TierNone}
	}

	if na == nb {
		return Result{
			Overall:    1,
			Phonetic:   1,
			Token:      1,
			Confidence: 1,
			Tier:       TierExact,
		}
	}

	dist := levenshtein.Distance(na, nb, nil)
	edit := levenshtein.Similarity(na, nb, nil)
	phon := phoneticSimilarity(na, nb)
	token := tokenSimilarity(na, nb)

	overall := 0.55*edit + 0.25*phon + 0.20*token

	// Short single common words ("fire", "ice") collide phonetically far too
	// often to trust anything below an exact match.
	if entity == EntityBand && (isShortSingleWord(na) || isShortSingleWord(nb)) {
		overall *= 0.80
	}

	th := ThresholdsFor(entity)
	tier := TierNone
	switch {
	case overall >= th.Exact:
		tier = TierExact
	case phon >= th.Phonetic && overall >= fuzzyFloor:
		tier = TierPhonetic
	case overall >= th.Partial:
		tier = TierPartial
	case overall >= fuzzyFloor:
		tier = TierFuzzy
	}

	return Result{
		Overall:      clamp01(overall),
		Phonetic:     clamp01(phon),
		EditDistance: dist,
		Token:        clamp01(token),
		Confidence:   signalAgreement(edit, phon, token),
		Tier:         tier,
	}
}

// IsSignificantCollision reports whether candidate should be treated as the
// same real-world entity as searchName. Bands accept near-exact matches with
// a length ratio above 0.8; songs accept only normalized string equality.
func IsSignificantCollision(candidate, searchName string, entity EntityType) bool {
	nc, ns := Normalize(candidate), Normalize(searchName)
	if nc == "" || ns == "" {
		return false
	}
	if nc == ns {
		return true
	}
	if entity == EntitySong {
		return false
	}

	r := Compare(nc, ns, entity)
	th := ThresholdsFor(entity)
	return r.Overall >= th.Phonetic && lengthRatio(nc, ns) > 0.8
}

// phoneticSimilarity compares double metaphone encodings. Matching codes on
// either the primary or alternate encoding count as a full phonetic match;
// otherwise the primary codes are compared by edit similarity.
func phoneticSimilarity(a, b string) float64 {
	p1, s1 := matchr.DoubleMetaphone(a)
	p2, s2 := matchr.DoubleMetaphone(b)
	if p1 == "" || p2 == "" {
		return 0
	}
	if p1 == p2 || p1 == s2 || s1 == p2 || (s1 != "" && s1 == s2) {
		return 1
	}
	return levenshtein.Similarity(p1, p2, nil)
}

// tokenSimilarity is the Jaccard overlap of the word sets.
func tokenSimilarity(a, b string) float64 {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(wa))
	for _, w := range wa {
		set[w] = true
	}
	shared := 0
	union := len(set)
	seen := make(map[string]bool, len(wb))
	for _, w := range wb {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set[w] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

// signalAgreement estimates measurement confidence: the closer the three
// component signals agree, the more trustworthy the overall score.
func signalAgreement(vals ...float64) float64 {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return clamp01(0.5 + 0.5*(1-(hi-lo)))
}

func isShortSingleWord(s string) bool {
	return !strings.ContainsRune(s, ' ') && len([]rune(s)) < shortNameRunes
}

func lengthRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
