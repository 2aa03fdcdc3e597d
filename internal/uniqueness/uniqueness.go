// Package uniqueness scores a name's intrinsic distinctiveness from the
// string alone. No catalog lookups, no I/O; a pure function of the name and
// an optional genre hint.
package uniqueness

import (
	"strings"

	"github.com/nameclear/nameclear/internal/similarity"
)

// Band classifies a score into a five-level recommendation.
type Band string

// Recommendation bands, least distinctive first.
const (
	BandVeryCommon Band = "very-common"
	BandCommon     Band = "common"
	BandModerate   Band = "moderate"
	BandUnique     Band = "unique"
	BandVeryUnique Band = "very-unique"
)

// Scoring constants. Factors are summed onto the baseline and the result is
// clamped to [0,1].
const (
	baseline           = 1.0
	commonWordPenalty  = 0.15
	lengthBonus        = 0.10
	lengthBonusRunes   = 12
	complexityBonus    = 0.15
	vocabularyBonus    = 0.20
	technicalBonus     = 0.15
	genreBonus         = 0.10
	uncommonWordRunes  = 6
	complexityMinWords = 3
)

// Score breaks down a name's distinctiveness.
type Score struct {
	Value             float64  `json:"value"`
	Band              Band     `json:"band"`
	CommonWordPenalty float64  `json:"common_word_penalty"`
	LengthBonus       float64  `json:"length_bonus"`
	ComplexityBonus   float64  `json:"complexity_bonus"`
	VocabularyBonus   float64  `json:"vocabulary_bonus"`
	GenreBonus        float64  `json:"genre_bonus"`
	Factors           []string `json:"factors,omitempty"`
}

// commonFillerWords carry essentially no distinguishing power in a name.
var commonFillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "and": true, "in": true,
	"on": true, "my": true, "your": true, "this": true, "that": true,
	"love": true, "heart": true, "night": true, "day": true, "girl": true,
	"boy": true, "baby": true, "time": true, "life": true, "world": true,
	"fire": true, "rain": true, "dream": true, "dreams": true, "soul": true,
	"rock": true, "band": true, "blue": true, "black": true, "red": true,
	"new": true, "one": true, "big": true, "little": true, "good": true,
}

// unusualWords are curated rare or evocative terms that make a name stand out.
var unusualWords = map[string]bool{
	"obsidian": true, "ephemeral": true, "labyrinth": true, "chrysalis": true,
	"penumbra": true, "zenith": true, "vermilion": true, "halcyon": true,
	"sonder": true, "petrichor": true, "aurora": true, "nebula": true,
	"quixotic": true, "serpentine": true, "gossamer": true, "umbra": true,
	"lacuna": true, "vesper": true, "solstice": true, "equinox": true,
}

// technicalWords are scientific or technical vocabulary rarely seen in names.
var technicalWords = map[string]bool{
	"quantum": true, "entropy": true, "voltage": true, "catalyst": true,
	"isotope": true, "algorithm": true, "synthesis": true, "resonance": true,
	"frequency": true, "parallax": true, "photon": true, "neutron": true,
	"helix": true, "vector": true, "binary": true, "cipher": true,
	"flux": true, "plasma": true, "tensor": true, "axiom": true,
}

// genreThemes maps a genre to words that read as native to it.
var genreThemes = map[string][]string{
	"metal":      {"iron", "steel", "doom", "grave", "blood", "storm", "wraith", "inferno"},
	"electronic": {"pulse", "circuit", "neon", "static", "wave", "signal", "echo", "drift"},
	"folk":       {"river", "willow", "harvest", "lantern", "sparrow", "meadow", "ember"},
	"jazz":       {"velvet", "smoke", "midnight", "brass", "indigo", "cool"},
	"punk":       {"riot", "wreck", "spit", "gutter", "broke", "rat"},
	"hiphop":     {"street", "gold", "crown", "hustle", "block", "real"},
	"rock":       {"stone", "thunder", "wheel", "road", "wild", "howl"},
}

// Evaluate scores a single name. The genre hint is optional.
func Evaluate(name, genre string) Score {
	normalized := similarity.Normalize(name)
	words := strings.Fields(normalized)

	s := Score{Value: baseline}
	if len(words) == 0 {
		s.Value = 0
		s.Band = BandVeryCommon
		return s
	}

	for _, w := range words {
		if commonFillerWords[w] {
			s.CommonWordPenalty += commonWordPenalty
			s.Factors = append(s.Factors, "common word: "+w)
		}
		if unusualWords[w] && s.VocabularyBonus == 0 {
			s.VocabularyBonus = vocabularyBonus
			s.Factors = append(s.Factors, "unusual vocabulary: "+w)
		}
		if technicalWords[w] && s.VocabularyBonus < vocabularyBonus+technicalBonus {
			s.VocabularyBonus += technicalBonus
			s.Factors = append(s.Factors, "technical vocabulary: "+w)
		}
	}

	if len([]rune(normalized)) >= lengthBonusRunes {
		s.LengthBonus = lengthBonus
		s.Factors = append(s.Factors, "distinctive length")
	}

	if len(words) >= complexityMinWords && countUncommonLongWords(words) >= 2 {
		s.ComplexityBonus = complexityBonus
		s.Factors = append(s.Factors, "multi-word complexity")
	}

	if g := strings.ToLower(strings.TrimSpace(genre)); g != "" {
		for _, theme := range genreThemes[g] {
			if containsWord(words, theme) {
				s.GenreBonus = genreBonus
				s.Factors = append(s.Factors, "genre theme: "+theme)
				break
			}
		}
	}

	s.Value = clamp01(baseline - s.CommonWordPenalty + s.LengthBonus +
		s.ComplexityBonus + s.VocabularyBonus + s.GenreBonus)
	s.Band = bandFor(s.Value)
	return s
}

func bandFor(v float64) Band {
	switch {
	case v >= 0.85:
		return BandVeryUnique
	case v >= 0.65:
		return BandUnique
	case v >= 0.45:
		return BandModerate
	case v >= 0.25:
		return BandCommon
	default:
		return BandVeryCommon
	}
}

func countUncommonLongWords(words []string) int {
	n := 0
	for _, w := range words {
		if len([]rune(w)) >= uncommonWordRunes && !commonFillerWords[w] {
			n++
		}
	}
	return n
}

func containsWord(words []string, w string) bool {
	for _, v := range words {
		if v == w {
			return true
		}
	}
	return false
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
