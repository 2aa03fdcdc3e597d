// Package decision applies the ordered verdict rules over aggregated
// evidence and prices the result: outcome, confidence, recommended action,
// and a cache lifetime appropriate to each outcome.
package decision

import "time"

// Outcome is the pipeline's verdict on a name.
type Outcome string

// Verdict outcomes.
const (
	OutcomeTaken     Outcome = "taken"
	OutcomeSimilar   Outcome = "similar"
	OutcomeAvailable Outcome = "available"
	OutcomeUncertain Outcome = "uncertain"
)

// Reason identifies which rule produced an outcome.
type Reason string

// Reason codes, one per rule plus the internal-error fallback.
const (
	ReasonExactMatch     Reason = "exact-match-found"
	ReasonSimilarMatch   Reason = "similar-match-found"
	ReasonFamousArtist   Reason = "famous-artist-match"
	ReasonInsufficient   Reason = "insufficient-evidence"
	ReasonPlatformsDown  Reason = "platform-unavailable"
	ReasonNoMatches      Reason = "no-matches-found"
	ReasonInternalError  Reason = "verification-error"
	ReasonCuratedDelight Reason = "curated-delight"
)

// ConfidenceBand buckets a confidence value for display.
type ConfidenceBand string

// Confidence bands.
const (
	BandVeryLow  ConfidenceBand = "very-low"
	BandLow      ConfidenceBand = "low"
	BandMedium   ConfidenceBand = "medium"
	BandHigh     ConfidenceBand = "high"
	BandVeryHigh ConfidenceBand = "very-high"
)

// Action is the caller-facing recommendation derived from outcome and confidence.
type Action string

// Recommended actions.
const (
	ActionAvoid              Action = "avoid"
	ActionConsiderAlternates Action = "consider-alternatives"
	ActionProceedWithCaution Action = "proceed-with-caution"
	ActionSafeToUse          Action = "safe-to-use"
)

// Cache lifetimes per outcome. Taken is the most stable signal so it caches
// longest; Similar is the most volatile cacheable verdict; Uncertain caches
// just long enough to absorb retry storms during an outage.
const (
	TTLTaken     = 7 * 24 * time.Hour
	TTLAvailable = 3 * 24 * time.Hour
	TTLSimilar   = 24 * time.Hour
	TTLUncertain = 5 * time.Minute
)

// Decision is the engine's verdict, produced exactly once per request.
type Decision struct {
	Outcome             Outcome        `json:"outcome"`
	Confidence          float64        `json:"confidence"`
	ConfidenceBand      ConfidenceBand `json:"confidence_band"`
	PrimaryReason       Reason         `json:"primary_reason"`
	ContributingFactors []string       `json:"contributing_factors,omitempty"`
	CacheTTL            time.Duration  `json:"cache_ttl"`
	RecommendedAction   Action         `json:"recommended_action"`
}

// BandFor buckets a confidence value.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= 0.85:
		return BandVeryHigh
	case confidence >= 0.65:
		return BandHigh
	case confidence >= 0.45:
		return BandMedium
	case confidence >= 0.25:
		return BandLow
	default:
		return BandVeryLow
	}
}

// TTLFor returns the cache lifetime for an outcome.
func TTLFor(outcome Outcome) time.Duration {
	switch outcome {
	case OutcomeTaken:
		return TTLTaken
	case OutcomeSimilar:
		return TTLSimilar
	case OutcomeAvailable:
		return TTLAvailable
	default:
		return TTLUncertain
	}
}

// ActionFor derives the recommendation purely from outcome and confidence.
func ActionFor(outcome Outcome, confidence float64) Action {
	switch outcome {
	case OutcomeTaken:
		if confidence >= 0.70 {
			return ActionAvoid
		}
		return ActionConsiderAlternates
	case OutcomeSimilar:
		if confidence >= 0.60 {
			return ActionConsiderAlternates
		}
		return ActionProceedWithCaution
	case OutcomeAvailable:
		if confidence >= 0.70 {
			return ActionSafeToUse
		}
		return ActionProceedWithCaution
	default:
		return ActionProceedWithCaution
	}
}
