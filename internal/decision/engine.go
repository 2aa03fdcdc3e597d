package decision

import (
	"fmt"
	"log/slog"

	"github.com/nameclear/nameclear/internal/evidence"
	"github.com/nameclear/nameclear/internal/similarity"
)

// uncertainDiscount and uncertainCap shrink confidence on Uncertain
// verdicts: the evidence behind them is by definition incomplete.
const (
	uncertainDiscount = 0.70
	uncertainCap      = 0.50
)

// Engine evaluates the ordered rule chain over aggregated evidence.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a decision engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		logger: logger.With(slog.String("component", "decision-engine")),
	}
}

// Evaluate walks the rules in order and returns the first verdict that
// fires. famousMatch reports whether the curated famous-artist collaborator
// recognized the name.
func (e *Engine) Evaluate(entity similarity.EntityType, agg evidence.Aggregated, famousMatch bool) Decision {
	outcome, reason, factors := e.selectOutcome(entity, agg, famousMatch)
	conf := e.confidence(outcome, reason, agg)

	d := Decision{
		Outcome:             outcome,
		Confidence:          conf,
		ConfidenceBand:      BandFor(conf),
		PrimaryReason:       reason,
		ContributingFactors: append(factors, evidenceFactors(agg)...),
		CacheTTL:            TTLFor(outcome),
		RecommendedAction:   ActionFor(outcome, conf),
	}

	e.logger.Debug("decision made",
		slog.String("outcome", string(outcome)),
		slog.String("reason", string(reason)),
		slog.Float64("confidence", conf))

	return d
}

// InternalError builds the fallback decision for an unexpected failure
// inside aggregation or rule evaluation. The caller still receives a
// well-formed, briefly-cacheable verdict.
func (e *Engine) InternalError(err error) Decision {
	e.logger.Error("verification failed internally", slog.String("error", fmt.Sprint(err)))
	return Decision{
		Outcome:             OutcomeUncertain,
		Confidence:          0.1,
		ConfidenceBand:      BandFor(0.1),
		PrimaryReason:       ReasonInternalError,
		ContributingFactors: []string{"internal error during verification"},
		CacheTTL:            TTLUncertain,
		RecommendedAction:   ActionProceedWithCaution,
	}
}

// selectOutcome is the strictly ordered rule chain; the first rule that
// fires wins.
func (e *Engine) selectOutcome(entity similarity.EntityType, agg evidence.Aggregated, famousMatch bool) (Outcome, Reason, []string) {
	// 1. Any exact match means the name is taken.
	if len(agg.ExactMatches) > 0 {
		return OutcomeTaken, ReasonExactMatch,
			[]string{fmt.Sprintf("%d exact match(es), best from %s", len(agg.ExactMatches), agg.ExactMatches[0].SourceID)}
	}

	// 2. A similar match only counts when the entity-specific collision
	// policy accepts it.
	for _, m := range agg.SimilarMatches {
		if similarity.IsSignificantCollision(m.Name, agg.QueryName, entity) {
			return OutcomeSimilar, ReasonSimilarMatch,
				[]string{fmt.Sprintf("significant collision with %q from %s", m.Name, m.SourceID)}
		}
	}

	// 3. The curated famous-artist table outranks catalog silence.
	if famousMatch {
		return OutcomeTaken, ReasonFamousArtist, []string{"name matches a curated famous artist"}
	}

	// 4. Evidence sufficiency.
	if len(agg.SourcesSucceeded) < 2 || agg.AvgReliability < 0.7 || agg.Quality == evidence.QualityLow {
		return OutcomeUncertain, ReasonInsufficient,
			[]string{fmt.Sprintf("only %d source(s) answered", len(agg.SourcesSucceeded))}
	}

	// 5. Majority outage.
	if len(agg.SourcesFailed) > len(agg.SourcesSucceeded) {
		return OutcomeUncertain, ReasonPlatformsDown,
			[]string{fmt.Sprintf("%d of %d sources unavailable", len(agg.SourcesFailed), len(agg.SourcesQueried))}
	}

	// 6. Busy result space but nothing close: strong availability signal.
	th := similarity.ThresholdsFor(entity)
	if agg.TopSimilarity < th.Partial && agg.TotalResults >= 10 {
		return OutcomeAvailable, ReasonNoMatches,
			[]string{fmt.Sprintf("%d results searched, none similar", agg.TotalResults)}
	}

	// 7. Default: nothing close enough to matter.
	return OutcomeAvailable, ReasonNoMatches, nil
}

// famousConfidence is fixed because curated table hits carry no catalog
// evidence to weigh.
const famousConfidence = 0.95

// confidence weighs source corroboration, reliability, and match strength.
func (e *Engine) confidence(outcome Outcome, reason Reason, agg evidence.Aggregated) float64 {
	if reason == ReasonFamousArtist {
		return famousConfidence
	}
	succRatio := 0.0
	if n := len(agg.SourcesQueried); n > 0 {
		succRatio = float64(len(agg.SourcesSucceeded)) / float64(n)
	}

	var conf float64
	switch outcome {
	case OutcomeTaken:
		conf = 0.55 + 0.25*agg.TopSimilarity + 0.20*agg.AvgReliability
	case OutcomeSimilar:
		conf = 0.45 + 0.20*agg.TopSimilarity + 0.20*agg.AvgReliability + 0.10*succRatio
	case OutcomeAvailable:
		conf = 0.30 + 0.35*succRatio + 0.25*agg.AvgReliability - 0.15*agg.TopSimilarity
	default:
		conf = 0.30*succRatio + 0.40*agg.AvgReliability
		conf *= uncertainDiscount
		if conf > uncertainCap {
			conf = uncertainCap
		}
	}

	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// evidenceFactors summarizes the evidence behind any verdict.
func evidenceFactors(agg evidence.Aggregated) []string {
	return []string{
		fmt.Sprintf("%d/%d sources reachable", len(agg.SourcesSucceeded), len(agg.SourcesQueried)),
		fmt.Sprintf("aggregation quality %s", agg.Quality),
		fmt.Sprintf("top similarity %.2f", agg.TopSimilarity),
	}
}
