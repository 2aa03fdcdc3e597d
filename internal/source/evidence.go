package source

import (
	"time"

	"github.com/nameclear/nameclear/internal/similarity"
)

// BuildEvidence scores raw adapter matches against the query and assembles
// the per-catalog evidence envelope. Adapters never invent their own
// comparison; every similarity figure flows through the similarity package
// here.
func BuildEvidence(id Name, weight float64, query string, entity similarity.EntityType, matches []Match, total int, elapsed time.Duration) Evidence {
	ev := Evidence{
		SourceID:          id,
		Reachable:         true,
		ReliabilityWeight: weight,
		TotalResults:      total,
		ResponseTime:      elapsed,
	}

	th := similarity.ThresholdsFor(entity)
	for _, m := range matches {
		r := similarity.Compare(m.Name, query, entity)
		m.Similarity = r.Overall
		m.PhoneticSimilarity = r.Phonetic
		m.Tier = r.Tier
		m.IsExact = r.Tier == similarity.TierExact
		m.SourceID = id

		ev.Matches = append(ev.Matches, m)
		if m.IsExact {
			ev.ExactMatches = append(ev.ExactMatches, m)
		} else if m.Similarity >= th.Partial {
			ev.SimilarMatches = append(ev.SimilarMatches, m)
		}
	}
	if ev.TotalResults < len(ev.Matches) {
		ev.TotalResults = len(ev.Matches)
	}

	ev.Quality = gradeQuality(ev)
	return ev
}

// FailedEvidence synthesizes the envelope for a catalog that could not be
// queried. The failure contributes negative evidence; it never propagates
// as an error.
func FailedEvidence(id Name, weight float64, elapsed time.Duration, err error) Evidence {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return Evidence{
		SourceID:          id,
		Reachable:         false,
		ReliabilityWeight: weight,
		Quality:           QualityFailed,
		ResponseTime:      elapsed,
		ErrorMessage:      msg,
	}
}

// gradeQuality judges how useful one catalog's answer was: excellent when it
// produced an exact hit, good when it produced relevant candidates or a
// clearly empty answer, fair when results exist but none are close.
func gradeQuality(ev Evidence) Quality {
	switch {
	case len(ev.ExactMatches) > 0:
		return QualityExcellent
	case len(ev.SimilarMatches) > 0 || ev.TotalResults == 0:
		return QualityGood
	default:
		return QualityFair
	}
}
