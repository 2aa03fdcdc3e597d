package evidence

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func builtEvidence(t *testing.T, id source.Name, query string, matches []source.Match, total int) source.Evidence {
	t.Helper()
	return source.BuildEvidence(id, source.ReliabilityWeights[id], query, similarity.EntityBand, matches, total, 50*time.Millisecond)
}

func TestAggregateSourceBookkeeping(t *testing.T) {
	agg := newTestAggregator(t)
	perSource := map[source.Name]source.Evidence{
		source.NameMusicBrainz: builtEvidence(t, source.NameMusicBrainz, "Thunderstrike",
			[]source.Match{{Name: "Thunderstrike"}}, 1),
		source.NameDeezer: source.FailedEvidence(source.NameDeezer, 0.85, time.Second, io.ErrUnexpectedEOF),
		source.NameITunes: builtEvidence(t, source.NameITunes, "Thunderstrike", nil, 0),
	}

	got := agg.Aggregate("query", similarity.EntityBand, perSource)

	if len(got.SourcesQueried) != 3 {
		t.Fatalf("expected 3 queried, got %d", len(got.SourcesQueried))
	}
	if len(got.SourcesSucceeded) != 2 || len(got.SourcesFailed) != 1 {
		t.Fatalf("succeeded=%v failed=%v", got.SourcesSucceeded, got.SourcesFailed)
	}
	// Succeeded and failed must partition queried.
	seen := make(map[source.Name]int)
	for _, n := range got.SourcesSucceeded {
		seen[n]++
	}
	for _, n := range got.SourcesFailed {
		seen[n]++
	}
	for _, n := range got.SourcesQueried {
		if seen[n] != 1 {
			t.Errorf("source %s appears %d times across succeeded/failed", n, seen[n])
		}
	}
	want := (1.0 + 0.9) / 2
	if diff := got.AvgReliability - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("avg reliability = %f, want %f", got.AvgReliability, want)
	}
}

func TestAggregateDeduplicatesAcrossSources(t *testing.T) {
	agg := newTestAggregator(t)
	perSource := map[source.Name]source.Evidence{
		source.NameMusicBrainz: builtEvidence(t, source.NameMusicBrainz, "Thunderstrike",
			[]source.Match{{Name: "Thunderstrike", Artist: "Thunderstrike"}}, 1),
		source.NameDeezer: builtEvidence(t, source.NameDeezer, "Thunderstrike",
			[]source.Match{{Name: "Thunderstrike", Artist: "Thunderstrike", Followers: 12000, URL: "https://www.deezer.com/artist/1"}}, 1),
	}

	got := agg.Aggregate("query", similarity.EntityBand, perSource)

	if len(got.AllMatches) != 1 {
		t.Fatalf("expected 1 deduplicated match, got %d", len(got.AllMatches))
	}
	m := got.AllMatches[0]
	// The more reliable catalog wins the record; the duplicate fills in the
	// fields it was missing.
	if m.SourceID != source.NameMusicBrainz {
		t.Errorf("expected musicbrainz to own the merged record, got %s", m.SourceID)
	}
	if m.Followers != 12000 {
		t.Errorf("expected followers filled from duplicate, got %d", m.Followers)
	}
	if m.URL == "" {
		t.Error("expected URL filled from duplicate")
	}
	if len(got.ExactMatches) != 1 {
		t.Fatalf("expected 1 exact match, got %d", len(got.ExactMatches))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	agg := newTestAggregator(t)
	perSource := map[source.Name]source.Evidence{
		source.NameMusicBrainz: builtEvidence(t, source.NameMusicBrainz, "Fire",
			[]source.Match{{Name: "Fire", Artist: "Fire"}, {Name: "Firebird", Artist: "Owl City"}}, 2),
		source.NameDeezer: builtEvidence(t, source.NameDeezer, "Fire",
			[]source.Match{{Name: "Fire", Artist: "Fire", Followers: 300}}, 1),
		source.NameLastFM: source.FailedEvidence(source.NameLastFM, 0.75, time.Second, io.ErrUnexpectedEOF),
	}

	first := agg.Aggregate("query", similarity.EntityBand, perSource)
	second := agg.Aggregate("query", similarity.EntityBand, perSource)

	if !reflect.DeepEqual(first.AllMatches, second.AllMatches) {
		t.Error("aggregation is not idempotent: match lists differ")
	}
	if first.Quality != second.Quality || first.TopSimilarity != second.TopSimilarity {
		t.Error("aggregation is not idempotent: summary fields differ")
	}
	if !reflect.DeepEqual(first.SourcesSucceeded, second.SourcesSucceeded) {
		t.Error("aggregation is not idempotent: source lists differ")
	}
}

func TestAggregateExactSubsetOfAll(t *testing.T) {
	agg := newTestAggregator(t)
	perSource := map[source.Name]source.Evidence{
		source.NameMusicBrainz: builtEvidence(t, source.NameMusicBrainz, "Fire",
			[]source.Match{{Name: "Fire", Artist: "Fire"}, {Name: "Fired Up", Artist: "Someone"}}, 2),
	}
	got := agg.Aggregate("query", similarity.EntityBand, perSource)

	all := make(map[string]bool)
	for _, m := range got.AllMatches {
		all[m.Name+"|"+m.Artist] = true
	}
	for _, m := range got.ExactMatches {
		if !all[m.Name+"|"+m.Artist] {
			t.Errorf("exact match %q not present in all matches", m.Name)
		}
	}
}

func TestAggregateQualityGrades(t *testing.T) {
	agg := newTestAggregator(t)

	allGood := map[source.Name]source.Evidence{
		source.NameMusicBrainz: builtEvidence(t, source.NameMusicBrainz, "x", []source.Match{{Name: "x", Artist: "x"}}, 1),
		source.NameITunes:      builtEvidence(t, source.NameITunes, "x", nil, 0),
		source.NameDeezer:      builtEvidence(t, source.NameDeezer, "x", nil, 0),
		source.NameLastFM:      builtEvidence(t, source.NameLastFM, "x", nil, 0),
	}
	if q := agg.Aggregate("x", similarity.EntityBand, allGood).Quality; q != QualityHigh {
		t.Errorf("all catalogs good: expected high, got %q", q)
	}

	mostlyFailed := map[source.Name]source.Evidence{
		source.NameMusicBrainz: builtEvidence(t, source.NameMusicBrainz, "x", nil, 0),
		source.NameITunes:      source.FailedEvidence(source.NameITunes, 0.9, time.Second, io.ErrUnexpectedEOF),
		source.NameDeezer:      source.FailedEvidence(source.NameDeezer, 0.85, time.Second, io.ErrUnexpectedEOF),
		source.NameLastFM:      source.FailedEvidence(source.NameLastFM, 0.75, time.Second, io.ErrUnexpectedEOF),
	}
	if q := agg.Aggregate("x", similarity.EntityBand, mostlyFailed).Quality; q != QualityLow {
		t.Errorf("one of four reachable: expected low, got %q", q)
	}

	if q := agg.Aggregate("x", similarity.EntityBand, nil).Quality; q != QualityLow {
		t.Errorf("no sources: expected low, got %q", q)
	}
}

func TestAggregateCapsCategorizedLists(t *testing.T) {
	agg := newTestAggregator(t)
	var matches []source.Match
	for i := 0; i < 30; i++ {
		matches = append(matches, source.Match{Name: "Fire", Artist: artistN(i)})
	}
	perSource := map[source.Name]source.Evidence{
		source.NameMusicBrainz: builtEvidence(t, source.NameMusicBrainz, "Fire", matches, 30),
	}
	got := agg.Aggregate("query", similarity.EntityBand, perSource)
	if len(got.ExactMatches) > maxCategorized {
		t.Errorf("exact matches %d exceed cap %d", len(got.ExactMatches), maxCategorized)
	}
	if len(got.SimilarMatches) > maxCategorized {
		t.Errorf("similar matches %d exceed cap %d", len(got.SimilarMatches), maxCategorized)
	}
}

// artistN generates clearly distinct artist names so dedup keeps them apart.
func artistN(i int) string {
	names := []string{
		"Quellamara Group", "Borventide Assembly", "Ixtapol Collective", "Druvenhall Choir",
		"Saltmarsh Union", "Veldspire Trio", "Okrantide Band", "Muldavian Orchestra",
		"Pirrowake Society", "Tanglewreck Crew", "Hexambria Company", "Fjordlight Players",
		"Gravenmoor Sound", "Ashbyrne Outfit", "Coppervale Set", "Nimbuscrag Ensemble",
		"Wolfram Tide", "Ebonreach Quartet", "Lyrewood Session", "Thornmere Guild",
		"Cindervale Club", "Marrowgate Act", "Silverbeck Troupe", "Duskhollow Unit",
		"Ravenfold Squad", "Emberlyn Order", "Quartzline House", "Bramblewick Lot",
		"Stormwrought Circle", "Hollowfen League",
	}
	return names[i%len(names)]
}
