package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nameclear/nameclear/internal/decision"
	"github.com/nameclear/nameclear/internal/format"
	"github.com/nameclear/nameclear/internal/similarity"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleResult(confidence float64) format.Result {
	return format.Result{
		Name:        "Thunderstrike",
		EntityType:  similarity.EntityBand,
		Status:      decision.OutcomeTaken,
		Confidence:  confidence,
		Explanation: "The band name \"Thunderstrike\" is already taken.",
	}
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(t)

	if !c.Set(similarity.EntityBand, "Thunderstrike", sampleResult(0.9), time.Hour) {
		t.Fatal("expected result to be admitted")
	}
	got, ok := c.Get(similarity.EntityBand, "Thunderstrike")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Confidence != 0.9 {
		t.Errorf("unexpected cached result %+v", got)
	}
}

func TestKeyNormalization(t *testing.T) {
	c := newTestCache(t)
	c.Set(similarity.EntityBand, "MOTÖRHEAD", sampleResult(0.9), time.Hour)

	if _, ok := c.Get(similarity.EntityBand, "  motorhead "); !ok {
		t.Error("case and diacritic variants must share an entry")
	}
	if _, ok := c.Get(similarity.EntitySong, "motorhead"); ok {
		t.Error("entity types must not share entries")
	}
}

func TestAdmissionRules(t *testing.T) {
	c := newTestCache(t)

	if c.Set(similarity.EntityBand, "a", sampleResult(0.2), time.Hour) {
		t.Error("low-confidence result must be refused")
	}
	if c.Set(similarity.EntityBand, "b", sampleResult(0.9), 0) {
		t.Error("zero TTL must be refused")
	}
	degraded := sampleResult(0.9)
	degraded.Explanation = "Could not verify \"b\": " + format.DegradedNotice + "."
	if c.Set(similarity.EntityBand, "c", degraded, time.Hour) {
		t.Error("degraded result must be refused")
	}
	if s := c.Stats(); s.Keys != 0 {
		t.Errorf("expected empty cache, got %d keys", s.Keys)
	}
}

func TestExpiry(t *testing.T) {
	c := newTestCache(t)
	c.Set(similarity.EntityBand, "fleeting", sampleResult(0.9), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(similarity.EntityBand, "fleeting"); ok {
		t.Error("entry should have expired")
	}
}

func TestStatsAndClear(t *testing.T) {
	c := newTestCache(t)
	c.Set(similarity.EntityBand, "x", sampleResult(0.9), time.Hour)

	c.Get(similarity.EntityBand, "x")
	c.Get(similarity.EntityBand, "x")
	c.Get(similarity.EntityBand, "missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Fatalf("unexpected counters %+v", s)
	}
	if want := 2.0 / 3.0; s.HitRate < want-0.001 || s.HitRate > want+0.001 {
		t.Errorf("unexpected hit rate %f", s.HitRate)
	}
	if s.Keys != 1 {
		t.Errorf("expected 1 key, got %d", s.Keys)
	}

	c.Clear()
	s = c.Stats()
	if s.Hits != 0 || s.Misses != 0 || s.Keys != 0 {
		t.Errorf("expected zeroed stats, got %+v", s)
	}
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	c.Set(similarity.EntityBand, "x", sampleResult(0.9), time.Hour)
	c.Delete(similarity.EntityBand, "x")
	if _, ok := c.Get(similarity.EntityBand, "x"); ok {
		t.Error("deleted entry still present")
	}
}
