package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nameclear/nameclear/internal/cache"
	"github.com/nameclear/nameclear/internal/decision"
	"github.com/nameclear/nameclear/internal/shortcut"
	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
	"github.com/nameclear/nameclear/internal/verify"
)

// stubSource is a canned catalog adapter for handler tests.
type stubSource struct {
	name    source.Name
	matches []source.Match
	total   int
}

func (s *stubSource) Name() source.Name          { return s.name }
func (s *stubSource) ReliabilityWeight() float64 { return source.ReliabilityWeights[s.name] }
func (s *stubSource) RequiresAuth() bool         { return false }

func (s *stubSource) Search(_ context.Context, _ string, _ similarity.EntityType) ([]source.Match, int, error) {
	return s.matches, s.total, nil
}

func (s *stubSource) HealthCheck(context.Context) error { return nil }

func newTestServer(t *testing.T, matches []source.Match) (*httptest.Server, *cache.Cache) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := source.NewRegistry()
	for _, n := range source.AllNames() {
		registry.Register(&stubSource{name: n, matches: matches, total: len(matches)})
	}

	c := cache.New(logger)
	verifier := verify.New(verify.Options{
		Registry:      registry,
		Cache:         c,
		Logger:        logger,
		EasterEggs:    shortcut.NewStaticEasterEggs(),
		FamousArtists: shortcut.NewStaticFamousArtists(),
		Suggestions:   shortcut.DefaultSuggestions{},
	})

	router := NewRouter(RouterDeps{
		Verifier: verifier,
		Cache:    c,
		Logger:   logger,
	})

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv, c
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	decodeBody(t, resp, &body)

	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
	if body["version"] == "" {
		t.Error("version field is empty")
	}
}

func TestVerifyPostTakenName(t *testing.T) {
	match := source.Match{
		Name:     "Thunderstrike",
		Genres:   []string{"Metal"},
		SourceID: source.NameMusicBrainz,
	}
	srv, _ := newTestServer(t, []source.Match{match})

	body := strings.NewReader(`{"name": "Thunderstrike", "entity_type": "band"}`)
	resp, err := http.Post(srv.URL+"/api/v1/verify", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/v1/verify: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result struct {
		Status     decision.Outcome `json:"status"`
		Confidence float64          `json:"confidence"`
	}
	decodeBody(t, resp, &result)

	if result.Status != decision.OutcomeTaken {
		t.Errorf("status = %q, want %q", result.Status, decision.OutcomeTaken)
	}
	if result.Confidence <= 0 {
		t.Errorf("confidence = %v, want > 0", result.Confidence)
	}
}

func TestVerifyPostInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/v1/verify", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST /api/v1/verify: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestVerifyPostEmptyName(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := strings.NewReader(`{"name": "   ", "entity_type": "band"}`)
	resp, err := http.Post(srv.URL+"/api/v1/verify", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/v1/verify: %v", err)
	}

	var errBody map[string]string
	decodeBody(t, resp, &errBody)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(errBody["error"], "name") {
		t.Errorf("error = %q, want mention of name", errBody["error"])
	}
}

func TestVerifyGetDefaultsToBand(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/verify?name=Zzyxquolt+Ferntangle")
	if err != nil {
		t.Fatalf("GET /api/v1/verify: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result struct {
		EntityType similarity.EntityType `json:"entity_type"`
		Status     decision.Outcome      `json:"status"`
	}
	decodeBody(t, resp, &result)

	if result.EntityType != similarity.EntityBand {
		t.Errorf("entity_type = %q, want %q", result.EntityType, similarity.EntityBand)
	}
	if result.Status != decision.OutcomeAvailable {
		t.Errorf("status = %q, want %q", result.Status, decision.OutcomeAvailable)
	}
}

func TestUniquenessEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/uniqueness?name=Velvet+Mongoose")
	if err != nil {
		t.Fatalf("GET /api/v1/uniqueness: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var score struct {
		Value float64 `json:"value"`
		Band  string  `json:"band"`
	}
	decodeBody(t, resp, &score)

	if score.Value <= 0 || score.Value > 1 {
		t.Errorf("value = %v, want in (0,1]", score.Value)
	}
	if score.Band == "" {
		t.Error("band is empty")
	}
}

func TestUniquenessRequiresName(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/uniqueness")
	if err != nil {
		t.Fatalf("GET /api/v1/uniqueness: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestSourcesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/sources")
	if err != nil {
		t.Fatalf("GET /api/v1/sources: %v", err)
	}

	var body struct {
		Sources []verify.SourceStatus `json:"sources"`
	}
	decodeBody(t, resp, &body)

	if len(body.Sources) != 4 {
		t.Fatalf("len(sources) = %d, want 4", len(body.Sources))
	}
	for _, s := range body.Sources {
		if !s.Healthy {
			t.Errorf("source %s unhealthy: %s", s.ID, s.Error)
		}
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	srv, c := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/verify?name=Zzyxquolt+Ferntangle")
	if err != nil {
		t.Fatalf("GET /api/v1/verify: %v", err)
	}
	resp.Body.Close()

	if c.Stats().Keys == 0 {
		t.Fatal("expected a cached entry after verification")
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/cache", nil)
	if err != nil {
		t.Fatalf("build DELETE request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/v1/cache: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := c.Stats().Keys; got != 0 {
		t.Errorf("keys after clear = %d, want 0", got)
	}

	resp, err = http.Get(srv.URL + "/api/v1/cache/stats")
	if err != nil {
		t.Fatalf("GET /api/v1/cache/stats: %v", err)
	}

	var stats cache.Stats
	decodeBody(t, resp, &stats)

	if stats.Keys != 0 {
		t.Errorf("stats keys = %d, want 0", stats.Keys)
	}
}
