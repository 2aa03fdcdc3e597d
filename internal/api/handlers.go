package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
	"github.com/nameclear/nameclear/internal/uniqueness"
	"github.com/nameclear/nameclear/internal/verify"
	"github.com/nameclear/nameclear/internal/version"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleVerifyPost(w http.ResponseWriter, req *http.Request) {
	var vr verify.Request
	if err := json.NewDecoder(req.Body).Decode(&vr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	r.verify(w, req, vr)
}

func (r *Router) handleVerifyGet(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	entity := similarity.EntityType(q.Get("type"))
	if entity == "" {
		entity = similarity.EntityBand
	}

	var sources []source.Name
	if raw := q.Get("sources"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			sources = append(sources, source.Name(strings.TrimSpace(s)))
		}
	}

	r.verify(w, req, verify.Request{
		Name:          q.Get("name"),
		Entity:        entity,
		Genre:         q.Get("genre"),
		SkipCache:     q.Get("skip_cache") == "true",
		SkipShortcuts: q.Get("skip_shortcuts") == "true",
		Sources:       sources,
	})
}

func (r *Router) verify(w http.ResponseWriter, req *http.Request, vr verify.Request) {
	result, err := r.verifier.Verify(req.Context(), vr)
	if err != nil {
		var invalid *verify.ErrInvalidInput
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		r.logger.Error("verification failed", "name", vr.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleUniqueness(w http.ResponseWriter, req *http.Request) {
	name := strings.TrimSpace(req.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	writeJSON(w, http.StatusOK, uniqueness.Evaluate(name, req.URL.Query().Get("genre")))
}

func (r *Router) handleSources(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": r.verifier.SourceHealth(req.Context()),
	})
}

func (r *Router) handleCacheStats(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.cache.Stats())
}

func (r *Router) handleCacheClear(w http.ResponseWriter, req *http.Request) {
	r.cache.Clear()
	r.logger.Info("cache cleared", "remote", req.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
