package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggingScrubsSensitiveQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/verify?name=Thunderstrike&api_key=hunter2", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}

	query, _ := entry["query"].(string)
	if query != "name=Thunderstrike&api_key=REDACTED" {
		t.Errorf("query = %q, want api_key redacted", query)
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/verify", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}

	if status, _ := entry["status"].(float64); int(status) != http.StatusBadRequest {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusBadRequest)
	}
}

func TestScrubQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"name=Muse", "name=Muse"},
		{"token=abc&name=Muse", "token=REDACTED&name=Muse"},
		{"Authorization=Bearer+x", "Authorization=REDACTED"},
	}

	for _, tt := range tests {
		if got := scrubQuery(tt.raw); got != tt.want {
			t.Errorf("scrubQuery(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
