package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/neilberkman/gptwrapped/internal/core/userstats"
	"github.com/neilberkman/gptwrapped/internal/core/wrapped"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := userstats.New(userstats.SQLiteOpener(filepath.Join(t.TempDir(), "wrapped.db")), zerolog.Nop())
	svc := wrapped.NewService(
		wrapped.NewBuilder(wrapped.Options{Year: 2025}, nil, zerolog.Nop()),
		wrapped.NewComparer(store),
		"{{words}} words",
		zerolog.Nop(),
	)
	return NewServer(svc, store, zerolog.Nop())
}

func sampleArchive(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../../../pkg/chatexport/testdata/conversations.json")
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestWrappedEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/wrapped?year=2025&name=Ada", bytes.NewReader(sampleArchive(t)))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Report struct {
			Year          int    `json:"year"`
			FileHash      string `json:"file_hash"`
			TotalMessages int    `json:"total_messages"`
			UserWords     int    `json:"user_words"`
		} `json:"report"`
		Headline   string `json:"headline"`
		Comparison struct {
			Saved           bool     `json:"saved"`
			WordsPercentile *float64 `json:"words_percentile"`
		} `json:"comparison"`
		TopicsMessage string `json:"topics_message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Report.Year != 2025 || body.Report.TotalMessages != 4 || body.Report.UserWords != 8 {
		t.Errorf("unexpected report: %+v", body.Report)
	}
	if body.Report.FileHash == "" {
		t.Error("expected a file hash")
	}
	if body.Headline != "8 words" {
		t.Errorf("expected headline '8 words', got %q", body.Headline)
	}
	if !body.Comparison.Saved || body.Comparison.WordsPercentile == nil {
		t.Errorf("expected a saved comparison, got %+v", body.Comparison)
	}
	if body.TopicsMessage != wrapped.NoTopicsMessage {
		t.Errorf("expected topics message, got %q", body.TopicsMessage)
	}

	// The upload is now counted in the summary
	req = httptest.NewRequest("GET", "/api/v1/stats/summary", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var summary struct {
		TotalUsers int      `json:"total_users"`
		AvgWords   *float64 `json:"avg_words"`
	}
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.TotalUsers != 1 || summary.AvgWords == nil || *summary.AvgWords != 8 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestWrappedEndpoint_NoSave(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/wrapped?no_save=true&year=2025", bytes.NewReader(sampleArchive(t)))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"words_percentile":null`) {
		t.Errorf("expected no comparison, got %s", w.Body.String())
	}
}

func TestWrappedEndpoint_BadInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		url  string
		body string
	}{
		{name: "not an array", url: "/api/v1/wrapped", body: `{"id":"x"}`},
		{name: "truncated", url: "/api/v1/wrapped", body: `[{"id":`},
		{name: "empty body", url: "/api/v1/wrapped", body: ``},
		{name: "bad year", url: "/api/v1/wrapped?year=xyz", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.url, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestWrappedEndpoint_TooLarge(t *testing.T) {
	srv := newTestServer(t)
	srv.maxUpload = 16

	req := httptest.NewRequest("POST", "/api/v1/wrapped", bytes.NewReader(sampleArchive(t)))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestSummaryEndpoint_StoreDown(t *testing.T) {
	failing := userstats.New(func(ctx context.Context) (userstats.Backend, error) {
		return nil, errors.New("connection refused")
	}, zerolog.Nop())
	svc := wrapped.NewService(wrapped.NewBuilder(wrapped.Options{}, nil, zerolog.Nop()), nil, "", zerolog.Nop())
	srv := NewServer(svc, failing, zerolog.Nop())

	req := httptest.NewRequest("GET", "/api/v1/stats/summary", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "gptwrapped_api_requests_total") {
		t.Error("expected request counter in metrics output")
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestWrappedEndpoint_ConfiguredYear(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/wrapped?no_save=true", bytes.NewReader(sampleArchive(t)))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Report struct {
			Year          int `json:"year"`
			TotalMessages int `json:"total_messages"`
		} `json:"report"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Report.Year != 2025 || body.Report.TotalMessages != 4 {
		t.Errorf("expected configured year 2025 with 4 messages, got year %d with %d", body.Report.Year, body.Report.TotalMessages)
	}
}
