package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/micanis/bot-pocket-pace/notifier"
)

func newTestRouter() http.Handler {
	n := notifier.New(nil, func(string, string) error { return nil },
		zap.NewNop(), notifier.Config{Hour: 8})
	return NewRouter(n, time.Now())
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("healthz body = %q, want ok", w.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", w.Code)
	}
	var m notifier.Metrics
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("metrics not decodable: %v", err)
	}
	if m.Sweeps != 0 {
		t.Errorf("fresh notifier sweeps = %d, want 0", m.Sweeps)
	}
}

func TestStatus(t *testing.T) {
	router := newTestRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("status not decodable: %v", err)
	}
	if _, ok := body["uptime"]; !ok {
		t.Error("status missing uptime")
	}
}
