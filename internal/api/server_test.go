package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"deauthguard/internal/alerts"
	"deauthguard/internal/config"
	"deauthguard/internal/metrics"
	"deauthguard/internal/model"
)

type stubEngine struct {
	stopped bool
	resets  int
}

func (s *stubEngine) Reset() error { s.resets++; return nil }

func (s *stubEngine) Stop() { s.stopped = true }

func (s *stubEngine) UpdateConfig(cfg *config.Config) error { return nil }

func (s *stubEngine) Stats() model.Stats { return model.Stats{} }

func newServerForTest(eng EngineControl) *Server {
	return &Server{
		cfg:     config.NewStaticManager(config.DefaultConfig()),
		metrics: metrics.NewStore(),
		alerts:  alerts.NewStore(100),
		engine:  eng,
		version: "test",
	}
}

func TestAdminStop(t *testing.T) {
	eng := &stubEngine{}
	srv := newServerForTest(eng)

	rec := httptest.NewRecorder()
	srv.handleStop(rec, httptest.NewRequest(http.MethodPost, "/admin/stop", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if !eng.stopped {
		t.Fatalf("engine not stopped")
	}

	rec = httptest.NewRecorder()
	srv.handleStop(rec, httptest.NewRequest(http.MethodGet, "/admin/stop", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET should be rejected, got %d", rec.Code)
	}
}

func TestAdminRestart(t *testing.T) {
	eng := &stubEngine{}
	srv := newServerForTest(eng)

	rec := httptest.NewRecorder()
	srv.handleRestart(rec, httptest.NewRequest(http.MethodPost, "/admin/restart", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if eng.resets != 1 {
		t.Fatalf("resets: %d", eng.resets)
	}
}
