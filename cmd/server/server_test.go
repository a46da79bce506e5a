package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samaggi-games/tournament-admin/internal/config"
	"github.com/samaggi-games/tournament-admin/internal/disqual"
	"github.com/samaggi-games/tournament-admin/internal/roster"
	"github.com/samaggi-games/tournament-admin/internal/schedule"
	"github.com/samaggi-games/tournament-admin/internal/store"
)

func testServer(t *testing.T) http.Handler {
	t.Helper()

	mem := store.NewMemory()
	repo := roster.NewRepository(mem, roster.DefaultTables(""))
	if err := repo.WriteSportCount(context.Background(), roster.SportCount{
		Sport: "Football", MaxTeams: 4, MaxSize: 11, MinimumSize: 5,
	}); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.App.Name = "tournament-admin"
	cfg.App.Port = 8080

	srv := newServer(cfg, serverDeps{
		store:        mem,
		repo:         repo,
		orchestrator: roster.NewOrchestrator(repo, roster.DefaultRuleset()),
		timetable:    schedule.Default(),
		monitor:      disqual.New(repo, nil, nil, 0),
	})
	return srv.Handler
}

func TestHealthEndpoint(t *testing.T) {
	handler := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestEligibilityRouteWired(t *testing.T) {
	handler := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/eligibility/check",
		strings.NewReader(`{"teamUniversity":"Oxford","playerUniversity":"Oxford","sport":"Football"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"valid":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := testServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/players", nil)
	req.Header.Set("Origin", "https://samaggigames.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("preflight not answered: %d %v", rec.Code, rec.Header())
	}
}

func TestMediaRoutesDisabledWithoutBucket(t *testing.T) {
	handler := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload-url", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}
