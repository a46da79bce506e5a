// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/samaggi-games/tournament-admin/internal/api"
	"github.com/samaggi-games/tournament-admin/internal/api/disqualification"
	"github.com/samaggi-games/tournament-admin/internal/api/medialinks"
	"github.com/samaggi-games/tournament-admin/internal/api/registration"
	"github.com/samaggi-games/tournament-admin/internal/api/tables"
	"github.com/samaggi-games/tournament-admin/internal/config"
	"github.com/samaggi-games/tournament-admin/internal/disqual"
	"github.com/samaggi-games/tournament-admin/internal/media"
	"github.com/samaggi-games/tournament-admin/internal/roster"
	"github.com/samaggi-games/tournament-admin/internal/schedule"
	"github.com/samaggi-games/tournament-admin/internal/store"
)

const shutdownTimeout = 30 * time.Second

type serverDeps struct {
	store        store.Store
	repo         *roster.Repository
	orchestrator *roster.Orchestrator
	timetable    schedule.Timetable
	monitor      *disqual.Monitor
	presigner    *media.Presigner
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	registration.InitHandlers(deps.orchestrator, deps.timetable)
	tables.InitHandlers(deps.store, deps.repo)
	disqualification.InitHandlers(deps.monitor)
	medialinks.InitHandlers(deps.presigner)

	router := http.NewServeMux()
	registerRoutes(router)

	// The registration frontend is a static site on another origin.
	corsWrapper := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		corsWrapper.Handler,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Eligibility and registration
	mux.HandleFunc("POST /api/v1/eligibility/check", registration.HandleEligibilityCheck)
	mux.HandleFunc("POST /api/v1/players", registration.HandleAddPlayers)
	mux.HandleFunc("DELETE /api/v1/players", registration.HandleDeletePlayer)
	mux.HandleFunc("PUT /api/v1/players", registration.HandleEditPlayer)
	mux.HandleFunc("POST /api/v1/teams/exists", registration.HandleTeamExists)
	mux.HandleFunc("POST /api/v1/schedule/clash", registration.HandleScheduleClash)

	// Disqualification
	mux.HandleFunc("POST /api/v1/disqualification/run", disqualification.HandleRun)

	// Tables and directory
	mux.HandleFunc("GET /api/v1/sports", tables.HandleListSports)
	mux.HandleFunc("POST /api/v1/universities/check", tables.HandleUniversityCheck)
	mux.HandleFunc("POST /api/v1/tables/query", tables.HandleQuery)
	mux.HandleFunc("GET /api/v1/statistics", tables.HandleStatistics)
	mux.HandleFunc("POST /api/v1/addresses", tables.HandleUpsertAddress)
	mux.HandleFunc("GET /api/v1/addresses", tables.HandleGetAddress)

	// Player images
	mux.HandleFunc("POST /api/v1/media/upload-url", medialinks.HandleUploadURL)
	mux.HandleFunc("POST /api/v1/media/download-url", medialinks.HandleDownloadURL)
}
