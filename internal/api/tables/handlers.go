// internal/api/tables/handlers.go
package tables

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/samaggi-games/tournament-admin/internal/api/apiutil"
	"github.com/samaggi-games/tournament-admin/internal/roster"
	"github.com/samaggi-games/tournament-admin/internal/store"
	"github.com/samaggi-games/tournament-admin/internal/universities"
)

const tablesQueryTimeout = 10 * time.Second

var (
	backing  store.Store
	repo     *roster.Repository
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s store.Store, r *roster.Repository) {
	if s == nil || r == nil {
		return
	}
	initOnce.Do(func() {
		backing = s
		repo = r
	})
}

type sportEntry struct {
	Name        string `json:"name"`
	TeamCount   int    `json:"teamCount"`
	MaxTeams    int    `json:"maxTeams"`
	MaxSize     int    `json:"maxSize"`
	MinimumSize int    `json:"minimumSize"`
	Full        bool   `json:"full"`
}

// GET /api/v1/sports
func HandleListSports(w http.ResponseWriter, r *http.Request) {
	if repo == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tablesQueryTimeout)
	defer cancel()

	counts, err := repo.ScanSportCounts(ctx)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}

	out := make([]sportEntry, 0, len(counts))
	for _, c := range counts {
		out = append(out, sportEntry{
			Name:        c.Sport,
			TeamCount:   c.TeamCount,
			MaxTeams:    c.MaxTeams,
			MaxSize:     c.MaxSize,
			MinimumSize: c.MinimumSize,
			Full:        c.Full(),
		})
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"sports": out})
}

type queryRequest struct {
	Table   string            `json:"table"`
	Filters map[string]string `json:"filters,omitempty"`
}

// POST /api/v1/tables/query
//
// Generic filtered scan for admin tooling. Table is a friendly alias, not
// the physical table name.
func HandleQuery(w http.ResponseWriter, r *http.Request) {
	if backing == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req queryRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"table": req.Table,
	}, "table"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}

	table, ok := resolveTable(req.Table)
	if !ok {
		apiutil.WriteError(w, http.StatusBadRequest,
			apiutil.FieldError{Field: "table", Reason: "is not a queryable table"}.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tablesQueryTimeout)
	defer cancel()

	rows, err := backing.Scan(ctx, table)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	for field, value := range req.Filters {
		rows = store.FilterBy(rows, field, value)
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(rows),
		"rows":  rows,
	})
}

type statisticsResponse struct {
	Players      int      `json:"players"`
	Universities int      `json:"universities"`
	Teams        int      `json:"teams"`
	FullSports   []string `json:"fullSports"`
}

// GET /api/v1/statistics
func HandleStatistics(w http.ResponseWriter, r *http.Request) {
	if repo == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tablesQueryTimeout)
	defer cancel()

	players, err := repo.ScanPlayers(ctx)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	teams, err := repo.ScanTeams(ctx)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	counts, err := repo.ScanSportCounts(ctx)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}

	unis := map[string]struct{}{}
	for _, p := range players {
		unis[p.PlayerUniversity] = struct{}{}
	}
	full := []string{}
	for _, c := range counts {
		if c.MaxTeams > 0 && c.Full() {
			full = append(full, c.Sport)
		}
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, statisticsResponse{
		Players:      len(players),
		Universities: len(unis),
		Teams:        len(teams),
		FullSports:   full,
	})
}

type universityCheckRequest struct {
	University string `json:"university"`
}

type universityCheckResponse struct {
	Valid bool   `json:"valid"`
	Code  string `json:"code,omitempty"`
	Name  string `json:"name,omitempty"`
	City  string `json:"city,omitempty"`
}

// POST /api/v1/universities/check
func HandleUniversityCheck(w http.ResponseWriter, r *http.Request) {
	var req universityCheckRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"university": req.University,
	}, "university"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}

	u, ok := universities.Lookup(req.University)
	if !ok {
		_ = apiutil.WriteJSON(w, http.StatusOK, universityCheckResponse{Valid: false})
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, universityCheckResponse{
		Valid: true,
		Code:  u.Code,
		Name:  u.Name,
		City:  u.City,
	})
}

type addressPayload struct {
	University string `json:"university"`
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Postcode   string `json:"postcode"`
	Country    string `json:"country"`
}

// POST /api/v1/addresses
func HandleUpsertAddress(w http.ResponseWriter, r *http.Request) {
	if repo == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req addressPayload
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"university": req.University,
		"recipient":  req.Recipient,
		"line1":      req.Line1,
		"city":       req.City,
		"postcode":   req.Postcode,
	}, "university", "recipient", "line1", "city", "postcode"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	name, ok := universities.CanonicalName(req.University)
	if !ok {
		apiutil.WriteError(w, http.StatusBadRequest,
			apiutil.FieldError{Field: "university", Reason: "is not a recognized university"}.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tablesQueryTimeout)
	defer cancel()

	err := repo.WriteAddress(ctx, roster.Address{
		University: name,
		Recipient:  req.Recipient,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		Postcode:   req.Postcode,
		Country:    req.Country,
	})
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /api/v1/addresses?university=...
func HandleGetAddress(w http.ResponseWriter, r *http.Request) {
	if repo == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	raw := r.URL.Query().Get("university")
	if raw == "" {
		apiutil.WriteDomainError(w, r, roster.NewValidationError("university"))
		return
	}
	name, ok := universities.CanonicalName(raw)
	if !ok {
		apiutil.WriteError(w, http.StatusBadRequest,
			apiutil.FieldError{Field: "university", Reason: "is not a recognized university"}.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tablesQueryTimeout)
	defer cancel()

	addr, found, err := repo.Address(ctx, name)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	if !found {
		apiutil.WriteError(w, http.StatusNotFound, "No address on file")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, addressPayload{
		University: addr.University,
		Recipient:  addr.Recipient,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		Postcode:   addr.Postcode,
		Country:    addr.Country,
	})
}

func resolveTable(alias string) (string, bool) {
	t := repo.Tables()
	switch alias {
	case "players":
		return t.Players, true
	case "teams":
		return t.Teams, true
	case "sportCount":
		return t.SportCount, true
	case "disqualified":
		return t.Disqualified, true
	case "addresses":
		return t.Addresses, true
	default:
		return "", false
	}
}
