// internal/api/registration/handlers.go
package registration

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samaggi-games/tournament-admin/internal/api/apiutil"
	"github.com/samaggi-games/tournament-admin/internal/roster"
	"github.com/samaggi-games/tournament-admin/internal/schedule"
	"github.com/samaggi-games/tournament-admin/internal/universities"
)

const registrationTimeout = 10 * time.Second

var (
	orchestrator *roster.Orchestrator
	timetable    schedule.Timetable
	initOnce     sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(o *roster.Orchestrator, tt schedule.Timetable) {
	if o == nil {
		return
	}
	initOnce.Do(func() {
		orchestrator = o
		timetable = tt
	})
}

// canonical resolves a user-typed university to its directory display name.
// Stored rows and eligibility messages always carry the canonical form.
func canonical(w http.ResponseWriter, field, raw string) (string, bool) {
	name, ok := universities.CanonicalName(raw)
	if !ok {
		apiutil.WriteError(w, http.StatusBadRequest,
			apiutil.FieldError{Field: field, Reason: "is not a recognized university"}.Error())
		return "", false
	}
	return name, true
}

type eligibilityRequest struct {
	TeamUniversity   string `json:"teamUniversity"`
	PlayerUniversity string `json:"playerUniversity"`
	Sport            string `json:"sport"`
}

type eligibilityResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// POST /api/v1/eligibility/check
func HandleEligibilityCheck(w http.ResponseWriter, r *http.Request) {
	o := loadOrchestrator()
	if o == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req eligibilityRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"teamUniversity":   req.TeamUniversity,
		"playerUniversity": req.PlayerUniversity,
		"sport":            req.Sport,
	}, "teamUniversity", "playerUniversity", "sport"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	teamUniversity, ok := canonical(w, "teamUniversity", req.TeamUniversity)
	if !ok {
		return
	}
	playerUniversity, ok := canonical(w, "playerUniversity", req.PlayerUniversity)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationTimeout)
	defer cancel()

	decision, err := o.CheckEligibility(ctx, teamUniversity, playerUniversity, req.Sport)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, eligibilityResponse{
		Valid:  decision.Valid,
		Reason: decision.Reason,
	})
}

type playerPayload struct {
	Name             string `json:"name"`
	Nickname         string `json:"nickname,omitempty"`
	PlayerUniversity string `json:"playerUniversity"`
	ShirtNumber      int    `json:"shirtNumber,omitempty"`
	ImageKey         string `json:"imageKey,omitempty"`
}

type addPlayersRequest struct {
	TeamUniversity string          `json:"teamUniversity"`
	Sport          string          `json:"sport"`
	CaptainName    string          `json:"captainName"`
	CaptainContact string          `json:"captainContact"`
	Players        []playerPayload `json:"players"`
}

// POST /api/v1/players
func HandleAddPlayers(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	o := loadOrchestrator()
	if o == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req addPlayersRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"teamUniversity": req.TeamUniversity,
		"sport":          req.Sport,
		"captainName":    req.CaptainName,
		"captainContact": req.CaptainContact,
	}, "teamUniversity", "sport", "captainName", "captainContact"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	if len(req.Players) == 0 {
		apiutil.WriteDomainError(w, r, roster.NewValidationError("players"))
		return
	}
	for _, p := range req.Players {
		if err := apiutil.RequireFields(map[string]string{
			"name":             p.Name,
			"playerUniversity": p.PlayerUniversity,
		}, "name", "playerUniversity"); err != nil {
			apiutil.WriteDomainError(w, r, err)
			return
		}
	}
	if err := apiutil.ValidateContact(req.CaptainContact); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	teamUniversity, ok := canonical(w, "teamUniversity", req.TeamUniversity)
	if !ok {
		return
	}
	add := roster.AddRequest{
		TeamUniversity: teamUniversity,
		Sport:          req.Sport,
		CaptainName:    req.CaptainName,
		CaptainContact: req.CaptainContact,
	}
	for _, p := range req.Players {
		playerUniversity, ok := canonical(w, "playerUniversity", p.PlayerUniversity)
		if !ok {
			return
		}
		add.Players = append(add.Players, roster.PlayerInput{
			Name:             p.Name,
			Nickname:         p.Nickname,
			PlayerUniversity: playerUniversity,
			ShirtNumber:      p.ShirtNumber,
			ImageKey:         p.ImageKey,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationTimeout)
	defer cancel()

	res, err := o.AddPlayers(ctx, add)
	if err != nil {
		logger.Error().Err(err).
			Str("team_university", teamUniversity).
			Str("sport", req.Sport).
			Interface("details", res.Details).
			Msg("Registration stopped partway")
		apiutil.WriteDomainError(w, r, err)
		return
	}
	apiutil.WriteResult(w, res)
}

type deletePlayerRequest struct {
	PlayerID string `json:"playerId"`
}

// DELETE /api/v1/players
func HandleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	o := loadOrchestrator()
	if o == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req deletePlayerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"playerId": req.PlayerID,
	}, "playerId"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationTimeout)
	defer cancel()

	res, err := o.DeletePlayer(ctx, req.PlayerID)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	apiutil.WriteResult(w, res)
}

type editPlayerRequest struct {
	PlayerID         string `json:"playerId"`
	Name             string `json:"name"`
	Nickname         string `json:"nickname,omitempty"`
	Sport            string `json:"sport"`
	TeamUniversity   string `json:"teamUniversity"`
	PlayerUniversity string `json:"playerUniversity"`
	ShirtNumber      int    `json:"shirtNumber,omitempty"`
	ImageKey         string `json:"imageKey,omitempty"`
}

// PUT /api/v1/players
func HandleEditPlayer(w http.ResponseWriter, r *http.Request) {
	o := loadOrchestrator()
	if o == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req editPlayerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"playerId":         req.PlayerID,
		"name":             req.Name,
		"sport":            req.Sport,
		"teamUniversity":   req.TeamUniversity,
		"playerUniversity": req.PlayerUniversity,
	}, "playerId", "name", "sport", "teamUniversity", "playerUniversity"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	teamUniversity, ok := canonical(w, "teamUniversity", req.TeamUniversity)
	if !ok {
		return
	}
	playerUniversity, ok := canonical(w, "playerUniversity", req.PlayerUniversity)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationTimeout)
	defer cancel()

	res, err := o.EditPlayer(ctx, roster.EditRequest{
		PlayerID:         req.PlayerID,
		Name:             req.Name,
		Nickname:         req.Nickname,
		Sport:            req.Sport,
		TeamUniversity:   teamUniversity,
		PlayerUniversity: playerUniversity,
		ShirtNumber:      req.ShirtNumber,
		ImageKey:         req.ImageKey,
	})
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	apiutil.WriteResult(w, res)
}

type teamExistsRequest struct {
	TeamUniversity string `json:"teamUniversity"`
	Sport          string `json:"sport"`
}

type teamExistsResponse struct {
	Exists bool `json:"exists"`
}

// POST /api/v1/teams/exists
func HandleTeamExists(w http.ResponseWriter, r *http.Request) {
	o := loadOrchestrator()
	if o == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req teamExistsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"teamUniversity": req.TeamUniversity,
		"sport":          req.Sport,
	}, "teamUniversity", "sport"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	teamUniversity, ok := canonical(w, "teamUniversity", req.TeamUniversity)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationTimeout)
	defer cancel()

	exists, err := o.TeamExists(ctx, teamUniversity, req.Sport)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, teamExistsResponse{Exists: exists})
}

type clashRequest struct {
	Name             string `json:"name"`
	PlayerUniversity string `json:"playerUniversity"`
	Sport            string `json:"sport"`
}

type clashResponse struct {
	Clash bool `json:"clash"`
}

// POST /api/v1/schedule/clash
func HandleScheduleClash(w http.ResponseWriter, r *http.Request) {
	o := loadOrchestrator()
	if o == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req clashRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"name":             req.Name,
		"playerUniversity": req.PlayerUniversity,
		"sport":            req.Sport,
	}, "name", "playerUniversity", "sport"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	playerUniversity, ok := canonical(w, "playerUniversity", req.PlayerUniversity)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationTimeout)
	defer cancel()

	clash, err := o.ClashForPlayer(ctx, timetable, req.Name, playerUniversity, req.Sport)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, clashResponse{Clash: clash})
}

func loadOrchestrator() *roster.Orchestrator {
	return orchestrator
}
