package registration

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/samaggi-games/tournament-admin/internal/api/apiutil"
	"github.com/samaggi-games/tournament-admin/internal/roster"
	"github.com/samaggi-games/tournament-admin/internal/schedule"
	"github.com/samaggi-games/tournament-admin/internal/store"
)

func setupRegistrationTest(t *testing.T) *roster.Repository {
	t.Helper()

	repo := roster.NewRepository(store.NewMemory(), roster.DefaultTables(""))
	if err := repo.WriteSportCount(context.Background(), roster.SportCount{
		Sport: "Football", MaxTeams: 4, MaxSize: 11, MinimumSize: 5,
	}); err != nil {
		t.Fatalf("seed sport: %v", err)
	}

	tt, err := schedule.Load(strings.NewReader(
		"Football,10:00,12:00\nBasketball,11:00,13:00\nChess,14:00,15:00\n"))
	if err != nil {
		t.Fatalf("load timetable: %v", err)
	}

	orchestrator = nil
	timetable = nil
	initOnce = sync.Once{}
	InitHandlers(roster.NewOrchestrator(repo, roster.DefaultRuleset()), tt)

	t.Cleanup(func() {
		orchestrator = nil
		timetable = nil
		initOnce = sync.Once{}
	})

	return repo
}

func postJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleEligibilityCheck_Valid(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleEligibilityCheck, http.MethodPost, "/api/v1/eligibility/check",
		`{"teamUniversity":"Oxford","playerUniversity":"Oxford","sport":"Football"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Valid {
		t.Fatalf("valid = false, reason = %q", resp.Reason)
	}
}

func TestHandleEligibilityCheck_RejectionIsOK(t *testing.T) {
	setupRegistrationTest(t)

	// First player from another university is refused, but the refusal is
	// a successful check, not an HTTP error.
	rec := postJSON(t, HandleEligibilityCheck, http.MethodPost, "/api/v1/eligibility/check",
		`{"teamUniversity":"Oxford","playerUniversity":"Leeds","sport":"Football"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	decodeBody(t, rec, &resp)
	if resp.Valid || resp.Reason == "" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHandleEligibilityCheck_MissingFields(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleEligibilityCheck, http.MethodPost, "/api/v1/eligibility/check",
		`{"sport":"Football"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp apiutil.ErrorResponse
	decodeBody(t, rec, &resp)
	want := []string{"teamUniversity", "playerUniversity"}
	if len(resp.Missing) != len(want) {
		t.Fatalf("missing = %v, want %v", resp.Missing, want)
	}
	for i, field := range want {
		if resp.Missing[i] != field {
			t.Fatalf("missing = %v, want %v", resp.Missing, want)
		}
	}
}

func TestHandleEligibilityCheck_UnknownUniversity(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleEligibilityCheck, http.MethodPost, "/api/v1/eligibility/check",
		`{"teamUniversity":"Hogwarts","playerUniversity":"Oxford","sport":"Football"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAddPlayers_Success(t *testing.T) {
	repo := setupRegistrationTest(t)

	rec := postJSON(t, HandleAddPlayers, http.MethodPost, "/api/v1/players",
		`{"teamUniversity":"oxford","sport":"Football",
		  "captainName":"Alice","captainContact":"+447911123456",
		  "players":[{"name":"Alice","playerUniversity":"Oxford"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp apiutil.ResultResponse
	decodeBody(t, rec, &resp)
	if !resp.Success || len(resp.PlayerIDs) != 1 {
		t.Fatalf("resp = %+v", resp)
	}

	// The user typed "oxford"; the stored row carries the canonical name.
	p, found, err := repo.PlayerByID(context.Background(), resp.PlayerIDs[0])
	if err != nil || !found {
		t.Fatalf("player: found=%v err=%v", found, err)
	}
	if p.TeamUniversity != "Oxford" {
		t.Fatalf("team university = %q", p.TeamUniversity)
	}
}

func TestHandleAddPlayers_BadContact(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleAddPlayers, http.MethodPost, "/api/v1/players",
		`{"teamUniversity":"Oxford","sport":"Football",
		  "captainName":"Alice","captainContact":"not-a-number",
		  "players":[{"name":"Alice","playerUniversity":"Oxford"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAddPlayers_NoPlayers(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleAddPlayers, http.MethodPost, "/api/v1/players",
		`{"teamUniversity":"Oxford","sport":"Football",
		  "captainName":"Alice","captainContact":"+447911123456","players":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDeletePlayer_NotFound(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleDeletePlayer, http.MethodDelete, "/api/v1/players",
		`{"playerId":"no-such-player"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDeletePlayer_Success(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleAddPlayers, http.MethodPost, "/api/v1/players",
		`{"teamUniversity":"Oxford","sport":"Football",
		  "captainName":"Alice","captainContact":"+447911123456",
		  "players":[{"name":"Alice","playerUniversity":"Oxford"}]}`)
	var added apiutil.ResultResponse
	decodeBody(t, rec, &added)

	rec = postJSON(t, HandleDeletePlayer, http.MethodDelete, "/api/v1/players",
		`{"playerId":"`+added.PlayerIDs[0]+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp apiutil.ResultResponse
	decodeBody(t, rec, &resp)
	if !resp.Success || !resp.Details[roster.DetailDidUpdateTeamCount] {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHandleTeamExists(t *testing.T) {
	setupRegistrationTest(t)

	rec := postJSON(t, HandleTeamExists, http.MethodPost, "/api/v1/teams/exists",
		`{"teamUniversity":"Oxford","sport":"Football"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Exists bool `json:"exists"`
	}
	decodeBody(t, rec, &resp)
	if resp.Exists {
		t.Fatal("no team registered yet")
	}

	postJSON(t, HandleAddPlayers, http.MethodPost, "/api/v1/players",
		`{"teamUniversity":"Oxford","sport":"Football",
		  "captainName":"Alice","captainContact":"+447911123456",
		  "players":[{"name":"Alice","playerUniversity":"Oxford"}]}`)

	rec = postJSON(t, HandleTeamExists, http.MethodPost, "/api/v1/teams/exists",
		`{"teamUniversity":"Oxford","sport":"Football"}`)
	decodeBody(t, rec, &resp)
	if !resp.Exists {
		t.Fatal("team should exist after registration")
	}
}

func TestHandleScheduleClash(t *testing.T) {
	setupRegistrationTest(t)

	postJSON(t, HandleAddPlayers, http.MethodPost, "/api/v1/players",
		`{"teamUniversity":"Oxford","sport":"Football",
		  "captainName":"Alice","captainContact":"+447911123456",
		  "players":[{"name":"Alice","playerUniversity":"Oxford"}]}`)

	rec := postJSON(t, HandleScheduleClash, http.MethodPost, "/api/v1/schedule/clash",
		`{"name":"Alice","playerUniversity":"Oxford","sport":"Basketball"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Clash bool `json:"clash"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Clash {
		t.Fatal("Basketball overlaps Football in the test timetable")
	}

	rec = postJSON(t, HandleScheduleClash, http.MethodPost, "/api/v1/schedule/clash",
		`{"name":"Alice","playerUniversity":"Oxford","sport":"Chess"}`)
	decodeBody(t, rec, &resp)
	if resp.Clash {
		t.Fatal("Chess does not overlap Football")
	}
}
