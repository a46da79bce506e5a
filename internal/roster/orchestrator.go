package roster

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/samaggi-games/tournament-admin/internal/schedule"
	"github.com/samaggi-games/tournament-admin/internal/universities"
)

// Outcome classifies what happened to a mutation request. Refusals and
// not-found are expected outcomes and travel in the Result, never as errors.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRejected
	OutcomeNotFound
)

// Details records, step by step, which writes a multi-entity mutation
// intended and which completed. There is no rollback: a "will" flag without
// its "did" counterpart means the operation stopped partway and the stored
// state needs manual reconciliation.
type Details map[string]bool

const (
	DetailWillCreateTeam      = "willCreateTeam"
	DetailDidCreateTeam       = "didCreateTeam"
	DetailWillUpdateTeamCount = "willUpdateTeamCount"
	DetailDidUpdateTeamCount  = "didUpdateTeamCount"
	DetailWillDeletePlayer    = "willDeletePlayer"
	DetailDidDeletePlayer     = "didDeletePlayer"
	DetailWillDeleteTeam      = "willDeleteTeam"
	DetailDidDeleteTeam       = "didDeleteTeam"
	DetailLastPlayerOnTeam    = "lastPlayerOnTeam"
)

// Result is the common return shape of orchestrated mutations.
type Result struct {
	Outcome   Outcome
	Message   string
	Details   Details
	PlayerIDs []string
}

// PlayerInput is one player in a registration batch.
type PlayerInput struct {
	Name             string
	Nickname         string
	PlayerUniversity string
	ShirtNumber      int
	ImageKey         string
}

// AddRequest registers a batch of players under one (team_university,
// sport) pair. Captain details are required whenever a Team row has to be
// created, founding or allied.
type AddRequest struct {
	TeamUniversity string
	Sport          string
	CaptainName    string
	CaptainContact string
	Players        []PlayerInput
}

// EditRequest replaces a player's details. Edits are delete-then-recreate
// under a fresh identity; a crash between the two steps loses the player.
type EditRequest struct {
	PlayerID         string
	Name             string
	Nickname         string
	Sport            string
	TeamUniversity   string
	PlayerUniversity string
	ShirtNumber      int
	ImageKey         string
}

// Orchestrator sequences eligibility decisions into ordered store writes.
// It holds no persistent state; every operation reads a fresh snapshot.
type Orchestrator struct {
	repo  *Repository
	rules Ruleset
}

// NewOrchestrator builds an orchestrator over a repository.
func NewOrchestrator(repo *Repository, rules Ruleset) *Orchestrator {
	return &Orchestrator{repo: repo, rules: rules}
}

// CheckEligibility runs ValidateAdd against a fresh snapshot.
func (o *Orchestrator) CheckEligibility(ctx context.Context, teamUniversity, playerUniversity, sport string) (Decision, error) {
	snap, err := o.addSnapshot(ctx, teamUniversity, playerUniversity, sport)
	if err != nil {
		return Decision{}, err
	}
	return o.rules.ValidateAdd(snap, teamUniversity, playerUniversity, sport), nil
}

// TeamExists reports whether a team university has any sub-roster for the
// sport.
func (o *Orchestrator) TeamExists(ctx context.Context, teamUniversity, sport string) (bool, error) {
	teams, err := o.repo.TeamsByTeamUniversity(ctx, teamUniversity)
	if err != nil {
		return false, err
	}
	for _, t := range teams {
		if t.Sport == sport {
			return true, nil
		}
	}
	return false, nil
}

// AddPlayers applies a registration batch. Step ordering and the details
// flags follow the write plan: founding team creation, count increment,
// then per player an allied team row if needed and the player row itself.
// On store failure the accumulated details are returned with the error.
func (o *Orchestrator) AddPlayers(ctx context.Context, req AddRequest) (Result, error) {
	details := Details{}
	res := Result{Details: details}

	exists, err := o.TeamExists(ctx, req.TeamUniversity, req.Sport)
	if err != nil {
		return res, err
	}

	if !exists {
		count, found, err := o.repo.SportCount(ctx, req.Sport)
		if err != nil {
			return res, err
		}
		if !found {
			return res, &IntegrityError{
				Table:  o.repo.tables.SportCount,
				Detail: fmt.Sprintf("no count row for sport %q", req.Sport),
			}
		}
		if count.Full() {
			res.Outcome = OutcomeRejected
			res.Message = fmt.Sprintf("%s already has the maximum number of teams.", req.Sport)
			return res, nil
		}
		if count.MaxSize > 0 && len(req.Players) > count.MaxSize {
			res.Outcome = OutcomeRejected
			res.Message = fmt.Sprintf("%s teams are capped at %d players.", req.Sport, count.MaxSize)
			return res, nil
		}

		details[DetailWillCreateTeam] = true
		founding := Team{
			ID:             uuid.New().String(),
			Sport:          req.Sport,
			TeamUniversity: req.TeamUniversity,
			University:     req.TeamUniversity,
			Captain:        req.CaptainName,
			Contact:        req.CaptainContact,
		}
		if err := o.repo.WriteTeam(ctx, founding); err != nil {
			return res, err
		}
		details[DetailDidCreateTeam] = true

		details[DetailWillUpdateTeamCount] = true
		if err := o.repo.IncrementTeamCount(ctx, req.Sport); err != nil {
			return res, err
		}
		details[DetailDidUpdateTeamCount] = true
	}

	for _, in := range req.Players {
		team, found, err := o.repo.TeamForSubRoster(ctx, req.Sport, req.TeamUniversity, in.PlayerUniversity)
		if err != nil {
			return res, err
		}
		if !found {
			team = Team{
				ID:             uuid.New().String(),
				Sport:          req.Sport,
				TeamUniversity: req.TeamUniversity,
				University:     in.PlayerUniversity,
				Captain:        req.CaptainName,
				Contact:        req.CaptainContact,
			}
			if err := o.repo.WriteTeam(ctx, team); err != nil {
				return res, err
			}
		}

		city, _ := universities.CityFor(in.PlayerUniversity)
		player := Player{
			ID:               uuid.New().String(),
			Name:             in.Name,
			Nickname:         in.Nickname,
			Sport:            req.Sport,
			PlayerUniversity: in.PlayerUniversity,
			TeamUniversity:   req.TeamUniversity,
			City:             city,
			ShirtNumber:      in.ShirtNumber,
			ImageKey:         in.ImageKey,
		}
		if err := o.repo.WritePlayer(ctx, player); err != nil {
			return res, err
		}
		res.PlayerIDs = append(res.PlayerIDs, player.ID)

		log.Ctx(ctx).Info().
			Str("player", in.Name).
			Str("sport", req.Sport).
			Str("team_university", req.TeamUniversity).
			Str("player_university", in.PlayerUniversity).
			Msg("Player registered")
	}

	res.Outcome = OutcomeSuccess
	res.Message = "Success"
	return res, nil
}

// DeletePlayer removes one player and applies the computed removal plan:
// the player row goes unconditionally once the composition guard passes,
// the Team row goes when the sub-roster emptied, and the sport's team count
// drops only when the founding sub-roster disappeared.
func (o *Orchestrator) DeletePlayer(ctx context.Context, playerID string) (Result, error) {
	details := Details{}
	res := Result{Details: details}

	p, found, err := o.repo.PlayerByID(ctx, playerID)
	if err != nil {
		return res, err
	}
	if !found {
		res.Outcome = OutcomeNotFound
		res.Message = "Cannot find player in the player table."
		return res, nil
	}

	snap, err := o.removeSnapshot(ctx, p)
	if err != nil {
		return res, err
	}
	plan := o.rules.ValidateRemove(snap, p)
	if !plan.Allowed {
		res.Outcome = OutcomeRejected
		res.Message = plan.Reason
		return res, nil
	}

	details[DetailWillDeletePlayer] = true
	if err := o.repo.DeletePlayer(ctx, p.ID); err != nil {
		return res, err
	}
	details[DetailDidDeletePlayer] = true

	if plan.LastOnSubRoster {
		details[DetailLastPlayerOnTeam] = true
		details[DetailWillDeleteTeam] = true

		team, teamFound, err := o.repo.TeamForSubRoster(ctx, p.Sport, p.TeamUniversity, p.PlayerUniversity)
		if err != nil {
			return res, err
		}
		if teamFound {
			if err := o.repo.DeleteTeam(ctx, team.ID); err != nil {
				return res, err
			}
		}
		details[DetailDidDeleteTeam] = true

		if plan.FreesTeamSlot {
			details[DetailWillUpdateTeamCount] = true
			if err := o.repo.DecrementTeamCount(ctx, p.Sport); err != nil {
				return res, err
			}
			details[DetailDidUpdateTeamCount] = true
		}
	}

	log.Ctx(ctx).Info().
		Str("player_uuid", p.ID).
		Str("sport", p.Sport).
		Str("team_university", p.TeamUniversity).
		Bool("last_on_sub_roster", plan.LastOnSubRoster).
		Msg("Player deleted")

	res.Outcome = OutcomeSuccess
	res.Message = "Player successfully deleted."
	return res, nil
}

// EditPlayer replaces a player's details under a fresh identity. The delete
// and the recreate are separate writes; callers must treat the edit as
// non-atomic.
func (o *Orchestrator) EditPlayer(ctx context.Context, req EditRequest) (Result, error) {
	details := Details{}
	res := Result{Details: details}

	_, found, err := o.repo.PlayerByID(ctx, req.PlayerID)
	if err != nil {
		return res, err
	}
	if !found {
		res.Outcome = OutcomeNotFound
		res.Message = "Cannot find player in the player table."
		return res, nil
	}

	details[DetailWillDeletePlayer] = true
	if err := o.repo.DeletePlayer(ctx, req.PlayerID); err != nil {
		return res, err
	}
	details[DetailDidDeletePlayer] = true

	city, _ := universities.CityFor(req.PlayerUniversity)
	replacement := Player{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Nickname:         req.Nickname,
		Sport:            req.Sport,
		PlayerUniversity: req.PlayerUniversity,
		TeamUniversity:   req.TeamUniversity,
		City:             city,
		ShirtNumber:      req.ShirtNumber,
		ImageKey:         req.ImageKey,
	}
	if err := o.repo.WritePlayer(ctx, replacement); err != nil {
		return res, err
	}

	res.Outcome = OutcomeSuccess
	res.Message = "Success"
	res.PlayerIDs = []string{replacement.ID}
	return res, nil
}

// ClashForPlayer reports whether the candidate sport's timeslot overlaps
// any sport the named player is already registered for. The first
// overlapping registration short-circuits.
func (o *Orchestrator) ClashForPlayer(ctx context.Context, timetable schedule.Timetable, name, playerUniversity, candidateSport string) (bool, error) {
	players, err := o.repo.PlayersByName(ctx, name)
	if err != nil {
		return false, err
	}
	var sports []string
	for _, p := range players {
		if p.PlayerUniversity == playerUniversity {
			sports = append(sports, p.Sport)
		}
	}
	return timetable.AnyClash(sports, candidateSport)
}

func (o *Orchestrator) addSnapshot(ctx context.Context, teamUniversity, playerUniversity, sport string) (AddSnapshot, error) {
	teamPlayers, err := o.repo.PlayersByTeamUniversity(ctx, teamUniversity)
	if err != nil {
		return AddSnapshot{}, err
	}
	uniPlayers, err := o.repo.PlayersByUniversity(ctx, playerUniversity)
	if err != nil {
		return AddSnapshot{}, err
	}
	return AddSnapshot{
		TeamRoster:       filterSport(teamPlayers, sport),
		UniversityRoster: filterSport(uniPlayers, sport),
	}, nil
}

func (o *Orchestrator) removeSnapshot(ctx context.Context, p Player) (RemoveSnapshot, error) {
	teamPlayers, err := o.repo.PlayersByTeamUniversity(ctx, p.TeamUniversity)
	if err != nil {
		return RemoveSnapshot{}, err
	}
	teams, err := o.repo.TeamsByTeamUniversity(ctx, p.TeamUniversity)
	if err != nil {
		return RemoveSnapshot{}, err
	}
	var sportTeams []Team
	for _, t := range teams {
		if t.Sport == p.Sport {
			sportTeams = append(sportTeams, t)
		}
	}
	return RemoveSnapshot{
		TeamRoster: filterSport(teamPlayers, p.Sport),
		Teams:      sportTeams,
	}, nil
}

func filterSport(players []Player, sport string) []Player {
	var out []Player
	for _, p := range players {
		if p.Sport == sport {
			out = append(out, p)
		}
	}
	return out
}
