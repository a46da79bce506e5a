package roster

import (
	"context"
	"fmt"

	"github.com/samaggi-games/tournament-admin/internal/store"
)

// Repository is the typed access layer over the document store. It owns no
// state beyond the injected adapter and table names; every read is a fresh
// snapshot.
type Repository struct {
	store  store.Store
	tables Tables
}

// NewRepository wires a repository to a store adapter.
func NewRepository(s store.Store, tables Tables) *Repository {
	return &Repository{store: s, tables: tables}
}

// Tables exposes the configured table names, mainly for the generic table
// query endpoint.
func (r *Repository) Tables() Tables {
	return r.tables
}

// PlayerByID fetches one player. Absence is a normal outcome.
func (r *Repository) PlayerByID(ctx context.Context, id string) (Player, bool, error) {
	row, found, err := r.store.Get(ctx, r.tables.Players, "player_uuid", id)
	if err != nil || !found {
		return Player{}, false, err
	}
	return playerFromRow(row), true, nil
}

// PlayersByTeamUniversity returns every player registered under a team
// university, across all sports.
func (r *Repository) PlayersByTeamUniversity(ctx context.Context, teamUniversity string) ([]Player, error) {
	rows, err := r.store.GetByIndex(ctx, r.tables.Players, "team_university", teamUniversity)
	if err != nil {
		return nil, err
	}
	return playersFromRows(rows), nil
}

// PlayersByUniversity returns every player whose own university matches.
func (r *Repository) PlayersByUniversity(ctx context.Context, playerUniversity string) ([]Player, error) {
	rows, err := r.store.GetByIndex(ctx, r.tables.Players, "player_university", playerUniversity)
	if err != nil {
		return nil, err
	}
	return playersFromRows(rows), nil
}

// PlayersByName returns every player row under a display name. Names are
// not unique; callers narrow by university.
func (r *Repository) PlayersByName(ctx context.Context, name string) ([]Player, error) {
	rows, err := r.store.GetByIndex(ctx, r.tables.Players, "name", name)
	if err != nil {
		return nil, err
	}
	return playersFromRows(rows), nil
}

// ScanPlayers returns every player.
func (r *Repository) ScanPlayers(ctx context.Context) ([]Player, error) {
	rows, err := r.store.Scan(ctx, r.tables.Players)
	if err != nil {
		return nil, err
	}
	return playersFromRows(rows), nil
}

// WritePlayer upserts a player row.
func (r *Repository) WritePlayer(ctx context.Context, p Player) error {
	return r.store.Write(ctx, r.tables.Players, p.row())
}

// DeletePlayer removes a player row by id.
func (r *Repository) DeletePlayer(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.tables.Players, "player_uuid", id)
}

// TeamsByTeamUniversity returns every sub-roster row filed under a team
// university.
func (r *Repository) TeamsByTeamUniversity(ctx context.Context, teamUniversity string) ([]Team, error) {
	rows, err := r.store.GetByIndex(ctx, r.tables.Teams, "team_university", teamUniversity)
	if err != nil {
		return nil, err
	}
	return teamsFromRows(rows), nil
}

// TeamsBySport returns every sub-roster row for a sport.
func (r *Repository) TeamsBySport(ctx context.Context, sport string) ([]Team, error) {
	rows, err := r.store.GetByIndex(ctx, r.tables.Teams, "sport", sport)
	if err != nil {
		return nil, err
	}
	return teamsFromRows(rows), nil
}

// ScanTeams returns every team row.
func (r *Repository) ScanTeams(ctx context.Context) ([]Team, error) {
	rows, err := r.store.Scan(ctx, r.tables.Teams)
	if err != nil {
		return nil, err
	}
	return teamsFromRows(rows), nil
}

// TeamForSubRoster returns the single Team row for a (sport,
// team_university, university) triple. More than one matching row breaks
// the uniqueness invariant and is surfaced as an IntegrityError.
func (r *Repository) TeamForSubRoster(ctx context.Context, sport, teamUniversity, university string) (Team, bool, error) {
	teams, err := r.TeamsByTeamUniversity(ctx, teamUniversity)
	if err != nil {
		return Team{}, false, err
	}
	var matches []Team
	for _, t := range teams {
		if t.Sport == sport && t.University == university {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return Team{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		return Team{}, false, &IntegrityError{
			Table: r.tables.Teams,
			Detail: fmt.Sprintf("%d team rows for (%s, %s, %s), expected at most one",
				len(matches), sport, teamUniversity, university),
		}
	}
}

// WriteTeam upserts a team row.
func (r *Repository) WriteTeam(ctx context.Context, t Team) error {
	return r.store.Write(ctx, r.tables.Teams, t.row())
}

// DeleteTeam removes a team row by id.
func (r *Repository) DeleteTeam(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.tables.Teams, "team_uuid", id)
}

// SportCount fetches the count row for a sport.
func (r *Repository) SportCount(ctx context.Context, sport string) (SportCount, bool, error) {
	row, found, err := r.store.Get(ctx, r.tables.SportCount, "sport_name", sport)
	if err != nil || !found {
		return SportCount{}, false, err
	}
	return sportCountFromRow(row), true, nil
}

// ScanSportCounts returns every sport's count row.
func (r *Repository) ScanSportCounts(ctx context.Context) ([]SportCount, error) {
	rows, err := r.store.Scan(ctx, r.tables.SportCount)
	if err != nil {
		return nil, err
	}
	out := make([]SportCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, sportCountFromRow(row))
	}
	return out, nil
}

// WriteSportCount upserts a sport count row. Registration never calls this;
// it exists for seeding and administrative edits. TeamCount changes go
// through IncrementTeamCount/DecrementTeamCount only.
func (r *Repository) WriteSportCount(ctx context.Context, s SportCount) error {
	return r.store.Write(ctx, r.tables.SportCount, s.row())
}

// IncrementTeamCount atomically bumps a sport's team count.
func (r *Repository) IncrementTeamCount(ctx context.Context, sport string) error {
	return r.store.Increment(ctx, r.tables.SportCount, "sport_name", sport, "team_count", 1)
}

// DecrementTeamCount atomically lowers a sport's team count.
func (r *Repository) DecrementTeamCount(ctx context.Context, sport string) error {
	return r.store.Decrement(ctx, r.tables.SportCount, "sport_name", sport, "team_count", 1)
}

// Disqualification fetches the tracking record for a pair key.
func (r *Repository) Disqualification(ctx context.Context, key string) (DisqualificationRecord, bool, error) {
	row, found, err := r.store.Get(ctx, r.tables.Disqualified, "pair_key", key)
	if err != nil || !found {
		return DisqualificationRecord{}, false, err
	}
	return disqualificationFromRow(row), true, nil
}

// ScanDisqualifications returns every tracking record.
func (r *Repository) ScanDisqualifications(ctx context.Context) ([]DisqualificationRecord, error) {
	rows, err := r.store.Scan(ctx, r.tables.Disqualified)
	if err != nil {
		return nil, err
	}
	out := make([]DisqualificationRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, disqualificationFromRow(row))
	}
	return out, nil
}

// WriteDisqualification upserts a tracking record.
func (r *Repository) WriteDisqualification(ctx context.Context, d DisqualificationRecord) error {
	return r.store.Write(ctx, r.tables.Disqualified, d.row())
}

// Address fetches the mailing address for a university code.
func (r *Repository) Address(ctx context.Context, university string) (Address, bool, error) {
	row, found, err := r.store.Get(ctx, r.tables.Addresses, "university", university)
	if err != nil || !found {
		return Address{}, false, err
	}
	return addressFromRow(row), true, nil
}

// WriteAddress upserts a mailing address.
func (r *Repository) WriteAddress(ctx context.Context, a Address) error {
	return r.store.Write(ctx, r.tables.Addresses, a.row())
}

func playersFromRows(rows []store.Row) []Player {
	out := make([]Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, playerFromRow(r))
	}
	return out
}

func teamsFromRows(rows []store.Row) []Team {
	out := make([]Team, 0, len(rows))
	for _, r := range rows {
		out = append(out, teamFromRow(r))
	}
	return out
}
