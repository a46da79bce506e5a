// Package roster holds the tournament's core entities and the eligibility
// and mutation logic that keeps them consistent: players register to teams
// under a main or allied university, sport-level team counts are capped, and
// composition quotas are enforced before anything is persisted.
package roster

import (
	"time"

	"github.com/samaggi-games/tournament-admin/internal/store"
)

// Tables names the backing store tables. The zero value is unusable; use
// DefaultTables or derive from configuration.
type Tables struct {
	Players      string
	Teams        string
	SportCount   string
	Disqualified string
	Addresses    string
}

// DefaultTables returns the table names used by the deployed stack, with an
// optional prefix in front of each.
func DefaultTables(prefix string) Tables {
	if prefix == "" {
		prefix = "SamaggiGames"
	}
	return Tables{
		Players:      prefix + "Players",
		Teams:        prefix + "Teams",
		SportCount:   prefix + "SportCount",
		Disqualified: prefix + "Disqualified",
		Addresses:    prefix + "Addresses",
	}
}

// Player is one roster entry. A player plays exactly one sport for exactly
// one team university; the player's own university may differ (an allied
// player). City is derived from the university directory at write time.
type Player struct {
	ID               string
	Name             string
	Nickname         string
	Sport            string
	PlayerUniversity string
	TeamUniversity   string
	City             string
	ShirtNumber      int
	ImageKey         string
}

// Team is one sub-roster row: the university the team competes for plus the
// specific university of this roster entry. The founding row has
// University == TeamUniversity; allied rows carry the supporting
// university. At most one row exists per (sport, team_university,
// university) triple.
type Team struct {
	ID             string
	Sport          string
	TeamUniversity string
	University     string
	Captain        string
	Contact        string
}

// Founding reports whether this row is the founding sub-roster, whose
// disappearance frees a team slot for the sport.
func (t Team) Founding() bool {
	return t.University == t.TeamUniversity
}

// SportCount caps and tracks team registration for one sport. TeamCount is
// only ever mutated through atomic increment/decrement.
type SportCount struct {
	Sport       string
	TeamCount   int
	MaxTeams    int
	MaxSize     int
	MinimumSize int
}

// Full reports whether the sport has reached its team cap.
func (s SportCount) Full() bool {
	return s.TeamCount >= s.MaxTeams
}

// DisqualificationRecord tracks one (sport, team_university) pair through
// the under-minimum-size state machine. Since holds when the below-minimum
// condition was last (re)observed; the same field gates both the
// disqualification and the recovery cooldown.
type DisqualificationRecord struct {
	Key            string
	Sport          string
	TeamUniversity string
	Active         bool
	Disqualified   bool
	Since          time.Time
}

// DisqualificationKey builds the composite record key for a pair.
func DisqualificationKey(sport, teamUniversity string) string {
	return sport + "-" + teamUniversity
}

// Address is the mailing address on file for a university code.
type Address struct {
	University string
	Recipient  string
	Line1      string
	Line2      string
	City       string
	Postcode   string
	Country    string
}

func playerFromRow(r store.Row) Player {
	return Player{
		ID:               r.String("player_uuid"),
		Name:             r.String("name"),
		Nickname:         r.String("nickname"),
		Sport:            r.String("sport"),
		PlayerUniversity: r.String("player_university"),
		TeamUniversity:   r.String("team_university"),
		City:             r.String("city"),
		ShirtNumber:      r.Int("shirt_number"),
		ImageKey:         r.String("image_key"),
	}
}

func (p Player) row() store.Row {
	r := store.Row{
		"player_uuid":       p.ID,
		"name":              p.Name,
		"sport":             p.Sport,
		"player_university": p.PlayerUniversity,
		"team_university":   p.TeamUniversity,
		"city":              p.City,
	}
	if p.Nickname != "" {
		r["nickname"] = p.Nickname
	}
	if p.ShirtNumber != 0 {
		r["shirt_number"] = p.ShirtNumber
	}
	if p.ImageKey != "" {
		r["image_key"] = p.ImageKey
	}
	return r
}

func teamFromRow(r store.Row) Team {
	return Team{
		ID:             r.String("team_uuid"),
		Sport:          r.String("sport"),
		TeamUniversity: r.String("team_university"),
		University:     r.String("university"),
		Captain:        r.String("captain"),
		Contact:        r.String("contact"),
	}
}

func (t Team) row() store.Row {
	return store.Row{
		"team_uuid":       t.ID,
		"sport":           t.Sport,
		"team_university": t.TeamUniversity,
		"university":      t.University,
		"captain":         t.Captain,
		"contact":         t.Contact,
	}
}

func sportCountFromRow(r store.Row) SportCount {
	return SportCount{
		Sport:       r.String("sport_name"),
		TeamCount:   r.Int("team_count"),
		MaxTeams:    r.Int("max_teams"),
		MaxSize:     r.Int("max_size"),
		MinimumSize: r.Int("minimum_size"),
	}
}

func (s SportCount) row() store.Row {
	return store.Row{
		"sport_name":   s.Sport,
		"team_count":   s.TeamCount,
		"max_teams":    s.MaxTeams,
		"max_size":     s.MaxSize,
		"minimum_size": s.MinimumSize,
	}
}

func disqualificationFromRow(r store.Row) DisqualificationRecord {
	return DisqualificationRecord{
		Key:            r.String("pair_key"),
		Sport:          r.String("sport"),
		TeamUniversity: r.String("team_university"),
		Active:         r.Bool("active"),
		Disqualified:   r.Bool("disqualified"),
		Since:          time.Unix(r.Int64("time"), 0).UTC(),
	}
}

func (d DisqualificationRecord) row() store.Row {
	return store.Row{
		"pair_key":        d.Key,
		"sport":           d.Sport,
		"team_university": d.TeamUniversity,
		"active":          d.Active,
		"disqualified":    d.Disqualified,
		"time":            d.Since.Unix(),
	}
}

func addressFromRow(r store.Row) Address {
	return Address{
		University: r.String("university"),
		Recipient:  r.String("recipient"),
		Line1:      r.String("line1"),
		Line2:      r.String("line2"),
		City:       r.String("city"),
		Postcode:   r.String("postcode"),
		Country:    r.String("country"),
	}
}

func (a Address) row() store.Row {
	return store.Row{
		"university": a.University,
		"recipient":  a.Recipient,
		"line1":      a.Line1,
		"line2":      a.Line2,
		"city":       a.City,
		"postcode":   a.Postcode,
		"country":    a.Country,
	}
}
