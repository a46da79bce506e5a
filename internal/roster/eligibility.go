package roster

import "fmt"

// Ruleset fixes the eligibility rules for a tournament year. Earlier years
// ran with an allied cap of 3 and a home-city carve-out for football; the
// current canonical rules use a cap of 2 and no carve-out.
type Ruleset struct {
	// MaxAlliedUniversities caps the distinct supporting universities a
	// team may draw players from, not counting the team university itself.
	MaxAlliedUniversities int
}

// DefaultRuleset returns the current tournament rules.
func DefaultRuleset() Ruleset {
	return Ruleset{MaxAlliedUniversities: 2}
}

// Decision is the outcome of an eligibility check. Reason is human-readable
// and only set on refusal. A refusal is an expected outcome, not an error.
type Decision struct {
	Valid  bool
	Reason string
}

func accept() Decision         { return Decision{Valid: true} }
func reject(r string) Decision { return Decision{Valid: false, Reason: r} }

// AddSnapshot is the consistent read ValidateAdd decides over. TeamRoster
// holds the current players on (team_university, sport); UniversityRoster
// holds every player from the candidate's own university playing the sport,
// regardless of team.
type AddSnapshot struct {
	TeamRoster       []Player
	UniversityRoster []Player
}

// ValidateAdd decides whether a player from playerUniversity may register
// for teamUniversity's sport team. Rules apply in order; the first failing
// rule wins.
func (rs Ruleset) ValidateAdd(snap AddSnapshot, teamUniversity, playerUniversity, sport string) Decision {
	allied := playerUniversity != teamUniversity

	// A team starts with a player from the university it plays for.
	if len(snap.TeamRoster) == 0 && allied {
		return reject("First player must be from the university they're playing for.")
	}

	// Composition quota: adding this player must not push the share of
	// allied players over half. Integer form of (support+1)/(total+1) > 0.5.
	if allied {
		support := 0
		for _, p := range snap.TeamRoster {
			if p.PlayerUniversity != teamUniversity {
				support++
			}
		}
		if 2*(support+1) > len(snap.TeamRoster)+1 {
			return reject(fmt.Sprintf(
				"%s's %s team must keep a majority of players from %s.",
				teamUniversity, sport, teamUniversity))
		}
	}

	// Exclusivity: a university fields players for a sport under exactly
	// one team university.
	for _, p := range snap.UniversityRoster {
		if p.TeamUniversity == teamUniversity {
			continue
		}
		if p.TeamUniversity == playerUniversity {
			return reject(fmt.Sprintf("%s already has a team for %s.", playerUniversity, sport))
		}
		return reject(fmt.Sprintf("%s is already playing %s for %s.",
			playerUniversity, sport, p.TeamUniversity))
	}

	// Allied cap: only so many distinct supporting universities per team.
	if allied {
		distinct := map[string]struct{}{}
		repeat := false
		for _, p := range snap.TeamRoster {
			if p.PlayerUniversity == teamUniversity {
				continue
			}
			if p.PlayerUniversity == playerUniversity {
				repeat = true
			}
			distinct[p.PlayerUniversity] = struct{}{}
		}
		if !repeat && len(distinct) >= rs.MaxAlliedUniversities {
			return reject(fmt.Sprintf("%s's %s team already has %d supporting universities.",
				teamUniversity, sport, rs.MaxAlliedUniversities))
		}
	}

	return accept()
}

// RemovalPlan is the side-effect plan for deleting one player. The player
// row itself is always deleted once Allowed; the team row deletion and the
// count decrement are conditional.
type RemovalPlan struct {
	Allowed bool
	Reason  string

	// LastOnSubRoster is true when the player is the only remaining entry
	// of their (team_university, sport, university) sub-roster, so the
	// matching Team row goes too.
	LastOnSubRoster bool

	// FreesTeamSlot is true when the deleted sub-roster is the founding
	// one; only then does SportCount.team_count go down.
	FreesTeamSlot bool
}

// RemoveSnapshot is the consistent read ValidateRemove decides over.
// TeamRoster holds every player on (team_university, sport) including the
// one being removed; Teams holds every Team row for the same pair.
type RemoveSnapshot struct {
	TeamRoster []Player
	Teams      []Team
}

// ValidateRemove computes the removal plan for one player. Removing a
// founding-university player is refused when it would leave the remaining
// roster without a founding majority while allied sub-rosters still exist;
// the caller must resolve composition first.
func (rs Ruleset) ValidateRemove(snap RemoveSnapshot, p Player) RemovalPlan {
	remaining := make([]Player, 0, len(snap.TeamRoster))
	subRosterSize := 0
	for _, q := range snap.TeamRoster {
		if q.ID == p.ID {
			continue
		}
		remaining = append(remaining, q)
		if q.PlayerUniversity == p.PlayerUniversity {
			subRosterSize++
		}
	}

	founding := p.PlayerUniversity == p.TeamUniversity
	if founding && len(snap.Teams) > 1 {
		foundingLeft := 0
		for _, q := range remaining {
			if q.PlayerUniversity == p.TeamUniversity {
				foundingLeft++
			}
		}
		if len(remaining) > 0 && 2*foundingLeft < len(remaining) {
			return RemovalPlan{
				Allowed: false,
				Reason: fmt.Sprintf(
					"Removing %s would leave %s's %s team without a majority from %s. Remove supporting players first.",
					p.Name, p.TeamUniversity, p.Sport, p.TeamUniversity),
			}
		}
	}

	plan := RemovalPlan{Allowed: true}
	if subRosterSize == 0 {
		plan.LastOnSubRoster = true
		plan.FreesTeamSlot = p.PlayerUniversity == p.TeamUniversity
	}
	return plan
}
