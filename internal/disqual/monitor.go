// Package disqual re-derives disqualification state for every
// (team_university, sport) pair from current roster counts. Teams under
// their sport's minimum size are tracked, disqualified after a cooldown of
// continuous undersize, and released again once they recover.
package disqual

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/samaggi-games/tournament-admin/internal/notify"
	"github.com/samaggi-games/tournament-admin/internal/roster"
)

// DefaultCooldown is how long a team must stay below minimum before it is
// disqualified, and equally how long a recovery must hold before tracking
// stops.
const DefaultCooldown = 6 * time.Hour

// Monitor batch-evaluates all pairs once per Run. It holds no state between
// runs; everything is recomputed from a fresh scan, so runs are idempotent
// and safe alongside live registration traffic.
type Monitor struct {
	repo     *roster.Repository
	notifier notify.Notifier
	clock    clockwork.Clock
	cooldown time.Duration
}

// New builds a monitor. A nil notifier discards messages; a nil clock uses
// the wall clock.
func New(repo *roster.Repository, notifier notify.Notifier, clock clockwork.Clock, cooldown time.Duration) *Monitor {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Monitor{repo: repo, notifier: notifier, clock: clock, cooldown: cooldown}
}

// Report summarizes one run's transitions. Slices hold "{sport}-{uni}" pair
// keys.
type Report struct {
	Tracked      []string
	Retracked    []string
	Disqualified []string
	Cleared      []string

	// CurrentlyDisqualified is the post-run set of disqualified pairs.
	CurrentlyDisqualified []string
}

func (r Report) changed() bool {
	return len(r.Tracked)+len(r.Retracked)+len(r.Disqualified)+len(r.Cleared) > 0
}

// Run evaluates every pair and applies state transitions. Change
// notifications and a summary of currently disqualified pairs go out as one
// batched message.
func (m *Monitor) Run(ctx context.Context) (Report, error) {
	var report Report

	teams, err := m.repo.ScanTeams(ctx)
	if err != nil {
		return report, fmt.Errorf("scan teams: %w", err)
	}
	players, err := m.repo.ScanPlayers(ctx)
	if err != nil {
		return report, fmt.Errorf("scan players: %w", err)
	}
	counts, err := m.repo.ScanSportCounts(ctx)
	if err != nil {
		return report, fmt.Errorf("scan sport counts: %w", err)
	}

	minimums := make(map[string]int, len(counts))
	for _, c := range counts {
		minimums[c.Sport] = c.MinimumSize
	}

	// Group teams into the distinct (team_university, sport) pairs to
	// evaluate; allied sub-roster rows collapse into one pair.
	type pair struct{ uni, sport string }
	seen := map[pair]struct{}{}
	var pairs []pair
	for _, t := range teams {
		p := pair{uni: t.TeamUniversity, sport: t.Sport}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].sport != pairs[j].sport {
			return pairs[i].sport < pairs[j].sport
		}
		return pairs[i].uni < pairs[j].uni
	})

	rosterSize := map[pair]int{}
	for _, p := range players {
		rosterSize[pair{uni: p.TeamUniversity, sport: p.Sport}]++
	}

	now := m.clock.Now().UTC()
	var lines []string

	for _, pr := range pairs {
		min, ok := minimums[pr.sport]
		if !ok || min <= 0 {
			continue
		}
		size := rosterSize[pr]
		key := roster.DisqualificationKey(pr.sport, pr.uni)

		record, exists, err := m.repo.Disqualification(ctx, key)
		if err != nil {
			return report, fmt.Errorf("load record %s: %w", key, err)
		}

		below := size < min
		switch {
		case below && !exists:
			record = roster.DisqualificationRecord{
				Key:            key,
				Sport:          pr.sport,
				TeamUniversity: pr.uni,
				Active:         true,
				Since:          now,
			}
			if err := m.repo.WriteDisqualification(ctx, record); err != nil {
				return report, fmt.Errorf("write record %s: %w", key, err)
			}
			report.Tracked = append(report.Tracked, key)
			lines = append(lines, fmt.Sprintf(
				"Now tracking %s's %s team (%d of %d players).", pr.uni, pr.sport, size, min))

		case below && exists && !record.Active:
			record.Active = true
			record.Since = now
			if err := m.repo.WriteDisqualification(ctx, record); err != nil {
				return report, fmt.Errorf("write record %s: %w", key, err)
			}
			report.Retracked = append(report.Retracked, key)
			lines = append(lines, fmt.Sprintf(
				"Now re-tracking %s's %s team (%d of %d players).", pr.uni, pr.sport, size, min))

		case below && exists && record.Active && !record.Disqualified && now.Sub(record.Since) > m.cooldown:
			record.Disqualified = true
			if err := m.repo.WriteDisqualification(ctx, record); err != nil {
				return report, fmt.Errorf("write record %s: %w", key, err)
			}
			report.Disqualified = append(report.Disqualified, key)
			lines = append(lines, fmt.Sprintf(
				"%s's %s team is now disqualified (below minimum size for over %s).",
				pr.uni, pr.sport, m.cooldown))

		case !below && exists && record.Active && !record.Disqualified && now.Sub(record.Since) > m.cooldown:
			// Recovery reuses the below-minimum timestamp as its gate.
			record.Active = false
			if err := m.repo.WriteDisqualification(ctx, record); err != nil {
				return report, fmt.Errorf("write record %s: %w", key, err)
			}
			report.Cleared = append(report.Cleared, key)
			lines = append(lines, fmt.Sprintf(
				"%s's %s team is no longer tracked.", pr.uni, pr.sport))
		}
	}

	records, err := m.repo.ScanDisqualifications(ctx)
	if err != nil {
		return report, fmt.Errorf("scan records: %w", err)
	}
	for _, rec := range records {
		if rec.Disqualified {
			report.CurrentlyDisqualified = append(report.CurrentlyDisqualified, rec.Key)
		}
	}
	sort.Strings(report.CurrentlyDisqualified)

	if len(report.CurrentlyDisqualified) > 0 {
		lines = append(lines, "Currently disqualified: "+strings.Join(report.CurrentlyDisqualified, ", "))
	} else if report.changed() {
		lines = append(lines, "No teams are currently disqualified.")
	} else {
		lines = append(lines, "Disqualification check complete. No updates.")
	}

	message := strings.Join(lines, "\n")
	if err := m.notifier.Notify(ctx, message); err != nil {
		// Notification delivery is best effort; state is already saved.
		log.Ctx(ctx).Error().Err(err).Msg("Failed to deliver disqualification notification")
	}

	log.Ctx(ctx).Info().
		Int("pairs", len(pairs)).
		Int("tracked", len(report.Tracked)).
		Int("retracked", len(report.Retracked)).
		Int("disqualified", len(report.Disqualified)).
		Int("cleared", len(report.Cleared)).
		Msg("Disqualification run complete")

	return report, nil
}
