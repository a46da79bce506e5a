package disqual

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/samaggi-games/tournament-admin/internal/roster"
	"github.com/samaggi-games/tournament-admin/internal/store"
)

type captureNotifier struct {
	messages []string
	fail     bool
}

func (c *captureNotifier) Notify(_ context.Context, message string) error {
	if c.fail {
		return errors.New("webhook down")
	}
	c.messages = append(c.messages, message)
	return nil
}

func (c *captureNotifier) last(t *testing.T) string {
	t.Helper()
	if len(c.messages) == 0 {
		t.Fatal("no notification sent")
	}
	return c.messages[len(c.messages)-1]
}

type fixture struct {
	repo     *roster.Repository
	notifier *captureNotifier
	clock    *clockwork.FakeClock
	monitor  *Monitor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := roster.NewRepository(store.NewMemory(), roster.DefaultTables(""))
	notifier := &captureNotifier{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC))
	return &fixture{
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		monitor:  New(repo, notifier, clock, 6*time.Hour),
	}
}

// seedTeam registers a founding team with n players for the sport.
func (f *fixture) seedTeam(t *testing.T, uni, sport string, n int) {
	t.Helper()
	ctx := context.Background()
	if err := f.repo.WriteTeam(ctx, roster.Team{
		ID: uni + "-" + sport, Sport: sport, TeamUniversity: uni, University: uni,
	}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := f.repo.WritePlayer(ctx, roster.Player{
			ID:               uni + "-" + sport + "-" + string(rune('a'+i)),
			Name:             "Player " + string(rune('A'+i)),
			Sport:            sport,
			PlayerUniversity: uni,
			TeamUniversity:   uni,
		}); err != nil {
			t.Fatal(err)
		}
	}
}

func (f *fixture) run(t *testing.T) Report {
	t.Helper()
	report, err := f.monitor.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return report
}

func (f *fixture) seedSport(t *testing.T, sport string, minimum int) {
	t.Helper()
	if err := f.repo.WriteSportCount(context.Background(), roster.SportCount{
		Sport: sport, MaxTeams: 8, MaxSize: 11, MinimumSize: minimum,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRun_TracksUndersizedTeam(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 3)

	report := f.run(t)
	if len(report.Tracked) != 1 || report.Tracked[0] != "Football-Oxford" {
		t.Fatalf("tracked = %v", report.Tracked)
	}
	if len(report.Disqualified) != 0 {
		t.Fatalf("disqualified too early: %v", report.Disqualified)
	}

	rec, found, err := f.repo.Disqualification(context.Background(), "Football-Oxford")
	if err != nil || !found {
		t.Fatalf("record: found=%v err=%v", found, err)
	}
	if !rec.Active || rec.Disqualified {
		t.Fatalf("record = %+v", rec)
	}
}

func TestRun_DisqualifiesAfterCooldown(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 3)

	f.run(t)

	// Still within the cooldown: tracked but not disqualified.
	f.clock.Advance(5 * time.Hour)
	report := f.run(t)
	if len(report.Disqualified) != 0 {
		t.Fatalf("disqualified inside cooldown: %v", report.Disqualified)
	}

	// Past the cooldown: disqualified.
	f.clock.Advance(2 * time.Hour)
	report = f.run(t)
	if len(report.Disqualified) != 1 || report.Disqualified[0] != "Football-Oxford" {
		t.Fatalf("disqualified = %v", report.Disqualified)
	}
	if len(report.CurrentlyDisqualified) != 1 {
		t.Fatalf("currently disqualified = %v", report.CurrentlyDisqualified)
	}

	msg := f.notifier.last(t)
	if !strings.Contains(msg, "now disqualified") ||
		!strings.Contains(msg, "Currently disqualified: Football-Oxford") {
		t.Fatalf("message = %q", msg)
	}
}

func TestRun_RecoveryBeforeCooldownEscapesTracking(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 3)
	ctx := context.Background()

	f.run(t)

	// Team recovers before the cooldown elapses; after the cooldown the
	// record is cleared instead of disqualified.
	for _, id := range []string{"x1", "x2"} {
		if err := f.repo.WritePlayer(ctx, roster.Player{
			ID: id, Name: id, Sport: "Football",
			PlayerUniversity: "Oxford", TeamUniversity: "Oxford",
		}); err != nil {
			t.Fatal(err)
		}
	}

	f.clock.Advance(7 * time.Hour)
	report := f.run(t)
	if len(report.Disqualified) != 0 {
		t.Fatalf("recovered team disqualified: %v", report.Disqualified)
	}
	if len(report.Cleared) != 1 || report.Cleared[0] != "Football-Oxford" {
		t.Fatalf("cleared = %v", report.Cleared)
	}

	rec, found, err := f.repo.Disqualification(ctx, "Football-Oxford")
	if err != nil || !found {
		t.Fatalf("record: found=%v err=%v", found, err)
	}
	if rec.Active || rec.Disqualified {
		t.Fatalf("record = %+v", rec)
	}
}

func TestRun_RetracksAfterRelapse(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 3)
	ctx := context.Background()

	f.run(t)

	// Recover, wait out the cooldown, get cleared.
	for _, id := range []string{"x1", "x2"} {
		if err := f.repo.WritePlayer(ctx, roster.Player{
			ID: id, Name: id, Sport: "Football",
			PlayerUniversity: "Oxford", TeamUniversity: "Oxford",
		}); err != nil {
			t.Fatal(err)
		}
	}
	f.clock.Advance(7 * time.Hour)
	f.run(t)

	// Relapse: drop back below minimum. The existing inactive record is
	// reactivated with a fresh timestamp.
	if err := f.repo.DeletePlayer(ctx, "x1"); err != nil {
		t.Fatal(err)
	}
	if err := f.repo.DeletePlayer(ctx, "x2"); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(time.Hour)
	report := f.run(t)
	if len(report.Retracked) != 1 || report.Retracked[0] != "Football-Oxford" {
		t.Fatalf("retracked = %v", report.Retracked)
	}

	// The relapse clock starts over; 5 hours in, still not disqualified.
	f.clock.Advance(5 * time.Hour)
	report = f.run(t)
	if len(report.Disqualified) != 0 {
		t.Fatalf("relapse must restart the cooldown: %v", report.Disqualified)
	}
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 3)
	f.seedTeam(t, "Durham", "Football", 6)

	f.run(t)
	f.clock.Advance(7 * time.Hour)
	f.run(t)

	// Re-running with no roster changes and no elapsed time transitions
	// nothing.
	report := f.run(t)
	if report.changed() {
		t.Fatalf("second run transitioned state: %+v", report)
	}
	if len(report.CurrentlyDisqualified) != 1 {
		t.Fatalf("currently disqualified = %v", report.CurrentlyDisqualified)
	}
}

func TestRun_NoUpdatesMessage(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 6)

	f.run(t)
	msg := f.notifier.last(t)
	if msg != "Disqualification check complete. No updates." {
		t.Fatalf("message = %q", msg)
	}
}

func TestRun_HealthyTeamNeverTracked(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 6)

	report := f.run(t)
	if report.changed() {
		t.Fatalf("healthy team transitioned: %+v", report)
	}
	if _, found, _ := f.repo.Disqualification(context.Background(), "Football-Oxford"); found {
		t.Fatal("healthy team must have no record")
	}
}

func TestRun_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	f.seedSport(t, "Football", 5)
	f.seedTeam(t, "Oxford", "Football", 3)

	report, err := f.monitor.Run(context.Background())
	if err != nil {
		t.Fatalf("notifier failure must not fail the run: %v", err)
	}
	if len(report.Tracked) != 1 {
		t.Fatalf("tracked = %v", report.Tracked)
	}
}

func TestRun_SportWithoutMinimumSkipped(t *testing.T) {
	f := newFixture(t)
	f.seedSport(t, "Chess", 0)
	f.seedTeam(t, "Oxford", "Chess", 1)

	report := f.run(t)
	if report.changed() {
		t.Fatalf("sport without a minimum transitioned: %+v", report)
	}
}
