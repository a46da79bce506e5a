package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/samaggi-games/tournament-admin/internal/disqual"
)

const disqualificationJobTimeout = 2 * time.Minute

// RegisterDisqualificationJob schedules periodic disqualification sweeps.
// Runs never overlap; a sweep that outlasts the interval delays the next one.
func RegisterDisqualificationJob(s *Service, monitor *disqual.Monitor, cronExpr string) error {
	if monitor == nil {
		return fmt.Errorf("disqualification job requires monitor")
	}

	jobName := "disqualification_sweep"
	jobLogger := log.With().
		Str("component", "disqualification_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := s.AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), disqualificationJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		report, err := monitor.Run(ctx)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Disqualification sweep failed")
			return
		}
		jobLogger.Info().
			Strs("disqualified", report.Disqualified).
			Strs("cleared", report.Cleared).
			Int("currently_disqualified", len(report.CurrentlyDisqualified)).
			Msg("Disqualification sweep finished")
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add disqualification job: %w", err)
	}

	jobLogger.Info().Msg("Disqualification job registered")
	return nil
}
