// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/samaggi-games/tournament-admin/internal/config"
	"github.com/samaggi-games/tournament-admin/internal/disqual"
	"github.com/samaggi-games/tournament-admin/internal/media"
	"github.com/samaggi-games/tournament-admin/internal/notify"
	"github.com/samaggi-games/tournament-admin/internal/roster"
	"github.com/samaggi-games/tournament-admin/internal/schedule"
	"github.com/samaggi-games/tournament-admin/internal/scheduler"
	"github.com/samaggi-games/tournament-admin/internal/store"
)

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backing, err := store.NewDynamo(ctx,
		cfg.Store.AccessKeyID, cfg.Store.SecretAccessKey,
		cfg.Store.Region, cfg.Store.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build store")
	}
	repo := roster.NewRepository(backing, roster.DefaultTables(cfg.Store.TablePrefix))

	rules := roster.Ruleset{MaxAlliedUniversities: cfg.Rules.MaxAlliedUniversities}
	orchestrator := roster.NewOrchestrator(repo, rules)

	timetable := schedule.Default()
	if cfg.Schedule.TimetablePath != "" {
		timetable, err = schedule.LoadFile(cfg.Schedule.TimetablePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Schedule.TimetablePath).Msg("Failed to load timetable")
		}
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.WebhookURL != "" {
		notifier, err = notify.NewDiscordWebhook(cfg.Notify.WebhookURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build notifier")
		}
	} else {
		log.Warn().Msg("Discord webhook not configured; notifications disabled")
	}
	monitor := disqual.New(repo, notifier, clockwork.NewRealClock(), cfg.Monitor.Cooldown)

	var presigner *media.Presigner
	if cfg.Media.Bucket != "" {
		presigner, err = media.New(ctx,
			cfg.Store.AccessKeyID, cfg.Store.SecretAccessKey,
			cfg.Store.Region, cfg.Media.Bucket, cfg.Media.URLExpiry)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build media presigner")
		}
	} else {
		log.Warn().Msg("Media bucket not configured; media endpoints disabled")
	}

	sched, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build scheduler")
	}
	if err := scheduler.RegisterDisqualificationJob(sched, monitor, cfg.Monitor.Cron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register disqualification job")
	}

	server := newServer(cfg, serverDeps{
		store:        backing,
		repo:         repo,
		orchestrator: orchestrator,
		timetable:    timetable,
		monitor:      monitor,
		presigner:    presigner,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sched.Start()
		return nil
	})

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown error")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
