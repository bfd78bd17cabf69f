package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/health"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/scheduler"
	"github.com/yourusername/courtside/internal/state"
	"github.com/yourusername/courtside/internal/tracing"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled update daemon",
	Long: `Run Courtside as a long-lived daemon: the state update and the
availability refresh fire on their configured cron schedules, and a
health server exposes /health, /ready, /live and the metrics scrape
path. SIGINT or SIGTERM triggers a graceful shutdown that waits for
in-flight jobs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// tracedUpdateRunner wraps scheduled update runs in an X-Ray segment
// when tracing is enabled.
type tracedUpdateRunner struct {
	pipeline *engine.UpdatePipeline
	enabled  bool
}

func (t *tracedUpdateRunner) Run(ctx context.Context, cfg engine.UpdateConfig) (report *engine.UpdateReport, err error) {
	if t.enabled {
		segCtx, seg := tracing.StartSegment(ctx, "scheduled-update")
		ctx = segCtx
		defer func() { seg.Close(err) }()
	}

	report, err = t.pipeline.Run(ctx, cfg)
	if report != nil {
		tracing.AddAnnotation(ctx, "dates_processed", report.DatesProcessed)
		tracing.AddAnnotation(ctx, "games_processed", report.GamesProcessed)
	}
	return report, err
}

// tracedAvailabilityRefresher wraps scheduled injury refreshes the same
// way.
type tracedAvailabilityRefresher struct {
	predictor *engine.SlatePredictor
	enabled   bool
}

func (t *tracedAvailabilityRefresher) RefreshAvailability(ctx context.Context) (teams int, err error) {
	if t.enabled {
		segCtx, seg := tracing.StartSegment(ctx, "scheduled-availability-refresh")
		ctx = segCtx
		defer func() { seg.Close(err) }()
	}

	teams, err = t.predictor.RefreshAvailability(ctx)
	tracing.AddAnnotation(ctx, "teams_reported", teams)
	return teams, err
}

// runServe starts the scheduler and health server, then blocks until a
// shutdown signal arrives
func runServe(cmd *cobra.Command, args []string) error {
	cfg, appLog, err := bootstrap()
	if err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Courtside daemon starting")

	if err := initTracing(cfg, appLog); err != nil {
		appLog.WithError(err).Warn("Continuing without tracing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, repos := openArchive(ctx, cfg, appLog)
	if db != nil {
		defer db.Close()
	}

	espn, odds, err := buildFeeds(cfg)
	if err != nil {
		return err
	}
	avail := buildAvailability(cfg, espn, appLog)
	clf := buildClassifier(cfg, appLog)

	store := state.NewStore(cfg.State.Dir)
	update := engine.NewUpdatePipeline(store, espn, ratingConfig(cfg), appLog)
	predictor := engine.NewSlatePredictor(store, espn, odds, avail, clf, ratingConfig(cfg), appLog)
	if repos != nil {
		update.SetArchive(repos)
		predictor.SetArchive(repos)
	}

	schedLog := log.New(os.Stdout, "scheduler: ", log.LstdFlags)
	sched := scheduler.NewScheduler(
		&tracedUpdateRunner{pipeline: update, enabled: cfg.Tracing.Enabled},
		&tracedAvailabilityRefresher{predictor: predictor, enabled: cfg.Tracing.Enabled},
		schedLog,
	)
	if err := sched.ScheduleUpdate(cfg.Scheduler.UpdateCron); err != nil {
		return fmt.Errorf("failed to schedule update job: %w", err)
	}
	if cfg.Injuries.Enabled {
		if err := sched.ScheduleAvailabilityRefresh(cfg.Scheduler.AvailabilityCron); err != nil {
			return fmt.Errorf("failed to schedule availability job: %w", err)
		}
	}

	var srv *health.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		healthCfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        strconv.Itoa(cfg.Metrics.Port),
			MetricsPath: cfg.Metrics.Path,
			Logger:      appLog,
			Classifier:  clf,
		}
		if db != nil {
			healthCfg.DB = db
		}

		srv = health.NewServer(healthCfg)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
	} else {
		appLog.Info("Metrics disabled; health server not started")
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	if srv != nil {
		srv.SetReady(true)
	}

	appLog.WithFields(logrus.Fields{
		"update_cron":       cfg.Scheduler.UpdateCron,
		"availability_cron": cfg.Scheduler.AvailabilityCron,
		"next_run":          sched.GetNextRun().Format(time.RFC3339),
		"archive":           repos != nil,
	}).Info("Daemon running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	if srv != nil {
		srv.SetReady(false)
	}
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	cancel()

	appLog.Info("Courtside daemon shut down")
	return nil
}
