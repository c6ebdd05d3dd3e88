// Package refresh implements the refresh command: the background
// metadata-refresh scheduler daemon and its one-shot mode.
package refresh

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/linkward/internal/config"
	"github.com/jonesrussell/linkward/internal/database"
	"github.com/jonesrussell/linkward/internal/github"
	loggerpkg "github.com/jonesrussell/linkward/internal/logger"
	refreshpkg "github.com/jonesrussell/linkward/internal/refresh"
	"github.com/jonesrussell/linkward/internal/scrape"
)

// shutdownTimeout bounds how long shutdown waits for an in-flight
// refresh cycle to drain.
const shutdownTimeout = 30 * time.Second

// once runs a single refresh cycle and exits instead of starting the
// daemon loop.
var once bool

// Command returns the refresh command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run the metadata-refresh scheduler",
		Long: `Run the background scheduler that re-validates stored links and
refreshes their page and GitHub metadata. Runs until interrupted
with Ctrl+C unless --once is given.`,
		RunE: runRefresh,
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single refresh cycle and exit")

	return cmd
}

// runRefresh wires the scheduler from configuration and runs it.
func runRefresh(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := loggerpkg.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	coordinator := buildCoordinator(cfg, db, log)

	if once {
		report := coordinator.RunOnce(cmd.Context())
		if report.Error != "" {
			return fmt.Errorf("refresh cycle failed: %s", report.Error)
		}
		return nil
	}

	return runDaemon(cmd, cfg, coordinator, log)
}

// buildCoordinator assembles the batch coordinator with its external
// collaborators.
func buildCoordinator(cfg *config.Config, db *sqlx.DB, log loggerpkg.Interface) *refreshpkg.Coordinator {
	repo := database.NewLinkRepository(db, cfg.Refresh.Interval, cfg.Refresh.RetryUnavailableRepos)

	httpClient := &http.Client{}
	scraper := scrape.NewScraper(httpClient, cfg.Refresh.FetchTimeout)
	repoClient := github.NewClient(
		httpClient,
		cfg.Refresh.GitHub.APIBaseURL,
		cfg.Refresh.GitHub.Token,
		cfg.Refresh.FetchTimeout,
		cfg.Refresh.GitHub.RequestsPerSecond,
	)

	worker := refreshpkg.NewWorker(scraper, repoClient, log)

	return refreshpkg.NewCoordinator(
		repo,
		worker,
		cfg.Refresh.BatchSize,
		cfg.Refresh.MaxConcurrency,
		cfg.Refresh.FailureThreshold,
		log,
	)
}

// runDaemon runs the scheduler loop until an interrupt arrives, then
// shuts down gracefully.
func runDaemon(cmd *cobra.Command, cfg *config.Config, coordinator *refreshpkg.Coordinator, log loggerpkg.Interface) error {
	clock := refreshpkg.NewClock(cfg.Refresh.Interval, cfg.Refresh.JitterPercent)
	scheduler := refreshpkg.NewScheduler(clock, coordinator, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if startErr := scheduler.Start(ctx); startErr != nil {
		return fmt.Errorf("failed to start scheduler: %w", startErr)
	}

	log.Info("refresh scheduler running",
		"interval", cfg.Refresh.Interval.String(),
		"batch_size", cfg.Refresh.BatchSize,
		"max_concurrency", cfg.Refresh.MaxConcurrency,
	)

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := scheduler.Stop(shutdownCtx); stopErr != nil {
		return fmt.Errorf("failed to stop scheduler cleanly: %w", stopErr)
	}

	return nil
}
