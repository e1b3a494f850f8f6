package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lmoretti/rounds-watcher/internal/server"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Runs checks on a schedule until interrupted",
		Long: `Runs a check immediately and then on the configured interval.
Overlapping runs are skipped rather than queued: one run completes or
fails before the next begins. An ops HTTP server exposes /healthz and
/metrics while watching.`,
		RunE: runWatchCommand,
	}
}

func runWatchCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadApp()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, cleanup, err := buildWatcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Watch.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("ops server started", zap.Int("port", cfg.Watch.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", zap.Error(err))
			stop()
		}
	}()

	runOnce := func() {
		if _, err := w.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduled run failed", zap.Error(err))
		}
	}

	// First check happens right away; the schedule covers the rest.
	runOnce()

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.Watch.Interval()), runOnce); err != nil {
		return fmt.Errorf("schedule runs: %w", err)
	}
	scheduler.Start()
	logger.Info("watching", zap.Duration("interval", cfg.Watch.Interval()))

	<-ctx.Done()
	logger.Info("shutting down")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ops server shutdown", zap.Error(err))
	}
	return nil
}
