package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/vytor/chessduel/internal/api"
	"github.com/vytor/chessduel/internal/config"
	"github.com/vytor/chessduel/internal/db"
	"github.com/vytor/chessduel/internal/jobs"
	"github.com/vytor/chessduel/internal/lichess"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/repository/sqlite"
	"github.com/vytor/chessduel/internal/services"
	"github.com/vytor/chessduel/internal/telemetry"
	"github.com/vytor/chessduel/internal/worker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(term.IsTerminal(int(os.Stdout.Fd()))),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Error("failed to resolve timezone: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("chessduel server starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("data_dir=%s", cfg.DataDir)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("timezone=%s", loc)
	log.Debug("session_gap_minutes=%d", cfg.SessionGapMinutes)
	log.Debug("lichess_url=%s", cfg.LichessURL)
	log.Debug("sync_worker_count=%d", cfg.SyncWorkerCount)
	log.Debug("sync_queue_size=%d", cfg.SyncQueueSize)
	log.Debug("metrics_enabled=%t", cfg.MetricsEnabled)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	gameRepo := sqlite.NewGameRepository(database)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry := telemetry.ShutdownFunc(func(context.Context) error { return nil })
	if cfg.MetricsEnabled {
		shutdownTelemetry, err = telemetry.Setup(ctx, "chessduel", version)
		if err != nil {
			log.Error("failed to set up metrics: %v", err)
			os.Exit(1)
		}
		log.Info("OpenTelemetry metrics enabled")
	}

	store, err := services.OpenArchive(ctx, cfg.DataDir, gameRepo)
	if err != nil {
		log.Error("failed to load game archive: %v", err)
		os.Exit(1)
	}

	dashboard := services.NewDashboardService(services.DashboardConfig{
		Location:           loc,
		SessionGapMinutes:  cfg.SessionGapMinutes,
		FilterCacheSize:    cfg.FilterCacheSize,
		MemoFlushThreshold: cfg.MemoFlushThreshold,
	})
	dashboard.Load(ctx, store)

	client := lichess.New(lichess.Options{
		BaseURL:       cfg.LichessURL,
		Token:         cfg.LichessToken,
		MaxRetries:    cfg.LichessMaxRetries,
		RatePerSecond: cfg.LichessRatePerSecond,
	})
	syncService := services.NewSyncService(client, dashboard, gameRepo, services.SyncConfig{
		DataDir:  cfg.DataDir,
		Username: cfg.LichessUsername,
		Opponent: cfg.LichessOpponent,
	})

	syncPool := worker.NewPool(cfg.SyncWorkerCount, cfg.SyncQueueSize)
	tracker := jobs.NewTracker(jobs.DefaultStatusTTL)
	queue := jobs.NewWorkerQueue(syncPool, syncService, tracker)

	srv := &api.Server{
		Dashboard: dashboard,
		Archive:   services.NewGameService(gameRepo),
		Jobs:      queue,
		JobStatus: queue,
		DB:        database,
	}

	tracker.Start()
	syncPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Let queued syncs finish before the workers are cancelled.
	log.Debug("stopping sync pool")
	syncPool.Stop()
	tracker.Stop()

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error("metrics shutdown error: %v", err)
	}
	cancel()

	log.Info("chessduel server stopped")
}
