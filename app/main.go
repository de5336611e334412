package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkwenti/pricewatch/app/alert"
	"github.com/nkwenti/pricewatch/app/api"
	"github.com/nkwenti/pricewatch/app/cfg"
	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/jobs"
	"github.com/nkwenti/pricewatch/app/scraper"
	"github.com/nkwenti/pricewatch/app/tasks"
	"github.com/nkwenti/pricewatch/app/watch"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting pricewatch", "version", appCfg.Version, "db_type", appCfg.DBType)

	db, err := openDatabase(appCfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if dirty {
		slog.Warn("Database schema is dirty", "version", version)
	}
	slog.Info("Database ready", "type", db.Type(), "schema_version", version)

	configCache := watch.NewConfigCache(appCfg.WatchesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load watch configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Watch configurations loaded", "count", configCache.GetConfigCount())

	productRepo := database.NewProductRepository(db)
	historyRepo := database.NewHistoryRepository(db)
	alertRepo := database.NewAlertRepository(db)
	runLogRepo := database.NewRunLogRepository(db)
	watchRepo := database.NewWatchRepository(db)

	mailer := alert.NewMailer(appCfg.SMTPHost, appCfg.SMTPPort, appCfg.SMTPUser,
		appCfg.SMTPPassword, appCfg.AlertRecipient)

	fetcher := scraper.NewChromeScraper(appCfg.UserAgent, appCfg.ChromeBin, appCfg.Headless)

	runner := jobs.NewRunner(fetcher, productRepo, historyRepo, alertRepo, runLogRepo,
		mailer, appCfg.PriceDropPercent, appCfg.ValueRatioMin, appCfg.RecentAlertsLimit)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount,
		"interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, watchRepo, runner)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, productRepo, historyRepo, alertRepo,
		runLogRepo, watchRepo, runner, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func openDatabase(appCfg *cfg.Cfg) (*database.DB, error) {
	if appCfg.DBType == database.TypePostgres {
		return database.NewPostgresConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
			appCfg.DBPassword, appCfg.DBName)
	}
	return database.NewSQLiteConnection(appCfg.DBPath)
}
