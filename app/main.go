package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oboete/app/api"
	"oboete/app/cfg"
	"oboete/app/database"
	"oboete/app/fallback"
	"oboete/app/notify"
	"oboete/app/tasks"
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

	slog.Info("Starting Oboete server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database opened", "path", appCfg.DBPath)

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied", "version", version, "dirty", dirty)

	reminderRepo := database.NewReminderRepository(db)
	stateRepo := database.NewStateRepository(db)
	recordStartup(stateRepo)

	routeCache := notify.NewRouteCache(appCfg.RoutesFile)
	if err := routeCache.Run(); err != nil {
		slog.Error("Failed to load notification routes", "file", appCfg.RoutesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Notification routes loaded", "count", routeCache.GetRouteCount())

	httpClient := &http.Client{Timeout: 15 * time.Second}
	notifier := notify.NewWebhookNotifier(routeCache, httpClient, appCfg.UserAgent)

	var fallbackResolver fallback.Resolver
	if appCfg.LLMAPIKey != "" {
		fallbackResolver = fallback.NewClient(appCfg.LLMEndpoint, appCfg.LLMAPIKey, appCfg.LLMModel, httpClient)
		slog.Info("Fallback resolver enabled", "model", appCfg.LLMModel)
	} else {
		slog.Info("Fallback resolver disabled (LLM_API_KEY not set)")
	}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(reminderRepo, notifier,
		time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(reminderRepo, routeCache, fallbackResolver, appCfg.Version)
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
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if appCfg.APIAccessKey == "" {
			slog.Warn("API endpoints disabled (API_ACCESS_KEY not set)")
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Oboete server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// recordStartup stamps the last boot time so operators can tell a crash
// loop from a clean deploy by querying app_state.
func recordStartup(stateRepo database.StateRepository) {
	if err := stateRepo.Set("last_started_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("Failed to record startup time", "error", err)
	}
}
