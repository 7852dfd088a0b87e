package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/pulse-comb/app/aggregate"
	"github.com/lysyi3m/pulse-comb/app/api"
	"github.com/lysyi3m/pulse-comb/app/cfg"
	"github.com/lysyi3m/pulse-comb/app/database"
	"github.com/lysyi3m/pulse-comb/app/metrics"
	"github.com/lysyi3m/pulse-comb/app/profile"
	"github.com/lysyi3m/pulse-comb/app/quality"
	"github.com/lysyi3m/pulse-comb/app/rank"
	"github.com/lysyi3m/pulse-comb/app/source"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Pulse Comb", "version", appCfg.Version)

	db, err := database.Open()
	if err != nil {
		slog.Error("Failed to initialize run store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	configCache := source.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}

	profiles := profile.NewStore()
	if appCfg.ProfilesFile != "" {
		if err := profiles.LoadFile(appCfg.ProfilesFile); err != nil {
			slog.Error("Failed to load profiles", "file", appCfg.ProfilesFile, "error", err)
			os.Exit(1)
		}
	}
	if _, err := profiles.Get(appCfg.DefaultProfile); err != nil {
		slog.Error("Default profile is not defined", "profile", appCfg.DefaultProfile, "error", err)
		os.Exit(1)
	}

	collector := metrics.New(appCfg.Version)

	guarded := source.BuildAll(configCache.GetEnabledConfigs(), source.Env{
		Client:    &http.Client{},
		UserAgent: appCfg.UserAgent,
	}, collector)

	sources := make([]aggregate.Source, 0, len(guarded))
	stats := make([]api.SourceStatsInterface, 0, len(guarded))
	for _, g := range guarded {
		sources = append(sources, g)
		stats = append(stats, g)
	}

	slog.Info("Sources ready",
		"configured", configCache.GetConfigCount(),
		"enabled", len(guarded),
		"profiles", profiles.Names())

	handler := api.NewHandler(
		aggregate.NewEngine(sources, appCfg.AggregateWorkers, collector),
		rank.New(),
		quality.New(),
		profiles,
		database.NewRunRepository(db),
		stats,
		api.Defaults{
			Profile:          appCfg.DefaultProfile,
			MinTargets:       appCfg.MinTargets,
			PrivilegedOrigin: appCfg.PrivilegedOrigin,
			QuotaFloor:       appCfg.QuotaFloor,
			Timeout:          appCfg.AggregateTimeout,
			RunHistory:       appCfg.RunHistory,
		},
		appCfg.Version,
	)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey, collector),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appCfg.AggregateTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Pulse Comb shutdown complete")
}
