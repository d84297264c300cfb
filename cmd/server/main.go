// Package main is the entry point for the routemix server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randytsao24/routemix/internal/api"
	"github.com/randytsao24/routemix/internal/cache"
	"github.com/randytsao24/routemix/internal/config"
	"github.com/randytsao24/routemix/internal/fare"
	"github.com/randytsao24/routemix/internal/location"
	"github.com/randytsao24/routemix/internal/planner"
	"github.com/randytsao24/routemix/internal/provider"
	"github.com/randytsao24/routemix/internal/scenario"
	"github.com/randytsao24/routemix/internal/transit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration error: ", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stations := location.NewStationService()
	if err := stations.Load(cfg.StationsFile); err != nil {
		logger.Warn("station data unavailable, hybrid routes disabled", "file", cfg.StationsFile, "error", err)
	}

	routes, closeProvider := newProvider(ctx, cfg, logger)
	defer closeProvider()

	loc, _ := cfg.Location()
	deps := planner.Deps{
		Transit:  routes,
		Driving:  routes,
		Stations: stations,
		Detector: scenario.NewDetector(cfg.HubKeywords, loc),
		Fares:    fare.NewEstimator(cfg.Fares),
		Logger:   logger,
	}
	if cfg.AlertsFeedURL != "" {
		alerts := transit.NewAlertService(cfg.AlertsFeedURL, cfg.HTTPTimeout, time.Minute)
		defer alerts.Close()
		deps.Alerts = alerts
	}

	router := api.NewRouter(planner.New(deps, cfg.Planner), stations)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("🚕 routemix server starting on port %s\n", cfg.Port)
	fmt.Printf("📍 Environment: %s, %d stations loaded\n", cfg.Env, stations.Count())
	fmt.Printf("🔗 http://localhost:%s\n", cfg.Port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed to start: ", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// newProvider returns the simulated provider when no AMap key is set.
// Otherwise AMap answers, cached when a TTL is configured, with the
// simulated provider behind it for outages.
func newProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Provider, func()) {
	sim := provider.NewSimulated()
	if !cfg.HasAMap() {
		logger.Info("no AMAP_API_KEY set, using simulated routes")
		return sim, func() {}
	}

	var primary provider.Provider = provider.NewAMap(cfg.AMapAPIKey, cfg.AMapBaseURL, cfg.AMapCity, cfg.HTTPTimeout)
	cleanup := func() {}
	if cfg.CacheTTL > 0 {
		var store cache.Store
		store, cleanup = newStore(ctx, cfg, logger)
		primary = provider.NewCached(primary, store, logger)
	}
	return provider.NewFallback(primary, sim, logger), cleanup
}

// newStore prefers Redis and falls back to memory when it is unreachable
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, func()) {
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err == nil {
			logger.Info("caching provider answers in redis", "addr", cfg.RedisAddr)
			return cache.NewRedis(client, "routemix:", cfg.CacheTTL), func() { client.Close() }
		}
		logger.Warn("redis unavailable, caching in memory", "error", err)
	}

	memory := cache.NewMemory(cfg.CacheTTL)
	return memory, func() { memory.Close() }
}
