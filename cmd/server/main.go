// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

// Cursora serves personalized learning-content recommendations backed by
// an embedded DuckDB store, with real-time WebSocket notifications and
// engagement analytics.
//
// # Configuration
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (config.yaml, or CONFIG_PATH), then environment variables:
//
//	HTTP_HOST=0.0.0.0
//	HTTP_PORT=8080
//	DUCKDB_PATH=/data/cursora.duckdb
//	LOG_LEVEL=info
//	RECOMMEND_SEED=0
//	RECOMMEND_STRICT_LOGGING=true
//	SEED_ENABLED=false
//
// # Supervision
//
// The WebSocket hub and HTTP server run under a suture supervision tree;
// a crash in the realtime layer is restarted without taking down the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwenger0/cursora/internal/api"
	"github.com/mwenger0/cursora/internal/config"
	"github.com/mwenger0/cursora/internal/database"
	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/recommend"
	"github.com/mwenger0/cursora/internal/supervisor"
	"github.com/mwenger0/cursora/internal/supervisor/services"
	ws "github.com/mwenger0/cursora/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting Cursora")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Seed demo data if enabled (development and demo environments)
	if cfg.Seed.Enabled {
		logging.Info().
			Int("users", cfg.Seed.Users).
			Int("content", cfg.Seed.Content).
			Int("events", cfg.Seed.Events).
			Msg("Demo data seeding enabled (SEED_ENABLED=true)")
		if err := db.Seed(context.Background(), &cfg.Seed); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	// Scoring engine with the data provider backed by DuckDB
	engineCfg := recommend.DefaultConfig()
	engineCfg.StrictLogging = cfg.Recommend.StrictLogging
	engineCfg.Seed = cfg.Recommend.Seed
	engine, err := recommend.NewEngine(engineCfg, database.NewEngineDataProvider(db), logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := slog.New(logging.NewSlogHandler())

	tree, err := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// WebSocket hub for real-time recommendation and event broadcasts
	wsHub := ws.NewHub()
	tree.AddRealtimeService(services.NewWebSocketHubService(wsHub))

	handler := api.NewHandler(db, engine, cfg, wsHub)
	chiMw := api.NewChiMiddlewareFromConfig(cfg.Server.CORSOrigins, cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow)
	router := api.NewRouter(handler, chiMw)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	// Shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
