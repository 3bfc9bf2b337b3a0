// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/moodmix/internal/api"
	"github.com/tomtom215/moodmix/internal/cache"
	"github.com/tomtom215/moodmix/internal/config"
	"github.com/tomtom215/moodmix/internal/curation"
	"github.com/tomtom215/moodmix/internal/database"
	"github.com/tomtom215/moodmix/internal/generation"
	"github.com/tomtom215/moodmix/internal/ingest"
	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/supervisor"
	"github.com/tomtom215/moodmix/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Moodmix exited with error")
		os.Exit(1)
	}
}

//nolint:gocyclo // Sequential setup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("storage_backend", cfg.Storage.Backend).
		Str("cache_backend", cfg.Cache.Backend).
		Str("generation_model", cfg.Generation.Model).
		Str("environment", cfg.Server.Environment).
		Msg("Configuration loaded")

	if cfg.Generation.APIKey == "" {
		logging.Warn().Msg("GENERATION_API_KEY is not set; playlist generation will fail unless the backend needs no key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	blobs, err := initBlobStore(&cfg.Storage)
	if err != nil {
		return err
	}
	defer blobs.close()

	store, err := initCacheStore(ctx, &cfg.Cache)
	if err != nil {
		return err
	}
	defer store.close()
	topTracks := cache.NewTopTracksCache(store.Store, cfg.Cache.TopTracksTTL)

	guarded := generation.NewGuardedGenerator(generation.NewClient(&cfg.Generation), &cfg.Generation)

	curator := curation.NewService(db, guarded, topTracks, blobs.Store)
	uploader := ingest.NewService(db, blobs.Store, ingest.Options{
		MaxFileBytes: cfg.Storage.MaxUploadBytes,
		Concurrency:  cfg.Storage.UploadConcurrency,
	})

	handler := api.NewHandler(db, curator, uploader, blobs.Store, cfg)
	handler.SetCacheChecker(topTracks)
	handler.SetBreakerState(guarded.State)

	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Uploads and generation can outlast the request timeout; the
		// generation client enforces its own deadline.
		WriteTimeout: cfg.Server.Timeout + cfg.Generation.Timeout,
		IdleTimeout:  2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewPeriodicService("duckdb-checkpoint", cfg.Database.CheckpointInterval, db.Checkpoint))
	}
	if janitor := store.janitor(cfg.Cache.CleanupEvery); janitor != nil {
		tree.AddMaintenanceService(janitor)
	}
	if gc := blobs.gcService(cfg.Storage.GCInterval); gc != nil {
		tree.AddMaintenanceService(gc)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Moodmix stopped gracefully")
	return nil
}
