// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

/*
Package services provides suture.Service wrappers for Moodmix components.

# Available Services

HTTPServerService wraps *http.Server, translating ListenAndServe and Shutdown
into suture's context-aware Serve with a bounded drain.

PeriodicService runs a maintenance task on a ticker. Failed runs are logged
and counted in maintenance_runs_total{task,result} without stopping the loop.
Used for DuckDB checkpoints and badger value log GC.

LoopService adapts a component that already owns its loop, such as the
in-memory cache janitor.

# Usage Example

	tree.AddDataService(services.NewPeriodicService("duckdb-checkpoint", cfg.Database.CheckpointInterval, db.Checkpoint))
	tree.AddMaintenanceService(services.NewLoopService("cache-janitor", func(ctx context.Context) error {
	    return store.RunJanitor(ctx, cfg.Cache.CleanupEvery)
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

# Error Handling

	nil or error -> supervisor restarts the service
	ctx.Err()    -> shutdown requested, normal termination
*/
package services
