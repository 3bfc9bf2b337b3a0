// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

/*
Package supervisor provides process supervision for Moodmix using suture v4.

Every long-running goroutine in the server runs under a hierarchical
supervisor tree, which restarts crashed services with backoff and stops them
in order on shutdown.

# Overview

	RootSupervisor ("moodmix")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── cache-janitor (CACHE_BACKEND=memory)
	│   └── blobstore-gc (STORAGE_BACKEND=badger)
	├── DataSupervisor ("data-layer")
	│   └── duckdb-checkpoint
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A maintenance task that keeps failing is backed off by its own supervisor and
never restarts the HTTP server.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewPeriodicService("duckdb-checkpoint", 5*time.Minute, db.Checkpoint))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-errCh

# Configuration

Zero values in TreeConfig fall back to suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil or an error restarts the service. Returning
suture.ErrDoNotRestart removes it from the tree. Services must return promptly
once ctx is canceled.

Supervisor events are logged through the zerolog-backed slog.Logger from
the logging package via sutureslog.
*/
package supervisor
