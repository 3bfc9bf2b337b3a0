// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

/*
Moodmix turns a free-text mood into a weighted playlist drawn from an
uploaded audio catalog.

# Process Layout

	RootSupervisor ("moodmix")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── cache-janitor   (CACHE_BACKEND=memory)
	│   └── blobstore-gc    (STORAGE_BACKEND=badger)
	├── DataSupervisor ("data-layer")
	│   └── duckdb-checkpoint
	└── APISupervisor ("api-layer")
	    └── http-server

# Configuration

Priority: environment variables > config file > defaults.

	# Server
	HTTP_PORT=8080
	HTTP_HOST=0.0.0.0
	SHUTDOWN_TIMEOUT=10s

	# Storage
	DUCKDB_PATH=/data/moodmix.duckdb
	STORAGE_BACKEND=filesystem       # or badger
	STORAGE_PATH=/data/audio
	MAX_UPLOAD_BYTES=52428800

	# Cache
	CACHE_BACKEND=memory             # or redis
	REDIS_ADDRESS=redis:6379
	TOP_TRACKS_CACHE_TTL=5m

	# Generation (OpenAI-compatible chat completions)
	GENERATION_BASE_URL=https://api.openai.com/v1
	GENERATION_API_KEY=sk-...
	GENERATION_MODEL=gpt-4o-mini

	# Logging
	LOG_LEVEL=info
	LOG_FORMAT=json                  # or console

# Example Usage

	export GENERATION_API_KEY=sk-...
	export LOG_FORMAT=console
	./moodmix

	curl -F files=@song.mp3 localhost:8080/tracks/upload
	curl -d '{"mood":"rainy sunday morning"}' localhost:8080/playlists/generate
*/
package main
