// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

/*
Package api provides the HTTP surface of the playlist curation service.

Routing uses go-chi/chi with go-chi/cors and go-chi/httprate. Every JSON
response is wrapped in models.APIResponse:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "cached": true}
	}

Endpoints:

	POST   /tracks/upload         multipart upload (field "files" or "file")
	GET    /tracks                catalog, newest first
	GET    /tracks/{id}           one track
	DELETE /tracks/{id}           delete track and stored object
	GET    /tracks/stream/{id}    audio bytes with Range support
	POST   /playlists/generate    {"mood": "..."} -> generated playlist
	GET    /playlists             playlists, newest first
	GET    /playlists/{id}        one playlist
	DELETE /playlists/{id}        delete playlist
	GET    /stats/top-tracks      most used tracks (?limit=N)
	GET    /health/live           liveness
	GET    /health/ready          readiness
	GET    /metrics               Prometheus exposition

Error mapping lives in one place (errors.go): validation failures are 400
VALIDATION_ERROR, unknown ids are 404 NOT_FOUND, generative backend
failures are 500 GENERATION_ERROR with details.reason, everything else is
500 DATABASE_ERROR or INTERNAL_ERROR.
*/
package api
