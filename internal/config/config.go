// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Database: DuckDB catalog and playlist store
//     - Storage: object store holding uploaded audio
//     - Cache: key/TTL store for derived statistics
//     - Server: HTTP server configuration
//
//  2. Generation:
//     - Generation: generative backend endpoint, model and breaker settings
//
//  3. API & Observability:
//     - Security: CORS and rate limiting
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Storage    StorageConfig    `koanf:"storage"`
	Cache      CacheConfig      `koanf:"cache"`
	Generation GenerationConfig `koanf:"generation"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)

	// CheckpointInterval is how often the WAL is folded into the database
	// file. 0 disables periodic checkpoints.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`
}

// Storage backends
const (
	StorageBackendFilesystem = "filesystem"
	StorageBackendBadger     = "badger"
)

// StorageConfig holds object store settings for uploaded audio.
type StorageConfig struct {
	// Backend is "filesystem" (one file per object under Path) or "badger"
	// (embedded key/value store at Path).
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`

	// MaxUploadBytes is the per-file upload ceiling.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// UploadConcurrency bounds how many files of one upload request are
	// processed at the same time.
	UploadConcurrency int `koanf:"upload_concurrency"`

	// GCInterval is how often the badger value log is garbage collected.
	// Ignored by the filesystem backend.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig holds settings for the derived-statistics cache.
type CacheConfig struct {
	Backend        string        `koanf:"backend"`
	TopTracksTTL   time.Duration `koanf:"top_tracks_ttl"`
	CleanupEvery   time.Duration `koanf:"cleanup_interval"`
	RedisAddress   string        `koanf:"redis_address"`
	RedisPassword  string        `koanf:"redis_password"`
	RedisDB        int           `koanf:"redis_db"`
	RedisKeyPrefix string        `koanf:"redis_key_prefix"`
}

// GenerationConfig holds settings for the generative backend.
//
// The backend must speak the OpenAI-compatible chat completions protocol
// (POST {base_url}/chat/completions).
type GenerationConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	Temperature       float64       `koanf:"temperature"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerMinute int           `koanf:"requests_per_minute"` // 0 = unlimited

	// Circuit breaker settings
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration using the layered Koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
