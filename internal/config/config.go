// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the raw configuration container for the sync client.
// It is populated by merging values from environment variables,
// command-line flags, an optional JSON file and built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level settings: integrity key and logging.
	App App `envPrefix:"APP_"`

	// Adapter holds settings of the remote backend client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local entity store and change queue locations.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds the intervals of the background jobs and the size of the
	// decoding pool.
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds the tuning knobs of the sync engine.
	Sync Sync `envPrefix:"SYNC_"`

	// Server holds the optional local diagnostics HTTP listener.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// HashKey is the HMAC key used to sign outgoing request bodies
	// (HashSHA256 header). Empty disables signing.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// LogLevel is a zerolog level name ("debug", "info", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// LogPath is the file the client appends logs to. Empty means a "logs"
	// file next to the executable.
	// Env: APP_LOG_PATH
	LogPath string `env:"LOG_PATH"`
}

// Adapter holds configuration of the remote backend client.
type Adapter struct {
	// HTTPAddress is the base URL of the backend (e.g. "http://10.0.0.5:8000").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every backend request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HealthTimeout bounds the health probe of the connectivity monitor.
	// Env: ADAPTER_HEALTH_TIMEOUT
	HealthTimeout time.Duration `env:"HEALTH_TIMEOUT"`

	// Username and Password are exchanged for a bearer token at
	// /v1/api/auth/login. Ignored when Token is set.
	// Env: ADAPTER_USERNAME, ADAPTER_PASSWORD
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`

	// Token is a pre-issued bearer token.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Storage groups the local persistence settings.
type Storage struct {
	// DB holds the sqlite entity store settings.
	DB DB `envPrefix:"DB_"`

	// Files holds the JSON-file entity store settings, used when DB.DSN is
	// empty.
	Files Files `envPrefix:"FILES_"`

	// Queue holds the durable change queue settings.
	Queue Queue `envPrefix:"QUEUE_"`
}

// DB holds the sqlite connection settings.
type DB struct {
	// DSN is the go-sqlite3 data source name (e.g. "file:emotion.db?_fk=1").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Files holds the JSON-file entity store settings.
type Files struct {
	// EntitiesPath is the JSON file backing the in-memory entity store.
	// Env: STORAGE_FILES_ENTITIES_PATH
	EntitiesPath string `env:"ENTITIES_PATH"`
}

// Queue holds the bbolt change queue settings.
type Queue struct {
	// Path is the bbolt database file.
	// Env: STORAGE_QUEUE_PATH
	Path string `env:"PATH"`
}

// Workers holds configuration for background jobs.
type Workers struct {
	// SyncInterval is the period of the full sync job.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ConnectivityInterval is the period of the connectivity probe.
	// Env: WORKERS_CONNECTIVITY_INTERVAL
	ConnectivityInterval time.Duration `env:"CONNECTIVITY_INTERVAL"`

	// PoolSize limits concurrent decoding of remote collections.
	// Env: WORKERS_POOL_SIZE
	PoolSize int `env:"POOL_SIZE"`
}

// Sync holds the sync engine tuning knobs.
type Sync struct {
	// BatchSize is the number of queue items leased per upload pass.
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// LowWater is the pending count below which an enqueue triggers an
	// immediate background drain. 0 disables such drains.
	// Env: SYNC_LOW_WATER
	LowWater int `env:"LOW_WATER"`

	// MaxRetries is the number of failed attempts after which an item is
	// dead-lettered.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// ShowConflicts makes scheduled syncs attach suggested resolutions.
	// Env: SYNC_SHOW_CONFLICTS
	ShowConflicts bool `env:"SHOW_CONFLICTS"`
}

// Server holds the diagnostics listener settings.
type Server struct {
	// HTTPAddress is the "host:port" of the local diagnostics API. Empty
	// disables it.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// Token, when set, must be presented as a bearer token on every
	// diagnostics request.
	// Env: SERVER_TOKEN
	Token string `env:"TOKEN"`
}

// defaults returns the values used for every field no source has set.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{LogLevel: "info"},
		Adapter: Adapter{
			RequestTimeout: 30 * time.Second,
			HealthTimeout:  8 * time.Second,
		},
		Storage: Storage{
			Queue: Queue{Path: "sync-queue.db"},
		},
		Workers: Workers{
			SyncInterval:         5 * time.Minute,
			ConnectivityInterval: 15 * time.Second,
			PoolSize:             4,
		},
		Sync: Sync{
			BatchSize:  20,
			LowWater:   10,
			MaxRetries: 3,
		},
	}
}

// GetStructuredConfig loads and merges the configuration from all available
// sources. For every field the first source that sets it wins:
//  1. Environment variables
//  2. Command-line flags (args, without the program name)
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		withDefaults().
		build()
}
