// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds process-level client settings.
type ClientApp struct {
	HashKey  string
	LogLevel string
	LogPath  string
}

// ClientAdapter holds settings of the remote backend client.
type ClientAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
	Username       string
	Password       string
	Token          string
}

// ClientStorage groups the local persistence settings.
type ClientStorage struct {
	// DSN selects the sqlite entity store when non-empty.
	DSN string
	// EntitiesPath backs the in-memory entity store when DSN is empty.
	EntitiesPath string
	// QueuePath is the bbolt change queue file.
	QueuePath string
}

// ClientWorkers contains background job settings.
type ClientWorkers struct {
	SyncInterval         time.Duration
	ConnectivityInterval time.Duration
	PoolSize             int
}

// ClientSync contains sync engine settings.
type ClientSync struct {
	BatchSize     int
	LowWater      int
	MaxRetries    int
	ShowConflicts bool
}

// ClientServer contains the diagnostics listener settings.
type ClientServer struct {
	HTTPAddress string
	Token       string
}

// ClientConfig is the validated runtime configuration of the sync client,
// assembled from [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Sync    ClientSync
	Server  ClientServer
}

// GetClientConfig builds and validates the client config from the merged
// structured configuration.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)

	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey:  cfg.App.HashKey,
			LogLevel: cfg.App.LogLevel,
			LogPath:  cfg.App.LogPath,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			HealthTimeout:  cfg.Adapter.HealthTimeout,
			Username:       cfg.Adapter.Username,
			Password:       cfg.Adapter.Password,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DSN:          cfg.Storage.DB.DSN,
			EntitiesPath: cfg.Storage.Files.EntitiesPath,
			QueuePath:    cfg.Storage.Queue.Path,
		},
		Workers: ClientWorkers{
			SyncInterval:         cfg.Workers.SyncInterval,
			ConnectivityInterval: cfg.Workers.ConnectivityInterval,
			PoolSize:             cfg.Workers.PoolSize,
		},
		Sync: ClientSync{
			BatchSize:     cfg.Sync.BatchSize,
			LowWater:      cfg.Sync.LowWater,
			MaxRetries:    cfg.Sync.MaxRetries,
			ShowConflicts: cfg.Sync.ShowConflicts,
		},
		Server: ClientServer{
			HTTPAddress: cfg.Server.HTTPAddress,
			Token:       cfg.Server.Token,
		},
	}
}
