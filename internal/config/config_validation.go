// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"net/url"
)

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" && cfg.Storage.EntitiesPath == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.QueuePath == "" {
		return ErrInvalidStorageConfigs
	}

	u, err := url.Parse(cfg.Adapter.HTTPAddress)
	if cfg.Adapter.HTTPAddress == "" || err != nil || u.Host == "" {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Adapter.RequestTimeout <= 0 || cfg.Adapter.HealthTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Adapter.Token == "" && (cfg.Adapter.Username == "" || cfg.Adapter.Password == "") {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.ConnectivityInterval <= 0 || cfg.Workers.PoolSize <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Sync.BatchSize <= 0 || cfg.Sync.MaxRetries <= 0 || cfg.Sync.LowWater < 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
