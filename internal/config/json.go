// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the JSON config file.
type StructuredJSONConfig struct {
	App struct {
		HashKey  string `json:"hash_key"`
		LogLevel string `json:"log_level"`
		LogPath  string `json:"log_path"`
	} `json:"app,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		HealthTimeout  Duration `json:"health_timeout"`
		Username       string   `json:"username"`
		Password       string   `json:"password"`
		Token          string   `json:"token"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		Files struct {
			EntitiesPath string `json:"entities_path"`
		} `json:"files,omitempty"`
		Queue struct {
			Path string `json:"path"`
		} `json:"queue,omitempty"`
	} `json:"storage,omitempty"`

	Workers struct {
		SyncInterval         Duration `json:"sync_interval"`
		ConnectivityInterval Duration `json:"connectivity_interval"`
		PoolSize             int      `json:"pool_size"`
	} `json:"workers,omitempty"`

	Sync struct {
		BatchSize     int  `json:"batch_size"`
		LowWater      int  `json:"low_water"`
		MaxRetries    int  `json:"max_retries"`
		ShowConflicts bool `json:"show_conflicts"`
	} `json:"sync,omitempty"`

	Server struct {
		HTTPAddress string `json:"http_address"`
		Token       string `json:"token"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			HashKey:  jsonCfg.App.HashKey,
			LogLevel: jsonCfg.App.LogLevel,
			LogPath:  jsonCfg.App.LogPath,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			HealthTimeout:  time.Duration(jsonCfg.Adapter.HealthTimeout),
			Username:       jsonCfg.Adapter.Username,
			Password:       jsonCfg.Adapter.Password,
			Token:          jsonCfg.Adapter.Token,
		},
		Storage: Storage{
			DB:    DB{DSN: jsonCfg.Storage.DB.DSN},
			Files: Files{EntitiesPath: jsonCfg.Storage.Files.EntitiesPath},
			Queue: Queue{Path: jsonCfg.Storage.Queue.Path},
		},
		Workers: Workers{
			SyncInterval:         time.Duration(jsonCfg.Workers.SyncInterval),
			ConnectivityInterval: time.Duration(jsonCfg.Workers.ConnectivityInterval),
			PoolSize:             jsonCfg.Workers.PoolSize,
		},
		Sync: Sync{
			BatchSize:     jsonCfg.Sync.BatchSize,
			LowWater:      jsonCfg.Sync.LowWater,
			MaxRetries:    jsonCfg.Sync.MaxRetries,
			ShowConflicts: jsonCfg.Sync.ShowConflicts,
		},
		Server: Server{
			HTTPAddress: jsonCfg.Server.HTTPAddress,
			Token:       jsonCfg.Server.Token,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
