// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the client flags from args (without the program name).
//
// Flags:
//
//	-r backend base URL (e.g. http://10.0.0.5:8000)
//	-a diagnostics server address in format [host]:[port]
//	-d sqlite DSN
//	-f JSON entity store path
//	-q queue file path
//	-c/-config json file path with configs
//	-u / -p backend username and password
//	-token pre-issued bearer token
//	-server-token bearer token required by the diagnostics server
//	-hash-key request signing key
//	-request-timeout, -health-timeout
//	-sync-interval, -connectivity-interval
//	-pool-size, -batch-size, -max-retries
//	-show-conflicts attach suggested resolutions to conflicts
//	-log-level, -log-path
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("emotion-sync", flag.ContinueOnError)

	var (
		diagnosticsAddress NetAddress
		cfg                StructuredConfig
	)

	fs.StringVar(&cfg.Adapter.HTTPAddress, "r", "", "Backend base URL")
	fs.Var(&diagnosticsAddress, "a", "Diagnostics server address host:port")
	fs.StringVar(&cfg.Storage.DB.DSN, "d", "", "SQLite DSN")
	fs.StringVar(&cfg.Storage.Files.EntitiesPath, "f", "", "JSON entity store path")
	fs.StringVar(&cfg.Storage.Queue.Path, "q", "", "Change queue file path")
	fs.StringVar(&cfg.JSONFilePath, "c", "", "JSON config file path")
	fs.StringVar(&cfg.JSONFilePath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&cfg.Adapter.Username, "u", "", "Backend username")
	fs.StringVar(&cfg.Adapter.Password, "p", "", "Backend password")
	fs.StringVar(&cfg.Adapter.Token, "token", "", "Pre-issued bearer token")
	fs.StringVar(&cfg.Server.Token, "server-token", "", "Bearer token required by the diagnostics server")
	fs.StringVar(&cfg.App.HashKey, "hash-key", "", "Request signing key")
	fs.DurationVar(&cfg.Adapter.RequestTimeout, "request-timeout", 0, "Backend request timeout (e.g., 30s)")
	fs.DurationVar(&cfg.Adapter.HealthTimeout, "health-timeout", 0, "Health probe timeout (e.g., 8s)")
	fs.DurationVar(&cfg.Workers.SyncInterval, "sync-interval", 0, "Full sync period (e.g., 5m)")
	fs.DurationVar(&cfg.Workers.ConnectivityInterval, "connectivity-interval", 0, "Connectivity probe period (e.g., 15s)")
	fs.IntVar(&cfg.Workers.PoolSize, "pool-size", 0, "Decoding pool size")
	fs.IntVar(&cfg.Sync.BatchSize, "batch-size", 0, "Queue items per upload pass")
	fs.IntVar(&cfg.Sync.MaxRetries, "max-retries", 0, "Attempts before dead-lettering")
	fs.BoolVar(&cfg.Sync.ShowConflicts, "show-conflicts", false, "Attach suggested resolutions to conflicts")
	fs.StringVar(&cfg.App.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&cfg.App.LogPath, "log-path", "", "Log file path")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	cfg.Server.HTTPAddress = diagnosticsAddress.String()

	return &cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns "".
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

