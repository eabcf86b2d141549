// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/emotion-sync/internal/adapter"
	"github.com/MKhiriev/emotion-sync/internal/app"
	"github.com/MKhiriev/emotion-sync/internal/client"
	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/connectivity"
	"github.com/MKhiriev/emotion-sync/internal/handler"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/queue"
	"github.com/MKhiriev/emotion-sync/internal/server"
	"github.com/MKhiriev/emotion-sync/internal/service"
	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/internal/workers"
)

const role = "emotion-sync"

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := app.NewBuildInfo(buildVersion, buildDate, buildCommit)

	cfg, err := config.GetClientConfig(os.Args[1:])
	if err != nil {
		logger.NewLogger(role).Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger(role, cfg.App.LogPath, cfg.App.LogLevel)
	log.Info().Object("build", buildInfo).Msg("starting")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	changes, err := queue.Open(cfg.Storage.QueuePath, log.Component("queue"))
	if err != nil {
		log.Fatal().Err(err).Msg("open change queue")
	}

	creds, err := newCredentials(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create credentials")
	}

	remote, err := adapter.NewHTTPRemoteDataSource(cfg, creds, log.Component("remote"))
	if err != nil {
		log.Fatal().Err(err).Msg("create remote data source")
	}

	var link connectivity.LinkProber
	if prober, err := connectivity.NewDialProber(cfg.Adapter.HTTPAddress, cfg.Adapter.HealthTimeout); err != nil {
		log.Warn().Err(err).Msg("link probe disabled")
	} else {
		link = prober
	}
	monitor := connectivity.NewMonitor(link, remote, cfg.Workers.ConnectivityInterval, cfg.Adapter.HealthTimeout, log.Component("connectivity"))

	services := service.NewClientServices(storages.Entities, changes, remote, monitor, cfg, log)

	srv, err := newDiagnosticsServer(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create diagnostics server")
	}

	a := client.NewApp(workers.NewWorkers(monitor, services.SyncEngine), srv, log, changes, storages)
	if err = a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func newCredentials(cfg config.ClientAdapter, log *logger.Logger) (adapter.CredentialProvider, error) {
	if cfg.Token != "" {
		return adapter.NewStaticCredentials(cfg.Token), nil
	}
	return adapter.NewLoginCredentialProvider(cfg, log.Component("credentials"))
}

// newDiagnosticsServer returns a nil server when no diagnostics address is
// configured.
func newDiagnosticsServer(services *service.ClientServices, cfg config.ClientServer, log *logger.Logger) (server.Server, error) {
	handlers, err := handler.NewHandlers(services, cfg, log.Component("http"))
	if handler.IsNoHandlers(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return server.NewServer(handlers, cfg, log)
}
