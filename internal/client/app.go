// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"io"

	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/server"
	"github.com/MKhiriev/emotion-sync/internal/workers"
	"golang.org/x/sync/errgroup"
)

// App runs the background workers and the optional diagnostics server for
// the lifetime of a context.
type App struct {
	workers *workers.Workers
	server  server.Server
	closers []io.Closer
	logger  *logger.Logger
}

// NewApp builds an App. srv may be nil when diagnostics are disabled.
// closers are closed in order after the workers have stopped.
func NewApp(ws *workers.Workers, srv server.Server, logger *logger.Logger, closers ...io.Closer) *App {
	return &App{
		workers: ws,
		server:  srv,
		closers: closers,
		logger:  logger,
	}
}

func (a *App) Run(ctx context.Context) (err error) {
	a.logger.Info().Msg("starting client")

	a.workers.Start(ctx)
	defer func() {
		a.workers.Stop()
		if closeErr := a.close(); err == nil {
			err = closeErr
		}
		a.logger.Info().Msg("client stopped")
	}()

	g, gctx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			return a.server.RunServer(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("client run: %w", err)
	}

	return nil
}

func (a *App) close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Err(err).Msg("error closing resource")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
