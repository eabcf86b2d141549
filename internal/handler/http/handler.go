// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/service"
)

// Handler serves the diagnostics API on top of the sync engine.
type Handler struct {
	engine service.SyncEngine
	token  string

	logger *logger.Logger
}

// NewHandler returns a Handler for services. A non-empty cfg.Token makes
// every route require "Authorization: Bearer <token>".
func NewHandler(services *service.ClientServices, cfg config.ClientServer, logger *logger.Logger) *Handler {
	logger.Info().Bool("auth", cfg.Token != "").Msg("http handler created")
	return &Handler{
		engine: services.SyncEngine,
		token:  cfg.Token,
		logger: logger,
	}
}
