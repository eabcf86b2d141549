// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import (
	"errors"

	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/handler/http"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/service"
)

// Handlers groups the transport handlers of the client process.
type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers creates the diagnostics handler when an HTTP address is
// configured. It returns errNoHandlersAreCreated otherwise, which callers
// treat as "diagnostics disabled".
func NewHandlers(services *service.ClientServices, cfg config.ClientServer, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(services, cfg, logger)}, nil
}

// IsNoHandlers reports whether err means no transport was configured.
func IsNoHandlers(err error) bool {
	return errors.Is(err, errNoHandlersAreCreated)
}
