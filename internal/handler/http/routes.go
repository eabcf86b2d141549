// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the diagnostics router.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/sync/state", h.getSyncState)
		r.Get("/api/sync/stream", h.streamSyncState)
		r.Get("/api/sync/dead-letters", h.getDeadLetters)
		r.Post("/api/sync/force", h.forceSync)
		r.Post("/api/sync/conflicts/{id}/resolve", h.resolveConflict)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
