// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/emotion-sync/internal/adapter"
	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/conflict"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/internal/validators"
)

// ClientServices groups the services of the sync client.
type ClientServices struct {
	SyncEngine SyncEngine
}

// NewClientServices wires the sync engine from its collaborators.
func NewClientServices(
	entities store.EntityStore,
	changes ChangeQueue,
	remote adapter.RemoteDataSource,
	monitor ConnectivityMonitor,
	cfg *config.ClientConfig,
	log *logger.Logger,
) *ClientServices {
	engine := NewSyncEngine(SyncEngineDeps{
		Store:     entities,
		Queue:     changes,
		Remote:    remote,
		Monitor:   monitor,
		Resolver:  conflict.NewResolver(),
		Validator: validators.NewPayloadValidator(),
	}, cfg.Sync, cfg.Workers, log.Component("sync-engine"))

	return &ClientServices{SyncEngine: engine}
}
