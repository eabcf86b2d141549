// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/logger"
)

// ClientStorages groups the local persistence of the sync client.
type ClientStorages struct {
	// Entities is the local entity store.
	Entities EntityStore

	db *DB
}

// NewClientStorages initialises the entity store selected by cfg:
//   - a non-empty DSN opens sqlite and runs the schema migrations;
//   - otherwise the JSON-file store at EntitiesPath is used.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	if cfg.DSN == "" {
		entities, err := NewMemoryEntityStore(cfg.EntitiesPath)
		if err != nil {
			return nil, fmt.Errorf("open entity file store: %w", err)
		}
		return &ClientStorages{Entities: entities}, nil
	}

	db, err := NewConnectSQLite(ctx, cfg.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Entities: NewEntityRepository(db, logger),
		db:       db,
	}, nil
}

// Close releases the sqlite connection, if any.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
