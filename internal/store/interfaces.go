// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/emotion-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// EntityStore is the local persistent store of synchronised entities.
//
// Every record carries a content hash and a checkpoint (the hash of the last
// snapshot known to match the backend). User mutations go through SaveLocal
// and MarkDeleted and leave the checkpoint untouched; content received from
// the backend goes through Insert and moves the checkpoint with it.
type EntityStore interface {
	// GetAll returns every record of t, tombstones included, ordered by id.
	GetAll(ctx context.Context, t models.EntityType) ([]models.Record, error)
	// GetUnsynced returns the records of t whose content or deletion state
	// differs from the checkpoint.
	GetUnsynced(ctx context.Context, t models.EntityType) ([]models.Record, error)
	// Get returns a single record or ErrRecordNotFound.
	Get(ctx context.Context, t models.EntityType, id string) (models.Record, error)

	// Insert stores remote content as synced: hash and checkpoint are both set
	// to the content hash and any tombstone is cleared.
	Insert(ctx context.Context, p models.Payload) error
	// SaveLocal stores a user mutation. The checkpoint is kept.
	SaveLocal(ctx context.Context, p models.Payload) error
	// MarkDeleted turns the record into a tombstone awaiting remote delete.
	MarkDeleted(ctx context.Context, t models.EntityType, id string) error
	// MarkSynced moves the checkpoint of the record to hash.
	MarkSynced(ctx context.Context, t models.EntityType, id, hash string) error
	// Purge removes the record entirely.
	Purge(ctx context.Context, t models.EntityType, id string) error
	// Rename re-keys a record created offline to the id assigned by the
	// backend. The payload id and content hash follow the new id.
	Rename(ctx context.Context, t models.EntityType, oldID, newID string) error
}
