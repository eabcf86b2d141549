// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/models"
)

// remoteBaseline holds the content hashes of one backend snapshot per entity
// type. Snapshots are fetched on first use and reused for the whole pass.
type remoteBaseline struct {
	fetch  func(ctx context.Context, t models.EntityType) ([]models.Payload, error)
	hash   func(v any) (string, error)
	hashes map[models.EntityType]map[string]string
}

func (e *syncEngine) newRemoteBaseline() *remoteBaseline {
	return &remoteBaseline{
		fetch:  e.remote.GetAll,
		hash:   e.hash,
		hashes: make(map[models.EntityType]map[string]string),
	}
}

// seed stores already downloaded snapshots, indexed like [models.EntityTypes].
func (b *remoteBaseline) seed(snapshots [][]models.Payload) error {
	for i, t := range models.EntityTypes {
		if i >= len(snapshots) {
			break
		}
		if err := b.index(t, snapshots[i]); err != nil {
			return err
		}
	}
	return nil
}

// lookup returns the backend content hash of (t, id) and whether the backend
// has the entity at all.
func (b *remoteBaseline) lookup(ctx context.Context, t models.EntityType, id string) (string, bool, error) {
	if _, ok := b.hashes[t]; !ok {
		snapshot, err := b.fetch(ctx, t)
		if err != nil {
			return "", false, fmt.Errorf("fetch remote %s: %w", t, err)
		}
		if err = b.index(t, snapshot); err != nil {
			return "", false, err
		}
	}

	h, ok := b.hashes[t][id]
	return h, ok, nil
}

func (b *remoteBaseline) index(t models.EntityType, snapshot []models.Payload) error {
	hashes := make(map[string]string, len(snapshot))
	for _, p := range snapshot {
		h, err := b.hash(p)
		if err != nil {
			return err
		}
		hashes[p.EntityID()] = h
	}
	b.hashes[t] = hashes
	return nil
}

// staleWrite reports whether item would overwrite a backend change made
// since the record's checkpoint. Such items stay queued and the divergence
// surfaces as a conflict during the next merge. Creates and records that
// were never synced have no checkpoint and are never stale.
func (e *syncEngine) staleWrite(ctx context.Context, item models.SyncItem, baseline *remoteBaseline) (bool, error) {
	if item.Operation == models.OperationCreate {
		return false, nil
	}

	rec, err := e.store.Get(ctx, item.Type, item.ID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", item.Key(), err)
	}
	if rec.SyncedHash == "" {
		return false, nil
	}

	remoteHash, exists, err := baseline.lookup(ctx, item.Type, item.ID)
	if err != nil {
		return false, err
	}

	switch {
	case !exists:
		// deleted remotely: a delete agrees, an update would resurrect it
		return item.Operation == models.OperationUpdate, nil
	case remoteHash == rec.SyncedHash, remoteHash == rec.Hash:
		return false, nil
	default:
		return true, nil
	}
}
