// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MKhiriev/emotion-sync/internal/app"
	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/models"
)

// ResolveConflict implements [SyncEngine].
func (e *syncEngine) ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution) error {
	c, ok := e.activeConflict(conflictID)
	if !ok {
		return ErrConflictNotFound
	}

	if err := e.checkResolution(ctx, c, resolution); err != nil {
		e.logger.Warn().Err(err).
			Str("func", "*syncEngine.ResolveConflict").
			Str("conflict_id", conflictID).
			Msg(app.MsgInvalidResolution)
		return err
	}

	queued, err := e.applyResolution(ctx, c, resolution)
	if err != nil {
		e.logger.Err(err).
			Str("func", "*syncEngine.ResolveConflict").
			Str("conflict_id", conflictID).
			Str("resolution", string(resolution.Kind)).
			Msg("failed to apply resolution")
		return err
	}

	count, countErr := e.queue.PendingCount()
	e.update(func(s *models.SyncState) {
		s.Conflicts = slices.DeleteFunc(s.Conflicts, func(x models.SyncConflict) bool {
			return x.ID == conflictID
		})
		if countErr == nil {
			s.PendingItems = count
		}
		if s.Status == models.StatusConflictDetected {
			s.Status = settledStatus(*s)
		}
	})

	e.logger.Info().
		Str("func", "*syncEngine.ResolveConflict").
		Str("conflict_id", conflictID).
		Str("key", models.ItemKey(c.EntityType, c.EntityID)).
		Str("resolution", string(resolution.Kind)).
		Msg("conflict resolved")

	if queued && countErr == nil {
		e.maybeDrain(count)
	}

	return nil
}

func (e *syncEngine) activeConflict(id string) (models.SyncConflict, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range e.state.Conflicts {
		if c.ID == id {
			return c, true
		}
	}
	return models.SyncConflict{}, false
}

func (e *syncEngine) checkResolution(ctx context.Context, c models.SyncConflict, r models.Resolution) error {
	switch r.Kind {
	case models.ResolutionKeepLocal, models.ResolutionKeepRemote, models.ResolutionDismiss:
		return nil
	case models.ResolutionMerged:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidResolution, r.Kind)
	}

	if r.Merged == nil {
		return fmt.Errorf("%w: merged value missing", ErrInvalidResolution)
	}
	if r.Merged.EntityType() != c.EntityType || r.Merged.EntityID() != c.EntityID {
		return fmt.Errorf("%w: merged value is not %s", ErrInvalidResolution, models.ItemKey(c.EntityType, c.EntityID))
	}
	if err := e.validator.Validate(ctx, r.Merged); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResolution, err)
	}
	return nil
}

// applyResolution writes the decision to the local store and the queue. It
// reports whether an upload was queued.
//
// Keeping the local side or a merged value moves the checkpoint to the
// remote snapshot first, so the next full sync sees a one-sided local change
// instead of the same conflict.
func (e *syncEngine) applyResolution(ctx context.Context, c models.SyncConflict, r models.Resolution) (bool, error) {
	var remoteHash string
	if c.RemoteVersion != nil {
		h, err := e.hash(c.RemoteVersion)
		if err != nil {
			return false, err
		}
		remoteHash = h
	}

	switch r.Kind {
	case models.ResolutionKeepLocal:
		if err := e.checkpoint(ctx, c, remoteHash); err != nil {
			return false, err
		}
		if c.LocalVersion == nil {
			return true, e.enqueue(c, models.OperationDelete, nil)
		}
		return true, e.enqueue(c, upsertOperation(c), c.LocalVersion)

	case models.ResolutionKeepRemote:
		var err error
		if c.RemoteVersion != nil {
			err = e.store.Insert(ctx, c.RemoteVersion)
		} else {
			err = e.store.Purge(ctx, c.EntityType, c.EntityID)
		}
		if err != nil {
			return false, err
		}
		_, err = e.queue.Remove(c.EntityType, c.EntityID)
		return false, err

	case models.ResolutionMerged:
		if err := e.store.SaveLocal(ctx, r.Merged); err != nil {
			return false, err
		}
		if err := e.checkpoint(ctx, c, remoteHash); err != nil {
			return false, err
		}
		return true, e.enqueue(c, upsertOperation(c), r.Merged)

	default:
		return false, nil
	}
}

func (e *syncEngine) checkpoint(ctx context.Context, c models.SyncConflict, hash string) error {
	err := e.store.MarkSynced(ctx, c.EntityType, c.EntityID, hash)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (e *syncEngine) enqueue(c models.SyncConflict, op models.Operation, p models.Payload) error {
	_, err := e.queue.Enqueue(models.SyncItem{
		Type:      c.EntityType,
		ID:        c.EntityID,
		Operation: op,
		Payload:   p,
		Timestamp: e.now(),
	})
	return err
}

// upsertOperation re-creates an entity the backend deleted and updates it
// otherwise.
func upsertOperation(c models.SyncConflict) models.Operation {
	if c.RemoteVersion == nil {
		return models.OperationCreate
	}
	return models.OperationUpdate
}
