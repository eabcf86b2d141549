// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/models"
)

// QueueForSync implements [SyncEngine].
func (e *syncEngine) QueueForSync(ctx context.Context, t models.EntityType, id string, payload models.Payload, op models.Operation) {
	item := models.SyncItem{
		Type:      t,
		ID:        id,
		Operation: op,
		Payload:   payload,
		Timestamp: e.now(),
	}
	if op == models.OperationDelete {
		item.Payload = nil
	}

	if err := e.validator.Validate(ctx, item); err != nil {
		e.logger.Warn().Err(err).
			Str("func", "*syncEngine.QueueForSync").
			Str("key", item.Key()).
			Str("operation", string(op)).
			Msg("invalid change dropped")
		return
	}

	if err := e.persistLocal(ctx, item); err != nil {
		e.logger.Err(err).
			Str("func", "*syncEngine.QueueForSync").
			Str("key", item.Key()).
			Msg("failed to persist local change")
		return
	}

	stored, err := e.queue.Enqueue(item)
	if err != nil {
		e.logger.Err(err).
			Str("func", "*syncEngine.QueueForSync").
			Str("key", item.Key()).
			Msg("failed to enqueue change")
		return
	}

	e.logger.Debug().
		Str("func", "*syncEngine.QueueForSync").
		Str("queue_id", stored.QueueID).
		Str("key", stored.Key()).
		Str("operation", string(stored.Operation)).
		Msg("change queued")

	count, err := e.queue.PendingCount()
	if err != nil {
		e.logger.Err(err).Str("func", "*syncEngine.QueueForSync").Msg("failed to count pending items")
		return
	}
	e.update(func(s *models.SyncState) {
		s.PendingItems = count
	})

	e.maybeDrain(count)
}

// maybeDrain starts a background drain when the backend is online and the
// queue is below the low-water mark.
func (e *syncEngine) maybeDrain(pending int) {
	if pending < e.lowWater && e.monitor.Status() == models.ConnectivityOnline {
		e.goDrain()
	}
}

// persistLocal writes the mutation to the local store ahead of the upload.
// Deleting an entity that is not stored locally is not an error.
func (e *syncEngine) persistLocal(ctx context.Context, item models.SyncItem) error {
	if item.Operation != models.OperationDelete {
		return e.store.SaveLocal(ctx, item.Payload)
	}

	err := e.store.MarkDeleted(ctx, item.Type, item.ID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil
	}
	return err
}
