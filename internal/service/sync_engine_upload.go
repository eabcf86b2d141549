// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/emotion-sync/internal/adapter"
	"github.com/MKhiriev/emotion-sync/internal/app"
	"github.com/MKhiriev/emotion-sync/internal/queue"
	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/models"
)

// DrainQueue implements [SyncEngine].
func (e *syncEngine) DrainQueue(ctx context.Context) bool {
	if e.monitor.Status() != models.ConnectivityOnline {
		return false
	}
	if !e.tryAcquire() {
		e.logger.Debug().Str("func", "*syncEngine.DrainQueue").Msg(app.MsgSyncAlreadyRunning)
		return false
	}
	defer e.release()

	items, err := e.queue.DequeueUpTo(e.batchSize)
	if err != nil {
		e.logger.Err(err).Str("func", "*syncEngine.DrainQueue").Msg("failed to lease queue items")
		return false
	}
	if len(items) == 0 {
		return true
	}

	e.update(func(s *models.SyncState) {
		if s.Connectivity == models.ConnectivityUnknown {
			s.Connectivity = models.ConnectivityOnline
		}
		s.Status = models.StatusSyncingBackground
		s.CurrentOperation = ptr(fmt.Sprintf("uploading %d pending changes", len(items)))
		s.ErrorMessage = nil
	})

	netErr := e.uploadItems(ctx, items, nil)

	count, err := e.queue.PendingCount()
	if err != nil {
		e.logger.Err(err).Str("func", "*syncEngine.DrainQueue").Msg("failed to count pending items")
	}
	e.update(func(s *models.SyncState) {
		if err == nil {
			s.PendingItems = count
		}
		s.CurrentOperation = nil
		if netErr != nil {
			s.Connectivity = models.ConnectivityOffline
			s.ErrorMessage = ptr(stateMessage("", netErr))
		}
		s.Status = settledStatus(*s)
	})

	return true
}

// uploadPending uploads every active queue item once. baseline may be nil,
// in which case backend snapshots are fetched on demand. It returns the
// network-class error that cut the pass short, if any.
func (e *syncEngine) uploadPending(ctx context.Context, baseline *remoteBaseline) error {
	count, err := e.queue.PendingCount()
	if err != nil {
		return fmt.Errorf("count pending items: %w", err)
	}
	if count == 0 {
		return nil
	}

	items, err := e.queue.DequeueUpTo(count)
	if err != nil {
		return fmt.Errorf("lease pending items: %w", err)
	}

	return e.uploadItems(ctx, items, baseline)
}

// uploadItems uploads items in order, isolating per-item failures. Items
// that would overwrite a newer backend change are held back. A
// network-class error stops the batch, marks the backend offline and is
// returned; it does not consume a retry.
func (e *syncEngine) uploadItems(ctx context.Context, items []models.SyncItem, baseline *remoteBaseline) error {
	if baseline == nil {
		baseline = e.newRemoteBaseline()
	}

	for i, item := range items {
		stale, err := e.staleWrite(ctx, item, baseline)
		switch {
		case adapter.IsNetworkError(err):
			return e.stopBatch(err, len(items)-i)
		case err != nil:
			e.logger.Warn().Err(err).
				Str("func", "*syncEngine.uploadItems").
				Str("key", item.Key()).
				Msg("cannot compare with backend, item kept for next pass")
			continue
		case stale:
			e.logger.Info().
				Str("func", "*syncEngine.uploadItems").
				Str("queue_id", item.QueueID).
				Str("key", item.Key()).
				Msg("backend changed since checkpoint, upload held back")
			continue
		}

		err = e.uploadItem(ctx, item)
		switch {
		case err == nil:
		case adapter.IsNetworkError(err):
			return e.stopBatch(err, len(items)-i)
		default:
			e.recordFailure(item, err)
		}
		e.refreshPending()
	}

	return nil
}

func (e *syncEngine) stopBatch(err error, skipped int) error {
	e.logger.Warn().Err(err).
		Str("func", "*syncEngine.uploadItems").
		Int("skipped", skipped).
		Msg("backend unreachable, upload batch stopped")
	e.monitor.Report(models.ConnectivityOffline)
	return err
}

// uploadItem sends one queued mutation. Create and update fall back to each
// other when the backend disagrees about the entity's existence; a delete of
// an already absent entity counts as done.
func (e *syncEngine) uploadItem(ctx context.Context, item models.SyncItem) error {
	log := e.logger.Debug().
		Str("func", "*syncEngine.uploadItem").
		Str("queue_id", item.QueueID).
		Str("key", item.Key()).
		Str("operation", string(item.Operation))

	switch item.Operation {
	case models.OperationCreate:
		got, err := e.remote.Create(ctx, item.Payload)
		if errors.Is(err, adapter.ErrConflict) {
			got, err = e.remote.Update(ctx, item.Payload)
		}
		if err != nil {
			return err
		}
		log.Str("remote_id", got.EntityID()).Msg("item uploaded")
		return e.confirmUpload(ctx, item, got)

	case models.OperationUpdate:
		got, err := e.remote.Update(ctx, item.Payload)
		if errors.Is(err, adapter.ErrNotFound) {
			got, err = e.remote.Create(ctx, item.Payload)
		}
		if err != nil {
			return err
		}
		log.Str("remote_id", got.EntityID()).Msg("item uploaded")
		return e.confirmUpload(ctx, item, got)

	case models.OperationDelete:
		err := e.remote.Delete(ctx, item.Type, item.ID)
		if err != nil && !errors.Is(err, adapter.ErrNotFound) {
			return err
		}
		log.Msg("item deleted remotely")
		return e.confirmDelete(ctx, item)

	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

// confirmUpload records a successful create or update. If the backend
// assigned its own id the local record and any newer queued mutation follow
// it. When no newer mutation is pending the backend's copy becomes the
// local content, otherwise only the checkpoint moves.
func (e *syncEngine) confirmUpload(ctx context.Context, item models.SyncItem, got models.Payload) error {
	processed, err := e.queue.MarkProcessed(item.QueueID, item.Revision)
	if err != nil {
		return err
	}

	id := item.ID
	if got.EntityID() != item.ID {
		id = got.EntityID()
		err = e.store.Rename(ctx, item.Type, item.ID, id)
		switch {
		case errors.Is(err, store.ErrRecordAlreadyExists):
			// a full sync already pulled the backend copy
			err = e.store.Purge(ctx, item.Type, item.ID)
		case errors.Is(err, store.ErrRecordNotFound):
			err = nil
		}
		if err != nil {
			return fmt.Errorf("rename %s to %s: %w", item.Key(), id, err)
		}
		if !processed {
			if err = e.queue.Rekey(item.Type, item.ID, id); err != nil {
				return err
			}
		}
		e.logger.Info().
			Str("func", "*syncEngine.confirmUpload").
			Str("local_id", item.ID).
			Str("remote_id", id).
			Msg("entity re-keyed to backend id")
	}

	if processed {
		return e.store.Insert(ctx, got)
	}

	hash, err := e.hash(got)
	if err != nil {
		return err
	}
	if err = e.store.MarkSynced(ctx, item.Type, id, hash); err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return err
	}
	return nil
}

// confirmDelete drops the tombstone once the delete is confirmed and no
// newer mutation took its place.
func (e *syncEngine) confirmDelete(ctx context.Context, item models.SyncItem) error {
	processed, err := e.queue.MarkProcessed(item.QueueID, item.Revision)
	if err != nil {
		return err
	}
	if !processed {
		return nil
	}
	return e.store.Purge(ctx, item.Type, item.ID)
}

// recordFailure consumes one retry of item and dead-letters it once the
// retry budget is spent.
func (e *syncEngine) recordFailure(item models.SyncItem, cause error) {
	retries, err := e.queue.IncrementRetryCount(item.QueueID)
	if err != nil {
		if !errors.Is(err, queue.ErrItemNotFound) {
			e.logger.Err(err).Str("func", "*syncEngine.recordFailure").Msg("failed to count retry")
		}
		return
	}

	e.logger.Warn().Err(cause).
		Str("func", "*syncEngine.recordFailure").
		Str("queue_id", item.QueueID).
		Str("key", item.Key()).
		Int("retries", retries).
		Msg("upload failed")

	if retries < e.maxRetries {
		return
	}
	if err = e.queue.MoveToDeadLetter(item.QueueID, cause.Error()); err != nil {
		e.logger.Err(err).Str("func", "*syncEngine.recordFailure").Msg("failed to dead-letter item")
	}
}
