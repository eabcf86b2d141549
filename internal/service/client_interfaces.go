// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/emotion-sync/internal/conflict"
	"github.com/MKhiriev/emotion-sync/internal/connectivity"
	"github.com/MKhiriev/emotion-sync/models"
)

// SyncEngine is the offline-first sync orchestrator. It owns the published
// [models.SyncState], drains the change queue, merges remote snapshots and
// surfaces conflicts for user resolution.
//
// None of its operations panic, and only ResolveConflict and DeadLetters
// return errors: every other failure ends up in the published state.
type SyncEngine interface {
	// Start subscribes to connectivity changes and starts the periodic full
	// sync. It must be called once before the engine reacts to reconnects.
	Start(ctx context.Context)

	// Stop ends the periodic sync, waits for background drains and closes
	// every state subscription.
	Stop()

	// Subscribe returns a channel that first yields the current state and
	// then every later transition, in order and without coalescing. cancel
	// releases the subscription and closes the channel.
	Subscribe() (states <-chan models.SyncState, cancel func())

	// CurrentState returns a snapshot of the current state.
	CurrentState() models.SyncState

	// ForceSync uploads pending changes, then downloads and merges every
	// remote collection. It returns true only if the pass completed without
	// conflicts. It returns false without touching the state if another pass
	// is running. showConflicts attaches a last-writer-wins suggestion to
	// detected conflicts.
	ForceSync(ctx context.Context, showConflicts bool) bool

	// QueueForSync persists a local mutation and enqueues it for upload.
	// Failures are logged, never returned. When online and the queue is
	// short, a background drain starts.
	QueueForSync(ctx context.Context, t models.EntityType, id string, payload models.Payload, op models.Operation)

	// DrainQueue uploads one batch of pending changes with status
	// SyncingBackground. It returns false if it did not run.
	DrainQueue(ctx context.Context) bool

	// ResolveConflict applies the user's decision for an active conflict.
	// Returns [ErrConflictNotFound] for unknown ids.
	ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution) error

	// DeadLetters returns the items that exhausted their retries.
	DeadLetters(ctx context.Context) ([]models.DeadLetter, error)
}

// ChangeQueue is the durable outbound queue as used by the engine.
type ChangeQueue interface {
	Enqueue(item models.SyncItem) (models.SyncItem, error)
	DequeueUpTo(n int) ([]models.SyncItem, error)
	MarkProcessed(queueID string, revision int64) (bool, error)
	IncrementRetryCount(queueID string) (int, error)
	MoveToDeadLetter(queueID, reason string) error
	PendingCount() (int, error)
	Remove(t models.EntityType, id string) (bool, error)
	Rekey(t models.EntityType, oldID, newID string) error
	DeadLetters() ([]models.DeadLetter, error)
}

// ConnectivityMonitor is the engine's view of backend reachability.
type ConnectivityMonitor interface {
	Status() models.ConnectivityStatus
	Check(ctx context.Context) models.ConnectivityStatus
	Report(status models.ConnectivityStatus)
	Subscribe(fn connectivity.Listener) (cancel func())
}

// ConflictResolver computes the merge plan of one entity type.
type ConflictResolver interface {
	Resolve(t models.EntityType, local []models.Record, remote []models.Payload, opts conflict.Options) (conflict.Result, error)
}
