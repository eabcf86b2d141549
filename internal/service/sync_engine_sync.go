// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/adapter"
	"github.com/MKhiriev/emotion-sync/internal/app"
	"github.com/MKhiriev/emotion-sync/internal/conflict"
	"github.com/MKhiriev/emotion-sync/internal/workers"
	"github.com/MKhiriev/emotion-sync/models"
)

// ForceSync implements [SyncEngine].
func (e *syncEngine) ForceSync(ctx context.Context, showConflicts bool) bool {
	if !e.tryAcquire() {
		e.logger.Debug().Str("func", "*syncEngine.ForceSync").Msg(app.MsgSyncAlreadyRunning)
		return false
	}
	defer e.release()

	status := e.monitor.Status()
	if status == models.ConnectivityUnknown {
		status = e.monitor.Check(ctx)
	}
	if status != models.ConnectivityOnline {
		e.update(func(s *models.SyncState) {
			s.Connectivity = status
			s.Status = models.StatusOffline
			s.CurrentOperation = nil
			s.ErrorMessage = ptr(app.MsgNotOnline)
		})
		return false
	}

	e.logger.Info().Str("func", "*syncEngine.ForceSync").Msg("full sync started")
	e.update(func(s *models.SyncState) {
		if s.Connectivity == models.ConnectivityUnknown {
			s.Connectivity = status
		}
		s.Status = models.StatusSyncing
		s.CurrentOperation = ptr("uploading pending changes")
		s.ErrorMessage = nil
	})

	if err := e.uploadPending(ctx, nil); err != nil {
		return e.abort(err, "")
	}

	e.update(func(s *models.SyncState) {
		s.CurrentOperation = ptr("downloading remote changes")
	})

	snapshots, err := workers.Map(ctx, len(models.EntityTypes), models.EntityTypes, e.remote.GetAll)
	if err != nil {
		return e.abort(err, app.MsgDownloadFailed)
	}

	e.update(func(s *models.SyncState) {
		s.CurrentOperation = ptr("merging remote changes")
	})

	var (
		conflicts []models.SyncConflict
		pushes    int
	)
	for i, t := range models.EntityTypes {
		res, err := e.merge(ctx, t, snapshots[i], showConflicts)
		if err != nil {
			return e.abort(err, "")
		}
		conflicts = append(conflicts, res.Conflicts...)
		pushes += len(res.Pushes)
	}

	if pushes > 0 {
		e.update(func(s *models.SyncState) {
			s.CurrentOperation = ptr("uploading merged changes")
		})
		baseline := e.newRemoteBaseline()
		if err = baseline.seed(snapshots); err != nil {
			return e.abort(err, "")
		}
		if err = e.uploadPending(ctx, baseline); err != nil {
			return e.abort(err, "")
		}
	}

	count, countErr := e.queue.PendingCount()
	if countErr != nil {
		e.logger.Err(countErr).Str("func", "*syncEngine.ForceSync").Msg("failed to count pending items")
	}

	now := e.now()
	e.update(func(s *models.SyncState) {
		s.Conflicts = stampConflicts(s.Conflicts, conflicts, now)
		if countErr == nil {
			s.PendingItems = count
		}
		s.CurrentOperation = nil
		if len(s.Conflicts) == 0 {
			s.LastSyncTime = now
		}
		s.Status = settledStatus(*s)
	})

	e.logger.Info().
		Str("func", "*syncEngine.ForceSync").
		Int("conflicts", len(conflicts)).
		Int("pushes", pushes).
		Msg("full sync finished")

	return len(conflicts) == 0
}

// abort ends a full sync on err. A network failure while uploading leaves
// the engine Offline, any other failure Failed.
func (e *syncEngine) abort(err error, prefix string) bool {
	e.logger.Err(err).Str("func", "*syncEngine.ForceSync").Msg("full sync failed")

	offline := adapter.IsNetworkError(err)
	if offline {
		e.monitor.Report(models.ConnectivityOffline)
	}

	e.update(func(s *models.SyncState) {
		s.CurrentOperation = nil
		s.ErrorMessage = ptr(stateMessage(prefix, err))
		s.Status = models.StatusFailed
		if offline {
			s.Connectivity = models.ConnectivityOffline
			if prefix == "" {
				s.Status = models.StatusOffline
			}
		}
	})

	return false
}

// merge reconciles one collection and applies every non-conflicting change.
func (e *syncEngine) merge(ctx context.Context, t models.EntityType, remote []models.Payload, showConflicts bool) (conflict.Result, error) {
	local, err := e.store.GetAll(ctx, t)
	if err != nil {
		return conflict.Result{}, fmt.Errorf("load local %s: %w", t, err)
	}

	res, err := e.resolver.Resolve(t, local, remote, conflict.Options{Suggest: showConflicts})
	if err != nil {
		return conflict.Result{}, err
	}

	for _, p := range res.Inserts {
		if err = e.store.Insert(ctx, p); err != nil {
			return res, fmt.Errorf("insert %s %s: %w", t, p.EntityID(), err)
		}
	}
	for _, p := range res.Updates {
		if err = e.store.Insert(ctx, p); err != nil {
			return res, fmt.Errorf("update %s %s: %w", t, p.EntityID(), err)
		}
	}
	for _, id := range res.Deletes {
		if err = e.store.Purge(ctx, t, id); err != nil {
			return res, fmt.Errorf("purge %s %s: %w", t, id, err)
		}
		if _, err = e.queue.Remove(t, id); err != nil {
			return res, err
		}
	}
	for _, c := range res.Confirms {
		if err = e.store.MarkSynced(ctx, t, c.ID, c.Hash); err != nil {
			return res, fmt.Errorf("confirm %s %s: %w", t, c.ID, err)
		}
	}
	for _, p := range res.Pushes {
		_, err = e.queue.Enqueue(models.SyncItem{
			Type:      t,
			ID:        p.ID,
			Operation: p.Operation,
			Payload:   p.Payload,
			Timestamp: e.now(),
		})
		if err != nil {
			return res, err
		}
	}

	e.logger.Debug().
		Str("func", "*syncEngine.merge").
		Str("entity_type", t.String()).
		Int("inserts", len(res.Inserts)).
		Int("updates", len(res.Updates)).
		Int("deletes", len(res.Deletes)).
		Int("confirms", len(res.Confirms)).
		Int("pushes", len(res.Pushes)).
		Int("conflicts", len(res.Conflicts)).
		Msg("collection merged")

	return res, nil
}

// stampConflicts replaces the active conflicts with detected ones. A conflict
// seen by an earlier pass keeps its original detection time.
func stampConflicts(active, detected []models.SyncConflict, now time.Time) []models.SyncConflict {
	seen := make(map[string]time.Time, len(active))
	for _, c := range active {
		seen[c.ID] = c.DetectedAt
	}

	out := make([]models.SyncConflict, 0, len(detected))
	for _, c := range detected {
		c.DetectedAt = now
		if at, ok := seen[c.ID]; ok {
			c.DetectedAt = at
		}
		out = append(out, c)
	}
	return out
}
