// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/adapter"
	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/internal/validators"
	"github.com/MKhiriev/emotion-sync/internal/workers"
	"github.com/MKhiriev/emotion-sync/models"
)

const (
	defaultBatchSize    = 20
	defaultLowWater     = 10
	defaultSyncInterval = 5 * time.Minute
)

// SyncEngineDeps are the collaborators of the sync engine.
type SyncEngineDeps struct {
	Store     store.EntityStore
	Queue     ChangeQueue
	Remote    adapter.RemoteDataSource
	Monitor   ConnectivityMonitor
	Resolver  ConflictResolver
	Validator validators.Validator
}

type syncEngine struct {
	store     store.EntityStore
	queue     ChangeQueue
	remote    adapter.RemoteDataSource
	monitor   ConnectivityMonitor
	resolver  ConflictResolver
	validator validators.Validator

	batchSize     int
	lowWater      int
	maxRetries    int
	showConflicts bool

	hash   func(v any) (string, error)
	now    func() time.Time
	logger *logger.Logger

	job         *workers.PeriodicJob
	broadcaster *stateBroadcaster

	// background drains run on lifecycle, not on the caller's context
	lifecycle context.Context
	cancel    context.CancelFunc
	drains    sync.WaitGroup

	mu          sync.Mutex
	state       models.SyncState
	syncing     bool
	started     bool
	unsubscribe func()
}

// NewSyncEngine builds an engine in state Idle with Unknown connectivity.
// Zero values in syncCfg and workersCfg fall back to a batch of 20, 3
// retries and a 5 minute full-sync interval. A low-water mark of 0 turns
// opportunistic drains off; a negative one falls back to 10.
func NewSyncEngine(deps SyncEngineDeps, syncCfg config.ClientSync, workersCfg config.ClientWorkers, log *logger.Logger) SyncEngine {
	e := &syncEngine{
		store:         deps.Store,
		queue:         deps.Queue,
		remote:        deps.Remote,
		monitor:       deps.Monitor,
		resolver:      deps.Resolver,
		validator:     deps.Validator,
		batchSize:     syncCfg.BatchSize,
		lowWater:      syncCfg.LowWater,
		maxRetries:    syncCfg.MaxRetries,
		showConflicts: syncCfg.ShowConflicts,
		hash:          utils.HashPayload,
		now:           time.Now,
		logger:        log,
		broadcaster:   newStateBroadcaster(),
		state: models.SyncState{
			Status:       models.StatusIdle,
			Connectivity: models.ConnectivityUnknown,
			Conflicts:    []models.SyncConflict{},
		},
	}
	if e.batchSize <= 0 {
		e.batchSize = defaultBatchSize
	}
	if e.lowWater < 0 {
		e.lowWater = defaultLowWater
	}
	if e.maxRetries <= 0 {
		e.maxRetries = models.MaxRetries
	}

	interval := workersCfg.SyncInterval
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	e.job = workers.NewPeriodicJob("full-sync", interval, e.scheduledSync, log)
	e.lifecycle, e.cancel = context.WithCancel(context.Background())

	return e
}

// Start implements [SyncEngine].
func (e *syncEngine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.lifecycle, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	e.refreshPending()
	e.onConnectivity(e.monitor.Status())

	unsubscribe := e.monitor.Subscribe(e.onConnectivity)
	e.mu.Lock()
	e.unsubscribe = unsubscribe
	e.mu.Unlock()

	e.job.Start(e.lifecycle)

	e.logger.Info().
		Str("func", "*syncEngine.Start").
		Int("batch_size", e.batchSize).
		Int("low_water", e.lowWater).
		Int("max_retries", e.maxRetries).
		Msg("sync engine started")
}

// Stop implements [SyncEngine].
func (e *syncEngine) Stop() {
	e.job.Stop()

	e.mu.Lock()
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}

	e.cancel()
	e.drains.Wait()
	e.broadcaster.close()

	e.logger.Info().Str("func", "*syncEngine.Stop").Msg("sync engine stopped")
}

// Subscribe implements [SyncEngine].
func (e *syncEngine) Subscribe() (<-chan models.SyncState, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.broadcaster.subscribe(e.state.Clone())
}

// CurrentState implements [SyncEngine].
func (e *syncEngine) CurrentState() models.SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// DeadLetters implements [SyncEngine].
func (e *syncEngine) DeadLetters(context.Context) ([]models.DeadLetter, error) {
	return e.queue.DeadLetters()
}

// update applies fn to the state and publishes the result. Publishing under
// the lock keeps delivery order equal to transition order.
func (e *syncEngine) update(fn func(s *models.SyncState)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn(&e.state)
	e.broadcaster.publish(e.state)
}

// tryAcquire takes the sync guard. Only one pass, foreground or background,
// runs at a time.
func (e *syncEngine) tryAcquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.syncing {
		return false
	}
	e.syncing = true
	return true
}

func (e *syncEngine) release() {
	e.mu.Lock()
	e.syncing = false
	e.mu.Unlock()
}

// canSync reports whether a pass may start now: backend online and no pass
// running.
func (e *syncEngine) canSync() bool {
	e.mu.Lock()
	syncing := e.syncing
	e.mu.Unlock()

	return !syncing && e.monitor.Status() == models.ConnectivityOnline
}

// settledStatus is the resting status for s once no pass is running.
func settledStatus(s models.SyncState) models.SyncStatus {
	switch {
	case len(s.Conflicts) > 0:
		return models.StatusConflictDetected
	case s.Connectivity != models.ConnectivityOnline:
		return models.StatusOffline
	default:
		return models.StatusIdle
	}
}

// onConnectivity reacts to monitor transitions: any drop moves the engine
// to Offline, a return to Online schedules a full sync.
func (e *syncEngine) onConnectivity(status models.ConnectivityStatus) {
	e.update(func(s *models.SyncState) {
		s.Connectivity = status
		switch {
		case status != models.ConnectivityOnline && status != models.ConnectivityUnknown:
			s.Status = models.StatusOffline
		case status == models.ConnectivityOnline && s.Status == models.StatusOffline:
			s.Status = settledStatus(*s)
		}
	})

	if status == models.ConnectivityOnline {
		e.job.Trigger()
	}
}

// scheduledSync is the body of the periodic job and of reconnect triggers.
func (e *syncEngine) scheduledSync(ctx context.Context) {
	if !e.canSync() {
		e.logger.Debug().Str("func", "*syncEngine.scheduledSync").Msg("sync skipped")
		return
	}
	e.ForceSync(ctx, e.showConflicts)
}

// refreshPending republishes the live queue count.
func (e *syncEngine) refreshPending() {
	count, err := e.queue.PendingCount()
	if err != nil {
		e.logger.Err(err).Str("func", "*syncEngine.refreshPending").Msg("failed to count pending items")
		return
	}

	e.update(func(s *models.SyncState) {
		s.PendingItems = count
	})
}

// goDrain starts an unawaited background drain.
func (e *syncEngine) goDrain() {
	e.mu.Lock()
	ctx := e.lifecycle
	if ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	e.drains.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.drains.Done()
		e.DrainQueue(ctx)
	}()
}

func ptr[T any](v T) *T {
	return &v
}
