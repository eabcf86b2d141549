// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connectivity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/workers"
	"github.com/MKhiriev/emotion-sync/models"
)

// DefaultHealthTimeout bounds the health probe of a single check.
const DefaultHealthTimeout = 8 * time.Second

// Listener receives status transitions. It is called synchronously and must
// not block.
type Listener func(models.ConnectivityStatus)

// Monitor holds the last observed connectivity status.
type Monitor struct {
	link          LinkProber
	health        HealthChecker
	healthTimeout time.Duration
	logger        *logger.Logger

	group singleflight.Group
	job   *workers.PeriodicJob

	// probes run on lifecycle, not on the caller's context
	lifecycle context.Context
	cancel    context.CancelFunc
	probes    sync.WaitGroup

	mu        sync.Mutex
	status    models.ConnectivityStatus
	listeners map[int]Listener
	nextID    int
	notifyMu  sync.Mutex
}

// NewMonitor builds a monitor polling every interval. link may be nil, in
// which case only the health probe decides between Online and Limited. A
// non-positive healthTimeout means [DefaultHealthTimeout].
func NewMonitor(link LinkProber, health HealthChecker, interval, healthTimeout time.Duration, log *logger.Logger) *Monitor {
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}

	m := &Monitor{
		link:          link,
		health:        health,
		healthTimeout: healthTimeout,
		logger:        log,
		status:        models.ConnectivityUnknown,
		listeners:     make(map[int]Listener),
	}
	m.lifecycle, m.cancel = context.WithCancel(context.Background())
	m.job = workers.NewPeriodicJob("connectivity", interval, func(ctx context.Context) {
		m.Check(ctx)
	}, log)

	return m
}

// Status returns the last observed status.
func (m *Monitor) Status() models.ConnectivityStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Check probes the backend and records the result. Concurrent calls share a
// single probe. It never fails: every problem maps to a status.
//
// The probe does not run on ctx, so one cancelled caller cannot spoil the
// result for the others. A caller whose ctx ends first gets the last
// recorded status while the probe completes in the background. Stop cuts
// in-flight probes short without recording their result.
func (m *Monitor) Check(ctx context.Context) models.ConnectivityStatus {
	ch := m.group.DoChan("check", func() (any, error) {
		return m.runProbe(), nil
	})

	select {
	case res := <-ch:
		return res.Val.(models.ConnectivityStatus)
	case <-ctx.Done():
		return m.Status()
	}
}

func (m *Monitor) runProbe() models.ConnectivityStatus {
	m.mu.Lock()
	ctx := m.lifecycle
	if ctx.Err() != nil {
		m.mu.Unlock()
		return m.Status()
	}
	m.probes.Add(1)
	m.mu.Unlock()
	defer m.probes.Done()

	status := m.probe(ctx)
	if ctx.Err() != nil {
		return m.Status()
	}
	m.set(status)
	return status
}

// Report records a status observed elsewhere, e.g. a network error seen by
// the sync engine mid-request.
func (m *Monitor) Report(status models.ConnectivityStatus) {
	m.set(status)
}

// Notify asks for an immediate check. It is the hook for platform
// connectivity-change events and never blocks.
func (m *Monitor) Notify() {
	m.job.Trigger()
}

// Subscribe registers fn for status transitions and returns a function that
// removes it.
func (m *Monitor) Subscribe(fn Listener) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Start runs an immediate check and then polls until ctx is cancelled or
// Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.job.Start(ctx)
	m.job.Trigger()
}

// Stop ends polling, cancels in-flight probes and waits for them to return.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()

	m.job.Stop()
	m.probes.Wait()
}

// probe runs the link probe and then the health probe, each bounded by
// healthTimeout. A panic yields the status reached so far: Offline before
// the link is confirmed, Limited after.
func (m *Monitor) probe(ctx context.Context) (status models.ConnectivityStatus) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Str("func", "*Monitor.probe").
				Str("panic", fmt.Sprint(r)).
				Stringer("status", status).
				Msg("connectivity probe panicked")
		}
	}()

	status = models.ConnectivityOffline
	if m.link != nil {
		lctx, cancel := context.WithTimeout(ctx, m.healthTimeout)
		err := m.link.Probe(lctx)
		cancel()
		if err != nil {
			m.logger.Debug().Err(err).Str("func", "*Monitor.probe").Msg("link probe failed")
			return status
		}
	}

	status = models.ConnectivityLimited
	hctx, cancel := context.WithTimeout(ctx, m.healthTimeout)
	defer cancel()

	if err := m.health.HealthCheck(hctx); err != nil {
		m.logger.Debug().Err(err).Str("func", "*Monitor.probe").Msg("health probe failed")
		return status
	}

	return models.ConnectivityOnline
}

// set stores status and notifies listeners on change.
func (m *Monitor) set(status models.ConnectivityStatus) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	prev := m.status
	if prev == status {
		m.mu.Unlock()
		return
	}
	m.status = status
	listeners := make([]Listener, 0, len(m.listeners))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "*Monitor.set").
		Stringer("from", prev).
		Stringer("to", status).
		Msg("connectivity changed")

	for _, fn := range listeners {
		fn(status)
	}
}
