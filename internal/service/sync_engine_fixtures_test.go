// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/adapter"
	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/conflict"
	"github.com/MKhiriev/emotion-sync/internal/connectivity"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/queue"
	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/internal/validators"
	"github.com/MKhiriev/emotion-sync/models"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// ── fake connectivity monitor ───────────────────────────────────────────────

type fakeMonitor struct {
	mu          sync.Mutex
	status      models.ConnectivityStatus
	checkResult models.ConnectivityStatus
	checks      int
	reports     []models.ConnectivityStatus
	listeners   map[int]connectivity.Listener
	nextID      int
}

func newFakeMonitor(status models.ConnectivityStatus) *fakeMonitor {
	return &fakeMonitor{
		status:      status,
		checkResult: status,
		listeners:   make(map[int]connectivity.Listener),
	}
}

func (m *fakeMonitor) Status() models.ConnectivityStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *fakeMonitor) Check(context.Context) models.ConnectivityStatus {
	m.mu.Lock()
	m.checks++
	result := m.checkResult
	m.mu.Unlock()

	m.set(result)
	return result
}

func (m *fakeMonitor) Report(status models.ConnectivityStatus) {
	m.mu.Lock()
	m.reports = append(m.reports, status)
	m.mu.Unlock()

	m.set(status)
}

func (m *fakeMonitor) Subscribe(fn connectivity.Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *fakeMonitor) set(status models.ConnectivityStatus) {
	m.mu.Lock()
	if m.status == status {
		m.mu.Unlock()
		return
	}
	m.status = status
	listeners := make([]connectivity.Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
}

// ── fake backend ────────────────────────────────────────────────────────────

// fakeRemote is an in-memory backend with REST semantics: create of an
// existing id is a conflict, update or delete of a missing id is not found.
type fakeRemote struct {
	mu       sync.Mutex
	items    map[string]models.Payload
	creates  int
	updates  int
	deletes  int
	assignID func(p models.Payload) string
}

func newFakeRemote(items ...models.Payload) *fakeRemote {
	r := &fakeRemote{items: make(map[string]models.Payload)}
	for _, p := range items {
		r.items[models.ItemKey(p.EntityType(), p.EntityID())] = p
	}
	return r
}

func (r *fakeRemote) GetAll(_ context.Context, t models.EntityType) ([]models.Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Payload
	for _, p := range r.items {
		if p.EntityType() == t {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRemote) Create(_ context.Context, p models.Payload) (models.Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.assignID != nil {
		p = models.WithID(p, r.assignID(p))
	}
	key := models.ItemKey(p.EntityType(), p.EntityID())
	if _, ok := r.items[key]; ok {
		return nil, fmt.Errorf("create %s: %w", key, adapter.ErrConflict)
	}
	r.items[key] = p
	r.creates++
	return p, nil
}

func (r *fakeRemote) Update(_ context.Context, p models.Payload) (models.Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.ItemKey(p.EntityType(), p.EntityID())
	if _, ok := r.items[key]; !ok {
		return nil, fmt.Errorf("update %s: %w", key, adapter.ErrNotFound)
	}
	r.items[key] = p
	r.updates++
	return p, nil
}

func (r *fakeRemote) Delete(_ context.Context, t models.EntityType, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.ItemKey(t, id)
	if _, ok := r.items[key]; !ok {
		return fmt.Errorf("delete %s: %w", key, adapter.ErrNotFound)
	}
	delete(r.items, key)
	r.deletes++
	return nil
}

func (r *fakeRemote) HealthCheck(context.Context) error {
	return nil
}

func (r *fakeRemote) get(t models.EntityType, id string) (models.Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[models.ItemKey(t, id)]
	return p, ok
}

func (r *fakeRemote) counts() (creates, updates, deletes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates, r.updates, r.deletes
}

// ── engine fixture ──────────────────────────────────────────────────────────

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type engineFixture struct {
	engine  *syncEngine
	store   store.EntityStore
	queue   *queue.ChangeQueue
	monitor *fakeMonitor
	clock   *testClock
}

// newTestEngine builds an engine on a real bbolt queue and the in-memory
// store. lowWater 0 disables background drains so tests drive every pass.
func newTestEngine(t *testing.T, remote adapter.RemoteDataSource, status models.ConnectivityStatus, lowWater int) *engineFixture {
	t.Helper()

	st, err := store.NewMemoryEntityStore("")
	require.NoError(t, err)

	q, err := queue.Open(filepath.Join(t.TempDir(), "queue.db"), logger.Nop())
	require.NoError(t, err)

	mon := newFakeMonitor(status)
	clock := &testClock{now: testNow}

	e := NewSyncEngine(SyncEngineDeps{
		Store:     st,
		Queue:     q,
		Remote:    remote,
		Monitor:   mon,
		Resolver:  conflict.NewResolver(),
		Validator: validators.NewPayloadValidator(),
	}, config.ClientSync{
		BatchSize:  20,
		LowWater:   lowWater,
		MaxRetries: models.MaxRetries,
	}, config.ClientWorkers{SyncInterval: time.Hour}, logger.Nop()).(*syncEngine)
	e.now = clock.Now

	t.Cleanup(func() {
		e.Stop()
		q.Close()
	})

	return &engineFixture{engine: e, store: st, queue: q, monitor: mon, clock: clock}
}

func emotion(id, description string) models.EmotionalRecord {
	return models.EmotionalRecord{
		ID:          id,
		Emotion:     "calm",
		Intensity:   5,
		Description: description,
		RecordedAt:  testNow,
		UpdatedAt:   testNow,
	}
}

func (f *engineFixture) record(t *testing.T, id string) models.Record {
	t.Helper()
	rec, err := f.store.Get(context.Background(), models.EmotionalRecordType, id)
	require.NoError(t, err)
	return rec
}

func (f *engineFixture) pending(t *testing.T) []models.SyncItem {
	t.Helper()
	items, err := f.queue.DequeueUpTo(100)
	require.NoError(t, err)
	return items
}

func description(p models.Payload) string {
	if r, ok := p.(models.EmotionalRecord); ok {
		return r.Description
	}
	return ""
}
