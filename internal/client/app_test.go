// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeWorker struct {
	name string
	rec  *recorder
}

func (w *fakeWorker) Start(context.Context) { w.rec.add("start " + w.name) }
func (w *fakeWorker) Stop()                 { w.rec.add("stop " + w.name) }

type fakeCloser struct {
	name string
	rec  *recorder
	err  error
}

func (c *fakeCloser) Close() error {
	c.rec.add("close " + c.name)
	return c.err
}

type fakeServer struct {
	rec *recorder
	err error
}

func (s *fakeServer) RunServer(ctx context.Context) error {
	s.rec.add("serve")
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error { return nil }

func runAsync(ctx context.Context, a *App) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestApp_Run_Lifecycle(t *testing.T) {
	rec := &recorder{}
	ws := workers.NewWorkers(&fakeWorker{name: "monitor", rec: rec}, &fakeWorker{name: "engine", rec: rec})
	a := NewApp(ws, nil, logger.Nop(), &fakeCloser{name: "queue", rec: rec}, &fakeCloser{name: "store", rec: rec})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, a)

	require.Eventually(t, func() bool { return len(rec.list()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, wait(t, done))
	assert.Equal(t, []string{
		"start monitor", "start engine",
		"stop engine", "stop monitor",
		"close queue", "close store",
	}, rec.list())
}

func TestApp_Run_WithServer(t *testing.T) {
	rec := &recorder{}
	a := NewApp(workers.NewWorkers(), &fakeServer{rec: rec}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, a)

	require.Eventually(t, func() bool { return len(rec.list()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	assert.NoError(t, wait(t, done))
}

func TestApp_Run_ServerFailureStopsApp(t *testing.T) {
	rec := &recorder{}
	listenErr := errors.New("address in use")
	a := NewApp(workers.NewWorkers(&fakeWorker{name: "engine", rec: rec}), &fakeServer{rec: rec, err: listenErr}, logger.Nop())

	err := wait(t, runAsync(context.Background(), a))

	require.ErrorIs(t, err, listenErr)
	assert.Contains(t, rec.list(), "stop engine")
}

func TestApp_Run_CloseError(t *testing.T) {
	rec := &recorder{}
	closeErr := errors.New("sync failed")
	a := NewApp(workers.NewWorkers(), nil, logger.Nop(),
		&fakeCloser{name: "queue", rec: rec, err: closeErr},
		&fakeCloser{name: "store", rec: rec},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Run(ctx)

	require.ErrorIs(t, err, closeErr)
	assert.Equal(t, []string{"close queue", "close store"}, rec.list())
}
