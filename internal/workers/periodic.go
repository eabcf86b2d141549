// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/logger"
)

// PeriodicJob calls a function on a ticker and on demand.
type PeriodicJob struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
	logger   *logger.Logger

	trigger chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPeriodicJob creates a job that calls fn every interval once started. If
// interval is zero or negative it defaults to 5 minutes. Calls never overlap:
// a tick or trigger that arrives while fn runs is handled after it returns.
func NewPeriodicJob(name string, interval time.Duration, fn func(ctx context.Context), log *logger.Logger) *PeriodicJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &PeriodicJob{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   log,
		trigger:  make(chan struct{}, 1),
	}
}

// Start stops any previously running loop, then launches a goroutine that
// calls fn every interval and whenever Trigger is called. The goroutine exits
// when ctx is cancelled or Stop is called.
func (j *PeriodicJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	j.logger.Debug().
		Str("func", "PeriodicJob.Start").
		Str("job", j.name).
		Dur("interval", j.interval).
		Msg("job started")

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
			case <-j.trigger:
			}
			j.fn(jobCtx)
		}
	}()
}

// Trigger requests an immediate run. Requests made while a run is pending
// collapse into one. It never blocks.
func (j *PeriodicJob) Trigger() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and blocks until it has exited. Safe to call when the
// job is not running.
func (j *PeriodicJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
