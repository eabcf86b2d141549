// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers provides the background machinery of the sync client:
// periodic jobs, a group that starts and stops them together, and a bounded
// pool for offloading CPU-bound work.
package workers

import "context"

// Worker is a background task with an explicit lifecycle.
//
// Start must not block; the work runs in goroutines owned by the worker until
// ctx is cancelled or Stop is called. Stop blocks until those goroutines have
// exited and is safe to call on a worker that was never started.
//
// Example implementation:
//
//	job := workers.NewPeriodicJob("sync", 5*time.Minute, func(ctx context.Context) {
//	    engine.ForceSync(ctx, false)
//	}, log)
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
