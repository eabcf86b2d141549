// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connectivity tracks whether the backend is reachable.
//
// A check is two-staged: a link probe (does the backend host answer a TCP
// dial at all, a refused connection included) followed by a health probe
// (does the backend answer its health endpoint in time). The outcome is one of
// [models.ConnectivityOnline], [models.ConnectivityLimited] (link up,
// backend silent) or [models.ConnectivityOffline].
//
// [Monitor] runs the check periodically and on demand and coalesces
// concurrent checks into one probe that outlives any single caller.
// Subscribers are notified only when the status changes.
package connectivity
