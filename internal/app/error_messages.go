// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// sync engine and the diagnostics API.
//
// All Msg* constants are human-readable message strings that are written into
// SyncState.ErrorMessage, HTTP response bodies or log entries to describe the
// outcome of an operation. Keeping them in one place ensures consistent
// wording for every observer.
package app

const (
	// MsgInvalidDataProvided is returned when a request body cannot be
	// decoded or fails basic validation.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned when an unexpected failure occurs
	// that the caller cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgBackendUnreachable means the backend could not be reached: timeout,
	// refused connection or DNS failure.
	MsgBackendUnreachable = "backend unreachable"

	// MsgNotOnline is reported when a sync is requested while connectivity
	// is not Online.
	MsgNotOnline = "backend is not reachable, sync postponed"

	// MsgUnauthorized means the backend rejected the credentials even after
	// a refresh.
	MsgUnauthorized = "credentials rejected by backend"

	// MsgBackendError covers 5xx answers of the backend.
	MsgBackendError = "backend error"

	// MsgBackendRejected covers 4xx answers other than 401.
	MsgBackendRejected = "backend rejected the request"

	// MsgDownloadFailed prefixes failures of the remote download phase.
	MsgDownloadFailed = "download of remote changes failed"

	// MsgLocalStoreFailed prefixes failures of the local entity store.
	MsgLocalStoreFailed = "local store failure"

	// MsgQueueFailed prefixes failures of the change queue.
	MsgQueueFailed = "change queue failure"

	// MsgSyncAlreadyRunning is returned when a sync request loses the race
	// for the sync guard.
	MsgSyncAlreadyRunning = "sync already running"

	// MsgSyncCompleted is returned when a requested full sync finished
	// without conflicts.
	MsgSyncCompleted = "sync completed"

	// MsgConflictNotFound is returned when a resolution names an unknown
	// conflict.
	MsgConflictNotFound = "conflict not found"

	// MsgInvalidResolution is returned when a resolution is malformed, e.g.
	// a merged resolution without a value.
	MsgInvalidResolution = "invalid resolution"
)
