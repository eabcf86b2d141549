// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/emotion-sync/internal/adapter"
	"github.com/MKhiriev/emotion-sync/internal/app"
	"github.com/MKhiriev/emotion-sync/internal/queue"
	"github.com/MKhiriev/emotion-sync/internal/store"
)

// stateMessage translates an error into the message published in
// SyncState.ErrorMessage. prefix names the phase that failed.
func stateMessage(prefix string, err error) string {
	var msg string

	switch {
	case adapter.IsNetworkError(err):
		msg = app.MsgBackendUnreachable
	case errors.Is(err, adapter.ErrUnauthorized), errors.Is(err, adapter.ErrNoCredentials):
		msg = app.MsgUnauthorized
	case errors.Is(err, adapter.ErrServer):
		msg = app.MsgBackendError
	case errors.Is(err, adapter.ErrBadRequest),
		errors.Is(err, adapter.ErrForbidden),
		errors.Is(err, adapter.ErrNotFound),
		errors.Is(err, adapter.ErrConflict):
		msg = app.MsgBackendRejected
	case errors.Is(err, store.ErrExecutingQuery),
		errors.Is(err, store.ErrExecutingStatement),
		errors.Is(err, store.ErrScanningRows):
		msg = app.MsgLocalStoreFailed
	case errors.Is(err, queue.ErrItemNotFound), errors.Is(err, queue.ErrKeyTaken):
		msg = app.MsgQueueFailed
	default:
		msg = err.Error()
	}

	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}
