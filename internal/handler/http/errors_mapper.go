// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/emotion-sync/internal/app"
	"github.com/MKhiriev/emotion-sync/internal/queue"
	"github.com/MKhiriev/emotion-sync/internal/service"
	"github.com/MKhiriev/emotion-sync/internal/store"
)

type errorResponse struct {
	status  int
	message string
}

var errorResponseMap = map[error]errorResponse{
	service.ErrConflictNotFound:  {http.StatusNotFound, app.MsgConflictNotFound},
	service.ErrInvalidResolution: {http.StatusBadRequest, app.MsgInvalidResolution},

	queue.ErrItemNotFound: {http.StatusInternalServerError, app.MsgQueueFailed},
	queue.ErrKeyTaken:     {http.StatusInternalServerError, app.MsgQueueFailed},

	store.ErrExecutingQuery:     {http.StatusInternalServerError, app.MsgLocalStoreFailed},
	store.ErrExecutingStatement: {http.StatusInternalServerError, app.MsgLocalStoreFailed},
	store.ErrScanningRows:       {http.StatusInternalServerError, app.MsgLocalStoreFailed},
}

func responseFromError(err error) (int, string) {
	for target, resp := range errorResponseMap {
		if errors.Is(err, target) {
			return resp.status, resp.message
		}
	}
	return http.StatusInternalServerError, app.MsgInternalServerError
}
