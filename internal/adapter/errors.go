// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	// ErrNetwork wraps every failure to reach the backend: timeouts, refused
	// connections, DNS errors.
	ErrNetwork = errors.New("backend unreachable")

	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("client unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")

	ErrUnknownCollection = errors.New("unknown collection")
	ErrNoCredentials     = errors.New("no credentials configured")
)
