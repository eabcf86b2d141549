// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the bearer token check.
var (
	// ErrEmptyAuthorizationHeader is returned when a protected request has no
	// "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidToken is returned when the bearer token does not match the
	// configured one.
	ErrInvalidToken = errors.New("invalid token")
)
