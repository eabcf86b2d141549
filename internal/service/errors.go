// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrConflictNotFound is returned by ResolveConflict for an id that is not
	// among the active conflicts.
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrInvalidResolution is returned by ResolveConflict for an unknown
	// resolution kind or a merged resolution without a matching value.
	ErrInvalidResolution = errors.New("invalid resolution")
)
