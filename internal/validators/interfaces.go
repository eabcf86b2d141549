// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks entity payloads and queued changes before the
// sync engine persists or uploads them.
//
// A rejected change never reaches the local store or the change queue, so a
// malformed record cannot block the queue by failing on the backend until it
// is dead-lettered.
package validators

import "context"

// Validator validates a value, optionally restricted to the named fields.
//
// Supported values are [models.Payload] implementations and
// [models.SyncItem]. Unknown value types yield [ErrUnsupportedType].
type Validator interface {
	Validate(ctx context.Context, v any, fields ...string) error
}
