// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package queue

import "errors"

var (
	// ErrItemNotFound is returned when no active item has the given queue id.
	ErrItemNotFound = errors.New("queue item not found")

	// ErrInvalidItem is returned by Enqueue for items with an unknown entity
	// type or operation, an empty id, or a missing payload on create/update.
	ErrInvalidItem = errors.New("invalid queue item")

	// ErrKeyTaken is returned by Rekey when the target entity already has an
	// active item.
	ErrKeyTaken = errors.New("entity already has a pending item")
)
