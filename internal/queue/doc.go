// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package queue implements the durable outbound change queue of the sync
// client on top of bbolt.
//
// The queue holds at most one active item per (entity type, id). A later
// mutation of the same entity supersedes the pending item in place: the item
// keeps its position and queue id, its revision is bumped and the operations
// are merged (a pending create followed by an update stays a create; in every
// other case the newer operation wins).
//
// Reads are leases: DequeueUpTo never removes anything. An item leaves the
// active queue only through MarkProcessed, MoveToDeadLetter or Remove.
package queue
