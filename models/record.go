// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Record is the local copy of an entity together with its sync bookkeeping.
//
// SyncedHash is the checkpoint: the content hash of the last snapshot known to
// be in sync with the backend. An empty SyncedHash means the record has never
// been synced (created offline). Synced is true when Hash equals SyncedHash.
type Record struct {
	Type       EntityType `json:"type"`
	ID         string     `json:"id"`
	Payload    Payload    `json:"-"`
	Hash       string     `json:"hash"`
	SyncedHash string     `json:"synced_hash,omitempty"`
	Synced     bool       `json:"synced"`
	Deleted    bool       `json:"deleted"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasCheckpoint reports whether the record was synced at least once.
func (r Record) HasCheckpoint() bool {
	return r.SyncedHash != ""
}

// ModifiedSinceCheckpoint reports whether the local content or deletion state
// diverged from the last synced snapshot.
func (r Record) ModifiedSinceCheckpoint() bool {
	return r.Deleted || r.Hash != r.SyncedHash
}
