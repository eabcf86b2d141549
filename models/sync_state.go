// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// SyncStatus is the coarse state of the sync engine.
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusSyncing
	StatusSyncingBackground
	StatusConflictDetected
	StatusFailed
	StatusOffline
)

var syncStatusNames = map[SyncStatus]string{
	StatusIdle:              "idle",
	StatusSyncing:           "syncing",
	StatusSyncingBackground: "syncing_background",
	StatusConflictDetected:  "conflict_detected",
	StatusFailed:            "failed",
	StatusOffline:           "offline",
}

func (s SyncStatus) String() string {
	if name, ok := syncStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements json.Marshaler.
func (s SyncStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ConnectivityStatus is the reachability of the backend as seen by the
// connectivity monitor.
type ConnectivityStatus int

const (
	ConnectivityUnknown ConnectivityStatus = iota
	ConnectivityOnline
	ConnectivityOffline
	// ConnectivityLimited means a network link exists but the backend health
	// endpoint did not answer.
	ConnectivityLimited
)

var connectivityNames = map[ConnectivityStatus]string{
	ConnectivityUnknown: "unknown",
	ConnectivityOnline:  "online",
	ConnectivityOffline: "offline",
	ConnectivityLimited: "limited",
}

func (c ConnectivityStatus) String() string {
	if name, ok := connectivityNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements json.Marshaler.
func (c ConnectivityStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// SyncState is the single observable snapshot of the engine. It is a value:
// the engine replaces it wholesale on every transition and never mutates a
// published copy.
type SyncState struct {
	Status           SyncStatus         `json:"status"`
	Connectivity     ConnectivityStatus `json:"connectivity"`
	LastSyncTime     time.Time          `json:"last_sync_time"`
	PendingItems     int                `json:"pending_items"`
	CurrentOperation *string            `json:"current_operation,omitempty"`
	ErrorMessage     *string            `json:"error_message,omitempty"`
	Conflicts        []SyncConflict     `json:"conflicts"`
}

// Clone returns a deep enough copy of s for publishing: the conflicts slice
// and optional strings are not shared with the original.
func (s SyncState) Clone() SyncState {
	out := s
	out.Conflicts = append([]SyncConflict(nil), s.Conflicts...)
	if s.CurrentOperation != nil {
		op := *s.CurrentOperation
		out.CurrentOperation = &op
	}
	if s.ErrorMessage != nil {
		msg := *s.ErrorMessage
		out.ErrorMessage = &msg
	}
	return out
}
