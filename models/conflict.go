// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// ResolutionKind is the user's decision for a [SyncConflict].
type ResolutionKind string

const (
	// ResolutionKeepLocal pushes the local version to the backend.
	ResolutionKeepLocal ResolutionKind = "keep_local"

	// ResolutionKeepRemote overwrites the local copy with the remote one.
	ResolutionKeepRemote ResolutionKind = "keep_remote"

	// ResolutionMerged stores and pushes a user-merged value.
	ResolutionMerged ResolutionKind = "merged"

	// ResolutionDismiss drops the conflict without writing anything. The
	// divergence is detected again on the next full sync.
	ResolutionDismiss ResolutionKind = "dismiss"
)

// Resolution is a terminal decision passed to ResolveConflict. Merged must be
// set only for [ResolutionMerged].
type Resolution struct {
	Kind   ResolutionKind `json:"kind"`
	Merged Payload        `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (r Resolution) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   ResolutionKind   `json:"kind"`
		Merged *PayloadEnvelope `json:"merged,omitempty"`
	}{Kind: r.Kind, Merged: optionalEnvelope(r.Merged)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Resolution) UnmarshalJSON(b []byte) error {
	var v struct {
		Kind   ResolutionKind  `json:"kind"`
		Merged PayloadEnvelope `json:"merged"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	r.Kind = v.Kind
	r.Merged = v.Merged.Payload
	return nil
}

// SyncConflict describes an entity that changed on both sides since the last
// checkpoint. LocalVersion is nil when the local side deleted the entity,
// RemoteVersion is nil when the backend deleted it.
type SyncConflict struct {
	ID                  string
	EntityType          EntityType
	EntityID            string
	LocalVersion        Payload
	RemoteVersion       Payload
	SuggestedResolution *Resolution
	DetectedAt          time.Time
}

// MarshalJSON implements json.Marshaler.
func (c SyncConflict) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID                  string           `json:"id"`
		EntityType          EntityType       `json:"entity_type"`
		EntityID            string           `json:"entity_id"`
		LocalVersion        *PayloadEnvelope `json:"local_version"`
		RemoteVersion       *PayloadEnvelope `json:"remote_version"`
		SuggestedResolution *Resolution      `json:"suggested_resolution,omitempty"`
		DetectedAt          time.Time        `json:"detected_at"`
	}{
		ID:                  c.ID,
		EntityType:          c.EntityType,
		EntityID:            c.EntityID,
		LocalVersion:        optionalEnvelope(c.LocalVersion),
		RemoteVersion:       optionalEnvelope(c.RemoteVersion),
		SuggestedResolution: c.SuggestedResolution,
		DetectedAt:          c.DetectedAt,
	})
}

func optionalEnvelope(p Payload) *PayloadEnvelope {
	if p == nil {
		return nil
	}
	return &PayloadEnvelope{Payload: p}
}
