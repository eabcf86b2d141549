// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Operation is the kind of local mutation carried by a [SyncItem].
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// MaxRetries is the number of failed uploads after which an item is moved to
// the dead-letter store.
const MaxRetries = 3

// SyncItem is a pending local mutation awaiting upload.
//
// QueueID is assigned on first enqueue and kept when a later mutation of the
// same (Type, ID) supersedes the item. Revision is bumped on every supersede,
// so a lease taken before the supersede cannot remove the newer payload.
type SyncItem struct {
	QueueID    string     `json:"queue_id"`
	Type       EntityType `json:"type"`
	ID         string     `json:"id"`
	Operation  Operation  `json:"operation"`
	Payload    Payload    `json:"-"`
	Timestamp  time.Time  `json:"timestamp"`
	RetryCount int        `json:"retry_count"`
	Revision   int64      `json:"revision"`
}

// Key returns the (type, id) identity used by the supersede rule.
func (i SyncItem) Key() string {
	return ItemKey(i.Type, i.ID)
}

// ItemKey builds the supersede identity of an entity.
func ItemKey(t EntityType, id string) string {
	return string(t) + "/" + id
}

type syncItemJSON struct {
	QueueID    string          `json:"queue_id"`
	Type       EntityType      `json:"type"`
	ID         string          `json:"id"`
	Operation  Operation       `json:"operation"`
	Payload    PayloadEnvelope `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
	RetryCount int             `json:"retry_count"`
	Revision   int64           `json:"revision"`
}

// MarshalJSON implements json.Marshaler. The payload is written as a typed
// envelope so it survives a round trip through the durable queue.
func (i SyncItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(syncItemJSON{
		QueueID:    i.QueueID,
		Type:       i.Type,
		ID:         i.ID,
		Operation:  i.Operation,
		Payload:    PayloadEnvelope{Payload: i.Payload},
		Timestamp:  i.Timestamp,
		RetryCount: i.RetryCount,
		Revision:   i.Revision,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *SyncItem) UnmarshalJSON(b []byte) error {
	var v syncItemJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*i = SyncItem{
		QueueID:    v.QueueID,
		Type:       v.Type,
		ID:         v.ID,
		Operation:  v.Operation,
		Payload:    v.Payload.Payload,
		Timestamp:  v.Timestamp,
		RetryCount: v.RetryCount,
		Revision:   v.Revision,
	}
	return nil
}

// DeadLetter is a queue item that exhausted its retries. It is kept for
// diagnostics only and is never retried automatically.
type DeadLetter struct {
	Item     SyncItem  `json:"item"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}
