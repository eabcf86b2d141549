// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntityType is returned when a payload tag does not match any
	// of [EntityTypes].
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrEmptyPayload is returned when an envelope carries no data.
	ErrEmptyPayload = errors.New("empty payload")
)

// PayloadEnvelope is the self-describing JSON form of a [Payload]:
//
//	{"type": "emotional_record", "data": {...}}
//
// It is used wherever a payload is persisted without an external type column
// (queue items, dead letters, conflicts served over HTTP).
type PayloadEnvelope struct {
	Payload Payload
}

type envelopeJSON struct {
	Type EntityType      `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (e PayloadEnvelope) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return []byte("null"), nil
	}

	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.Payload.EntityType(), err)
	}

	return json.Marshal(envelopeJSON{Type: e.Payload.EntityType(), Data: data})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *PayloadEnvelope) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		e.Payload = nil
		return nil
	}

	var env envelopeJSON
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("decode payload envelope: %w", err)
	}

	p, err := DecodePayload(env.Type, env.Data)
	if err != nil {
		return err
	}
	e.Payload = p

	return nil
}

// DecodePayload decodes raw JSON into the concrete payload struct for t.
// The switch is exhaustive over [EntityTypes].
func DecodePayload(t EntityType, raw []byte) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrEmptyPayload
	}

	switch t {
	case EmotionalRecordType:
		var v EmotionalRecord
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return v, nil
	case BreathingSessionType:
		var v BreathingSession
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return v, nil
	case BreathingPatternType:
		var v BreathingPattern
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return v, nil
	case CustomEmotionType:
		var v CustomEmotion
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, t)
	}
}

// WithID returns a copy of p whose identifier is replaced by id. Used when the
// backend assigns its own id to a record that was created offline.
func WithID(p Payload, id string) Payload {
	switch v := p.(type) {
	case EmotionalRecord:
		v.ID = id
		return v
	case BreathingSession:
		v.ID = id
		return v
	case BreathingPattern:
		v.ID = id
		return v
	case CustomEmotion:
		v.ID = id
		return v
	default:
		return p
	}
}
