// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EntityType is the tag of the record kinds synchronised with the backend.
// The value doubles as the wire-level type discriminator of a payload envelope.
type EntityType string

const (
	// EmotionalRecordType tags an [EmotionalRecord].
	EmotionalRecordType EntityType = "emotional_record"

	// BreathingSessionType tags a [BreathingSession].
	BreathingSessionType EntityType = "breathing_session"

	// BreathingPatternType tags a [BreathingPattern].
	BreathingPatternType EntityType = "breathing_pattern"

	// CustomEmotionType tags a [CustomEmotion].
	CustomEmotionType EntityType = "custom_emotion"
)

// EntityTypes lists every synchronised entity type in the fixed order used by
// a full sync pass.
var EntityTypes = []EntityType{
	EmotionalRecordType,
	BreathingSessionType,
	BreathingPatternType,
	CustomEmotionType,
}

// Valid reports whether t is one of [EntityTypes].
func (t EntityType) Valid() bool {
	switch t {
	case EmotionalRecordType, BreathingSessionType, BreathingPatternType, CustomEmotionType:
		return true
	}
	return false
}

func (t EntityType) String() string {
	return string(t)
}

// Payload is the sum type of entity snapshots carried by queue items, local
// records and conflicts. Exactly one concrete struct exists per [EntityType].
type Payload interface {
	// EntityType returns the tag of the concrete payload.
	EntityType() EntityType

	// EntityID returns the entity identifier. It may be a locally
	// generated id for records created offline.
	EntityID() string

	// ModifiedAt returns the time of the last local or remote edit.
	ModifiedAt() time.Time
}

// EmotionalRecord is a single mood entry made by the user.
type EmotionalRecord struct {
	ID          string    `json:"id"`
	Emotion     string    `json:"emotion"`
	Intensity   int       `json:"intensity"`
	Description string    `json:"description,omitempty"`
	Triggers    []string  `json:"triggers,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r EmotionalRecord) EntityType() EntityType { return EmotionalRecordType }
func (r EmotionalRecord) EntityID() string       { return r.ID }
func (r EmotionalRecord) ModifiedAt() time.Time  { return r.UpdatedAt }

// BreathingSession is a completed breathing exercise.
type BreathingSession struct {
	ID              string    `json:"id"`
	PatternName     string    `json:"pattern_name"`
	DurationSeconds int       `json:"duration_seconds"`
	Rating          int       `json:"rating,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s BreathingSession) EntityType() EntityType { return BreathingSessionType }
func (s BreathingSession) EntityID() string       { return s.ID }
func (s BreathingSession) ModifiedAt() time.Time  { return s.UpdatedAt }

// BreathingPattern describes the phases of a breathing exercise.
type BreathingPattern struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	InhaleSeconds int       `json:"inhale_seconds"`
	HoldSeconds   int       `json:"hold_seconds"`
	ExhaleSeconds int       `json:"exhale_seconds"`
	RestSeconds   int       `json:"rest_seconds"`
	Cycles        int       `json:"cycles"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p BreathingPattern) EntityType() EntityType { return BreathingPatternType }
func (p BreathingPattern) EntityID() string       { return p.ID }
func (p BreathingPattern) ModifiedAt() time.Time  { return p.UpdatedAt }

// CustomEmotion is a user-defined emotion category.
type CustomEmotion struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e CustomEmotion) EntityType() EntityType { return CustomEmotionType }
func (e CustomEmotion) EntityID() string       { return e.ID }
func (e CustomEmotion) ModifiedAt() time.Time  { return e.UpdatedAt }
