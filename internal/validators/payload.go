// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"

	"github.com/MKhiriev/emotion-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	FieldID          = "id"
	FieldEmotion     = "emotion"
	FieldIntensity   = "intensity"
	FieldPatternName = "pattern_name"
	FieldDuration    = "duration"
	FieldRating      = "rating"
	FieldName        = "name"
	FieldPhases      = "phases"
	FieldCycles      = "cycles"
	FieldColor       = "color"
)

const (
	minIntensity = 1
	maxIntensity = 10
	maxRating    = 5
)

// PayloadValidator checks entity payloads and sync items before they are
// persisted and queued.
type PayloadValidator struct{}

// NewPayloadValidator returns a [Validator] for entity payloads.
func NewPayloadValidator() Validator {
	return &PayloadValidator{}
}

// Validate dispatches on the dynamic type of obj. Supported types are the
// four entity payloads (value or pointer) and [models.SyncItem].
//
// Returns ErrUnsupportedType for anything else. Optional fields restrict
// validation to the named subset; when omitted all fields of the type are
// validated.
func (v *PayloadValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.EmotionalRecord:
		return v.validateEmotionalRecord(value, fields...)
	case *models.EmotionalRecord:
		return v.validateEmotionalRecord(*value, fields...)

	case models.BreathingSession:
		return v.validateBreathingSession(value, fields...)
	case *models.BreathingSession:
		return v.validateBreathingSession(*value, fields...)

	case models.BreathingPattern:
		return v.validateBreathingPattern(value, fields...)
	case *models.BreathingPattern:
		return v.validateBreathingPattern(*value, fields...)

	case models.CustomEmotion:
		return v.validateCustomEmotion(value, fields...)
	case *models.CustomEmotion:
		return v.validateCustomEmotion(*value, fields...)

	case models.SyncItem:
		return v.validateSyncItem(ctx, value)
	case *models.SyncItem:
		return v.validateSyncItem(ctx, *value)

	default:
		return ErrUnsupportedType
	}
}

// validateSyncItem checks the envelope of a queued mutation. Create and
// update carry a payload of the item's type and id; delete needs none.
func (v *PayloadValidator) validateSyncItem(ctx context.Context, item models.SyncItem) error {
	if !item.Type.Valid() {
		return ErrInvalidEntityType
	}
	if item.ID == "" {
		return ErrInvalidID
	}
	if !item.Operation.Valid() {
		return ErrInvalidOperation
	}
	if item.Operation == models.OperationDelete {
		return nil
	}

	if item.Payload == nil {
		return ErrMissingPayload
	}
	if item.Payload.EntityType() != item.Type || item.Payload.EntityID() != item.ID {
		return ErrPayloadMismatch
	}

	return v.Validate(ctx, item.Payload)
}

func (v *PayloadValidator) validateEmotionalRecord(r models.EmotionalRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldEmotion, FieldIntensity}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if r.ID == "" {
				return ErrInvalidID
			}
		case FieldEmotion:
			if r.Emotion == "" {
				return ErrEmptyEmotion
			}
		case FieldIntensity:
			if r.Intensity < minIntensity || r.Intensity > maxIntensity {
				return ErrInvalidIntensity
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *PayloadValidator) validateBreathingSession(s models.BreathingSession, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldPatternName, FieldDuration, FieldRating}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if s.ID == "" {
				return ErrInvalidID
			}
		case FieldPatternName:
			if s.PatternName == "" {
				return ErrEmptyPatternName
			}
		case FieldDuration:
			if s.DurationSeconds < 0 {
				return ErrInvalidDuration
			}
		case FieldRating:
			if s.Rating < 0 || s.Rating > maxRating {
				return ErrInvalidRating
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *PayloadValidator) validateBreathingPattern(p models.BreathingPattern, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldName, FieldPhases, FieldCycles}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if p.ID == "" {
				return ErrInvalidID
			}
		case FieldName:
			if p.Name == "" {
				return ErrEmptyName
			}
		case FieldPhases:
			if p.InhaleSeconds < 0 || p.HoldSeconds < 0 || p.ExhaleSeconds < 0 || p.RestSeconds < 0 {
				return ErrInvalidPhase
			}
			if p.InhaleSeconds+p.HoldSeconds+p.ExhaleSeconds+p.RestSeconds == 0 {
				return ErrEmptyCycle
			}
		case FieldCycles:
			if p.Cycles <= 0 {
				return ErrInvalidCycles
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *PayloadValidator) validateCustomEmotion(e models.CustomEmotion, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldName, FieldColor}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if e.ID == "" {
				return ErrInvalidID
			}
		case FieldName:
			if e.Name == "" {
				return ErrEmptyName
			}
		case FieldColor:
			if !isHexColor(e.Color) {
				return ErrInvalidColor
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
