// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidID         = errors.New("invalid entity id")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrMissingPayload    = errors.New("payload is required")
	ErrPayloadMismatch   = errors.New("payload does not match item type or id")
	ErrEmptyEmotion      = errors.New("emotion is required")
	ErrInvalidIntensity  = errors.New("intensity must be between 1 and 10")
	ErrEmptyPatternName  = errors.New("pattern name is required")
	ErrInvalidDuration   = errors.New("duration must not be negative")
	ErrInvalidRating     = errors.New("rating must be between 0 and 5")
	ErrEmptyName         = errors.New("name is required")
	ErrInvalidPhase      = errors.New("breathing phases must not be negative")
	ErrEmptyCycle        = errors.New("breathing pattern must have a non-empty cycle")
	ErrInvalidCycles     = errors.New("cycles must be positive")
	ErrInvalidColor      = errors.New("color must be a #RRGGBB hex value")
)
