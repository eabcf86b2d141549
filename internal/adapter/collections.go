// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"fmt"

	"github.com/MKhiriev/emotion-sync/models"
)

const (
	apiPrefix    = "/v1/api"
	healthPath   = "/health/"
	loginPath    = apiPrefix + "/auth/login"
	listPath     = apiPrefix + "/{collection}/"
	resourcePath = apiPrefix + "/{collection}/{id}"
)

var collections = map[models.EntityType]string{
	models.EmotionalRecordType:  "emotional_records",
	models.BreathingSessionType: "breathing_sessions",
	models.BreathingPatternType: "breathing_patterns",
	models.CustomEmotionType:    "custom_emotions",
}

func collectionOf(t models.EntityType) (string, error) {
	c, ok := collections[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, t)
	}
	return c, nil
}
