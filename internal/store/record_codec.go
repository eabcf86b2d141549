// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/models"
)

// encodePayload returns the stored JSON and content hash of p.
func encodePayload(p models.Payload) ([]byte, string, error) {
	if p == nil {
		return nil, "", ErrNilPayload
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s payload: %w", p.EntityType(), err)
	}

	hash, err := utils.HashPayload(p)
	if err != nil {
		return nil, "", err
	}

	return data, hash, nil
}

func finishRecord(r *models.Record) {
	r.Synced = !r.Deleted && r.Hash == r.SyncedHash
}
