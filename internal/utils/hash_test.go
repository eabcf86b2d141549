// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"testing"

	"github.com/MKhiriev/emotion-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitHasherPoolAndHash(t *testing.T) {
	key := "secret-key"
	InitHasherPool(key)

	data := []byte("test-data")

	sum1 := Hash(data)
	sum2 := Hash(data)

	if len(sum1) == 0 {
		t.Fatal("hash result is empty")
	}

	if !bytes.Equal(sum1, sum2) {
		t.Fatal("hash must be deterministic for the same input")
	}

	// verify against direct HMAC computation
	h := hmac.New(sha256.New, []byte(key))
	h.Write(data)
	expected := h.Sum(nil)

	if !bytes.Equal(sum1, expected) {
		t.Fatalf("unexpected hash value\nwant: %x\ngot:  %x", expected, sum1)
	}
}

func TestHashString_DependsOnKey(t *testing.T) {
	a := HashString("payload", "k1")
	b := HashString("payload", "k2")

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, HashString("payload", "k1"))
}

func TestHashPayload_StructuralEquality(t *testing.T) {
	r1 := models.EmotionalRecord{ID: "e1", Emotion: "calm", Intensity: 3, Triggers: []string{"work"}}
	r2 := models.EmotionalRecord{ID: "e1", Emotion: "calm", Intensity: 3, Triggers: []string{"work"}}
	r3 := models.EmotionalRecord{ID: "e1", Emotion: "calm", Intensity: 4, Triggers: []string{"work"}}

	h1, err := HashPayload(r1)
	require.NoError(t, err)
	h2, err := HashPayload(r2)
	require.NoError(t, err)
	h3, err := HashPayload(r3)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "distinct values with equal content must hash equally")
	assert.NotEqual(t, h1, h3)
}

func TestHashPayload_Unencodable(t *testing.T) {
	_, err := HashPayload(make(chan int))
	assert.Error(t, err)
	assert.Empty(t, MustHashPayload(make(chan int)))
}
