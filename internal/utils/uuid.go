// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import "github.com/google/uuid"

// conflictNamespace scopes deterministic conflict identifiers.
var conflictNamespace = uuid.MustParse("5b0f3c2e-8f53-4d4b-9a0e-3c1f7f0d2a61")

// UUIDGenerator produces time-ordered identifiers for queue items and
// records created offline.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7, falling back to a random UUIDv4 if the clock
// source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// DeterministicID returns a name-based UUIDv5 derived from parts. Equal parts
// always yield the same id.
func DeterministicID(parts ...string) string {
	name := make([]byte, 0, 64)
	for i, p := range parts {
		if i > 0 {
			name = append(name, 0)
		}
		name = append(name, p...)
	}
	return uuid.NewSHA1(conflictNamespace, name).String()
}
