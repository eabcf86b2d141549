// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the sync engine and
// the EmotionAI backend.
//
// The primary abstraction is [RemoteDataSource], which decouples the engine
// from the REST protocol. The package ships an HTTP implementation
// ([NewHTTPRemoteDataSource]) built on resty, and two [CredentialProvider]
// implementations for the bearer token.
//
// Error values defined in errors.go are mapped from transport failures and
// HTTP status codes so that callers can use [errors.Is] for protocol-agnostic
// error handling, e.g. [IsNetworkError] to tell an unreachable backend from a
// rejected request.
package adapter

import (
	"context"

	"github.com/MKhiriev/emotion-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_data_source_mock.go -package=mock

// RemoteDataSource is the backend as seen by the sync engine. Implementations
// map transport-level errors to the sentinel values of this package.
type RemoteDataSource interface {
	// GetAll returns every entity of type t owned by the authenticated user.
	GetAll(ctx context.Context, t models.EntityType) ([]models.Payload, error)

	// Create stores a new entity and returns the backend's copy, which may
	// carry a server-assigned id. Returns [ErrConflict] (wrapped) if the
	// entity already exists.
	Create(ctx context.Context, p models.Payload) (models.Payload, error)

	// Update replaces an existing entity and returns the backend's copy.
	// Returns [ErrNotFound] (wrapped) if the entity does not exist.
	Update(ctx context.Context, p models.Payload) (models.Payload, error)

	// Delete removes an entity. Returns [ErrNotFound] (wrapped) if the entity
	// does not exist.
	Delete(ctx context.Context, t models.EntityType, id string) error

	// HealthCheck probes the unauthenticated health endpoint.
	HealthCheck(ctx context.Context) error
}

// CredentialProvider supplies the bearer token for authenticated requests.
type CredentialProvider interface {
	// Token returns a token believed to be valid.
	Token(ctx context.Context) (string, error)

	// Refresh discards the current token and obtains a new one. It is called
	// once after the backend answered 401.
	Refresh(ctx context.Context) (string, error)
}
