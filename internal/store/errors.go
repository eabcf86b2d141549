// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by [EntityStore] implementations. Callers should
// use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when no record exists for the requested
	// (type, id).
	ErrRecordNotFound = errors.New("record was not found")

	// ErrRecordAlreadyExists is returned by Rename when the target id is
	// already taken.
	ErrRecordAlreadyExists = errors.New("record already exists")

	// ErrNilPayload is returned when a nil payload is saved.
	ErrNilPayload = errors.New("payload is nil")
)

// Low-level database operation errors. These are returned (or wrapped) by the
// sqlite repository when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when an INSERT, UPDATE or DELETE fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrBeginningTransaction is returned when a transaction cannot start.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing a transaction fails.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRows is returned when scanning a result row fails.
	ErrScanningRows = errors.New("failed to scan entity rows")
)
