// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the local diagnostics API of the sync client.
//
// The API exposes the current sync state and its live stream, the
// dead-letter store, a manual full sync and conflict resolution. Request
// tracing, access logging and the optional bearer token check run in this
// package before a request reaches the sync engine.
package http
