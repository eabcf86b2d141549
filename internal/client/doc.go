// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the runtime of the sync client process.
//
// It starts the background workers (connectivity monitor and sync engine),
// serves the optional diagnostics listener and releases the local stores on
// exit.
package client
