// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the optional diagnostics HTTP listener of the sync
// client.
//
// The listener lives as long as the context passed to [Server.RunServer] and
// is shut down gracefully when that context ends.
package server
