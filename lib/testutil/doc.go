// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for doodlemap packages.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets, whose paths are limited to 108 bytes.
//
// [RequireReceive] wraps the select-with-timeout pattern so tests that
// wait on a goroutine, such as the ipc bridge server, never hang.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
