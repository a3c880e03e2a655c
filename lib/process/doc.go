// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers for doodlemap binaries:
// reporting an error from run() to stderr, where the structured logger
// may not exist yet, and choosing the exit status.
//
// An error that carries an ExitCode() int method anywhere in its chain
// picks the status; everything else exits 1.
package process
