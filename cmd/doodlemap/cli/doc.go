// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the command-line plumbing shared by doodlemap and
// doodlemap-mock-frd: categorized errors, exit statuses, and the
// command logger.
//
// Commands return errors from run() and hand them to process.Fatal,
// which prints the message and exits with the status chosen by any
// ExitCode method in the chain. Input problems are Validation errors;
// failures talking to the friend service or reading the archive are
// Internal errors; an operator abandoning the session is Cancelled.
package cli
