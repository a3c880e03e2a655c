// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package result defines the error vocabulary shared by the platform
// clients: result codes returned by the device's system services, the
// fatal [ServiceError] raised for any nonzero code, and the
// [DecodeError] raised when a record's bytes fail to parse.
//
// Whether a DecodeError is fatal depends on the caller. The roster
// client drops the offending contact; the archive scanner ends the
// iteration with it.
//
// This package has no doodlemap-internal dependencies.
package result
