// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration for doodlemap's internal
// protocols, currently the service bridge in lib/ipc. Keeping the
// encoder and decoder modes here means both ends of the bridge encode
// identically.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same frame always produces the same bytes. The decoder ignores
// unknown fields, which lets a newer bridge add fields without breaking
// older clients.
//
// Frames are self-delimiting, so sockets use the stream form:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
