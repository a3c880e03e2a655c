// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc models the device's synchronous service-call contract:
// a per-thread command buffer of 32-bit words, a header word encoding
// the command id and parameter counts, and translate descriptors that
// hand buffers to the service.
//
// The encodings here are bit-exact with the target services. Callers
// build requests with [MakeHeader], [StaticBufferDescriptor] and
// [MappedBufferDescriptor], then execute them through a [Conn]:
//
//	buffer := ipc.NewCommandBuffer()
//	buffer.Words[0] = ipc.MakeHeader(0x11, 2, 0)
//	...
//	err := conn.SendSyncRequest(ctx, buffer)
//
// A descriptor's address word cannot carry a host pointer across a
// process boundary, so in this package it carries the slot index of the
// referenced buffer within [CommandBuffer].Buffers. Transports move slot
// contents alongside the words.
//
// Two transports are provided: [Local] calls a [Handler] in-process
// (tests, fixtures), and [DialService] speaks the bridge protocol: a
// stream of CBOR frames over a Unix or TCP socket to a device-side
// bridge that performs the real call. [Server] is the bridge side of
// that protocol.
package ipc
