// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import "context"

// Conn is an open session handle to one system service.
//
// SendSyncRequest blocks until the service has answered; there is no
// timeout. On return the response occupies buffer.Words and any
// writable buffers have been filled. A non-nil error means the request
// never completed (transport failure); a service-level failure is
// reported in the response's result word instead.
type Conn interface {
	SendSyncRequest(ctx context.Context, buffer *CommandBuffer) error
	Close() error
}

// Handler executes a request in place, overwriting buffer.Words with
// the response and writing into the referenced buffers.
type Handler interface {
	ServeIPC(buffer *CommandBuffer)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(buffer *CommandBuffer)

// ServeIPC calls f(buffer).
func (f HandlerFunc) ServeIPC(buffer *CommandBuffer) { f(buffer) }

// Local returns a Conn that dispatches straight to handler in the
// calling goroutine.
func Local(handler Handler) Conn {
	return &localConn{handler: handler}
}

type localConn struct {
	handler Handler
	closed  bool
}

func (c *localConn) SendSyncRequest(ctx context.Context, buffer *CommandBuffer) error {
	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.handler.ServeIPC(buffer)
	return nil
}

func (c *localConn) Close() error {
	c.closed = true
	return nil
}
