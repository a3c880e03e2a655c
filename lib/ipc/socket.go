// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/bureau-foundation/doodlemap/lib/codec"
)

// ErrClosed is returned by SendSyncRequest after Close.
var ErrClosed = errors.New("ipc: connection closed")

// maxBufferBytes bounds a single attached buffer in a bridge frame.
// The largest legitimate transfer is 100 friend info records.
const maxBufferBytes = 1 << 20

// openFrame is the first frame a client sends: it names the service
// the session is bound to. The bridge answers with a frame whose Error
// is empty on success.
type openFrame struct {
	Service string `cbor:"service"`
}

// frame carries one request or response across the bridge.
type frame struct {
	Words         []uint32 `cbor:"words"`
	StaticBuffers []uint32 `cbor:"static_buffers,omitempty"`
	Buffers       [][]byte `cbor:"buffers,omitempty"`

	// Error is set by the bridge when it could not deliver the
	// request to the service at all.
	Error string `cbor:"error,omitempty"`
}

// SocketConn is a Conn over the bridge protocol. One connection holds
// one service session; requests on it are strictly sequential.
type SocketConn struct {
	service string
	conn    net.Conn
	encoder *codec.Encoder
	decoder *codec.Decoder
}

// DialService connects to a bridge at network/address (typically
// "unix" and a socket path, or "tcp" and host:port) and opens a session
// with the named service. The dial and the open handshake honour ctx;
// later requests block until the bridge answers.
func DialService(ctx context.Context, network, address, service string) (*SocketConn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("connecting to bridge at %s: %w", address, err)
	}

	socketConn := &SocketConn{
		service: service,
		conn:    conn,
		encoder: codec.NewEncoder(conn),
		decoder: codec.NewDecoder(conn),
	}

	if err := socketConn.encoder.Encode(openFrame{Service: service}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening %s: %w", service, err)
	}
	var reply frame
	if err := socketConn.decoder.Decode(&reply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening %s: reading reply: %w", service, err)
	}
	if reply.Error != "" {
		conn.Close()
		return nil, fmt.Errorf("opening %s: %s", service, reply.Error)
	}
	return socketConn, nil
}

// SendSyncRequest ships the words and attached buffers, waits for the
// reply, and copies the reply back into buffer. Reply buffers are
// copied into the caller's existing slots so that slices handed out by
// Attach observe the service's writes.
func (c *SocketConn) SendSyncRequest(ctx context.Context, buffer *CommandBuffer) error {
	if c.conn == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	request := frame{
		Words:         buffer.Words[:],
		StaticBuffers: buffer.StaticBuffers[:],
		Buffers:       buffer.Buffers,
	}
	if err := c.encoder.Encode(request); err != nil {
		return fmt.Errorf("sending %s request: %w", c.service, err)
	}

	var reply frame
	if err := c.decoder.Decode(&reply); err != nil {
		return fmt.Errorf("reading %s reply: %w", c.service, err)
	}
	if reply.Error != "" {
		return fmt.Errorf("%s: bridge: %s", c.service, reply.Error)
	}
	return copyReply(buffer, reply)
}

// Close ends the service session.
func (c *SocketConn) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func copyReply(buffer *CommandBuffer, reply frame) error {
	if len(reply.Words) != MessageWords {
		return fmt.Errorf("reply has %d words, want %d", len(reply.Words), MessageWords)
	}
	if len(reply.Buffers) != len(buffer.Buffers) {
		return fmt.Errorf("reply has %d buffers, request attached %d", len(reply.Buffers), len(buffer.Buffers))
	}
	copy(buffer.Words[:], reply.Words)
	for index, data := range reply.Buffers {
		copy(buffer.Buffers[index], data)
	}
	return nil
}

// decodeRequest rebuilds a CommandBuffer from a request frame. Buffers
// are copied so the handler owns them.
func decodeRequest(request frame) (*CommandBuffer, error) {
	if len(request.Words) != MessageWords {
		return nil, fmt.Errorf("request has %d words, want %d", len(request.Words), MessageWords)
	}
	if len(request.StaticBuffers) > StaticBufferWords {
		return nil, fmt.Errorf("request has %d static buffer words, maximum %d", len(request.StaticBuffers), StaticBufferWords)
	}
	buffer := NewCommandBuffer()
	copy(buffer.Words[:], request.Words)
	copy(buffer.StaticBuffers[:], request.StaticBuffers)
	for index, data := range request.Buffers {
		if len(data) > maxBufferBytes {
			return nil, fmt.Errorf("buffer %d is %d bytes, maximum %d", index, len(data), maxBufferBytes)
		}
		buffer.Attach(append([]byte(nil), data...))
	}
	return buffer, nil
}
