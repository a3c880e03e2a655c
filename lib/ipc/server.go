// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/bureau-foundation/doodlemap/lib/codec"
)

// Server is the bridge side of the socket protocol. Each accepted
// connection opens one session with a registered service and then
// serves requests sequentially until the client hangs up.
type Server struct {
	// Services maps service names ("frd:a") to their handlers.
	Services map[string]Handler

	Logger *slog.Logger
}

// Serve accepts connections on listener until ctx is cancelled or the
// listener fails. It closes the listener and waits for in-flight
// sessions before returning. Cancellation is reported as a nil error.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var sessions sync.WaitGroup
	defer sessions.Wait()

	var connectionsMu sync.Mutex
	connections := make(map[net.Conn]struct{})

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
		connectionsMu.Lock()
		for conn := range connections {
			conn.Close()
		}
		connectionsMu.Unlock()
	})
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting bridge connection: %w", err)
		}

		// An Accept that completed while shutdown ran returns a
		// connection the shutdown sweep never saw.
		connectionsMu.Lock()
		if ctx.Err() != nil {
			connectionsMu.Unlock()
			conn.Close()
			return nil
		}
		connections[conn] = struct{}{}
		connectionsMu.Unlock()

		sessions.Add(1)
		go func() {
			defer sessions.Done()
			defer func() {
				connectionsMu.Lock()
				delete(connections, conn)
				connectionsMu.Unlock()
				conn.Close()
			}()
			if err := s.serveConn(conn); err != nil {
				logger.Warn("bridge session ended with error", "remote", conn.RemoteAddr().String(), "error", err)
			}
		}()
	}
}

func (s *Server) serveConn(conn net.Conn) error {
	encoder := codec.NewEncoder(conn)
	decoder := codec.NewDecoder(conn)

	var open openFrame
	if err := decoder.Decode(&open); err != nil {
		return fmt.Errorf("reading open frame: %w", err)
	}
	handler, ok := s.Services[open.Service]
	if !ok {
		return encoder.Encode(frame{Error: fmt.Sprintf("unknown service %q", open.Service)})
	}
	if err := encoder.Encode(frame{}); err != nil {
		return fmt.Errorf("acknowledging open: %w", err)
	}

	for {
		var request frame
		if err := decoder.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		buffer, err := decodeRequest(request)
		if err != nil {
			if encodeErr := encoder.Encode(frame{Error: err.Error()}); encodeErr != nil {
				return encodeErr
			}
			continue
		}

		handler.ServeIPC(buffer)

		reply := frame{
			Words:   buffer.Words[:],
			Buffers: buffer.Buffers,
		}
		if err := encoder.Encode(reply); err != nil {
			return fmt.Errorf("writing reply: %w", err)
		}
	}
}
