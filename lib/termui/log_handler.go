// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries a formatted record to the model's status line.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// LogHandler is a slog.Handler that delivers records into a bubbletea
// program as status-line messages. Records arriving before SetProgram
// are dropped.
//
// Handlers derived with WithAttrs or WithGroup share the program
// pointer, so one SetProgram call reaches all of them.
type LogHandler struct {
	level   slog.Leveler
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	groups  []string
}

// NewLogHandler creates a handler for records at or above level.
func NewLogHandler(level slog.Leveler) *LogHandler {
	return &LogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram starts delivery to program. Safe from any goroutine.
func (handler *LogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

// Enabled implements slog.Handler.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle implements slog.Handler. Delivery happens on its own
// goroutine: the session logs from inside Update, where a direct Send
// would wait on the event loop that is making the call.
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	message := logRecordMsg{Summary: handler.summarize(record), Level: record.Level}
	go program.Send(message)
	return nil
}

// summarize renders "message (key=value, ...)" with handler attributes
// first. Group names prefix record attribute keys.
func (handler *LogHandler) summarize(record slog.Record) string {
	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, attr.Key+"="+attr.Value.String())
	}
	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, prefix+attr.Key+"="+attr.Value.String())
		return true
	})
	if len(parts) == 0 {
		return record.Message
	}
	return record.Message + " (" + strings.Join(parts, ", ") + ")"
}

// WithAttrs implements slog.Handler.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append(slices.Clone(handler.attrs), attrs...),
		groups:  slices.Clone(handler.groups),
	}
}

// WithGroup implements slog.Handler.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	return &LogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   slices.Clone(handler.attrs),
		groups:  append(slices.Clone(handler.groups), name),
	}
}
