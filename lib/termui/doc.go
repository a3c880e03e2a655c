// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package termui runs a [remap.Session] in a terminal.
//
// [Model] is a bubbletea model that turns the session's frame-driven
// design into a program: a [clock.Ticker] paces frames, each frame
// snapshots the keyboard into a [remap.Input] and calls
// [remap.Session.Step], and View renders the session's two regions
// with lipgloss, primary above secondary, followed by a status line.
//
// Terminals do not report key releases, only a first key event and
// then auto-repeat events while the key stays down. The key tracker
// treats an event as a press unless it follows another event for the
// same button within HoldWindow, in which case it is an auto-repeat
// and the button is held until HoldWindow passes without another. A
// tap is one press. The session's own repeat timing applies once
// auto-repeat starts, the same as with a device's key state.
//
// [LogHandler] routes slog records into the program so warnings show
// in the status line instead of tearing the alternate screen.
package termui
