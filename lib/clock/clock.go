// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the subset of the time package the frame loop uses.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a Ticker firing every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C, a channel of capacity 1. Ticks the
// consumer is too slow to take are dropped, as with time.Ticker.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop ends delivery. C is not closed.
func (t *Ticker) Stop() { t.stop() }
