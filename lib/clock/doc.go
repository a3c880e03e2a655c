// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is the injectable time source behind the frame loop.
//
// The terminal front end paces frames with a Ticker and timestamps key
// events with Now. Production code takes Real(); tests take Fake() and
// drive frames one Advance at a time:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	model := termui.NewModel(session, termui.Options{Clock: fake})
//	// ... start the program ...
//	fake.WaitForTickers(1)      // the frame ticker is registered
//	fake.Advance(frameInterval) // exactly one frame
package clock
