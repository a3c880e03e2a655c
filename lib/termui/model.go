// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/doodlemap/lib/clock"
	"github.com/bureau-foundation/doodlemap/lib/remap"
)

// DefaultFrameInterval is sixty frames per second.
const DefaultFrameInterval = time.Second / 60

// statusLifetime is how long a log record stays in the status line.
const statusLifetime = 5 * time.Second

// minimumWidth keeps the separators as wide as a sender row when the
// terminal size is not known yet.
const minimumWidth = 49

// frameMsg is one frame tick.
type frameMsg time.Time

// Options configures a Model. Zero fields take defaults.
type Options struct {
	Clock         clock.Clock
	FrameInterval time.Duration
	HoldWindow    time.Duration

	// Keys defaults to DefaultKeyMap.
	Keys *KeyMap

	// Styles defaults to DefaultTheme on the default renderer.
	Styles *Styles
}

// Model is the bubbletea model driving a remap.Session.
type Model struct {
	session *remap.Session
	screen  *remap.Screen
	keys    KeyMap
	styles  Styles
	clock   clock.Clock
	tracker *keyTracker

	ticker   *clock.Ticker
	done     chan struct{}
	stopOnce *sync.Once

	width int

	status       string
	statusLevel  slog.Level
	statusFrames int
	statusSpan   int

	frames int
}

// NewModel prepares a model for session and starts its frame ticker.
// Call Stop if the model is discarded without being run to completion.
func NewModel(session *remap.Session, options Options) Model {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.FrameInterval <= 0 {
		options.FrameInterval = DefaultFrameInterval
	}
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}
	var styles Styles
	if options.Styles != nil {
		styles = *options.Styles
	} else {
		styles = NewStyles(nil, DefaultTheme)
	}

	return Model{
		session:    session,
		screen:     &remap.Screen{},
		keys:       keys,
		styles:     styles,
		clock:      options.Clock,
		tracker:    newKeyTracker(options.HoldWindow),
		ticker:     options.Clock.NewTicker(options.FrameInterval),
		done:       make(chan struct{}),
		stopOnce:   &sync.Once{},
		statusSpan: max(1, int(statusLifetime/options.FrameInterval)),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return model.waitFrame()
}

// waitFrame returns a tea.Cmd that blocks until the next tick, or
// returns nil once the model has stopped.
func (model Model) waitFrame() tea.Cmd {
	ticks, done := model.ticker.C, model.done
	return func() tea.Msg {
		select {
		case tick := <-ticks:
			return frameMsg(tick)
		case <-done:
			return nil
		}
	}
}

// Stop releases the frame ticker. Safe to call more than once.
func (model Model) Stop() {
	model.stopOnce.Do(func() {
		model.ticker.Stop()
		close(model.done)
	})
}

// Frames is the number of frames stepped.
func (model Model) Frames() int { return model.frames }

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case frameMsg:
		return model.step()

	case tea.KeyMsg:
		if buttons := model.keys.Button(message); buttons != 0 {
			model.tracker.observe(buttons, model.clock.Now())
		}

	case tea.WindowSizeMsg:
		model.width = message.Width

	case logRecordMsg:
		model.status = message.Summary
		model.statusLevel = message.Level
		model.statusFrames = model.statusSpan
	}
	return model, nil
}

func (model Model) step() (tea.Model, tea.Cmd) {
	model.frames++
	input := model.tracker.frame(model.clock.Now())
	state := model.session.Step(remap.Frame{Input: input, Screen: model.screen})

	if model.statusFrames > 0 {
		model.statusFrames--
		if model.statusFrames == 0 {
			model.status = ""
		}
	}

	if state.Finished() {
		model.Stop()
		return model, tea.Quit
	}
	return model, model.waitFrame()
}

// View implements tea.Model. A finished session renders nothing so the
// terminal is left clean.
func (model Model) View() string {
	if model.session.State().Finished() {
		return ""
	}
	width := max(model.width, minimumWidth)
	separator := model.styles.separator.Render(strings.Repeat("─", width))

	var sections []string
	sections = append(sections, model.renderRegion(&model.screen.Primary, width))
	sections = append(sections, separator)
	sections = append(sections, model.renderRegion(&model.screen.Secondary, width))
	sections = append(sections, separator)
	if model.status != "" {
		summary := ansi.Truncate(model.status, width, "…")
		sections = append(sections, model.styles.statusStyle(model.statusLevel).Render(summary))
	} else {
		sections = append(sections, "")
	}
	return strings.Join(sections, "\n")
}

// renderRegion styles each line, padded to width so reversed and
// banner rows span the terminal.
func (model Model) renderRegion(region *remap.Region, width int) string {
	lines := region.Lines()
	rendered := make([]string, len(lines))
	for index, line := range lines {
		text := ansi.Truncate(line.Text, width, "…")
		text += strings.Repeat(" ", width-ansi.StringWidth(text))
		rendered[index] = model.styles.line(line.Kind).Render(text)
	}
	return strings.Join(rendered, "\n")
}

// Run runs model as a bubbletea program until the session finishes or
// ctx is cancelled. handler, if non-nil, delivers log records to the
// program while it runs. The result is the session's error:
// remap.ErrCancelled when the operator quit from the picker.
func Run(ctx context.Context, model Model, handler *LogHandler, options ...tea.ProgramOption) error {
	defer model.Stop()

	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, options...)...)
	if handler != nil {
		handler.SetProgram(program)
		defer handler.SetProgram(nil)
	}
	if _, err := program.Run(); err != nil {
		return err
	}
	return model.session.Err()
}
