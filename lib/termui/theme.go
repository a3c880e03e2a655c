// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/doodlemap/lib/remap"
)

// Theme is the colour palette. Colours are ANSI 256-colour codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// The picker banner, white on red like the device prompt.
	BannerForeground lipgloss.Color
	BannerBackground lipgloss.Color

	StatusInfo  lipgloss.Color
	StatusWarn  lipgloss.Color
	StatusError lipgloss.Color
}

// DefaultTheme suits dark terminals.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("243"),
	HeaderForeground: lipgloss.Color("75"),
	BorderColor:      lipgloss.Color("238"),
	HelpText:         lipgloss.Color("245"),
	BannerForeground: lipgloss.Color("15"),
	BannerBackground: lipgloss.Color("124"),
	StatusInfo:       lipgloss.Color("111"),
	StatusWarn:       lipgloss.Color("214"),
	StatusError:      lipgloss.Color("196"),
}

// Styles are a theme bound to a renderer.
type Styles struct {
	lines     map[remap.LineKind]lipgloss.Style
	separator lipgloss.Style
	status    map[slog.Level]lipgloss.Style
}

// NewRenderer returns a lipgloss renderer for output whose colour
// profile honours NO_COLOR and CLICOLOR_FORCE.
func NewRenderer(output io.Writer) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(output)
	renderer.SetColorProfile(termenv.EnvColorProfile())
	return renderer
}

// NewStyles builds the styles for theme. A nil renderer uses the
// lipgloss default.
func NewStyles(renderer *lipgloss.Renderer, theme Theme) Styles {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	base := renderer.NewStyle().Foreground(theme.NormalText)
	return Styles{
		lines: map[remap.LineKind]lipgloss.Style{
			remap.LineText:    base,
			remap.LineHeader:  base.Foreground(theme.HeaderForeground).Bold(true),
			remap.LineHovered: base.Reverse(true),
			remap.LineMarker:  base.Foreground(theme.FaintText),
			remap.LineBanner:  base.Foreground(theme.BannerForeground).Background(theme.BannerBackground).Bold(true),
			remap.LineHint:    base.Foreground(theme.HelpText),
		},
		separator: renderer.NewStyle().Foreground(theme.BorderColor),
		status: map[slog.Level]lipgloss.Style{
			slog.LevelInfo:  renderer.NewStyle().Foreground(theme.StatusInfo),
			slog.LevelWarn:  renderer.NewStyle().Foreground(theme.StatusWarn),
			slog.LevelError: renderer.NewStyle().Foreground(theme.StatusError).Bold(true),
		},
	}
}

func (s Styles) line(kind remap.LineKind) lipgloss.Style {
	if style, ok := s.lines[kind]; ok {
		return style
	}
	return s.lines[remap.LineText]
}

func (s Styles) statusStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return s.status[slog.LevelError]
	case level >= slog.LevelWarn:
		return s.status[slog.LevelWarn]
	default:
		return s.status[slog.LevelInfo]
	}
}
