// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "DOODLEMAP_CONFIG"

// Config is the master configuration for doodlemap.
type Config struct {
	// Roster configures the connection to the friend service.
	Roster RosterConfig `yaml:"roster"`

	// Archive selects the extdata archive holding the letters.
	Archive ArchiveConfig `yaml:"archive"`

	// UI tunes the interactive session.
	UI UIConfig `yaml:"ui"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`
}

// RosterConfig locates the friend service bridge.
type RosterConfig struct {
	// Network is "unix" or "tcp".
	// Default: unix
	Network string `yaml:"network"`

	// Address is the socket path or host:port of the bridge.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/doodlemap/frd.sock
	Address string `yaml:"address"`

	// Service is the service name requested during the bridge
	// handshake.
	// Default: frd:a
	Service string `yaml:"service"`
}

// ArchiveConfig locates the extdata dump.
type ArchiveConfig struct {
	// Root is the directory holding <media>/<extdata id>/ dumps.
	// Default: ${HOME}/.local/share/doodlemap/extdata
	Root string `yaml:"root"`

	// Media is nand, sd or gamecard.
	// Default: sd
	Media string `yaml:"media"`

	// ProgramID is the title whose extdata is scanned. YAML accepts
	// hex (0x00040000001A2E00).
	ProgramID uint64 `yaml:"program_id"`
}

// UIConfig tunes the remapping session.
type UIConfig struct {
	// PageSize is the number of list rows per page.
	// Default: 28
	PageSize int `yaml:"page_size"`

	// RepeatDelay is how many frames a held direction waits after the
	// first step.
	// Default: 20
	RepeatDelay int `yaml:"repeat_delay"`

	// RepeatRate is how many frames separate steps once repeating.
	// Default: 5
	RepeatRate int `yaml:"repeat_rate"`

	// FrameRate is frames per second.
	// Default: 60
	FrameRate int `yaml:"frame_rate"`

	// HoldWindow is the longest gap between key events that still
	// reads as terminal auto-repeat. It must exceed the terminal's
	// repeat interval and stay under RepeatDelay frames, or a released
	// key keeps stepping.
	// Default: 100ms
	HoldWindow string `yaml:"hold_window"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`

	// Output is a file receiving JSON log records while the
	// interactive session owns the terminal. Empty disables it.
	Output string `yaml:"output"`
}

// Default returns the default configuration. It points at the socket
// doodlemap-mock-frd listens on, so the tool runs without a file.
func Default() *Config {
	return &Config{
		Roster: RosterConfig{
			Network: "unix",
			Address: "${XDG_RUNTIME_DIR:-/tmp}/doodlemap/frd.sock",
			Service: "frd:a",
		},
		Archive: ArchiveConfig{
			Root:      "${HOME}/.local/share/doodlemap/extdata",
			Media:     "sd",
			ProgramID: 0x00040000001A2E00,
		},
		UI: UIConfig{
			PageSize:    28,
			RepeatDelay: 20,
			RepeatRate:  5,
			FrameRate:   60,
			HoldWindow:  "100ms",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Resolve picks the configuration source: flagPath if non-empty, then
// DOODLEMAP_CONFIG, then the defaults. Variables are expanded in every
// case.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// Load loads configuration from the file named by DOODLEMAP_CONFIG.
// It fails when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your doodlemap.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path over the
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Roster.Address = expandVars(c.Roster.Address, vars)
	c.Archive.Root = expandVars(c.Archive.Root, vars)
	c.Log.Output = expandVars(c.Log.Output, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, checking
// vars before the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{"unix", "tcp"}, c.Roster.Network) {
		errs = append(errs, fmt.Errorf("roster.network must be unix or tcp, got %q", c.Roster.Network))
	}
	if c.Roster.Address == "" {
		errs = append(errs, errors.New("roster.address is required"))
	}
	if c.Roster.Service == "" {
		errs = append(errs, errors.New("roster.service is required"))
	}

	if c.Archive.Root == "" {
		errs = append(errs, errors.New("archive.root is required"))
	}
	if !slices.Contains([]string{"nand", "sd", "sdmc", "gamecard", "card"}, c.Archive.Media) {
		errs = append(errs, fmt.Errorf("archive.media must be nand, sd or gamecard, got %q", c.Archive.Media))
	}
	if c.Archive.ProgramID == 0 {
		errs = append(errs, errors.New("archive.program_id is required"))
	}

	if c.UI.PageSize < 1 {
		errs = append(errs, fmt.Errorf("ui.page_size must be positive, got %d", c.UI.PageSize))
	}
	if c.UI.RepeatDelay < 1 {
		errs = append(errs, fmt.Errorf("ui.repeat_delay must be positive, got %d", c.UI.RepeatDelay))
	}
	if c.UI.RepeatRate < 1 {
		errs = append(errs, fmt.Errorf("ui.repeat_rate must be positive, got %d", c.UI.RepeatRate))
	}
	if c.UI.FrameRate < 1 || c.UI.FrameRate > 240 {
		errs = append(errs, fmt.Errorf("ui.frame_rate must be between 1 and 240, got %d", c.UI.FrameRate))
	}
	if hold, err := c.UI.HoldWindowDuration(); err != nil {
		errs = append(errs, err)
	} else if c.UI.RepeatDelay >= 1 {
		if delay := time.Duration(c.UI.RepeatDelay) * c.UI.FrameInterval(); hold >= delay {
			errs = append(errs, fmt.Errorf("ui.hold_window %s must be shorter than the repeat delay (%d frames, %s)", hold, c.UI.RepeatDelay, delay))
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// FrameInterval is the time between frames.
func (u UIConfig) FrameInterval() time.Duration {
	if u.FrameRate < 1 {
		return time.Second / 60
	}
	return time.Second / time.Duration(u.FrameRate)
}

// HoldWindowDuration parses HoldWindow.
func (u UIConfig) HoldWindowDuration() (time.Duration, error) {
	duration, err := time.ParseDuration(u.HoldWindow)
	if err != nil {
		return 0, fmt.Errorf("ui.hold_window: %w", err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("ui.hold_window must be positive, got %s", u.HoldWindow)
	}
	return duration, nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
