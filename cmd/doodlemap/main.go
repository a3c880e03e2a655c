// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// doodlemap reconciles Swapdoodle letters with the friend list. It
// reads the roster from the friend service bridge and the letters from
// an extdata dump, maps each sender to a friend whose avatar was made
// on the same console, then opens an interactive session where the
// operator reviews and corrects the mapping. On finish it prints the
// final mapping.
//
// Quitting from inside the friend picker abandons the session: nothing
// is printed and the exit status is 130.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/doodlemap/cmd/doodlemap/cli"
	"github.com/bureau-foundation/doodlemap/lib/config"
	"github.com/bureau-foundation/doodlemap/lib/process"
	"github.com/bureau-foundation/doodlemap/lib/remap"
	"github.com/bureau-foundation/doodlemap/lib/termui"
	"github.com/bureau-foundation/doodlemap/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// flags holds the command line. Override fields apply only when the
// flag was given.
type flags struct {
	configPath  string
	network     string
	address     string
	archiveRoot string
	media       string
	programID   uint64
	logLevel    string
	logOutput   string
	dryRun      bool
	showVersion bool
	help        bool
}

func newFlagSet(values *flags) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("doodlemap", pflag.ContinueOnError)
	flagSet.StringVar(&values.configPath, "config", "", "path to the YAML config file (default: $"+config.EnvironmentVariable+" or built-in defaults)")
	flagSet.StringVar(&values.network, "network", "", "friend service bridge network: unix or tcp")
	flagSet.StringVar(&values.address, "address", "", "friend service bridge socket path or host:port")
	flagSet.StringVar(&values.archiveRoot, "archive-root", "", "directory holding <media>/<extdata id> dumps")
	flagSet.StringVar(&values.media, "media", "", "archive media: nand, sd or gamecard")
	flagSet.Uint64Var(&values.programID, "program-id", 0, "title whose extdata holds the letters (hex with 0x)")
	flagSet.StringVar(&values.logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.StringVar(&values.logOutput, "log-output", "", "write JSON log records to this file while the session runs")
	flagSet.BoolVar(&values.dryRun, "dry-run", false, "print the automatic mapping without opening the session")
	flagSet.BoolVar(&values.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&values.help, "help", "h", false, "show help")
	return flagSet
}

// apply copies the flags that were given onto cfg.
func (values *flags) apply(flagSet *pflag.FlagSet, cfg *config.Config) {
	if flagSet.Changed("network") {
		cfg.Roster.Network = values.network
	}
	if flagSet.Changed("address") {
		cfg.Roster.Address = values.address
	}
	if flagSet.Changed("archive-root") {
		cfg.Archive.Root = values.archiveRoot
	}
	if flagSet.Changed("media") {
		cfg.Archive.Media = values.media
	}
	if flagSet.Changed("program-id") {
		cfg.Archive.ProgramID = values.programID
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = values.logLevel
	}
	if flagSet.Changed("log-output") {
		cfg.Log.Output = values.logOutput
	}
}

func run() error {
	var values flags
	flagSet := newFlagSet(&values)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return cli.Validation("%w", err)
	}
	if values.help {
		printHelp(flagSet)
		return nil
	}
	if values.showVersion {
		fmt.Printf("doodlemap %s\n", version.Full())
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}

	cfg, err := config.Resolve(values.configPath)
	if err != nil {
		return cli.Validation("loading config: %w", err)
	}
	values.apply(flagSet, cfg)
	if err := cfg.Validate(); err != nil {
		return cli.Validation("invalid config: %w", err)
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return cli.Validation("%w", err)
	}
	holdWindow, err := cfg.UI.HoldWindowDuration()
	if err != nil {
		return cli.Validation("%w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cli.NewCommandLogger(level).With("command", "doodlemap")

	state, err := load(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if values.dryRun {
		return writeSummary(os.Stdout, state.roster, state.senders, state.mapping)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return cli.Validation("the remapping session needs a terminal").
			WithHint("use --dry-run to print the automatic mapping non-interactively")
	}

	session, err := runSession(ctx, cfg, state, level, holdWindow)
	if err != nil {
		return err
	}
	return writeSummary(os.Stdout, state.roster, state.senders, session.Mapping())
}

// runSession runs the interactive session to completion. Log records
// go to the status line and, with log.output set, to a JSON file.
func runSession(ctx context.Context, cfg *config.Config, state loaded, level slog.Level, holdWindow time.Duration) (*remap.Session, error) {
	statusHandler := termui.NewLogHandler(max(level, slog.LevelInfo))
	var handler slog.Handler = statusHandler
	if cfg.Log.Output != "" {
		fileHandler, closeFile, err := cli.OpenFileLogHandler(cfg.Log.Output)
		if err != nil {
			return nil, cli.Validation("cannot open log file %s: %w", cfg.Log.Output, err)
		}
		defer closeFile()
		handler = cli.FanoutHandler{statusHandler, fileHandler}
	}
	logger := slog.New(handler).With("command", "doodlemap")

	session := remap.NewSession(state.roster, state.senders, state.mapping, remap.Options{
		PageSize:    cfg.UI.PageSize,
		RepeatDelay: cfg.UI.RepeatDelay,
		RepeatRate:  cfg.UI.RepeatRate,
		Label:       termui.DefaultKeyMap.Label,
		Logger:      logger,
	})
	styles := termui.NewStyles(termui.NewRenderer(os.Stdout), termui.DefaultTheme)
	model := termui.NewModel(session, termui.Options{
		FrameInterval: cfg.UI.FrameInterval(),
		HoldWindow:    holdWindow,
		Styles:        &styles,
	})

	err := termui.Run(ctx, model, statusHandler, tea.WithAltScreen())
	switch {
	case errors.Is(err, remap.ErrCancelled):
		return nil, cli.Cancelled(errors.New("session abandoned; no mapping applied"))
	case errors.Is(err, tea.ErrProgramKilled), errors.Is(err, context.Canceled):
		return nil, cli.Cancelled(errors.New("interrupted; no mapping applied"))
	case err != nil:
		return nil, cli.Internal("running session: %w", err)
	}
	return session, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `doodlemap: map Swapdoodle letter senders to friends.

Reads the friend list over the friend service bridge and the letters
from an extdata dump, pre-fills the mapping by matching avatar
consoles, and opens an interactive session to review it.

Keys:
  up/down, k/j   move
  enter          pick the friend for the hovered sender / confirm
  esc            leave the picker without changes
  x              clear the sender's mapping
  q              finish (from the picker: abandon, exit status 130)

Usage:
  doodlemap [flags]

Examples:
  # Against a local mock bridge and a seeded dump
  doodlemap-mock-frd --roster roster.yaml --seed-archive ~/.local/share/doodlemap/extdata &
  doodlemap

  # Print the automatic mapping only
  doodlemap --dry-run --media sd

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
