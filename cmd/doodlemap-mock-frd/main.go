// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// doodlemap-mock-frd stands in for the friend service bridge. It
// serves the roster from a YAML fixture over the same socket protocol
// doodlemap dials, so the tool can run without a device.
//
// With --seed-archive it also writes the fixture's letters as an
// extdata dump under the given root, laid out the way doodlemap reads
// it. --seed-only exits after seeding.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/doodlemap/cmd/doodlemap/cli"
	"github.com/bureau-foundation/doodlemap/lib/config"
	"github.com/bureau-foundation/doodlemap/lib/extdata"
	"github.com/bureau-foundation/doodlemap/lib/ipc"
	"github.com/bureau-foundation/doodlemap/lib/process"
	"github.com/bureau-foundation/doodlemap/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		rosterPath  string
		seedArchive string
		seedOnly    bool
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("doodlemap-mock-frd", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "doodlemap config naming the socket and archive (default: $"+config.EnvironmentVariable+" or built-in defaults)")
	flagSet.StringVar(&rosterPath, "roster", "", "YAML roster fixture (required)")
	flagSet.StringVar(&seedArchive, "seed-archive", "", "write the fixture's letters as an extdata dump under this root")
	flagSet.BoolVar(&seedOnly, "seed-only", false, "exit after seeding instead of serving")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return cli.Validation("%w", err)
	}
	if showVersion {
		fmt.Printf("doodlemap-mock-frd %s\n", version.Full())
		return nil
	}
	if rosterPath == "" {
		return cli.Validation("--roster is required")
	}
	if seedOnly && seedArchive == "" {
		return cli.Validation("--seed-only needs --seed-archive")
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return cli.Validation("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Validation("invalid config: %w", err)
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return cli.Validation("%w", err)
	}
	logger := cli.NewCommandLogger(level).With("command", "doodlemap-mock-frd")

	fixture, err := LoadFixture(rosterPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cli.NotFound("roster fixture: %w", err)
		}
		return cli.Validation("roster fixture: %w", err)
	}

	if seedArchive != "" {
		media, err := extdata.ParseMediaType(cfg.Archive.Media)
		if err != nil {
			return cli.Validation("%w", err)
		}
		selector := extdata.Selector{Media: media, ProgramID: cfg.Archive.ProgramID}
		storage := extdata.DirStorage{Root: seedArchive}
		written, err := fixture.Seed(storage, selector)
		if err != nil {
			return cli.Internal("seeding archive: %w", err)
		}
		logger.Info("archive seeded", "letters", written, "directory", storage.Dir(selector))
		if seedOnly {
			return nil
		}
	}

	service, err := fixture.Service()
	if err != nil {
		return cli.Validation("roster fixture: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := listen(cfg.Roster.Network, cfg.Roster.Address)
	if err != nil {
		return cli.Internal("listening on %s: %w", cfg.Roster.Address, err)
	}

	server := &ipc.Server{
		Services: map[string]ipc.Handler{cfg.Roster.Service: &serialized{handler: service}},
		Logger:   logger,
	}
	logger.Info("mock friend service running",
		"network", cfg.Roster.Network,
		"address", cfg.Roster.Address,
		"service", cfg.Roster.Service,
		"friends", len(fixture.Friends),
	)
	if err := server.Serve(ctx, listener); err != nil {
		return cli.Internal("serving: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

// listen opens the bridge listener. A unix socket path left over from
// an earlier run is replaced.
func listen(network, address string) (net.Listener, error) {
	if network == "unix" {
		if err := os.MkdirAll(filepath.Dir(address), 0o755); err != nil {
			return nil, err
		}
		if err := os.Remove(address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return net.Listen(network, address)
}


// serialized runs one request at a time across sessions. The fake
// service records calls without locking.
type serialized struct {
	mu      sync.Mutex
	handler ipc.Handler
}

func (s *serialized) ServeIPC(buffer *ipc.CommandBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.ServeIPC(buffer)
}
