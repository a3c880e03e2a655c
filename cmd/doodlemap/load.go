// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/bureau-foundation/doodlemap/cmd/doodlemap/cli"
	"github.com/bureau-foundation/doodlemap/lib/config"
	"github.com/bureau-foundation/doodlemap/lib/extdata"
	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/ipc"
	"github.com/bureau-foundation/doodlemap/lib/letter"
	"github.com/bureau-foundation/doodlemap/lib/reconcile"
)

// progressInterval is how many letters pass between progress records.
const progressInterval = 250

// loaded is everything the session starts from.
type loaded struct {
	roster     frd.Roster
	collection reconcile.Collection
	senders    []reconcile.Sender
	mapping    *reconcile.Mapping
}

// load reads the roster, then the letters, then pre-fills the mapping.
func load(ctx context.Context, cfg *config.Config, logger *slog.Logger) (loaded, error) {
	media, err := extdata.ParseMediaType(cfg.Archive.Media)
	if err != nil {
		return loaded{}, cli.Validation("%w", err)
	}
	selector := extdata.Selector{Media: media, ProgramID: cfg.Archive.ProgramID}

	logger.Info("reading friend list", "network", cfg.Roster.Network, "address", cfg.Roster.Address)
	client := frd.Client{
		Dial: func(ctx context.Context) (ipc.Conn, error) {
			return ipc.DialService(ctx, cfg.Roster.Network, cfg.Roster.Address, cfg.Roster.Service)
		},
		Logger: logger,
	}
	roster, err := client.LoadRoster(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return loaded{}, cli.Cancelled(err)
		}
		return loaded{}, cli.Internal("reading friend list: %w", err).
			WithHint("check that the friend service bridge is listening on " + cfg.Roster.Address)
	}
	logger.Info("friend list read", "entries", roster.Len())

	storage := extdata.DirStorage{Root: cfg.Archive.Root}
	logger.Info("reading letters", "archive", selector.String(), "directory", storage.Dir(selector))
	records := extdata.Scan(ctx, storage, selector, letter.Decode)
	collection, err := reconcile.Collect(records, func(read int) {
		if read%progressInterval == 0 {
			logger.Info("reading letters", "read", read)
		}
	})
	switch {
	case err != nil && ctx.Err() != nil:
		return loaded{}, cli.Cancelled(err)
	case errors.Is(err, fs.ErrNotExist):
		return loaded{}, cli.NotFound("no letter archive for %s: %w", selector, err).
			WithHint("dump the extdata under " + cfg.Archive.Root + " or seed one with doodlemap-mock-frd --seed-archive")
	case err != nil:
		return loaded{}, cli.Internal("reading letters: %w", err)
	}

	senders := reconcile.Senders(collection.Notes)
	mapping := reconcile.AutoMatch(roster, collection.Notes)
	logger.Info("letters read",
		"letters", len(collection.Notes),
		"duplicates", collection.Duplicates,
		"senders", len(senders),
		"auto_matched", mapping.Len(),
	)

	return loaded{roster: roster, collection: collection, senders: senders, mapping: mapping}, nil
}
