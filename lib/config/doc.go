// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for doodlemap.
//
// Configuration comes from at most one file, named by the --config
// flag (via [LoadFile]) or the DOODLEMAP_CONFIG environment variable
// (via [Load]). There is no ~/.config discovery and no file search;
// with neither set, [Resolve] returns [Default]. Values in the file
// overlay the defaults field by field.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${XDG_RUNTIME_DIR} and ${VAR:-default} patterns are
// expanded. No environment variable overrides a config value directly.
//
// Key exports:
//
//   - [Config] -- master struct with Roster, Archive, UI and Log sections
//   - [Default] -- returns a Config that works against the mock service
//   - [Resolve], [Load] and [LoadFile] -- the entry points for loading
//
// This package depends on no other doodlemap packages.
package config
