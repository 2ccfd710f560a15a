// Copyright 2026 The PDB Authors
// This file is part of pdb.
//
// pdb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pdb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with pdb. If not, see <http://www.gnu.org/licenses/>.

// Package config loads the worker's TOML configuration file (spec.md §6's
// `-f <config>` flag) and holds the settings that aren't already one of
// the worker binary's own command-line flags.
package config

import (
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/pelletier/go-toml/v2"
)

// Config is the worker process's file-backed configuration. Anything also
// settable on the command line (spec.md §6's letter-flag table) is
// overridden by the flag when both are present; Load never sees the
// flags, so that precedence is applied by the caller in cmd/pdbd.
type Config struct {
	Group          string `toml:"group"`
	User           string `toml:"user"`
	InterfaceAddr  string `toml:"interface_addr"`
	Procs          int    `toml:"procs"`
	LogLevel       string `toml:"log_level"`
	NetLogLevel    string `toml:"net_log_level"`
	NoCoreDumps    bool   `toml:"no_core_dumps"`

	// SortWindow bounds how much of a sort key's candidate set the Read
	// Engine's SortContext (pdb/read) will hold in memory before a match
	// is rejected with TOO_LARGE (spec.md §7).
	SortWindow datasize.ByteSize `toml:"sort_window"`

	// BadCacheBudget bounds the per-constraint negative memo (spec.md §9
	// Design Notes) each Read-Set Context keeps while scanning.
	BadCacheBudget datasize.ByteSize `toml:"bad_cache_budget"`

	// RestartWindow and RestartLimit parameterise the worker manager's
	// restart-rate guard (spec.md §5: "at most 3 restarts within 5
	// minutes" is the default, encoded as RestartLimit=3 over a 5-minute
	// RestartWindow below by DefaultConfig).
	RestartWindowSeconds int `toml:"restart_window_seconds"`
	RestartLimit         int `toml:"restart_limit"`
}

// DefaultConfig returns the configuration a worker starts with absent a
// -f <config> file, matching spec.md §5's stated defaults.
func DefaultConfig() Config {
	return Config{
		Procs:                1,
		LogLevel:             "info",
		NetLogLevel:          "warn",
		SortWindow:           64 * datasize.MB,
		BadCacheBudget:       8 * datasize.MB,
		RestartWindowSeconds: 300,
		RestartLimit:         3,
	}
}

// Load reads and decodes the TOML file at path, starting from
// DefaultConfig so a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
