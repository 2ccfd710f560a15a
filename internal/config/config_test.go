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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdbd.toml")
	require.NoError(t, os.WriteFile(path, []byte("procs = 4\nlog_level = \"debug\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Procs)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "warn", cfg.NetLogLevel) // untouched field keeps its default
	require.Equal(t, 3, cfg.RestartLimit)
}

func TestLoadParsesByteSizeFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdbd.toml")
	require.NoError(t, os.WriteFile(path, []byte("sort_window = \"128MB\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 128*datasize.MB, cfg.SortWindow)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/pdbd.toml")
	require.Error(t, err)
}
