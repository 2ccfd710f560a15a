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

// Package exitcode names the worker binary's os.Exit codes (spec.md §6), a
// small slice of the BSD sysexits.h table.
package exitcode

const (
	// OK is a clean exit.
	OK = 0
	// Usage means the command line was used incorrectly.
	Usage = 64
	// DataErr means the input data was incorrect — here, a pidfile conflict.
	DataErr = 65
	// Software means an internal software error — misconfiguration or a
	// crash-loop the restart-rate guard refused to keep retrying.
	Software = 70
	// OSErr means a system call failed unexpectedly.
	OSErr = 71
	// Unavailable means a service is unavailable — here, rollback failure
	// during commit, per spec.md §7's "abort the worker" rule.
	Unavailable = 69
)

// Name renders one of the above constants by its sysexits.h mnemonic, for
// log messages and the epitaph file.
func Name(code int) string {
	switch code {
	case OK:
		return "OK"
	case Usage:
		return "EX_USAGE"
	case DataErr:
		return "EX_DATAERR"
	case Software:
		return "EX_SOFTWARE"
	case OSErr:
		return "EX_OSERR"
	case Unavailable:
		return "EX_UNAVAILABLE"
	default:
		return "EX_UNKNOWN"
	}
}
