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

// Package logging builds the worker's structured logger (spec.md §6's
// `-l <logfile>`/`-L <netlog>`/`-v`/`-V` flags): zap over a rotating file
// sink, or zap's development console encoder for foreground (`-n`) runs.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New. A zero-value LogFile means log to stderr
// (foreground mode); otherwise the file is opened through lumberjack so it
// rotates rather than growing unbounded.
type Options struct {
	LogFile    string
	Level      string
	Foreground bool

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds the core logger. Level accepts zap's usual names
// (debug/info/warn/error); an unrecognised name falls back to info.
func New(opts Options) (*zap.Logger, error) {
	level := parseLevel(opts.Level)

	if opts.Foreground || opts.LogFile == "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
		return cfg.Build()
	}

	sink := &lumberjack.Logger{
		Filename:   opts.LogFile,
		MaxSize:    orDefault(opts.MaxSizeMB, 100),
		MaxBackups: orDefault(opts.MaxBackups, 7),
		MaxAge:     orDefault(opts.MaxAgeDays, 28),
		Compress:   true,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(sink), level)
	return zap.New(core, zap.AddCaller()), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func parseLevel(s string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// NetLogger builds a second logger for the `-L <netlog>`/`-V <netloglevel>`
// wire-level trace, kept separate from the main logger so the two can be
// redirected (or silenced) independently.
func NetLogger(netlog, level string) (*zap.Logger, error) {
	if netlog == "" {
		return zap.NewNop(), nil
	}
	return New(Options{LogFile: netlog, Level: level})
}
