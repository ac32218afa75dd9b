// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
	"github.com/matt-FFFFFF/runparts/internal/exitcode"
	"github.com/matt-FFFFFF/runparts/internal/mux"
	"github.com/matt-FFFFFF/runparts/internal/signalbroker"
)

// Tags of the three producers of an execution.
const (
	TagStdout mux.Tag = mux.Untagged
	TagStderr mux.Tag = "e"
	TagDone   mux.Tag = "d"
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrTransport is returned when the output stream ended without a done chunk.
	ErrTransport = errors.New("output transport failed")
	// ErrWaitFailed is recorded in Result.Err when waiting for the process failed.
	ErrWaitFailed = errors.New("failed to wait for process")
)

// Options configures one execution.
type Options struct {
	Args         []string      // Arguments, not including the executable itself.
	Report       bool          // Print the path once before the first output.
	Verbose      bool          // The path has already been printed to stderr.
	Drain        DrainPolicy   // What to do with output arriving after exit.
	DrainTimeout time.Duration // Zero means DefaultDrainTimeout, negative means no bound.
	Stdout       io.Writer     // Defaults to os.Stdout.
	Stderr       io.Writer     // Defaults to os.Stderr.
	// Signals are relayed to the process. When nil, Exec subscribes to the
	// termination signals itself.
	Signals <-chan os.Signal
}

// Result is the outcome of one execution.
type Result struct {
	Path     string
	Args     []string
	Status   int   // Resolved exit status, 0 to 255.
	Err      error // Set when the status could not be read from the process.
	Duration time.Duration
}

// Success reports whether the script exited with status 0.
func (r Result) Success() bool {
	return r.Status == exitcode.OK && r.Err == nil
}

// Exec runs the executable at path and forwards its output until it exits.
// It returns an error wrapping ErrCouldNotStartProcess if the process could not
// be started, in which case the Result carries no status.
func Exec(ctx context.Context, path string, opts Options) (Result, error) {
	ctx = ctxlog.New(ctx, ctxlog.Logger(ctx).With("path", path))
	res := Result{Path: path, Args: opts.Args}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	sigs := opts.Signals
	if sigs == nil {
		ch := signalbroker.New(ctx)
		defer signalbroker.Stop(ch)

		sigs = ch
	}

	m := mux.New()
	defer m.Close() //nolint:errcheck

	wOut, err := m.Pipe(TagStdout)
	if err != nil {
		return res, errors.Join(ErrCouldNotStartProcess, err)
	}

	wErr, err := m.Pipe(TagStderr)
	if err != nil {
		_ = wOut.Close()
		return res, errors.Join(ErrCouldNotStartProcess, err)
	}

	done := m.Sender(TagDone)

	ctxlog.Debug(ctx, "starting process", "args", opts.Args)

	ps, err := os.StartProcess(path, slices.Concat([]string{path}, opts.Args), &os.ProcAttr{
		Files: []*os.File{os.Stdin, wOut, wErr},
	})

	// The child holds its own copies; the pipes reach EOF when it and its descendants exit.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		_ = done.Close()
		return res, errors.Join(ErrCouldNotStartProcess, err)
	}

	ctxlog.Debug(ctx, "process started", "pid", ps.Pid)

	start := time.Now()
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		watch(ps, done)
	}()

	relayed := relay(ctx, ps, sigs, exited)

	l := &loop{
		path:         path,
		report:       NewReport(path, opts.Report, opts.Verbose),
		stdout:       opts.Stdout,
		stderr:       opts.Stderr,
		policy:       opts.Drain,
		drainTimeout: opts.DrainTimeout,
		pipes:        2,
	}

	d, err := l.run(ctx, m)

	<-exited
	<-relayed

	res.Duration = time.Since(start)

	if err != nil {
		res.Status = exitcode.Software
		res.Err = err

		return res, err
	}

	res.Status = d.Status()
	if text, ok := d.(DoneError); ok {
		res.Err = fmt.Errorf("%w: %s", ErrWaitFailed, strings.TrimPrefix(strings.TrimSpace(string(text)), "Error: "))
	}

	ctxlog.Debug(ctx, "process finished", "status", res.Status, "duration", res.Duration)

	return res, nil
}

// relay passes signals to the process and kills it when ctx is done.
// The returned channel is closed once relaying has stopped.
func relay(ctx context.Context, ps *os.Process, sigs <-chan os.Signal, exited <-chan struct{}) <-chan struct{} {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		for {
			select {
			case <-exited:
				return
			case sig, ok := <-sigs:
				if !ok {
					sigs = nil
					continue
				}

				ctxlog.Info(ctx, "relaying signal to script", "pid", ps.Pid, "signal", sig.String())

				if err := ps.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					ctxlog.Warn(ctx, "failed to send signal", "signal", sig.String(), "error", err)
				}
			case <-ctx.Done():
				killPs(ctx, ps)
				return
			}
		}
	}()

	return stopped
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}
