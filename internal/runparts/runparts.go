// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runparts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/runparts/internal/config"
	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
	"github.com/matt-FFFFFF/runparts/internal/exitcode"
	"github.com/matt-FFFFFF/runparts/internal/runner"
	"github.com/matt-FFFFFF/runparts/internal/scan"
)

// ErrScan is returned when the script directory cannot be read.
var ErrScan = errors.New("cannot scan directory")

// execFunc runs one script. Replaced in tests.
var execFunc = runner.Exec

// Run processes every file of cfg.Dir in order and writes script output and
// listings to stdout and stderr. It returns an error only if the options are
// invalid or the directory cannot be scanned; script failures are part of the Summary.
func Run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	flt, err := cfg.Filter()
	if err != nil {
		return nil, err
	}

	policy, err := cfg.DrainPolicy()
	if err != nil {
		return nil, err
	}

	mode := ModeOf(cfg)
	logger := ctxlog.Logger(ctx).With("dir", cfg.Dir, "mode", mode.String())
	ctx = ctxlog.New(ctx, logger)

	if mode == ModeRun {
		mask, err := config.ParseUmask(cfg.Umask)
		if err != nil {
			return nil, err
		}

		prev := setUmask(mask)
		defer setUmask(prev)

		logger.Debug("umask set", "umask", fmt.Sprintf("%04o", mask))
	}

	scanner := &scan.Scanner{
		Filter:  flt,
		Reverse: cfg.Reverse,
	}

	files, err := scanner.Files(ctx, cfg.Dir)
	if err != nil {
		return nil, errors.Join(ErrScan, err)
	}

	logger.Debug("scanned directory", "files", len(files))

	sum := &Summary{Mode: mode}

	for _, path := range files {
		if cfg.ExitOnError && sum.status != exitcode.OK {
			logger.Info("stopping after failed script", "status", sum.status)
			sum.Stopped = true

			break
		}

		if ctx.Err() != nil {
			logger.Warn("run cancelled", "error", ctx.Err())
			sum.Stopped = true

			break
		}

		sum.status = exitcode.OK
		label := describe(path, cfg.Args)

		if mode == ModeList {
			fmt.Fprintln(stdout, label) //nolint:errcheck
			continue
		}

		if !scanner.IsExecutable(path) {
			logger.Debug("skipping non-executable file", "path", path)
			continue
		}

		if mode == ModeTest {
			fmt.Fprintln(stdout, label) //nolint:errcheck
			continue
		}

		if cfg.Verbose {
			fmt.Fprintln(stderr, label) //nolint:errcheck
		}

		res, err := execFunc(ctx, path, runner.Options{
			Args:         cfg.Args,
			Report:       cfg.Report,
			Verbose:      cfg.Verbose,
			Drain:        policy,
			DrainTimeout: cfg.DrainTimeout.Std(),
			Stdout:       stdout,
			Stderr:       stderr,
		})
		if err != nil {
			res = failedResult(path, cfg.Args, err)
			sum.Errors = multierror.Append(sum.Errors, fmt.Errorf("%s: %w", path, err))

			if errors.Is(err, runner.ErrCouldNotStartProcess) {
				fmt.Fprintf(stderr, "runparts: failed to exec %s: %s\n", path, causeOf(err)) //nolint:errcheck
			} else {
				logger.Error("failed to read script status", "path", path, "error", err)
			}
		}

		sum.status = res.Status
		sum.Results = append(sum.Results, res)

		if cfg.Verbose {
			fmt.Fprintf(stderr, "%s exit status %d\n", label, res.Status) //nolint:errcheck
		}
	}

	return sum, nil
}

// describe formats a script and its arguments for listings and verbose output.
func describe(path string, args []string) string {
	if len(args) == 0 {
		return path
	}

	return path + " " + strings.Join(args, " ")
}

func failedResult(path string, args []string, err error) runner.Result {
	status := exitcode.Software

	if errors.Is(err, runner.ErrCouldNotStartProcess) {
		status = exitcode.CannotExecute
		if errors.Is(err, fs.ErrNotExist) {
			status = exitcode.NotFound
		}
	}

	return runner.Result{
		Path:   path,
		Args:   args,
		Status: status,
		Err:    err,
	}
}

// causeOf returns the operating system error behind a failed start.
func causeOf(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}

	return err
}
