// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the runparts command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
	"github.com/matt-FFFFFF/runparts/internal/exitcode"
	"github.com/matt-FFFFFF/runparts/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	code := run(ctx, os.Args, os.Stdout, os.Stderr)

	signalbroker.Stop(sigCh)
	cancel()
	os.Exit(code)
}

// run executes the root command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newRootCmd(stdout, stderr).Run(ctx, args)
	if err == nil {
		return exitcode.OK
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(stderr, msg) //nolint:errcheck
		}

		return exitErr.ExitCode()
	}

	ctxlog.Error(ctx, "command execution failed", "error", err)
	fmt.Fprintf(stderr, "runparts: %v\n", err) //nolint:errcheck

	return exitcode.Software
}
