// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/runparts"
	"github.com/matt-FFFFFF/runparts/internal/color"
	"github.com/matt-FFFFFF/runparts/internal/config"
	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
	"github.com/matt-FFFFFF/runparts/internal/exitcode"
	"github.com/matt-FFFFFF/runparts/internal/fetch"
	"github.com/matt-FFFFFF/runparts/internal/filter"
	rp "github.com/matt-FFFFFF/runparts/internal/runparts"
	"github.com/urfave/cli/v3"
)

const (
	dirArg           = "DIRECTORY"
	testFlag         = "test"
	listFlag         = "list"
	verboseFlag      = "verbose"
	reportFlag       = "report"
	reverseFlag      = "reverse"
	exitOnErrorFlag  = "exit-on-error"
	umaskFlag        = "umask"
	lsbSysInitFlag   = "lsbsysinit"
	regexFlag        = "regex"
	argFlag          = "arg"
	configFlag       = "config"
	drainFlag        = "drain"
	drainTimeoutFlag = "drain-timeout"
	summaryFlag      = "summary"
)

// usageErrors are reported with exitcode.Usage, everything else with exitcode.Software.
var usageErrors = []error{
	config.ErrListAndTest,
	config.ErrNoDirectory,
	config.ErrInvalidUmask,
	config.ErrInvalidDrainPolicy,
	config.ErrInvalidYaml,
	config.ErrReadFile,
	filter.ErrInvalidRegex,
}

func init() {
	// -v is --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func newRootCmd(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "runparts",
		Usage:     "run scripts or programs in a directory",
		UsageText: "runparts [options] DIRECTORY",
		Description: `Runs every executable file in DIRECTORY in lexical order. Output of each
script is forwarded as it is produced, and the exit status is that of the last
file processed.

DIRECTORY may also be a go-getter URL (see https://github.com/hashicorp/go-getter),
which is downloaded to a temporary directory first.`,
		Version:                   fmt.Sprintf("%s (commit: %s)", runparts.Version, runparts.Commit),
		Copyright:                 "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Writer:                    stdout,
		ErrWriter:                 stderr,
		DisableSliceFlagSeparator: true,
		HideHelpCommand:           true,
		ExitErrHandler:            func(context.Context, *cli.Command, error) {},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return usageExit(err)
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      dirArg,
				UsageText: "directory containing the scripts",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  testFlag,
				Usage: "print the names of the scripts which would be run, but don't run them",
			},
			&cli.BoolFlag{
				Name:  listFlag,
				Usage: "print the names of all matching files, not only executables; cannot be used with --test",
			},
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "print the name of each script to stderr before running",
			},
			&cli.BoolFlag{
				Name:  reportFlag,
				Usage: "print the name of a script once, before its first output, on the stream it writes to",
			},
			&cli.BoolFlag{
				Name:  reverseFlag,
				Usage: "reverse the execution order",
			},
			&cli.BoolFlag{
				Name:  exitOnErrorFlag,
				Usage: "exit as soon as a script returns a non-zero status",
			},
			&cli.StringFlag{
				Name:  umaskFlag,
				Usage: "set the umask, in octal, before running the scripts",
				Value: config.DefaultUmask,
			},
			&cli.BoolFlag{
				Name:  lsbSysInitFlag,
				Usage: "restrict file names to the LANANA, LSB and Debian cron namespaces",
			},
			&cli.StringFlag{
				Name:  regexFlag,
				Usage: "only accept file names matching `REGEX`",
			},
			&cli.StringSliceFlag{
				Name:    argFlag,
				Aliases: []string{"a"},
				Usage:   "pass `ARGUMENT` to the scripts; repeat for more arguments",
			},
			&cli.StringFlag{
				Name:      configFlag,
				Usage:     "read defaults from the YAML `FILE`",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:  drainFlag,
				Usage: "output arriving after a script exits: 'drain' forwards it, 'stop' discards it",
				Value: "drain",
			},
			&cli.DurationFlag{
				Name:  drainTimeoutFlag,
				Usage: "how long to wait for output after a script exits; negative waits forever",
				Value: config.Default().DrainTimeout.Std(),
			},
			&cli.BoolFlag{
				Name:  summaryFlag,
				Usage: "print a result for every script to stderr at the end",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	cfg, err := buildConfig(cmd)
	if err != nil {
		return usageExit(err)
	}

	if err := cfg.Validate(); err != nil {
		return usageExit(err)
	}

	dir, cleanup, err := fetch.Resolve(ctx, cfg.Dir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("runparts: %v", err), exitcode.Software)
	}

	defer cleanup()

	cfg.Dir = dir

	logger.Debug("running", "dir", cfg.Dir, "mode", rp.ModeOf(cfg).String())

	sum, err := rp.Run(ctx, cfg, cmd.Writer, cmd.ErrWriter)
	if err != nil {
		if isUsageError(err) {
			return usageExit(err)
		}

		return cli.Exit(fmt.Sprintf("runparts: %v", err), exitcode.Software)
	}

	if cfg.Summary {
		if err := sum.WriteText(cmd.ErrWriter, color.Enabled()); err != nil {
			logger.Error("failed to write summary", "error", err)
		}
	}

	if code := sum.ExitCode(); code != exitcode.OK {
		return cli.Exit("", code)
	}

	return nil
}

// buildConfig reads the optional configuration file and applies the flags that were set on top.
func buildConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()

	if path := cmd.String(configFlag); path != "" {
		var err error

		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if dir := cmd.StringArg(dirArg); dir != "" {
		cfg.Dir = dir
	}

	bools := map[string]*bool{
		testFlag:        &cfg.Test,
		listFlag:        &cfg.List,
		verboseFlag:     &cfg.Verbose,
		reportFlag:      &cfg.Report,
		reverseFlag:     &cfg.Reverse,
		exitOnErrorFlag: &cfg.ExitOnError,
		lsbSysInitFlag:  &cfg.LSBSysInit,
		summaryFlag:     &cfg.Summary,
	}

	for name, dst := range bools {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}

	strs := map[string]*string{
		umaskFlag: &cfg.Umask,
		regexFlag: &cfg.Regex,
		drainFlag: &cfg.Drain,
	}

	for name, dst := range strs {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}

	if cmd.IsSet(argFlag) {
		cfg.Args = cmd.StringSlice(argFlag)
	}

	if cmd.IsSet(drainTimeoutFlag) {
		cfg.DrainTimeout = config.Duration(cmd.Duration(drainTimeoutFlag))
	}

	return cfg, nil
}

func isUsageError(err error) bool {
	for _, target := range usageErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func usageExit(err error) error {
	return cli.Exit(fmt.Sprintf("runparts: %v\nRun 'runparts --help' for usage.", err), exitcode.Usage)
}
