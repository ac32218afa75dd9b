// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runparts

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/runparts/internal/color"
	"github.com/matt-FFFFFF/runparts/internal/runner"
)

// Summary is the outcome of a run.
type Summary struct {
	Mode    Mode
	Results []runner.Result   // One per executed script, in order.
	Errors  *multierror.Error // Scripts that could not be started or whose status could not be read.
	Stopped bool              // The run ended before the last file.
	status  int
}

// ExitCode returns the status of the last file processed, or 0 if there was none.
func (s *Summary) ExitCode() int {
	if s == nil {
		return 0
	}

	return s.status
}

// Failed returns the number of executed scripts with a non-zero status.
func (s *Summary) Failed() int {
	n := 0

	for _, r := range s.Results {
		if r.Status != 0 {
			n++
		}
	}

	return n
}

// WriteText writes a per-script report to w.
func (s *Summary) WriteText(w io.Writer, colour bool) error {
	for _, r := range s.Results {
		if err := writeResult(w, r, colour); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d scripts run, %d failed\n", len(s.Results), s.Failed())

	return err
}

func writeResult(w io.Writer, r runner.Result, colour bool) error {
	mark := color.ColorizeIf(colour, "✓", color.FgGreen)
	label := color.ColorizeIf(colour, describe(r.Path, r.Args), color.Bold, color.FgGreen)

	if r.Status != 0 || r.Err != nil {
		mark = color.ColorizeIf(colour, "✗", color.FgRed)
		label = color.ColorizeIf(colour, describe(r.Path, r.Args), color.Bold, color.FgRed)
	}

	line := fmt.Sprintf("%s %s", mark, label)
	if r.Status != 0 {
		line += fmt.Sprintf(" (exit status: %d)", r.Status)
	}

	if r.Duration > 0 {
		line += color.ColorizeIf(colour, fmt.Sprintf(" [%s]", r.Duration.Round(time.Millisecond)), color.Faint)
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	if r.Err != nil {
		if _, err := fmt.Fprintf(w, "  %s %s\n", color.ColorizeIf(colour, "➜ Error:", color.FgRed), strings.ReplaceAll(r.Err.Error(), "\n", ": ")); err != nil {
			return err
		}
	}

	return nil
}
