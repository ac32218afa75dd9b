// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

// Report decides when the script name is printed ahead of its output.
// The name is printed at most once, before the first chunk of output on either stream.
// Stderr only carries the name when verbose mode is off, since verbose mode has
// already printed it there.
type Report struct {
	prefix string
	stdout bool
	stderr bool
	used   bool
}

// NewReport returns the report state for one execution of path.
func NewReport(path string, report, verbose bool) *Report {
	return &Report{
		prefix: path + ":\n",
		stdout: report,
		stderr: report && !verbose,
	}
}

// Stdout consumes the report state for a chunk on stdout and returns the prefix to write, if any.
func (r *Report) Stdout() (string, bool) {
	return r.take(r.stdout)
}

// Stderr consumes the report state for a chunk on stderr and returns the prefix to write, if any.
func (r *Report) Stderr() (string, bool) {
	return r.take(r.stderr)
}

// Used reports whether any output has been seen.
func (r *Report) Used() bool {
	return r.used
}

func (r *Report) take(enabled bool) (string, bool) {
	if r.used {
		return "", false
	}

	r.used = true

	if !enabled {
		return "", false
	}

	return r.prefix, true
}
