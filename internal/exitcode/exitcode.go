// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package exitcode holds the process exit statuses runparts produces itself,
// following sysexits(3) and shell conventions.
package exitcode

const (
	// OK is successful termination.
	OK = 0
	// Failure is a generic failure.
	Failure = 1
	// Usage is a command line usage error.
	Usage = 64
	// Software is an internal software error, e.g. the status of a script
	// could not be determined.
	Software = 70
	// CannotExecute is returned for a script that exists but could not be executed.
	CannotExecute = 126
	// NotFound is returned for a script that vanished before it could be executed.
	NotFound = 127
	// SignalBase is added to the signal number of a script killed by a signal.
	SignalBase = 128
)

// FromSignal returns the shell status of a process terminated by signal sig.
func FromSignal(sig int) int {
	return SignalBase + sig
}
