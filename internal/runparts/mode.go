// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runparts

import "github.com/matt-FFFFFF/runparts/internal/config"

// Mode selects what is done with each file.
type Mode int

const (
	// ModeRun executes every executable file.
	ModeRun Mode = iota
	// ModeTest prints the executable files that would be run.
	ModeTest
	// ModeList prints every file that passes the filter, executable or not.
	ModeList
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeRun:
		return "run"
	case ModeTest:
		return "test"
	case ModeList:
		return "list"
	default:
		return "unknown"
	}
}

// ModeOf returns the mode selected by cfg.
func ModeOf(cfg *config.Config) Mode {
	switch {
	case cfg.List:
		return ModeList
	case cfg.Test:
		return ModeTest
	default:
		return ModeRun
	}
}
