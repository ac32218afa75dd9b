// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix

package runparts

import "golang.org/x/sys/unix"

// setUmask sets the process umask and returns the previous one.
func setUmask(mask int) int {
	return unix.Umask(mask)
}
