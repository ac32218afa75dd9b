// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !unix

package runparts

// setUmask is a no-op on platforms without a umask.
func setUmask(int) int {
	return 0
}
