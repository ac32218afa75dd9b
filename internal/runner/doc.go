// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner executes a single script and forwards its output.
//
// The script's stdout and stderr are pipes into a mux.Mux. A watcher goroutine
// waits for the process and writes one done chunk with the encoded status to the
// same Mux. A single read loop consumes the merged sequence, forwards output to
// the caller's writers and returns the status carried by the done chunk. Because
// the status travels through the Mux, the loop never has to choose between
// process exit and pending output.
//
// Done chunk encoding:
//
//	exit code c        one byte, c
//	killed by signal s one byte, 128+s
//	wait failure       "Error: <description>\n"
package runner
