// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"io"
	"os"
	"syscall"

	"github.com/matt-FFFFFF/runparts/internal/exitcode"
)

type waiter interface {
	Wait() (*os.ProcessState, error)
}

var _ waiter = (*os.Process)(nil)

// watch blocks until w has exited, then writes exactly one done payload and closes done.
func watch(w waiter, done io.WriteCloser) {
	defer done.Close() //nolint:errcheck

	state, err := w.Wait()

	payload := EncodeWaitError(err)
	if err == nil {
		payload = EncodeStatus(ExitStatus(state))
	}

	_, _ = done.Write(payload)
}

// ExitStatus returns the shell status of an exited process: its exit code, or
// 128 plus the signal number if a signal terminated it.
func ExitStatus(state *os.ProcessState) uint8 {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return uint8(exitcode.FromSignal(int(ws.Signal())))
	}

	return uint8(state.ExitCode() & 0xff)
}
