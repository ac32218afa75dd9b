// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeWaiter struct {
	state *os.ProcessState
	err   error
}

func (f fakeWaiter) Wait() (*os.ProcessState, error) {
	return f.state, f.err
}

type recordingWriteCloser struct {
	bytes.Buffer
	writes int
	closed bool
}

func (r *recordingWriteCloser) Write(p []byte) (int, error) {
	r.writes++
	return r.Buffer.Write(p)
}

func (r *recordingWriteCloser) Close() error {
	r.closed = true
	return nil
}

func TestWatch_WaitFailure(t *testing.T) {
	done := &recordingWriteCloser{}

	watch(fakeWaiter{err: errors.New("wait: no child processes")}, done)

	assert.Equal(t, 1, done.writes, "exactly one done payload")
	assert.True(t, done.closed)
	assert.Equal(t, "Error: wait: no child processes\n", done.String())
}
