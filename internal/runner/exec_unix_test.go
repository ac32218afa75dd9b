// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix

package runner

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return path
}

type execOutput struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (o *execOutput) options() Options {
	return Options{
		Stdout:  &o.stdout,
		Stderr:  &o.stderr,
		Signals: make(chan os.Signal),
	}
}

func TestExec_Status(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantStdout string
		wantStderr string
	}{
		{name: "exit zero", body: "echo hello", wantStdout: "hello\n"},
		{name: "exit code", body: "exit 42", wantStatus: 42},
		{name: "stderr", body: "echo oops >&2\nexit 3", wantStatus: 3, wantStderr: "oops\n"},
		{name: "killed by signal", body: "kill -9 $$", wantStatus: 137},
		{name: "terminated by signal", body: "kill -15 $$", wantStatus: 143},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o execOutput

			path := writeScript(t, "10script", tt.body)
			res, err := Exec(testCtx(), path, o.options())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.NoError(t, res.Err)
			assert.Equal(t, path, res.Path)
			assert.Equal(t, tt.wantStdout, o.stdout.String())
			assert.Equal(t, tt.wantStderr, o.stderr.String())
		})
	}
}

func TestExec_Args(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "args", `printf '%s|' "$0" "$@"`)
	opts := o.options()
	opts.Args = []string{"a", "b c"}

	res, err := Exec(testCtx(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c"}, res.Args)
	assert.Equal(t, path+"|a|b c|", o.stdout.String())
}

func TestExec_ReportPrefixOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "10foo", "echo out\necho err >&2")
	opts := o.options()
	opts.Report = true

	res, err := Exec(testCtx(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Status)

	prefix := path + ":\n"
	all := o.stdout.String() + o.stderr.String()
	assert.Equal(t, 1, strings.Count(all, prefix))
	assert.True(t,
		strings.HasPrefix(o.stdout.String(), prefix) || strings.HasPrefix(o.stderr.String(), prefix),
		"prefix precedes the first output")
	assert.Contains(t, o.stdout.String(), "out\n")
	assert.Contains(t, o.stderr.String(), "err\n")
}

func TestExec_ReportStdout(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "10foo", "printf hello")
	opts := o.options()
	opts.Report = true

	_, err := Exec(testCtx(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, path+":\nhello", o.stdout.String())
}

func TestExec_ReportVerboseStderrOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "10foo", "echo err >&2")
	opts := o.options()
	opts.Report = true
	opts.Verbose = true

	_, err := Exec(testCtx(), path, opts)
	require.NoError(t, err)
	assert.Empty(t, o.stdout.String())
	assert.Equal(t, "err\n", o.stderr.String())
}

func TestExec_NoOutputNoPrefix(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "10foo", "exit 0")
	opts := o.options()
	opts.Report = true

	_, err := Exec(testCtx(), path, opts)
	require.NoError(t, err)
	assert.Empty(t, o.stdout.String())
	assert.Empty(t, o.stderr.String())
}

func TestExec_SpawnFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("not found", func(t *testing.T) {
		var o execOutput

		_, err := Exec(testCtx(), filepath.Join(t.TempDir(), "missing"), o.options())
		require.ErrorIs(t, err, ErrCouldNotStartProcess)
		require.ErrorIs(t, err, fs.ErrNotExist)

		var pathErr *os.PathError
		assert.ErrorAs(t, err, &pathErr)
		assert.Empty(t, o.stdout.String())
		assert.Empty(t, o.stderr.String())
	})

	t.Run("not executable", func(t *testing.T) {
		var o execOutput

		path := filepath.Join(t.TempDir(), "plain")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))

		_, err := Exec(testCtx(), path, o.options())
		require.ErrorIs(t, err, ErrCouldNotStartProcess)
		assert.ErrorIs(t, err, fs.ErrPermission)
	})
}

func TestExec_DrainPolicy(t *testing.T) {
	defer goleak.VerifyNone(t)

	// A background child keeps the pipes open after the script itself exits.
	body := "(sleep 0.3; echo late) &\necho early\nexit 4"

	t.Run("drain", func(t *testing.T) {
		var o execOutput

		path := writeScript(t, "drain", body)
		opts := o.options()
		opts.Drain = DrainPolicyDrain

		res, err := Exec(testCtx(), path, opts)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Status)
		assert.Equal(t, "early\nlate\n", o.stdout.String())
	})

	t.Run("stop", func(t *testing.T) {
		var o execOutput

		path := writeScript(t, "stop", body)
		opts := o.options()
		opts.Drain = DrainPolicyStopOnDone

		res, err := Exec(testCtx(), path, opts)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Status)
		assert.NotContains(t, o.stdout.String(), "late")
	})
}

func TestExec_DrainTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "held", "sleep 1 &\nexit 0")
	opts := o.options()
	opts.DrainTimeout = 100 * time.Millisecond

	start := time.Now()
	res, err := Exec(testCtx(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Status)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestExec_ContextCancelKills(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "sleeper", "exec sleep 10")

	ctx, cancel := context.WithTimeout(testCtx(), 100*time.Millisecond)
	defer cancel()

	res, err := Exec(ctx, path, o.options())
	require.NoError(t, err)
	assert.Equal(t, 128+int(syscall.SIGKILL), res.Status)
}

func TestExec_RelaysSignals(t *testing.T) {
	defer goleak.VerifyNone(t)

	var o execOutput

	path := writeScript(t, "sleeper", "exec sleep 10")
	sigs := make(chan os.Signal, 1)
	opts := o.options()
	opts.Signals = sigs

	go func() {
		time.Sleep(100 * time.Millisecond)
		sigs <- syscall.SIGTERM
	}()

	res, err := Exec(testCtx(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, 128+int(syscall.SIGTERM), res.Status)
}

func TestExitStatus(t *testing.T) {
	path := writeScript(t, "exit", "exit 7")

	ps, err := os.StartProcess(path, []string{path}, &os.ProcAttr{})
	require.NoError(t, err)

	state, err := ps.Wait()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), ExitStatus(state))
}
