// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
	"github.com/matt-FFFFFF/runparts/internal/exitcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	ctx := ctxlog.NewForWriter(context.Background(), io.Discard)
	code := run(ctx, append([]string{"runparts"}, args...), &stdout, &stderr)

	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func newScriptDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeScript(t, dir, "10hello", `echo "hello $*"`, 0o755)
	writeScript(t, dir, "20data", "exit 0", 0o644)
	writeScript(t, dir, "30fail", "echo failed >&2\nexit 3", 0o755)

	return dir
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, "--version")
	assert.Equal(t, exitcode.OK, res.code)
	assert.Contains(t, res.stdout, "dev (commit: unknown)")
}

func TestRun_Help(t *testing.T) {
	res := runCLI(t, "--help")
	assert.Equal(t, exitcode.OK, res.code)
	assert.Contains(t, res.stdout, "--exit-on-error")
	assert.Contains(t, res.stdout, "--drain-timeout")
}

func TestRun_UsageErrors(t *testing.T) {
	dir := newScriptDir(t)

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "no directory", args: nil, wantMsg: "no directory specified"},
		{name: "list and test", args: []string{"--list", "--test", dir}, wantMsg: "--list and --test cannot be used together"},
		{name: "bad umask", args: []string{"--umask", "999", dir}, wantMsg: "invalid umask"},
		{name: "bad regex", args: []string{"--regex", "(", dir}, wantMsg: "invalid filename regex"},
		{name: "bad drain", args: []string{"--drain", "later", dir}, wantMsg: "invalid drain policy"},
		{name: "unknown flag", args: []string{"--random-sleep", dir}, wantMsg: "random-sleep"},
		{name: "missing config file", args: []string{"--config", filepath.Join(dir, "nope.yaml"), dir}, wantMsg: "cannot read configuration file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			assert.Equal(t, exitcode.Usage, res.code)
			assert.Contains(t, res.stderr, tt.wantMsg)
			assert.Contains(t, res.stderr, "runparts --help")
		})
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	res := runCLI(t, filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, exitcode.Software, res.code)
	assert.Contains(t, res.stderr, "cannot scan directory")
}

func TestRun_List(t *testing.T) {
	dir := newScriptDir(t)

	res := runCLI(t, "--list", "-a", "x,y", dir)
	assert.Equal(t, exitcode.OK, res.code)
	assert.Equal(t, dir+"/10hello x,y\n"+dir+"/20data x,y\n"+dir+"/30fail x,y\n", res.stdout)
}

func TestRun_Test(t *testing.T) {
	dir := newScriptDir(t)

	res := runCLI(t, "--test", "--reverse", dir)
	assert.Equal(t, exitcode.OK, res.code)
	assert.Equal(t, dir+"/30fail\n"+dir+"/10hello\n", res.stdout)
}

func TestRun_Scripts(t *testing.T) {
	dir := newScriptDir(t)

	res := runCLI(t, "--report", "-a", "a", "--arg", "b", dir)
	assert.Equal(t, 3, res.code)
	assert.Equal(t, dir+"/10hello:\nhello a b\n", res.stdout)
	assert.Equal(t, dir+"/30fail:\nfailed\n", res.stderr)
}

func TestRun_ExitOnError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "10fail", "exit 4", 0o755)
	writeScript(t, dir, "20never", "echo ran", 0o755)

	res := runCLI(t, "--exit-on-error", dir)
	assert.Equal(t, 4, res.code)
	assert.Empty(t, res.stdout)
}

func TestRun_Verbose(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "10quiet", "exit 0", 0o755)

	res := runCLI(t, "-v", dir)
	assert.Equal(t, exitcode.OK, res.code)
	assert.Equal(t, dir+"/10quiet\n"+dir+"/10quiet exit status 0\n", res.stderr)
}

func TestRun_Summary(t *testing.T) {
	dir := newScriptDir(t)

	res := runCLI(t, "--summary", dir)
	assert.Equal(t, 3, res.code)
	assert.Contains(t, res.stderr, "2 scripts run, 1 failed")
	assert.Contains(t, res.stderr, "✗ "+dir+"/30fail (exit status: 3)")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := newScriptDir(t)
	cfgPath := filepath.Join(t.TempDir(), "runparts.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("directory: "+dir+"\nlist: true\nargs: [from-file]\n"), 0o644))

	t.Run("file only", func(t *testing.T) {
		res := runCLI(t, "--config", cfgPath)
		assert.Equal(t, exitcode.OK, res.code)
		assert.Equal(t, dir+"/10hello from-file\n"+dir+"/20data from-file\n"+dir+"/30fail from-file\n", res.stdout)
	})

	t.Run("flags override file", func(t *testing.T) {
		res := runCLI(t, "--config", cfgPath, "--list=false", "--test", "-a", "cli")
		assert.Equal(t, exitcode.OK, res.code)
		assert.Equal(t, dir+"/10hello cli\n"+dir+"/30fail cli\n", res.stdout)
	})
}
