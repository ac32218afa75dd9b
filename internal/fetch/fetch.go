// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fetch resolves the script directory argument, which may be a local path
// or a go-getter URL such as "git::https://example.com/hooks.git//daily".
// See https://github.com/hashicorp/go-getter.
package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
)

// ErrFetch is returned when a remote directory cannot be downloaded.
var ErrFetch = errors.New("failed to fetch script directory")

// getFunc downloads req. Replaced in tests.
var getFunc = func(ctx context.Context, req *getter.Request) (*getter.GetResult, error) {
	client := getter.Client{
		DisableSymlinks: true,
	}

	return client.Get(ctx, req)
}

// IsRemote reports whether src names a go-getter source rather than a local path.
func IsRemote(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// Resolve returns a local directory for src. Local paths, including ones that
// do not exist, are returned unchanged. Remote sources are downloaded into a
// temporary directory that cleanup removes. cleanup is never nil.
func Resolve(ctx context.Context, src string) (dir string, cleanup func(), err error) {
	cleanup = func() {}

	if fi, statErr := os.Stat(src); statErr == nil && fi.IsDir() {
		return src, cleanup, nil
	}

	if !IsRemote(src) {
		return src, cleanup, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", cleanup, errors.Join(ErrFetch, err)
	}

	tmpDir, err := os.MkdirTemp("", "runparts-getter-*")
	if err != nil {
		return "", cleanup, errors.Join(ErrFetch, err)
	}

	removeTmp := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			ctxlog.Warn(ctx, "failed to remove fetched directory", "path", tmpDir, "error", err)
		}
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "d"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	ctxlog.Debug(ctx, "fetching script directory", "src", src, "dst", req.Dst)

	res, err := getFunc(ctx, req)
	if err != nil {
		removeTmp()
		return "", cleanup, errors.Join(ErrFetch, err)
	}

	return res.Dst, removeTmp, nil
}
