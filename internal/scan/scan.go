// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scan lists the candidate scripts of a directory.
package scan

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sort"

	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
	"github.com/matt-FFFFFF/runparts/internal/filter"
	"github.com/spf13/afero"
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// ErrReadDir is returned when the directory cannot be listed.
var ErrReadDir = errors.New("cannot read directory")

// Scanner lists directory entries that pass its filter.
type Scanner struct {
	Fs      afero.Fs // Defaults to FsFactory().
	Filter  filter.Filter
	Reverse bool
}

func (s *Scanner) fs() afero.Fs {
	if s.Fs == nil {
		s.Fs = FsFactory()
	}

	return s.Fs
}

// Files returns the paths of the entries of dir in lexical order, or reversed if
// requested. Directories, including symlinks to directories, and names rejected
// by the filter are left out.
func (s *Scanner) Files(ctx context.Context, dir string) ([]string, error) {
	fs := s.fs()

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Join(ErrReadDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	sort.Strings(names)

	if s.Reverse {
		slices.Reverse(names)
	}

	files := make([]string, 0, len(names))

	for _, name := range names {
		path := filepath.Join(dir, name)

		if fi, err := fs.Stat(path); err == nil && fi.IsDir() {
			ctxlog.Debug(ctx, "skipping directory", "path", path)
			continue
		}

		if !s.Filter.Match(name) {
			ctxlog.Debug(ctx, "skipping filtered name", "path", path)
			continue
		}

		files = append(files, path)
	}

	return files, nil
}

// IsExecutable reports whether path, after following symlinks, is a regular file
// with at least one execute permission bit set.
func (s *Scanner) IsExecutable(path string) bool {
	fi, err := s.fs().Stat(path)
	if err != nil {
		return false
	}

	return fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0
}
