// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package filter decides which directory entries are considered scripts.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRegex is returned when a custom filename regex does not compile.
var ErrInvalidRegex = errors.New("invalid filename regex")

// Backup and package manager leftovers that are never run.
var ignoredSuffixes = []string{
	"~",
	",",
	".disabled",
	".cfsaved",
	".rpmsave",
	".rpmorig",
	".rpmnew",
	".swp",
	",v",
}

var lsbIgnoredSuffixes = []string{
	".dpkg-old",
	".dpkg-dist",
	".dpkg-new",
	".dpkg-tmp",
}

var lsbAccepted = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z0-9]+$`),                  // LANANA-assigned LSB hierarchical
	regexp.MustCompile(`^_?([a-z0-9_.]+-)+[a-z0-9]+$`), // LANANA-assigned LSB reserved
	regexp.MustCompile(`^[a-zA-Z0-9_-]+$`),             // Debian cron script namespace
}

// Filter matches file names (not paths).
type Filter struct {
	// LSBSysInit restricts names to the LANANA, LSB and Debian cron namespaces.
	LSBSysInit bool
	// Regex, if set, must match the name.
	Regex *regexp.Regexp
}

// Match reports whether name is eligible.
func (f Filter) Match(name string) bool {
	if hasAnySuffix(name, ignoredSuffixes) {
		return false
	}

	if f.LSBSysInit {
		if hasAnySuffix(name, lsbIgnoredSuffixes) {
			return false
		}

		if !matchesAny(name, lsbAccepted) {
			return false
		}
	}

	if f.Regex != nil && !f.Regex.MatchString(name) {
		return false
	}

	return true
}

// ParseRegex compiles a custom filename regex. An empty expression yields nil.
func ParseRegex(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil //nolint:nilnil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegex, err)
	}

	return re, nil
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}

	return false
}

func matchesAny(s string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}

	return false
}
