// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colorizes the human-facing messages runparts writes to stderr:
// log records and the end-of-run summary. Script output is never colorized.
//
// Color is disabled when NO_COLOR is set, forced on when FORCE_COLOR is set, and
// otherwise enabled only when stderr is a terminal (golang.org/x/term).
package color
