// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runparts runs, tests or lists the scripts of a directory, one after another.
//
// Every script is run by runner.Exec, so its output is forwarded as it is
// produced and its exit status is known once it has finished. The exit status of
// the whole run is the status of the last file processed.
package runparts
