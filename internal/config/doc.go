// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the options of a runparts invocation.
//
// Defaults can be read from a YAML file, for example:
//
//	directory: /etc/cron.daily
//	report: true
//	exit_on_error: true
//	umask: "027"
//	lsbsysinit: true
//	args: [--quiet]
//	drain: drain
//	drain_timeout: 5s
//
// Command line flags take precedence over the file.
package config
