// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a structured slog logger in a context.Context.
//
// runparts forwards script output on stdout and stderr byte for byte, so the
// default logger writes to stderr and stays at WARN unless RUNPARTS_LOG_LEVEL
// raises it. The default handler is a pretty console handler.
package ctxlog
