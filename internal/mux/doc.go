// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package mux merges several concurrently written byte streams into one ordered
// sequence of tagged chunks for a single reader.
//
// A producer is either a Sender, an io.WriteCloser where each Write becomes one
// chunk, or a pipe created with Pipe, whose write end is handed to a child process
// and whose read end is pumped by the Mux one chunk per read. Pipe producers end
// with a chunk that has EOF set and no data.
//
// Chunks from one producer are delivered in the order they were written. Chunks
// from different producers are delivered in the order they reach the Mux, with
// no further guarantee.
//
// Read is meant for exactly one consumer. Once every producer has closed and all
// chunks have been read, Read returns ErrClosed, so a consumer waiting for a
// chunk that will never be written does not block forever.
package mux
