// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/runparts/internal/exitcode"
)

// ErrEmptyDone is returned when a done chunk carries no payload.
var ErrEmptyDone = errors.New("empty done chunk")

// Done is the decoded payload of a done chunk, either DoneStatus or DoneError.
type Done interface {
	// Status is the exit status the payload resolves to.
	Status() int
	isDone()
}

// DoneStatus is the exit status of a script that was waited for successfully.
type DoneStatus uint8

// Status returns the status unchanged.
func (d DoneStatus) Status() int { return int(d) }

func (DoneStatus) isDone() {}

// DoneError is the text written when waiting for the script failed.
type DoneError string

// Status returns exitcode.Software.
func (DoneError) Status() int { return exitcode.Software }

func (DoneError) isDone() {}

// EncodeStatus encodes a status as a done payload.
func EncodeStatus(status uint8) []byte {
	return []byte{status}
}

// EncodeWaitError encodes a wait failure as a done payload.
func EncodeWaitError(err error) []byte {
	return fmt.Appendf(nil, "Error: %v\n", err)
}

// DecodeDone decodes a done payload. A single byte is a status, anything longer is an error text.
func DecodeDone(p []byte) (Done, error) {
	switch len(p) {
	case 0:
		return nil, ErrEmptyDone
	case 1:
		return DoneStatus(p[0]), nil
	default:
		return DoneError(p), nil
	}
}
