// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"errors"
	"time"
)

// DrainPolicy defines what happens to output that arrives after the done chunk.
type DrainPolicy int

const (
	// DrainPolicyDrain keeps forwarding output until both pipes reach end of stream,
	// bounded by the drain timeout.
	DrainPolicyDrain DrainPolicy = iota
	// DrainPolicyStopOnDone stops reading as soon as the done chunk arrives.
	// Output still in flight is discarded.
	DrainPolicyStopOnDone
)

// DefaultDrainTimeout bounds the drain when no timeout is configured.
const DefaultDrainTimeout = 2 * time.Second

const (
	drainPolicyDrainStr   = "drain"
	drainPolicyStopStr    = "stop"
	drainPolicyUnknownStr = "unknown"
)

// ErrDrainPolicyUnknown is returned when parsing an unknown drain policy.
var ErrDrainPolicyUnknown = errors.New("unknown drain policy")

// String returns the string representation of the DrainPolicy.
func (d DrainPolicy) String() string {
	switch d {
	case DrainPolicyDrain:
		return drainPolicyDrainStr
	case DrainPolicyStopOnDone:
		return drainPolicyStopStr
	default:
		return drainPolicyUnknownStr
	}
}

// ParseDrainPolicy creates a DrainPolicy from a string. The empty string is DrainPolicyDrain.
func ParseDrainPolicy(s string) (DrainPolicy, error) {
	switch s {
	case drainPolicyDrainStr, "":
		return DrainPolicyDrain, nil
	case drainPolicyStopStr:
		return DrainPolicyStopOnDone, nil
	default:
		return DrainPolicy(-1), ErrDrainPolicyUnknown
	}
}
