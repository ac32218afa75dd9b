// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name        string
		report      bool
		verbose     bool
		first       string // "stdout" or "stderr"
		wantPrefix  bool
		secondEmits bool
	}{
		{name: "off stdout", first: "stdout"},
		{name: "off stderr", first: "stderr"},
		{name: "report stdout", report: true, first: "stdout", wantPrefix: true},
		{name: "report stderr", report: true, first: "stderr", wantPrefix: true},
		{name: "report verbose stdout", report: true, verbose: true, first: "stdout", wantPrefix: true},
		{name: "report verbose stderr", report: true, verbose: true, first: "stderr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport("/etc/cron.daily/10foo", tt.report, tt.verbose)
			assert.False(t, r.Used())

			first, second := r.Stdout, r.Stderr
			if tt.first == "stderr" {
				first, second = r.Stderr, r.Stdout
			}

			prefix, ok := first()
			assert.Equal(t, tt.wantPrefix, ok)

			if ok {
				assert.Equal(t, "/etc/cron.daily/10foo:\n", prefix)
			}

			assert.True(t, r.Used())

			_, ok = second()
			assert.False(t, ok, "prefix is printed at most once")

			_, ok = first()
			assert.False(t, ok, "prefix is printed at most once")
		})
	}
}
