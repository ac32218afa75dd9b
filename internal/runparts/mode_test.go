// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runparts

import (
	"testing"

	"github.com/matt-FFFFFF/runparts/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestModeOf(t *testing.T) {
	assert.Equal(t, ModeRun, ModeOf(&config.Config{}))
	assert.Equal(t, ModeTest, ModeOf(&config.Config{Test: true}))
	assert.Equal(t, ModeList, ModeOf(&config.Config{List: true}))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "run", ModeRun.String())
	assert.Equal(t, "test", ModeTest.String())
	assert.Equal(t, "list", ModeList.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
