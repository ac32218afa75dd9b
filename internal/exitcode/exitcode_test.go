// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package exitcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSignal(t *testing.T) {
	assert.Equal(t, 137, FromSignal(9))
	assert.Equal(t, 143, FromSignal(15))
}
