// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimePtr(t *testing.T) {
	now := time.Now().UTC()
	got := TimePtr(now)
	assert.NotNil(t, got)
	assert.Equal(t, now, *got)
}
