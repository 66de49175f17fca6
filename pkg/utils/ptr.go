// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package utils

import "time"

// TimePtr converts a time.Time to a pointer to a time.Time.
func TimePtr(t time.Time) *time.Time {
	return &t
}
