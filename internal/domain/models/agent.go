// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package models

import "time"

// Agent is a configured AI persona that can be connected to a meeting's call.
// Edits to an agent apply to future meetings only; the connection manager
// reads the instructions once at connect time.
type Agent struct {
	UID          string     `json:"uid"`
	UserUID      string     `json:"user_uid"`
	Name         string     `json:"name"`
	Instructions string     `json:"instructions"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
