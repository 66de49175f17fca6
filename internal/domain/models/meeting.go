// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus is the lifecycle status of a meeting.
type MeetingStatus string

const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// IsTerminal reports whether the status never transitions further.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusCancelled
}

// IsValid reports whether the status is one of the known lifecycle states.
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusUpcoming, MeetingStatusActive, MeetingStatusProcessing,
		MeetingStatusCompleted, MeetingStatusCancelled:
		return true
	}
	return false
}

// MeetingVisibility controls who may join a meeting.
type MeetingVisibility string

const (
	VisibilityPublic     MeetingVisibility = "public"
	VisibilityRestricted MeetingVisibility = "restricted"
)

// Meeting is the key-value store representation of a meeting. The meeting UID
// doubles as the call ID at the call provider.
type Meeting struct {
	UID             string            `json:"uid"`
	UserUID         string            `json:"user_uid"`
	AgentUID        string            `json:"agent_uid"`
	Name            string            `json:"name"`
	Status          MeetingStatus     `json:"status"`
	Visibility      MeetingVisibility `json:"visibility"`
	MaxParticipants int               `json:"max_participants,omitempty"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	EndedAt         *time.Time        `json:"ended_at,omitempty"`
	TranscriptURL   string            `json:"transcript_url,omitempty"`
	RecordingURL    string            `json:"recording_url,omitempty"`
	Summary         string            `json:"summary,omitempty"`

	// Agent telemetry. AgentActive implies AgentConnectedAt is set; once
	// AgentActive is cleared the just-ended session has been folded into
	// AgentTotalDuration, which never decreases.
	AgentActive         bool       `json:"agent_active"`
	AgentConnectedAt    *time.Time `json:"agent_connected_at,omitempty"`
	AgentDisconnectedAt *time.Time `json:"agent_disconnected_at,omitempty"`
	AgentTotalDuration  int        `json:"agent_total_duration"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
