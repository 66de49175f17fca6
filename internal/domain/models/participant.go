// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package models

import "time"

// ParticipantRole is the role of a participant within a meeting.
type ParticipantRole string

const (
	RoleHost        ParticipantRole = "host"
	RoleCoHost      ParticipantRole = "co_host"
	RoleParticipant ParticipantRole = "participant"
)

// Participant is one user's membership in one meeting. LeftAt is nil while
// the user is present; re-joining clears it.
type Participant struct {
	UserUID  string          `json:"user_uid"`
	Role     ParticipantRole `json:"role"`
	JoinedAt *time.Time      `json:"joined_at,omitempty"`
	LeftAt   *time.Time      `json:"left_at,omitempty"`
}

// IsPresent reports whether the participant is currently in the meeting.
func (p *Participant) IsPresent() bool {
	return p != nil && p.LeftAt == nil
}

// ParticipantSet is the key-value store representation of all participants of
// one meeting. Storing the set as a single value lets capacity checks and
// inserts happen under one compare-and-swap, so two joiners racing near the
// capacity limit cannot both get in.
type ParticipantSet struct {
	MeetingUID   string        `json:"meeting_uid"`
	Participants []Participant `json:"participants,omitempty"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

// Find returns the participant entry for the given user, or nil.
func (s *ParticipantSet) Find(userUID string) *Participant {
	if s == nil {
		return nil
	}
	for i := range s.Participants {
		if s.Participants[i].UserUID == userUID {
			return &s.Participants[i]
		}
	}
	return nil
}

// PresentCount returns the number of participants that have not left.
func (s *ParticipantSet) PresentCount() int {
	if s == nil {
		return 0
	}
	count := 0
	for i := range s.Participants {
		if s.Participants[i].LeftAt == nil {
			count++
		}
	}
	return count
}
