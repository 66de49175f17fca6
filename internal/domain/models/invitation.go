// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package models

import "time"

// InvitationStatus is the status of a meeting invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
)

// Invitation invites one email address to one meeting. Re-inviting the same
// address resets the status to pending.
type Invitation struct {
	Email      string           `json:"email"`
	Status     InvitationStatus `json:"status"`
	InviterUID string           `json:"inviter_uid"`
	SentAt     *time.Time       `json:"sent_at,omitempty"`
}

// InvitationSet is the key-value store representation of all invitations of
// one meeting, keyed by the meeting UID. A single value keeps the
// (meeting, email) uniqueness rule enforceable with one compare-and-swap.
type InvitationSet struct {
	MeetingUID  string       `json:"meeting_uid"`
	Invitations []Invitation `json:"invitations,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// Find returns the invitation for the given email, or nil.
func (s *InvitationSet) Find(email string) *Invitation {
	if s == nil {
		return nil
	}
	for i := range s.Invitations {
		if s.Invitations[i].Email == email {
			return &s.Invitations[i]
		}
	}
	return nil
}
