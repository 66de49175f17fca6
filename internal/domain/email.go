// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

import "context"

// EmailInvitation carries the data needed to send a meeting invitation email.
type EmailInvitation struct {
	RecipientEmail string
	MeetingName    string
	InviterName    string
	JoinLink       string
}

// EmailService sends meeting emails. Sending is best-effort from the access
// controller's perspective; a failed send never fails the invite itself.
type EmailService interface {
	SendMeetingInvitation(ctx context.Context, invitation EmailInvitation) error
}
