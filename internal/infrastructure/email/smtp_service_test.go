// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

func TestLoadInvitationTemplates(t *testing.T) {
	templates, err := loadInvitationTemplates()
	require.NoError(t, err)
	require.NotNil(t, templates.HTML)
	require.NotNil(t, templates.Text)
}

func TestRenderInvitationTemplates(t *testing.T) {
	templates, err := loadInvitationTemplates()
	require.NoError(t, err)

	invitation := domain.EmailInvitation{
		RecipientEmail: "guest@example.com",
		MeetingName:    "Quarterly Planning",
		InviterName:    "Alice",
		JoinLink:       "https://app.agentmeet.io/meetings/meeting-123/join",
	}

	html, err := renderTemplate(templates.HTML, invitation)
	require.NoError(t, err)
	assert.Contains(t, html, "Quarterly Planning")
	assert.Contains(t, html, "Alice")
	assert.Contains(t, html, invitation.JoinLink)

	text, err := renderTemplate(templates.Text, invitation)
	require.NoError(t, err)
	assert.Contains(t, text, "Quarterly Planning")
	assert.Contains(t, text, invitation.JoinLink)
}

func TestBuildEmailMessage(t *testing.T) {
	config := SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "noreply@agentmeet.io",
	}

	message := buildEmailMessage("guest@example.com", "Invitation: Quarterly Planning",
		"<p>html body</p>", "text body", config)

	assert.True(t, strings.HasPrefix(message, "From: noreply@agentmeet.io\r\n"))
	assert.Contains(t, message, "To: guest@example.com\r\n")
	assert.Contains(t, message, "Subject: Invitation: Quarterly Planning\r\n")
	assert.Contains(t, message, "Content-Type: multipart/alternative")
	assert.Contains(t, message, "text body")
	assert.Contains(t, message, "<p>html body</p>")
}

func TestNoOpServiceSendMeetingInvitation(t *testing.T) {
	service := NewNoOpService()

	err := service.SendMeetingInvitation(context.Background(), domain.EmailInvitation{
		RecipientEmail: "guest@example.com",
		MeetingName:    "Quarterly Planning",
	})
	assert.NoError(t, err)
}
