// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// MessageBuilder publishes service messages to the broker.
type MessageBuilder interface {
	// PublishWebhookEvent fans a validated provider event out to the
	// subject-keyed webhook handlers.
	PublishWebhookEvent(ctx context.Context, subject string, message models.WebhookEventMessage) error
	// SendSummarizeMeeting enqueues an asynchronous summarization job.
	// Fire-and-forget: the caller neither blocks on nor retries the job.
	SendSummarizeMeeting(ctx context.Context, message models.SummarizeMeetingMessage) error
}
