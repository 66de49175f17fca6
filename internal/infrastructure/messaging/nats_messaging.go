// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
)

// INatsConn is the NATS connection interface needed by the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// PublishWebhookEvent publishes a validated call-provider webhook event to
// NATS for async processing.
func (m *MessageBuilder) PublishWebhookEvent(ctx context.Context, subject string, message models.WebhookEventMessage) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling webhook event into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "publishing webhook event to NATS",
		"subject", subject,
		"event_type", message.EventType,
		"event_ts", message.EventTS,
	)

	return m.sendMessage(ctx, subject, messageBytes)
}

// SendSummarizeMeeting enqueues a summarization job for a meeting whose
// transcript is ready.
func (m *MessageBuilder) SendSummarizeMeeting(ctx context.Context, message models.SummarizeMeetingMessage) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling summarize job into JSON", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "enqueueing meeting summarization job",
		"meeting_uid", message.MeetingUID,
	)

	return m.sendMessage(ctx, models.MeetingSummarizeSubject, messageBytes)
}
