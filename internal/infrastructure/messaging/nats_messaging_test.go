// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

type mockNatsConn struct {
	connected  bool
	publishErr error
	published  []publishedMessage
}

type publishedMessage struct {
	subject string
	data    []byte
}

func (m *mockNatsConn) IsConnected() bool { return m.connected }

func (m *mockNatsConn) Publish(subj string, data []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishedMessage{subject: subj, data: data})
	return nil
}

func TestPublishWebhookEvent(t *testing.T) {
	conn := &mockNatsConn{connected: true}
	builder := NewMessageBuilder(conn)

	message := models.WebhookEventMessage{
		EventType: models.EventTypeSessionStarted,
		EventTS:   1735689600000,
		Payload: map[string]any{
			"call": map[string]any{"id": "meeting-123"},
		},
	}

	err := builder.PublishWebhookEvent(context.Background(), models.WebhookSessionStartedSubject, message)
	require.NoError(t, err)
	require.Len(t, conn.published, 1)
	assert.Equal(t, models.WebhookSessionStartedSubject, conn.published[0].subject)

	var got models.WebhookEventMessage
	require.NoError(t, json.Unmarshal(conn.published[0].data, &got))
	assert.Equal(t, models.EventTypeSessionStarted, got.EventType)
	assert.Equal(t, int64(1735689600000), got.EventTS)
}

func TestPublishWebhookEventPublishError(t *testing.T) {
	conn := &mockNatsConn{connected: true, publishErr: errors.New("nats: connection closed")}
	builder := NewMessageBuilder(conn)

	err := builder.PublishWebhookEvent(context.Background(), models.WebhookSessionEndedSubject, models.WebhookEventMessage{})
	require.Error(t, err)
}

func TestSendSummarizeMeeting(t *testing.T) {
	conn := &mockNatsConn{connected: true}
	builder := NewMessageBuilder(conn)

	err := builder.SendSummarizeMeeting(context.Background(), models.SummarizeMeetingMessage{
		MeetingUID:    "meeting-123",
		TranscriptURL: "https://example.com/transcripts/meeting-123.jsonl",
	})
	require.NoError(t, err)
	require.Len(t, conn.published, 1)
	assert.Equal(t, models.MeetingSummarizeSubject, conn.published[0].subject)

	var got models.SummarizeMeetingMessage
	require.NoError(t, json.Unmarshal(conn.published[0].data, &got))
	assert.Equal(t, "meeting-123", got.MeetingUID)
}
