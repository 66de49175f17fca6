// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

func TestChannelMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/channels/meeting-123/messages", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[
			{"user_id":"user-1","text":"What did we decide?","sent_at":"2026-01-01T10:00:00Z"},
			{"user_id":"agent-1","text":"You agreed to ship Friday.","sent_at":"2026-01-01T10:00:05Z"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	messages, err := client.ChannelMessages(context.Background(), "meeting-123", 5)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user-1", messages[0].UserID)
	assert.Equal(t, "You agreed to ship Friday.", messages[1].Text)
}

func TestSendMessage(t *testing.T) {
	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/meeting-123/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	err := client.SendMessage(context.Background(), "meeting-123", "agent-1", "Here is the summary.")
	require.NoError(t, err)
	assert.Equal(t, "agent-1", got.UserID)
	assert.Equal(t, "Here is the summary.", got.Text)
}

func TestSendMessageUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "channel frozen", http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	err := client.SendMessage(context.Background(), "meeting-123", "agent-1", "hello")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUpstream, domain.GetErrorType(err))
}
