// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package ai

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

func TestComplete(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"The team agreed to ship Friday."}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	reply, err := client.Complete(context.Background(), domain.CompletionRequest{
		System: "Summarize the meeting transcript.",
		Messages: []domain.CompletionMessage{
			{Role: "user", Content: "alice: let's ship friday\nbob: agreed"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "The team agreed to ship Friday.", reply)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Summarize the meeting transcript.", got.Messages[0].Content)
	assert.Equal(t, DefaultModel, got.Model)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.CompletionMessage{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUpstream, domain.GetErrorType(err))
}

func TestCompleteUpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.CompletionMessage{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUpstream, domain.GetErrorType(err))
}
