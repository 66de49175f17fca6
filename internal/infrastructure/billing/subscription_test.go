// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

func TestHasActiveSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/active", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if r.URL.Query().Get("user_id") == "premium-user" {
			_, _ = w.Write([]byte(`{"active":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"active":false}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	active, err := client.HasActiveSubscription(context.Background(), "premium-user")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = client.HasActiveSubscription(context.Background(), "free-user")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHasActiveSubscriptionUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.HasActiveSubscription(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUpstream, domain.GetErrorType(err))
}

func TestStaticChecker(t *testing.T) {
	checker := NewStaticChecker([]string{"premium-user"})

	active, err := checker.HasActiveSubscription(context.Background(), "premium-user")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = checker.HasActiveSubscription(context.Background(), "free-user")
	require.NoError(t, err)
	assert.False(t, active)
}
