// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package callprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.Handle("/", handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		BaseURL:        server.URL,
		AuthURL:        server.URL + "/oauth/token",
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
	return client, server
}

func TestCreateCall(t *testing.T) {
	var gotRequest createCallRequest
	var gotAuth string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calls/meeting-123", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.CreateCall(context.Background(), "meeting-123", "user-1",
		map[string]string{"meeting_uid": "meeting-123"},
		domain.CallSettings{TranscriptionEnabled: true, RecordingEnabled: true})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "user-1", gotRequest.CreatedByID)
	assert.Equal(t, "meeting-123", gotRequest.Custom["meeting_uid"])
	assert.Equal(t, recordingModeAuto, gotRequest.Settings.Transcription.Mode)
	assert.Equal(t, recordingModeAuto, gotRequest.Settings.Recording.Mode)
}

func TestCreateCallDisabledModes(t *testing.T) {
	var gotRequest createCallRequest

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.WriteHeader(http.StatusOK)
	}))

	err := client.CreateCall(context.Background(), "meeting-123", "user-1", nil, domain.CallSettings{})
	require.NoError(t, err)
	assert.Equal(t, recordingModeDisabled, gotRequest.Settings.Transcription.Mode)
	assert.Equal(t, recordingModeDisabled, gotRequest.Settings.Recording.Mode)
}

func TestEndCallUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":16,"message":"call not found"}`))
	}))

	err := client.EndCall(context.Background(), "missing-call")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUpstream, domain.GetErrorType(err))
	assert.Contains(t, err.Error(), "call not found")
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.EndCall(context.Background(), "meeting-123")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestNoRetryOnClientError(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":4,"message":"bad request"}`))
	}))

	err := client.EndCall(context.Background(), "meeting-123")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestUpsertUsers(t *testing.T) {
	var gotRequest upsertUsersRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.UpsertUsers(context.Background(), []domain.CallProviderUser{
		{ID: "agent-1", Name: "Notetaker", Role: "user"},
	})
	require.NoError(t, err)
	require.Len(t, gotRequest.Users, 1)
	assert.Equal(t, "agent-1", gotRequest.Users[0].ID)
}

func TestMintUserToken(t *testing.T) {
	var gotRequest mintTokenRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/agent-1/token", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"provider-token"}`))
	}))

	token, err := client.MintUserToken(context.Background(), "agent-1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "provider-token", token)
	assert.Equal(t, int64(3600), gotRequest.ValiditySeconds)
}
