// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookBodyCaptureMiddleware(t *testing.T) {
	payload := []byte(`{"type":"call.session_started"}`)

	var capturedBody []byte
	var captured bool
	var handlerBody []byte

	handler := WebhookBodyCaptureMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, captured = GetRawBodyFromContext(r.Context())
		handlerBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, captured)
	assert.Equal(t, payload, capturedBody)
	// Body must still be readable by the handler.
	assert.Equal(t, payload, handlerBody)
}

func TestWebhookBodyCaptureMiddlewareSkipsOtherPaths(t *testing.T) {
	handler := WebhookBodyCaptureMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, captured := GetRawBodyFromContext(r.Context())
		assert.False(t, captured)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/meetings", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
