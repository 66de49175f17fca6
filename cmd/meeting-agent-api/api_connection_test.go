// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain/mocks"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/service"
	"github.com/agentmeet/meeting-agent-service/pkg/constants"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

func setupToggleAPI() (*MeetingAgentAPI, *mocks.MockMeetingRepository, *mocks.MockCallProvider, *mocks.MockRealtimeProvider) {
	meetingRepo := &mocks.MockMeetingRepository{}
	agentRepo := &mocks.MockAgentRepository{}
	callProvider := &mocks.MockCallProvider{}
	realtime := &mocks.MockRealtimeProvider{}
	fetcher := &mocks.MockTranscriptFetcher{}

	meetingService := service.NewMeetingService(meetingRepo, agentRepo, callProvider, fetcher, service.ServiceConfig{})
	connectionService := service.NewAgentConnectionService(meetingRepo, agentRepo, callProvider, realtime)
	api := NewMeetingAgentAPI(meetingService, nil, connectionService, nil, nil, nil)
	return api, meetingRepo, callProvider, realtime
}

func toggleRequest(userUID, meetingUID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/meetings/"+meetingUID+"/agent/toggle", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), constants.PrincipalContextID, userUID)
	return req.WithContext(ctx)
}

func TestHandleToggleAgent(t *testing.T) {
	t.Run("rejects a caller who is not the host", func(t *testing.T) {
		api, meetingRepo, _, realtime := setupToggleAPI()
		meetingRepo.On("Get", mock.Anything, "m1").Return(&models.Meeting{
			UID:      "m1",
			UserUID:  "owner-1",
			AgentUID: "agent-1",
			Status:   models.MeetingStatusActive,
		}, nil)

		rec := httptest.NewRecorder()
		api.Routes().ServeHTTP(rec, toggleRequest("intruder-9", "m1", `{"enable":true}`))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		realtime.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reports the settled session seconds on toggle off", func(t *testing.T) {
		api, meetingRepo, callProvider, _ := setupToggleAPI()
		stored := &models.Meeting{
			UID:                "m1",
			UserUID:            "owner-1",
			AgentUID:           "agent-1",
			Status:             models.MeetingStatusActive,
			AgentActive:        true,
			AgentConnectedAt:   utils.TimePtr(time.Now().UTC().Add(-65 * time.Second)),
			AgentTotalDuration: 300,
		}
		meetingRepo.On("Get", mock.Anything, "m1").Return(stored, nil)
		callProvider.On("RemoveCallMembers", mock.Anything, "m1", []string{"agent-1"}).Return(nil)
		meetingRepo.On("UpdateFunc", mock.Anything, "m1", mock.Anything).Return(stored, nil)

		rec := httptest.NewRecorder()
		api.Routes().ServeHTTP(rec, toggleRequest("owner-1", "m1", `{"enable":false}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp agentToggleResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.False(t, resp.AgentActive)
		require.NotNil(t, resp.DurationSeconds)
		// The figure is this session's 65 seconds, not the new 365 total.
		assert.InDelta(t, 65, float64(*resp.DurationSeconds), 1)
	})
}
