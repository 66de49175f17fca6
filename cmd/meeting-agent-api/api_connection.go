// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/service"
)

// agentTogglePayload is the request body for turning the meeting's agent on
// or off.
type agentTogglePayload struct {
	Enable bool `json:"enable"`
}

// agentToggleResponse reports the agent state after a toggle. The settled
// session duration is included when the agent was just disconnected.
type agentToggleResponse struct {
	Success         bool `json:"success"`
	AgentActive     bool `json:"agent_active"`
	DurationSeconds *int `json:"duration_seconds,omitempty"`
}

// handleToggleAgent connects or disconnects the meeting's agent. Only the
// meeting host may toggle; the agent's session time is billed to them. A
// toggle in the direction the meeting is already in is rejected; the
// caller's view was stale.
func (api *MeetingAgentAPI) handleToggleAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meetingUID := r.PathValue("uid")
	userUID, _ := principal(r)

	var payload agentTogglePayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := api.meetingService.GetMeeting(ctx, meetingUID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if meeting.UserUID != userUID {
		writeError(ctx, w, domain.NewForbiddenError("only the meeting host may toggle the agent"))
		return
	}

	resp := agentToggleResponse{Success: true, AgentActive: payload.Enable}
	if payload.Enable {
		if err := api.connectionService.Connect(ctx, meetingUID); err != nil {
			writeError(ctx, w, err)
			return
		}
	} else {
		settled, err := api.connectionService.Disconnect(ctx, meetingUID)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		resp.DurationSeconds = &settled
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// agentStatusResponse is the live view of the meeting's agent connection.
type agentStatusResponse struct {
	IsActive        bool                    `json:"is_active"`
	DurationSeconds int                     `json:"duration_seconds"`
	Phase           service.ConnectionPhase `json:"phase"`
	Since           *time.Time              `json:"since,omitempty"`
}

// handleAgentStatus reports the agent's connection state with the duration
// counted up to now, so a connected agent's figure grows on every read.
func (api *MeetingAgentAPI) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meetingUID := r.PathValue("uid")

	meeting, err := api.meetingService.GetMeeting(ctx, meetingUID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	duration := meeting.AgentTotalDuration
	if meeting.AgentActive && meeting.AgentConnectedAt != nil {
		if live := int(time.Now().UTC().Sub(*meeting.AgentConnectedAt).Seconds()); live > 0 {
			duration += live
		}
	}

	status := api.connectionService.Status(meetingUID)
	writeJSON(ctx, w, http.StatusOK, agentStatusResponse{
		IsActive:        meeting.AgentActive,
		DurationSeconds: duration,
		Phase:           status.Phase,
		Since:           status.Since,
	})
}
