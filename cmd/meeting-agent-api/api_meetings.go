// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/service"
)

// meetingPayload is the request body for creating or updating a meeting.
type meetingPayload struct {
	Name            string `json:"name"`
	AgentUID        string `json:"agent_uid"`
	Visibility      string `json:"visibility"`
	MaxParticipants int    `json:"max_participants"`
}

func (api *MeetingAgentAPI) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	var payload meetingPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := api.meetingService.CreateMeeting(ctx, userUID, service.CreateMeetingRequest{
		Name:            payload.Name,
		AgentUID:        payload.AgentUID,
		Visibility:      models.MeetingVisibility(payload.Visibility),
		MaxParticipants: payload.MaxParticipants,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, meeting)
}

func (api *MeetingAgentAPI) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	meetings, err := api.meetingService.ListMeetings(ctx, userUID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"meetings": meetings})
}

func (api *MeetingAgentAPI) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meeting, err := api.meetingService.GetMeeting(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}

func (api *MeetingAgentAPI) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	var payload meetingPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := api.meetingService.UpdateMeeting(ctx, userUID, r.PathValue("uid"), service.UpdateMeetingRequest{
		Name:            payload.Name,
		AgentUID:        payload.AgentUID,
		Visibility:      models.MeetingVisibility(payload.Visibility),
		MaxParticipants: payload.MaxParticipants,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}

// handleCancelMeeting cancels an upcoming meeting. The meeting record is
// kept, so the response carries the cancelled meeting rather than 204.
func (api *MeetingAgentAPI) handleCancelMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	meeting, err := api.meetingService.CancelMeeting(ctx, userUID, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}

func (api *MeetingAgentAPI) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	entries, err := api.meetingService.GetTranscript(ctx, userUID, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"transcript": entries})
}
