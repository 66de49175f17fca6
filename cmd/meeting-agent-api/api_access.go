// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"
)

func (api *MeetingAgentAPI) handleCanJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, email := principal(r)

	decision, err := api.accessService.CanJoin(ctx, userUID, email, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, decision)
}

func (api *MeetingAgentAPI) handleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, email := principal(r)

	result, err := api.accessService.Join(ctx, userUID, email, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, result)
}

func (api *MeetingAgentAPI) handleLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	if err := api.accessService.Leave(ctx, userUID, r.PathValue("uid")); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *MeetingAgentAPI) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	participants, err := api.accessService.ListParticipants(ctx, userUID, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, participants)
}

// invitationPayload is the request body for inviting a user by email.
type invitationPayload struct {
	Email string `json:"email"`
}

func (api *MeetingAgentAPI) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	var payload invitationPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	invitation, err := api.accessService.Invite(ctx, userUID, r.PathValue("uid"), payload.Email)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, invitation)
}

func (api *MeetingAgentAPI) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	invitations, err := api.accessService.ListInvitations(ctx, userUID, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, invitations)
}
