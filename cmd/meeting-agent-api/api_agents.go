// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/agentmeet/meeting-agent-service/internal/service"
)

// agentPayload is the request body for creating or updating an agent.
type agentPayload struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

func (api *MeetingAgentAPI) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	var payload agentPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	agent, err := api.agentService.CreateAgent(ctx, userUID, service.CreateAgentRequest{
		Name:         payload.Name,
		Instructions: payload.Instructions,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, agent)
}

func (api *MeetingAgentAPI) handleListAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	agents, err := api.agentService.ListAgents(ctx, userUID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"agents": agents})
}

func (api *MeetingAgentAPI) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	agent, err := api.agentService.GetAgent(ctx, userUID, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agent)
}

func (api *MeetingAgentAPI) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	var payload agentPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	agent, err := api.agentService.UpdateAgent(ctx, userUID, r.PathValue("uid"), service.UpdateAgentRequest{
		Name:         payload.Name,
		Instructions: payload.Instructions,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agent)
}

func (api *MeetingAgentAPI) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	if err := api.agentService.DeleteAgent(ctx, userUID, r.PathValue("uid")); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
