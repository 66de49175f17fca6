// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"
)

func (api *MeetingAgentAPI) handleMeetingUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	usage, err := api.usageService.GetMeetingUsage(ctx, userUID, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, usage)
}

func (api *MeetingAgentAPI) handleAccountUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userUID, _ := principal(r)

	usage, err := api.usageService.GetAccountUsage(ctx, userUID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, usage)
}
