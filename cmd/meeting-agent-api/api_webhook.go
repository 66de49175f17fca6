// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"net/http"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/middleware"
	"github.com/agentmeet/meeting-agent-service/internal/service"
	"github.com/agentmeet/meeting-agent-service/pkg/constants"
)

// webhookEnvelope is the wire shape of a call provider webhook delivery.
type webhookEnvelope struct {
	Event   string         `json:"event"`
	EventTS int64          `json:"event_ts"`
	Payload map[string]any `json:"payload"`
}

// handleWebhook is the intake endpoint for call provider events. The
// signature is computed over the raw body, which the body capture middleware
// preserves before JSON decoding consumes it.
func (api *MeetingAgentAPI) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawBody, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		writeError(ctx, w, domain.NewInternalError("webhook body not captured"))
		return
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid webhook body", err))
		return
	}

	err := api.webhookService.ProcessWebhookEvent(ctx, service.WebhookRequest{
		Event:     envelope.Event,
		EventTS:   envelope.EventTS,
		Payload:   envelope.Payload,
		APIKey:    r.Header.Get(constants.WebhookAPIKeyHeader),
		Signature: r.Header.Get(constants.WebhookSignatureHeader),
		Timestamp: r.Header.Get(constants.WebhookTimestampHeader),
		RawBody:   rawBody,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
