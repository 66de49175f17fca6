// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/internal/middleware"
	"github.com/agentmeet/meeting-agent-service/internal/service"
)

// MeetingAgentAPI is the HTTP surface of the service. Each api_*.go file
// holds the handlers for one resource.
type MeetingAgentAPI struct {
	meetingService    *service.MeetingService
	agentService      *service.AgentService
	connectionService *service.AgentConnectionService
	accessService     *service.AccessService
	usageService      *service.UsageService
	webhookService    *service.WebhookService
}

// NewMeetingAgentAPI creates a new MeetingAgentAPI.
func NewMeetingAgentAPI(
	meetingService *service.MeetingService,
	agentService *service.AgentService,
	connectionService *service.AgentConnectionService,
	accessService *service.AccessService,
	usageService *service.UsageService,
	webhookService *service.WebhookService,
) *MeetingAgentAPI {
	return &MeetingAgentAPI{
		meetingService:    meetingService,
		agentService:      agentService,
		connectionService: connectionService,
		accessService:     accessService,
		usageService:      usageService,
		webhookService:    webhookService,
	}
}

// Routes builds the request mux for the API.
func (api *MeetingAgentAPI) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /livez", api.handleLivez)
	mux.HandleFunc("GET /readyz", api.handleReadyz)

	mux.HandleFunc("POST /webhook", api.handleWebhook)

	mux.HandleFunc("POST /meetings", api.handleCreateMeeting)
	mux.HandleFunc("GET /meetings", api.handleListMeetings)
	mux.HandleFunc("GET /meetings/{uid}", api.handleGetMeeting)
	mux.HandleFunc("PUT /meetings/{uid}", api.handleUpdateMeeting)
	mux.HandleFunc("DELETE /meetings/{uid}", api.handleCancelMeeting)
	mux.HandleFunc("GET /meetings/{uid}/transcript", api.handleGetTranscript)

	mux.HandleFunc("POST /agents", api.handleCreateAgent)
	mux.HandleFunc("GET /agents", api.handleListAgents)
	mux.HandleFunc("GET /agents/{uid}", api.handleGetAgent)
	mux.HandleFunc("PUT /agents/{uid}", api.handleUpdateAgent)
	mux.HandleFunc("DELETE /agents/{uid}", api.handleDeleteAgent)

	mux.HandleFunc("POST /meetings/{uid}/agent/toggle", api.handleToggleAgent)
	mux.HandleFunc("GET /meetings/{uid}/agent/status", api.handleAgentStatus)

	mux.HandleFunc("POST /meetings/{uid}/can-join", api.handleCanJoin)
	mux.HandleFunc("POST /meetings/{uid}/join", api.handleJoin)
	mux.HandleFunc("POST /meetings/{uid}/leave", api.handleLeave)
	mux.HandleFunc("GET /meetings/{uid}/participants", api.handleListParticipants)
	mux.HandleFunc("POST /meetings/{uid}/invitations", api.handleCreateInvitation)
	mux.HandleFunc("GET /meetings/{uid}/invitations", api.handleListInvitations)

	mux.HandleFunc("GET /meetings/{uid}/usage", api.handleMeetingUsage)
	mux.HandleFunc("GET /usage", api.handleAccountUsage)

	return mux
}

// handleLivez reports process liveness.
func (api *MeetingAgentAPI) handleLivez(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// handleReadyz reports readiness of every service the API depends on.
func (api *MeetingAgentAPI) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	ready := api.meetingService.ServiceReady() &&
		api.agentService.ServiceReady() &&
		api.connectionService.ServiceReady() &&
		api.accessService.ServiceReady() &&
		api.usageService.ServiceReady() &&
		api.webhookService.ServiceReady()
	if !ready {
		http.Error(w, "service not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// principal pulls the authenticated user out of the request context. The
// authorization middleware guarantees it is set on protected routes.
func principal(r *http.Request) (userUID string, email string) {
	userUID, _ = middleware.PrincipalFromContext(r.Context())
	email, _ = middleware.EmailFromContext(r.Context())
	return userUID, email
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("invalid request body", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "error encoding response body", logging.ErrKey, err)
	}
}

// writeError maps a service error onto an HTTP status and a JSON error body.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	errType := domain.GetErrorType(err)
	status := http.StatusInternalServerError
	switch errType {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		status = http.StatusUnauthorized
	case domain.ErrorTypeForbidden:
		status = http.StatusForbidden
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeInternal:
		status = http.StatusInternalServerError
	case domain.ErrorTypeUpstream:
		status = http.StatusBadGateway
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	}

	// Internal details stay in the logs; the client sees the domain message.
	message := "internal server error"
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) && errType != domain.ErrorTypeInternal {
		message = domainErr.Message
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err)
	}

	writeJSON(ctx, w, status, map[string]string{"error": message})
}
