// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/internal/service"
)

// WebhookEventHandler consumes the queue-published call-provider events and
// summarization jobs, and applies them through the event and summarizer
// services.
type WebhookEventHandler struct {
	eventService      *service.MeetingEventService
	summarizerService *service.SummarizerService
}

// NewWebhookEventHandler creates a new WebhookEventHandler.
func NewWebhookEventHandler(
	eventService *service.MeetingEventService,
	summarizerService *service.SummarizerService,
) *WebhookEventHandler {
	return &WebhookEventHandler{
		eventService:      eventService,
		summarizerService: summarizerService,
	}
}

// HandlerReady checks if the handler's services are ready.
func (h *WebhookEventHandler) HandlerReady() bool {
	return h.eventService.ServiceReady() && h.summarizerService.ServiceReady()
}

// HandleMessage implements [domain.MessageHandler].
func (h *WebhookEventHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) error{
		models.WebhookSessionStartedSubject:     h.HandleSessionStarted,
		models.WebhookParticipantLeftSubject:    h.HandleParticipantLeft,
		models.WebhookSessionEndedSubject:       h.HandleSessionEnded,
		models.WebhookTranscriptionReadySubject: h.HandleTranscriptionReady,
		models.WebhookRecordingReadySubject:     h.HandleRecordingReady,
		models.WebhookChatMessageSubject:        h.HandleChatMessage,
		models.MeetingSummarizeSubject:          h.HandleSummarizeMeeting,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		h.respond(ctx, msg)
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
	}
	h.respond(ctx, msg)
}

func (h *WebhookEventHandler) respond(ctx context.Context, msg domain.Message) {
	if !msg.HasReply() {
		return
	}
	if err := msg.Respond(nil); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}

// decodeWebhookPayload unwraps the event envelope and decodes its payload
// into the handler's typed shape.
func decodeWebhookPayload(ctx context.Context, msg domain.Message, out any) error {
	var event models.WebhookEventMessage
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal webhook event", logging.ErrKey, err)
		return err
	}
	if err := mapstructure.Decode(event.Payload, out); err != nil {
		slog.ErrorContext(ctx, "failed to decode webhook payload", logging.ErrKey, err,
			"event_type", event.EventType)
		return err
	}
	return nil
}

// HandleSessionStarted handles call.session_started events.
func (h *WebhookEventHandler) HandleSessionStarted(ctx context.Context, msg domain.Message) error {
	var payload models.SessionStartedPayload
	if err := decodeWebhookPayload(ctx, msg, &payload); err != nil {
		return err
	}
	return h.eventService.HandleSessionStarted(ctx, payload)
}

// HandleParticipantLeft handles call.session_participant_left events.
func (h *WebhookEventHandler) HandleParticipantLeft(ctx context.Context, msg domain.Message) error {
	var payload models.ParticipantLeftPayload
	if err := decodeWebhookPayload(ctx, msg, &payload); err != nil {
		return err
	}
	return h.eventService.HandleParticipantLeft(ctx, payload)
}

// HandleSessionEnded handles call.session_ended events.
func (h *WebhookEventHandler) HandleSessionEnded(ctx context.Context, msg domain.Message) error {
	var payload models.SessionEndedPayload
	if err := decodeWebhookPayload(ctx, msg, &payload); err != nil {
		return err
	}
	return h.eventService.HandleSessionEnded(ctx, payload)
}

// HandleTranscriptionReady handles call.transcription_ready events.
func (h *WebhookEventHandler) HandleTranscriptionReady(ctx context.Context, msg domain.Message) error {
	var payload models.TranscriptionReadyPayload
	if err := decodeWebhookPayload(ctx, msg, &payload); err != nil {
		return err
	}
	return h.eventService.HandleTranscriptionReady(ctx, payload)
}

// HandleRecordingReady handles call.recording_ready events.
func (h *WebhookEventHandler) HandleRecordingReady(ctx context.Context, msg domain.Message) error {
	var payload models.RecordingReadyPayload
	if err := decodeWebhookPayload(ctx, msg, &payload); err != nil {
		return err
	}
	return h.eventService.HandleRecordingReady(ctx, payload)
}

// HandleChatMessage handles message.new chat events.
func (h *WebhookEventHandler) HandleChatMessage(ctx context.Context, msg domain.Message) error {
	var payload models.ChatMessagePayload
	if err := decodeWebhookPayload(ctx, msg, &payload); err != nil {
		return err
	}
	return h.eventService.HandleChatMessage(ctx, payload)
}

// HandleSummarizeMeeting handles summarization jobs.
func (h *WebhookEventHandler) HandleSummarizeMeeting(ctx context.Context, msg domain.Message) error {
	var job models.SummarizeMeetingMessage
	if err := json.Unmarshal(msg.Data(), &job); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal summarize job", logging.ErrKey, err)
		return err
	}
	return h.summarizerService.SummarizeMeeting(ctx, job)
}
