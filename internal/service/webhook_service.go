// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
)

// WebhookService is the synchronous half of webhook intake. It authenticates
// the delivery, checks that the referenced meeting exists, and hands the
// event to the broker; the lifecycle transitions run asynchronously in the
// queue-subscribed handlers.
type WebhookService struct {
	meetingRepo      domain.MeetingRepository
	messageBuilder   domain.MessageBuilder
	webhookValidator domain.WebhookValidator
}

// WebhookRequest represents the webhook processing request.
type WebhookRequest struct {
	Event     string
	EventTS   int64
	Payload   map[string]any
	APIKey    string
	Signature string
	Timestamp string
	RawBody   []byte
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(
	meetingRepo domain.MeetingRepository,
	messageBuilder domain.MessageBuilder,
	webhookValidator domain.WebhookValidator,
) *WebhookService {
	return &WebhookService{
		meetingRepo:      meetingRepo,
		messageBuilder:   messageBuilder,
		webhookValidator: webhookValidator,
	}
}

// ServiceReady checks if the service is ready to process requests.
func (s *WebhookService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.messageBuilder != nil &&
		s.webhookValidator != nil
}

// ProcessWebhookEvent runs the synchronous intake checks and publishes the
// event. Unrecognized event types are acknowledged without publishing so the
// provider does not retry them forever.
func (s *WebhookService) ProcessWebhookEvent(ctx context.Context, req WebhookRequest) error {
	if err := s.validateRequest(req); err != nil {
		return err
	}

	if err := s.webhookValidator.ValidateAPIKey(req.APIKey); err != nil {
		return domain.NewUnauthorizedError("invalid webhook API key", err)
	}
	if err := s.webhookValidator.ValidateSignature(req.RawBody, req.Signature, req.Timestamp); err != nil {
		return domain.NewUnauthorizedError("invalid webhook signature", err)
	}

	kind := models.ParseEventKind(req.Event)
	if kind == models.EventKindUnrecognized {
		slog.InfoContext(ctx, "ignoring unrecognized webhook event", "event_type", req.Event)
		return nil
	}

	meetingUID, err := meetingUIDFromPayload(kind, req.Payload)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	exists, err := s.meetingRepo.Exists(ctx, meetingUID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("meeting not found for webhook event")
	}

	err = s.messageBuilder.PublishWebhookEvent(ctx, webhookSubject(kind), models.WebhookEventMessage{
		EventType: req.Event,
		EventTS:   req.EventTS,
		Payload:   req.Payload,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish webhook event", logging.ErrKey, err,
			"event_type", req.Event)
		return err
	}

	slog.InfoContext(ctx, "accepted webhook event", "event_type", req.Event)
	return nil
}

func (s *WebhookService) validateRequest(req WebhookRequest) error {
	if req.Event == "" {
		return domain.NewValidationError("missing event type field")
	}
	if req.Payload == nil {
		return domain.NewValidationError("missing payload field")
	}
	if req.APIKey == "" || req.Signature == "" || req.Timestamp == "" {
		return domain.NewUnauthorizedError("missing webhook authentication headers")
	}
	return nil
}

// meetingUIDFromPayload digs the meeting UID out of the event payload. Where
// the UID lives depends on the event shape: session events carry the call
// object with custom data, the rest carry a call CID or channel ID.
func meetingUIDFromPayload(kind models.EventKind, payload map[string]any) (string, error) {
	var uid string
	switch kind {
	case models.EventKindSessionStarted:
		var p models.SessionStartedPayload
		if err := mapstructure.Decode(payload, &p); err != nil {
			return "", domain.NewValidationError("malformed session started payload", err)
		}
		uid = p.Call.MeetingUID()
	case models.EventKindSessionEnded:
		var p models.SessionEndedPayload
		if err := mapstructure.Decode(payload, &p); err != nil {
			return "", domain.NewValidationError("malformed session ended payload", err)
		}
		uid = p.Call.MeetingUID()
	case models.EventKindParticipantLeft:
		var p models.ParticipantLeftPayload
		if err := mapstructure.Decode(payload, &p); err != nil {
			return "", domain.NewValidationError("malformed participant left payload", err)
		}
		uid = models.MeetingUIDFromCallCID(p.CallCID)
	case models.EventKindTranscriptionReady:
		var p models.TranscriptionReadyPayload
		if err := mapstructure.Decode(payload, &p); err != nil {
			return "", domain.NewValidationError("malformed transcription ready payload", err)
		}
		uid = models.MeetingUIDFromCallCID(p.CallCID)
	case models.EventKindRecordingReady:
		var p models.RecordingReadyPayload
		if err := mapstructure.Decode(payload, &p); err != nil {
			return "", domain.NewValidationError("malformed recording ready payload", err)
		}
		uid = models.MeetingUIDFromCallCID(p.CallCID)
	case models.EventKindChatMessage:
		var p models.ChatMessagePayload
		if err := mapstructure.Decode(payload, &p); err != nil {
			return "", domain.NewValidationError("malformed chat message payload", err)
		}
		uid = p.ChannelID
	default:
		return "", domain.NewValidationError(fmt.Sprintf("unsupported event kind '%s'", kind))
	}

	if uid == "" {
		return "", domain.NewValidationError("webhook payload does not identify a meeting")
	}
	return uid, nil
}

// webhookSubject maps an event kind to its NATS subject.
func webhookSubject(kind models.EventKind) string {
	switch kind {
	case models.EventKindSessionStarted:
		return models.WebhookSessionStartedSubject
	case models.EventKindParticipantLeft:
		return models.WebhookParticipantLeftSubject
	case models.EventKindSessionEnded:
		return models.WebhookSessionEndedSubject
	case models.EventKindTranscriptionReady:
		return models.WebhookTranscriptionReadySubject
	case models.EventKindRecordingReady:
		return models.WebhookRecordingReadySubject
	case models.EventKindChatMessage:
		return models.WebhookChatMessageSubject
	}
	return ""
}
