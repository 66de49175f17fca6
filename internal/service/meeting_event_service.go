// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/constants"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

// AgentConnector is the slice of the connection manager the event processor
// drives: the agent joins when a session starts and is torn down when it
// ends.
type AgentConnector interface {
	Connect(ctx context.Context, meetingUID string) error
	Disconnect(ctx context.Context, meetingUID string) (int, error)
}

// MeetingEventService applies provider webhook events to meeting state. It
// is the only writer of the UPCOMING, ACTIVE and PROCESSING transitions;
// clients can only cancel. Every handler is idempotent because the broker
// delivers at least once.
type MeetingEventService struct {
	meetingRepo     domain.MeetingRepository
	agentRepo       domain.AgentRepository
	participantRepo domain.ParticipantRepository
	callProvider    domain.CallProvider
	connector       AgentConnector
	messageBuilder  domain.MessageBuilder
	chatProvider    domain.ChatProvider
	completions     domain.CompletionProvider
}

// NewMeetingEventService creates a new MeetingEventService.
func NewMeetingEventService(
	meetingRepo domain.MeetingRepository,
	agentRepo domain.AgentRepository,
	participantRepo domain.ParticipantRepository,
	callProvider domain.CallProvider,
	connector AgentConnector,
	messageBuilder domain.MessageBuilder,
	chatProvider domain.ChatProvider,
	completions domain.CompletionProvider,
) *MeetingEventService {
	return &MeetingEventService{
		meetingRepo:     meetingRepo,
		agentRepo:       agentRepo,
		participantRepo: participantRepo,
		callProvider:    callProvider,
		connector:       connector,
		messageBuilder:  messageBuilder,
		chatProvider:    chatProvider,
		completions:     completions,
	}
}

// ServiceReady checks if the service is ready to process events.
func (s *MeetingEventService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.agentRepo != nil &&
		s.connector != nil &&
		s.messageBuilder != nil
}

// HandleSessionStarted moves the meeting to ACTIVE and connects its agent.
// A duplicate delivery finds the meeting already ACTIVE and does nothing.
func (s *MeetingEventService) HandleSessionStarted(ctx context.Context, payload models.SessionStartedPayload) error {
	meetingUID := payload.Call.MeetingUID()
	if meetingUID == "" {
		return domain.NewValidationError("session started event does not identify a meeting")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	started := false
	_, err := s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		switch meeting.Status {
		case models.MeetingStatusUpcoming:
			now := time.Now().UTC()
			meeting.Status = models.MeetingStatusActive
			meeting.StartedAt = utils.TimePtr(now)
			meeting.UpdatedAt = utils.TimePtr(now)
			started = true
			return nil
		case models.MeetingStatusActive:
			// Duplicate delivery.
			return nil
		default:
			return domain.NewConflictError(
				fmt.Sprintf("session started for meeting in status '%s'", meeting.Status))
		}
	})
	if err != nil {
		return err
	}
	if !started {
		slog.InfoContext(ctx, "ignoring duplicate session started event")
		return nil
	}

	slog.InfoContext(ctx, "meeting is active")

	// The agent rides along automatically. Its failure leaves the meeting
	// running without an agent rather than failing the event.
	if err := s.connector.Connect(ctx, meetingUID); err != nil {
		slog.ErrorContext(ctx, "failed to connect agent on session start", logging.ErrKey, err)
	}
	return nil
}

// HandleParticipantLeft records the departure. When the departing identity is
// the meeting's agent the call is ended: an agent alone in a call, or a call
// whose agent the provider kicked, should wind down rather than linger.
func (s *MeetingEventService) HandleParticipantLeft(ctx context.Context, payload models.ParticipantLeftPayload) error {
	meetingUID := models.MeetingUIDFromCallCID(payload.CallCID)
	if meetingUID == "" {
		return domain.NewValidationError("participant left event does not identify a meeting")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return err
	}

	userID := payload.Participant.UserID
	if userID == meeting.AgentUID {
		slog.InfoContext(ctx, "agent left the call, ending it")
		if err := s.callProvider.EndCall(ctx, meetingUID); err != nil {
			slog.ErrorContext(ctx, "failed to end call after agent left", logging.ErrKey, err)
			return err
		}
		return nil
	}

	now := time.Now().UTC()
	_, err = s.participantRepo.UpdateSetFunc(ctx, meetingUID, func(set *models.ParticipantSet) error {
		if participant := set.Find(userID); participant.IsPresent() {
			participant.LeftAt = utils.TimePtr(now)
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record participant departure", logging.ErrKey, err,
			"user_uid", userID)
	}
	return nil
}

// HandleSessionEnded moves the meeting to PROCESSING and settles the agent.
// The disconnect runs first so billing stops at the session boundary even if
// the status write needs a retry.
func (s *MeetingEventService) HandleSessionEnded(ctx context.Context, payload models.SessionEndedPayload) error {
	meetingUID := payload.Call.MeetingUID()
	if meetingUID == "" {
		return domain.NewValidationError("session ended event does not identify a meeting")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return err
	}
	if meeting.AgentActive {
		if _, err := s.connector.Disconnect(ctx, meetingUID); err != nil {
			slog.ErrorContext(ctx, "failed to disconnect agent on session end", logging.ErrKey, err)
		}
	}

	_, err = s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		switch meeting.Status {
		case models.MeetingStatusActive:
			now := time.Now().UTC()
			meeting.Status = models.MeetingStatusProcessing
			meeting.EndedAt = utils.TimePtr(now)
			meeting.UpdatedAt = utils.TimePtr(now)
			return nil
		case models.MeetingStatusProcessing, models.MeetingStatusCompleted:
			// Duplicate delivery, or artifacts arrived first.
			return nil
		default:
			return domain.NewConflictError(
				fmt.Sprintf("session ended for meeting in status '%s'", meeting.Status))
		}
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "meeting is processing")
	return nil
}

// HandleTranscriptionReady persists the transcript URL and enqueues the
// summarization job that will complete the meeting.
func (s *MeetingEventService) HandleTranscriptionReady(ctx context.Context, payload models.TranscriptionReadyPayload) error {
	meetingUID := models.MeetingUIDFromCallCID(payload.CallCID)
	if meetingUID == "" {
		return domain.NewValidationError("transcription ready event does not identify a meeting")
	}
	url := payload.CallTranscription.URL
	if url == "" {
		return domain.NewValidationError("transcription ready event has no URL")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	_, err := s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		// The URL is write-once; a late duplicate must not clobber it.
		if meeting.TranscriptURL != "" {
			return nil
		}
		meeting.TranscriptURL = url
		meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())
		return nil
	})
	if err != nil {
		return err
	}

	err = s.messageBuilder.SendSummarizeMeeting(ctx, models.SummarizeMeetingMessage{
		MeetingUID:    meetingUID,
		TranscriptURL: url,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to enqueue summarization job", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "transcript stored, summarization enqueued")
	return nil
}

// HandleRecordingReady persists the recording URL.
func (s *MeetingEventService) HandleRecordingReady(ctx context.Context, payload models.RecordingReadyPayload) error {
	meetingUID := models.MeetingUIDFromCallCID(payload.CallCID)
	if meetingUID == "" {
		return domain.NewValidationError("recording ready event does not identify a meeting")
	}
	url := payload.CallRecording.URL
	if url == "" {
		return domain.NewValidationError("recording ready event has no URL")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	_, err := s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		if meeting.RecordingURL != "" {
			return nil
		}
		meeting.RecordingURL = url
		meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "recording stored")
	return nil
}

// HandleChatMessage answers questions asked in the chat of a completed
// meeting. Only human messages get replies, and only once the summary exists;
// anything earlier is ignored so the agent never talks to itself or answers
// before it has read the meeting.
func (s *MeetingEventService) HandleChatMessage(ctx context.Context, payload models.ChatMessagePayload) error {
	meetingUID := payload.ChannelID
	if meetingUID == "" {
		return domain.NewValidationError("chat message event does not identify a meeting")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return err
	}
	if meeting.Status != models.MeetingStatusCompleted {
		slog.InfoContext(ctx, "ignoring chat message for non-completed meeting",
			"status", string(meeting.Status))
		return nil
	}
	if payload.User.ID == meeting.AgentUID {
		return nil
	}
	if payload.Message.Text == "" {
		return nil
	}

	agent, err := s.agentRepo.Get(ctx, meeting.AgentUID)
	if err != nil {
		return err
	}

	history, err := s.chatProvider.ChannelMessages(ctx, meetingUID, constants.ChatContextMessageLimit)
	if err != nil {
		slog.WarnContext(ctx, "failed to load chat history, replying without it", logging.ErrKey, err)
		history = nil
	}

	messages := make([]domain.CompletionMessage, 0, len(history)+1)
	for _, msg := range history {
		role := "user"
		if msg.UserID == meeting.AgentUID {
			role = "assistant"
		}
		messages = append(messages, domain.CompletionMessage{Role: role, Content: msg.Text})
	}
	messages = append(messages, domain.CompletionMessage{Role: "user", Content: payload.Message.Text})

	reply, err := s.completions.Complete(ctx, domain.CompletionRequest{
		System:   chatReplyInstructions(agent, meeting),
		Messages: messages,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate chat reply", logging.ErrKey, err)
		return err
	}

	if err := s.chatProvider.SendMessage(ctx, meetingUID, meeting.AgentUID, reply); err != nil {
		slog.ErrorContext(ctx, "failed to send chat reply", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "sent post-meeting chat reply")
	return nil
}

// chatReplyInstructions builds the system prompt for post-meeting replies:
// the agent's persona plus the meeting summary as its memory of the call.
func chatReplyInstructions(agent *models.Agent, meeting *models.Meeting) string {
	return fmt.Sprintf(
		"You are an AI assistant that attended the meeting %q and is now answering follow-up questions in its chat.\n\n"+
			"Your original instructions for the meeting were:\n%s\n\n"+
			"Summary of the meeting:\n%s\n\n"+
			"Answer based on the summary and the conversation. If the answer is not in the meeting, say so.",
		meeting.Name, agent.Instructions, meeting.Summary)
}
