// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

// MeetingService owns meeting CRUD and the cancel-before-start rule. Status
// transitions beyond cancellation belong to the webhook event handlers.
type MeetingService struct {
	meetingRepo       domain.MeetingRepository
	agentRepo         domain.AgentRepository
	callProvider      domain.CallProvider
	transcriptFetcher domain.TranscriptFetcher
	config            ServiceConfig
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepo domain.MeetingRepository,
	agentRepo domain.AgentRepository,
	callProvider domain.CallProvider,
	transcriptFetcher domain.TranscriptFetcher,
	config ServiceConfig,
) *MeetingService {
	return &MeetingService{
		meetingRepo:       meetingRepo,
		agentRepo:         agentRepo,
		callProvider:      callProvider,
		transcriptFetcher: transcriptFetcher,
		config:            config,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *MeetingService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.agentRepo != nil &&
		s.callProvider != nil
}

// CreateMeetingRequest carries the client-supplied fields of a new meeting.
type CreateMeetingRequest struct {
	Name            string
	AgentUID        string
	Visibility      models.MeetingVisibility
	MaxParticipants int
}

// CreateMeeting creates a meeting in UPCOMING along with its call object at
// the provider. The meeting UID doubles as the call ID.
func (s *MeetingService) CreateMeeting(ctx context.Context, userUID string, req CreateMeetingRequest) (*models.Meeting, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("meeting name is required")
	}
	if req.AgentUID == "" {
		return nil, domain.NewValidationError("agent UID is required")
	}
	if req.MaxParticipants < 0 {
		return nil, domain.NewValidationError("max participants must not be negative")
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityRestricted
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityRestricted {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown visibility '%s'", visibility))
	}

	agent, err := s.agentRepo.Get(ctx, req.AgentUID)
	if err != nil {
		return nil, err
	}
	if agent.UserUID != userUID {
		return nil, domain.NewForbiddenError("agent belongs to a different user")
	}

	now := time.Now().UTC()
	meeting := &models.Meeting{
		UID:             uuid.New().String(),
		UserUID:         userUID,
		AgentUID:        req.AgentUID,
		Name:            req.Name,
		Status:          models.MeetingStatusUpcoming,
		Visibility:      visibility,
		MaxParticipants: req.MaxParticipants,
		CreatedAt:       utils.TimePtr(now),
		UpdatedAt:       utils.TimePtr(now),
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	// Create the call first so the webhook feed is live before the meeting
	// row exists locally; an orphaned call from a failed create is harmless.
	err = s.callProvider.CreateCall(ctx, meeting.UID, userUID,
		map[string]string{"meeting_uid": meeting.UID},
		domain.CallSettings{TranscriptionEnabled: true, RecordingEnabled: true})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create call at provider", logging.ErrKey, err)
		return nil, err
	}

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "created meeting", "agent_uid", meeting.AgentUID)
	return meeting, nil
}

// GetMeeting returns one meeting by UID.
func (s *MeetingService) GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if meetingUID == "" {
		return nil, domain.NewValidationError("meeting UID is required")
	}
	return s.meetingRepo.Get(ctx, meetingUID)
}

// ListMeetings returns the meetings owned by the user.
func (s *MeetingService) ListMeetings(ctx context.Context, userUID string) ([]*models.Meeting, error) {
	return s.meetingRepo.ListByUser(ctx, userUID)
}

// UpdateMeetingRequest carries the updatable fields of a meeting.
type UpdateMeetingRequest struct {
	Name            string
	AgentUID        string
	Visibility      models.MeetingVisibility
	MaxParticipants int
}

// UpdateMeeting updates a meeting's client-editable fields. Only the owner
// may update, and only while the meeting has not started: once the lifecycle
// is underway the agent binding and settings are frozen.
func (s *MeetingService) UpdateMeeting(ctx context.Context, userUID, meetingUID string, req UpdateMeetingRequest) (*models.Meeting, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("meeting name is required")
	}
	if req.MaxParticipants < 0 {
		return nil, domain.NewValidationError("max participants must not be negative")
	}
	if req.Visibility != "" &&
		req.Visibility != models.VisibilityPublic && req.Visibility != models.VisibilityRestricted {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown visibility '%s'", req.Visibility))
	}

	if req.AgentUID != "" {
		agent, err := s.agentRepo.Get(ctx, req.AgentUID)
		if err != nil {
			return nil, err
		}
		if agent.UserUID != userUID {
			return nil, domain.NewForbiddenError("agent belongs to a different user")
		}
	}

	return s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		if meeting.UserUID != userUID {
			return domain.NewForbiddenError("only the meeting owner may update the meeting")
		}
		if meeting.Status != models.MeetingStatusUpcoming {
			return domain.NewConflictError(
				fmt.Sprintf("meeting in status '%s' can no longer be updated", meeting.Status))
		}

		meeting.Name = req.Name
		if req.AgentUID != "" {
			meeting.AgentUID = req.AgentUID
		}
		if req.Visibility != "" {
			meeting.Visibility = req.Visibility
		}
		meeting.MaxParticipants = req.MaxParticipants
		meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())
		return nil
	})
}

// CancelMeeting cancels an UPCOMING meeting. Cancellation is the only status
// transition a client may request directly; everything else is driven by
// provider events.
func (s *MeetingService) CancelMeeting(ctx context.Context, userUID, meetingUID string) (*models.Meeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		if meeting.UserUID != userUID {
			return domain.NewForbiddenError("only the meeting owner may cancel the meeting")
		}
		if meeting.Status != models.MeetingStatusUpcoming {
			return domain.NewConflictError(
				fmt.Sprintf("meeting in status '%s' can no longer be cancelled", meeting.Status))
		}
		meeting.Status = models.MeetingStatusCancelled
		meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "cancelled meeting")
	return meeting, nil
}

// TranscriptEntry is one utterance with its speaker resolved to a display
// name.
type TranscriptEntry struct {
	SpeakerID   string  `json:"speaker_id"`
	SpeakerName string  `json:"speaker_name"`
	Text        string  `json:"text"`
	StartTS     float64 `json:"start_ts"`
	StopTS      float64 `json:"stop_ts"`
}

// GetTranscript downloads the meeting's transcript and resolves speaker IDs
// to names. The agent speaks under its agent UID; everyone else keeps their
// user UID as the display name.
func (s *MeetingService) GetTranscript(ctx context.Context, userUID, meetingUID string) ([]TranscriptEntry, error) {
	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if meeting.UserUID != userUID {
		return nil, domain.NewForbiddenError("only the meeting owner may read the transcript")
	}
	if meeting.TranscriptURL == "" {
		return nil, domain.NewNotFoundError("meeting has no transcript yet")
	}

	items, err := s.transcriptFetcher.Fetch(ctx, meeting.TranscriptURL)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if meeting.AgentUID != "" {
		if agent, err := s.agentRepo.Get(ctx, meeting.AgentUID); err == nil {
			names[agent.UID] = agent.Name
		}
	}

	entries := make([]TranscriptEntry, 0, len(items))
	for _, item := range items {
		name, ok := names[item.SpeakerID]
		if !ok {
			name = item.SpeakerID
		}
		entries = append(entries, TranscriptEntry{
			SpeakerID:   item.SpeakerID,
			SpeakerName: name,
			Text:        item.Text,
			StartTS:     item.StartTS,
			StopTS:      item.StopTS,
		})
	}
	return entries, nil
}
