// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/mocks"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

func setupMeetingService() (*MeetingService, *mocks.MockMeetingRepository, *mocks.MockAgentRepository, *mocks.MockCallProvider, *mocks.MockTranscriptFetcher) {
	meetingRepo := &mocks.MockMeetingRepository{}
	agentRepo := &mocks.MockAgentRepository{}
	callProvider := &mocks.MockCallProvider{}
	fetcher := &mocks.MockTranscriptFetcher{}
	svc := NewMeetingService(meetingRepo, agentRepo, callProvider, fetcher, ServiceConfig{})
	return svc, meetingRepo, agentRepo, callProvider, fetcher
}

func TestMeetingService_ServiceReady(t *testing.T) {
	svc, _, _, _, _ := setupMeetingService()
	assert.True(t, svc.ServiceReady())

	assert.False(t, (&MeetingService{}).ServiceReady())
}

func TestMeetingService_CreateMeeting(t *testing.T) {
	ownedAgent := &models.Agent{UID: "agent-1", UserUID: "user-1", Name: "Notetaker"}

	tests := []struct {
		name        string
		userUID     string
		req         CreateMeetingRequest
		setupMocks  func(*mocks.MockMeetingRepository, *mocks.MockAgentRepository, *mocks.MockCallProvider)
		wantErr     bool
		wantErrType domain.ErrorType
	}{
		{
			name:    "creates upcoming meeting with call object",
			userUID: "user-1",
			req:     CreateMeetingRequest{Name: "Standup", AgentUID: "agent-1"},
			setupMocks: func(mr *mocks.MockMeetingRepository, ar *mocks.MockAgentRepository, cp *mocks.MockCallProvider) {
				ar.On("Get", mock.Anything, "agent-1").Return(ownedAgent, nil)
				cp.On("CreateCall", mock.Anything, mock.AnythingOfType("string"), "user-1",
					mock.Anything, domain.CallSettings{TranscriptionEnabled: true, RecordingEnabled: true}).Return(nil)
				mr.On("Create", mock.Anything, mock.AnythingOfType("*models.Meeting")).Return(nil)
			},
		},
		{
			name:        "rejects missing name",
			userUID:     "user-1",
			req:         CreateMeetingRequest{AgentUID: "agent-1"},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
		{
			name:        "rejects missing agent",
			userUID:     "user-1",
			req:         CreateMeetingRequest{Name: "Standup"},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
		{
			name:        "rejects negative capacity",
			userUID:     "user-1",
			req:         CreateMeetingRequest{Name: "Standup", AgentUID: "agent-1", MaxParticipants: -1},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
		{
			name:        "rejects unknown visibility",
			userUID:     "user-1",
			req:         CreateMeetingRequest{Name: "Standup", AgentUID: "agent-1", Visibility: "secret"},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
		{
			name:    "rejects someone else's agent",
			userUID: "user-2",
			req:     CreateMeetingRequest{Name: "Standup", AgentUID: "agent-1"},
			setupMocks: func(mr *mocks.MockMeetingRepository, ar *mocks.MockAgentRepository, cp *mocks.MockCallProvider) {
				ar.On("Get", mock.Anything, "agent-1").Return(ownedAgent, nil)
			},
			wantErr:     true,
			wantErrType: domain.ErrorTypeForbidden,
		},
		{
			name:    "propagates call provider failure",
			userUID: "user-1",
			req:     CreateMeetingRequest{Name: "Standup", AgentUID: "agent-1"},
			setupMocks: func(mr *mocks.MockMeetingRepository, ar *mocks.MockAgentRepository, cp *mocks.MockCallProvider) {
				ar.On("Get", mock.Anything, "agent-1").Return(ownedAgent, nil)
				cp.On("CreateCall", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(domain.NewUpstreamError("provider down"))
			},
			wantErr:     true,
			wantErrType: domain.ErrorTypeUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, meetingRepo, agentRepo, callProvider, _ := setupMeetingService()
			if tt.setupMocks != nil {
				tt.setupMocks(meetingRepo, agentRepo, callProvider)
			}

			meeting, err := svc.CreateMeeting(context.Background(), tt.userUID, tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrType, domain.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, meeting)
			assert.Equal(t, models.MeetingStatusUpcoming, meeting.Status)
			assert.Equal(t, models.VisibilityRestricted, meeting.Visibility)
			assert.NotEmpty(t, meeting.UID)
			assert.False(t, meeting.AgentActive)
			meetingRepo.AssertExpectations(t)
			callProvider.AssertExpectations(t)
		})
	}
}

func TestMeetingService_UpdateMeeting(t *testing.T) {
	t.Run("updates upcoming meeting", func(t *testing.T) {
		svc, meetingRepo, _, _, _ := setupMeetingService()
		stored := &models.Meeting{UID: "m1", UserUID: "user-1", Name: "Old", Status: models.MeetingStatusUpcoming}
		meetingRepo.On("UpdateFunc", mock.Anything, "m1", mock.Anything).Return(stored, nil)

		meeting, err := svc.UpdateMeeting(context.Background(), "user-1", "m1", UpdateMeetingRequest{Name: "New"})

		require.NoError(t, err)
		assert.Equal(t, "New", meeting.Name)
	})

	t.Run("rejects update once started", func(t *testing.T) {
		svc, meetingRepo, _, _, _ := setupMeetingService()
		stored := &models.Meeting{UID: "m1", UserUID: "user-1", Status: models.MeetingStatusActive}
		meetingRepo.On("UpdateFunc", mock.Anything, "m1", mock.Anything).Return(stored, nil)

		_, err := svc.UpdateMeeting(context.Background(), "user-1", "m1", UpdateMeetingRequest{Name: "New"})

		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	})

	t.Run("rejects non-owner", func(t *testing.T) {
		svc, meetingRepo, _, _, _ := setupMeetingService()
		stored := &models.Meeting{UID: "m1", UserUID: "user-1", Status: models.MeetingStatusUpcoming}
		meetingRepo.On("UpdateFunc", mock.Anything, "m1", mock.Anything).Return(stored, nil)

		_, err := svc.UpdateMeeting(context.Background(), "user-2", "m1", UpdateMeetingRequest{Name: "New"})

		assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
	})
}

func TestMeetingService_CancelMeeting(t *testing.T) {
	tests := []struct {
		name        string
		userUID     string
		stored      *models.Meeting
		wantErrType domain.ErrorType
		wantOK      bool
	}{
		{
			name:    "owner cancels upcoming meeting",
			userUID: "user-1",
			stored:  &models.Meeting{UID: "m1", UserUID: "user-1", Status: models.MeetingStatusUpcoming},
			wantOK:  true,
		},
		{
			name:        "cannot cancel active meeting",
			userUID:     "user-1",
			stored:      &models.Meeting{UID: "m1", UserUID: "user-1", Status: models.MeetingStatusActive},
			wantErrType: domain.ErrorTypeConflict,
		},
		{
			name:        "cannot cancel completed meeting",
			userUID:     "user-1",
			stored:      &models.Meeting{UID: "m1", UserUID: "user-1", Status: models.MeetingStatusCompleted},
			wantErrType: domain.ErrorTypeConflict,
		},
		{
			name:        "non-owner cannot cancel",
			userUID:     "user-2",
			stored:      &models.Meeting{UID: "m1", UserUID: "user-1", Status: models.MeetingStatusUpcoming},
			wantErrType: domain.ErrorTypeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, meetingRepo, _, _, _ := setupMeetingService()
			meetingRepo.On("UpdateFunc", mock.Anything, "m1", mock.Anything).Return(tt.stored, nil)

			meeting, err := svc.CancelMeeting(context.Background(), tt.userUID, "m1")

			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, models.MeetingStatusCancelled, meeting.Status)
			} else {
				assert.Equal(t, tt.wantErrType, domain.GetErrorType(err))
			}
		})
	}
}

func TestMeetingService_GetTranscript(t *testing.T) {
	meeting := &models.Meeting{
		UID:           "m1",
		UserUID:       "user-1",
		AgentUID:      "agent-1",
		Status:        models.MeetingStatusCompleted,
		TranscriptURL: "https://storage.example.com/m1.jsonl",
	}

	t.Run("resolves agent speaker name", func(t *testing.T) {
		svc, meetingRepo, agentRepo, _, fetcher := setupMeetingService()
		meetingRepo.On("Get", mock.Anything, "m1").Return(meeting, nil)
		agentRepo.On("Get", mock.Anything, "agent-1").Return(&models.Agent{UID: "agent-1", Name: "Notetaker"}, nil)
		fetcher.On("Fetch", mock.Anything, meeting.TranscriptURL).Return([]domain.TranscriptItem{
			{SpeakerID: "user-1", Text: "hello"},
			{SpeakerID: "agent-1", Text: "hi there"},
		}, nil)

		entries, err := svc.GetTranscript(context.Background(), "user-1", "m1")

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "user-1", entries[0].SpeakerName)
		assert.Equal(t, "Notetaker", entries[1].SpeakerName)
	})

	t.Run("not found before transcript exists", func(t *testing.T) {
		svc, meetingRepo, _, _, _ := setupMeetingService()
		meetingRepo.On("Get", mock.Anything, "m1").Return(&models.Meeting{
			UID: "m1", UserUID: "user-1", Status: models.MeetingStatusActive,
		}, nil)

		_, err := svc.GetTranscript(context.Background(), "user-1", "m1")

		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
	})

	t.Run("owner only", func(t *testing.T) {
		svc, meetingRepo, _, _, _ := setupMeetingService()
		meetingRepo.On("Get", mock.Anything, "m1").Return(meeting, nil)

		_, err := svc.GetTranscript(context.Background(), "user-2", "m1")

		assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
	})
}
