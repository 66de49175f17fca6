// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/mocks"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

func setupUsageService() (*UsageService, *mocks.MockMeetingRepository, *mocks.MockAgentRepository, *mocks.MockSubscriptionChecker) {
	meetingRepo := &mocks.MockMeetingRepository{}
	agentRepo := &mocks.MockAgentRepository{}
	subscription := &mocks.MockSubscriptionChecker{}
	svc := NewUsageService(meetingRepo, agentRepo, subscription)
	return svc, meetingRepo, agentRepo, subscription
}

func TestCostFor(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		premium  bool
		wantCost float64
	}{
		{name: "zero seconds costs nothing", seconds: 0, wantCost: 0},
		{name: "one second bills a whole minute", seconds: 1, wantCost: 0.10},
		{name: "exact minute boundary", seconds: 120, wantCost: 0.20},
		{name: "partial minute rounds up", seconds: 121, wantCost: 0.30},
		{name: "premium is exempt", seconds: 3600, premium: true, wantCost: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantCost, costFor(tt.seconds, tt.premium), 1e-9)
		})
	}
}

func TestUsageService_GetMeetingUsage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("settled duration only when agent idle", func(t *testing.T) {
		svc, meetingRepo, _, subscription := setupUsageService()
		svc.now = func() time.Time { return now }
		meetingRepo.On("Get", mock.Anything, "m1").Return(&models.Meeting{
			UID: "m1", UserUID: "user-1", AgentTotalDuration: 90,
		}, nil)
		subscription.On("HasActiveSubscription", mock.Anything, "user-1").Return(false, nil)

		usage, err := svc.GetMeetingUsage(context.Background(), "user-1", "m1")

		require.NoError(t, err)
		assert.Equal(t, 90, usage.DurationSeconds)
		assert.InDelta(t, 0.20, usage.Cost, 1e-9)
		assert.False(t, usage.AgentActive)
	})

	t.Run("open session counts to now without writing", func(t *testing.T) {
		svc, meetingRepo, _, subscription := setupUsageService()
		svc.now = func() time.Time { return now }
		meetingRepo.On("Get", mock.Anything, "m1").Return(&models.Meeting{
			UID:                "m1",
			UserUID:            "user-1",
			AgentActive:        true,
			AgentConnectedAt:   utils.TimePtr(now.Add(-40 * time.Second)),
			AgentTotalDuration: 60,
		}, nil)
		subscription.On("HasActiveSubscription", mock.Anything, "user-1").Return(false, nil)

		usage, err := svc.GetMeetingUsage(context.Background(), "user-1", "m1")

		require.NoError(t, err)
		assert.Equal(t, 100, usage.DurationSeconds)
		assert.True(t, usage.AgentActive)
	})

	t.Run("premium reports usage at zero cost", func(t *testing.T) {
		svc, meetingRepo, _, subscription := setupUsageService()
		meetingRepo.On("Get", mock.Anything, "m1").Return(&models.Meeting{
			UID: "m1", UserUID: "user-1", AgentTotalDuration: 600,
		}, nil)
		subscription.On("HasActiveSubscription", mock.Anything, "user-1").Return(true, nil)

		usage, err := svc.GetMeetingUsage(context.Background(), "user-1", "m1")

		require.NoError(t, err)
		assert.Equal(t, 600, usage.DurationSeconds)
		assert.Zero(t, usage.Cost)
		assert.True(t, usage.Premium)
	})

	t.Run("subscription check failure bills as non-premium", func(t *testing.T) {
		svc, meetingRepo, _, subscription := setupUsageService()
		meetingRepo.On("Get", mock.Anything, "m1").Return(&models.Meeting{
			UID: "m1", UserUID: "user-1", AgentTotalDuration: 60,
		}, nil)
		subscription.On("HasActiveSubscription", mock.Anything, "user-1").
			Return(false, domain.NewUnavailableError("billing down"))

		usage, err := svc.GetMeetingUsage(context.Background(), "user-1", "m1")

		require.NoError(t, err)
		assert.False(t, usage.Premium)
		assert.InDelta(t, 0.10, usage.Cost, 1e-9)
	})

	t.Run("owner only", func(t *testing.T) {
		svc, meetingRepo, _, _ := setupUsageService()
		meetingRepo.On("Get", mock.Anything, "m1").Return(&models.Meeting{
			UID: "m1", UserUID: "user-1",
		}, nil)

		_, err := svc.GetMeetingUsage(context.Background(), "user-2", "m1")

		assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
	})
}

func TestUsageService_GetAccountUsage(t *testing.T) {
	t.Run("aggregates settled durations only", func(t *testing.T) {
		svc, meetingRepo, agentRepo, subscription := setupUsageService()
		now := time.Now().UTC()
		meetingRepo.On("ListByUser", mock.Anything, "user-1").Return([]*models.Meeting{
			{UID: "m1", UserUID: "user-1", AgentTotalDuration: 120},
			{UID: "m2", UserUID: "user-1", AgentTotalDuration: 61},
			// An open session does not appear until it settles.
			{UID: "m3", UserUID: "user-1", AgentActive: true, AgentConnectedAt: utils.TimePtr(now.Add(-time.Hour))},
		}, nil)
		agentRepo.On("ListByUser", mock.Anything, "user-1").Return([]*models.Agent{
			{UID: "a1", UserUID: "user-1"},
			{UID: "a2", UserUID: "user-1"},
		}, nil)
		subscription.On("HasActiveSubscription", mock.Anything, "user-1").Return(false, nil)

		usage, err := svc.GetAccountUsage(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, 181, usage.TotalDurationSeconds)
		assert.Equal(t, 3, usage.MeetingCount)
		assert.Equal(t, 2, usage.AgentCount)
		// 2 minutes for m1 plus 2 started minutes for m2.
		assert.InDelta(t, 0.40, usage.TotalCost, 1e-9)
	})

	t.Run("premium account aggregates at zero cost", func(t *testing.T) {
		svc, meetingRepo, agentRepo, subscription := setupUsageService()
		meetingRepo.On("ListByUser", mock.Anything, "user-1").Return([]*models.Meeting{
			{UID: "m1", UserUID: "user-1", AgentTotalDuration: 3600},
		}, nil)
		agentRepo.On("ListByUser", mock.Anything, "user-1").Return([]*models.Agent{}, nil)
		subscription.On("HasActiveSubscription", mock.Anything, "user-1").Return(true, nil)

		usage, err := svc.GetAccountUsage(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, 3600, usage.TotalDurationSeconds)
		assert.Zero(t, usage.TotalCost)
	})
}
