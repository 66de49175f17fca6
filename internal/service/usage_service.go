// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/constants"
)

// UsageService computes agent usage and its cost. Usage is derived from the
// meeting rows on every read; nothing here writes.
type UsageService struct {
	meetingRepo  domain.MeetingRepository
	agentRepo    domain.AgentRepository
	subscription domain.SubscriptionChecker

	// now is swappable for tests.
	now func() time.Time
}

// NewUsageService creates a new UsageService.
func NewUsageService(meetingRepo domain.MeetingRepository, agentRepo domain.AgentRepository, subscription domain.SubscriptionChecker) *UsageService {
	return &UsageService{
		meetingRepo:  meetingRepo,
		agentRepo:    agentRepo,
		subscription: subscription,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *UsageService) ServiceReady() bool {
	return s.meetingRepo != nil && s.agentRepo != nil && s.subscription != nil
}

// MeetingUsage is the billing view of one meeting.
type MeetingUsage struct {
	MeetingUID      string  `json:"meeting_uid"`
	DurationSeconds int     `json:"duration_seconds"`
	AgentActive     bool    `json:"agent_active"`
	Cost            float64 `json:"cost"`
	Premium         bool    `json:"premium"`
}

// costFor charges started minutes: any fraction of a minute bills as a whole
// one. Premium accounts report usage but are billed nothing.
func costFor(durationSeconds int, premium bool) float64 {
	if premium || durationSeconds <= 0 {
		return 0
	}
	minutes := math.Ceil(float64(durationSeconds) / 60)
	return minutes * constants.AgentCostPerMinute
}

// GetMeetingUsage returns the live usage of one meeting. While the agent is
// connected the open session counts from its start to now, so the figure
// grows on every read without any writes happening.
func (s *UsageService) GetMeetingUsage(ctx context.Context, userUID, meetingUID string) (*MeetingUsage, error) {
	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if meeting.UserUID != userUID {
		return nil, domain.NewForbiddenError("only the meeting owner may read usage")
	}

	duration := meeting.AgentTotalDuration
	if meeting.AgentActive && meeting.AgentConnectedAt != nil {
		live := int(s.now().Sub(*meeting.AgentConnectedAt).Seconds())
		if live > 0 {
			duration += live
		}
	}

	premium, err := s.subscription.HasActiveSubscription(ctx, userUID)
	if err != nil {
		// Billing exemptions fail closed: an unreachable subscription
		// service means the user is charged as non-premium.
		slog.WarnContext(ctx, "failed to check subscription, assuming non-premium",
			logging.ErrKey, err)
		premium = false
	}

	return &MeetingUsage{
		MeetingUID:      meetingUID,
		DurationSeconds: duration,
		AgentActive:     meeting.AgentActive,
		Cost:            costFor(duration, premium),
		Premium:         premium,
	}, nil
}

// AccountUsage is the billing view of one user across all their meetings.
type AccountUsage struct {
	UserUID              string  `json:"user_uid"`
	TotalDurationSeconds int     `json:"total_duration_seconds"`
	TotalCost            float64 `json:"total_cost"`
	Premium              bool    `json:"premium"`
	MeetingCount         int     `json:"meeting_count"`
	AgentCount           int     `json:"agent_count"`
}

// GetAccountUsage aggregates the user's settled agent time. Only folded
// session durations count; open sessions appear in the aggregate once they
// disconnect. Cost is computed per meeting and summed, matching what each
// meeting reports individually.
func (s *UsageService) GetAccountUsage(ctx context.Context, userUID string) (*AccountUsage, error) {
	meetings, err := s.meetingRepo.ListByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	premium, err := s.subscription.HasActiveSubscription(ctx, userUID)
	if err != nil {
		slog.WarnContext(ctx, "failed to check subscription, assuming non-premium",
			logging.ErrKey, err)
		premium = false
	}

	agents, err := s.agentRepo.ListByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	usage := &AccountUsage{UserUID: userUID, Premium: premium, AgentCount: len(agents)}
	for _, meeting := range meetings {
		usage.MeetingCount++
		usage.TotalDurationSeconds += meeting.AgentTotalDuration
		usage.TotalCost += costFor(meeting.AgentTotalDuration, premium)
	}
	return usage, nil
}
