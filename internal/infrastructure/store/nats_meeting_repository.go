// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

// NatsMeetingRepository is the NATS KV store repository for meetings.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
}

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(kvStore INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](kvStore, "meeting"),
	}
}

func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	return r.NatsBaseRepository.Create(ctx, meeting.UID, meeting)
}

func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, meeting.UID, meeting, revision)
}

// ListByUser returns the meetings owned by the given user.
func (r *NatsMeetingRepository) ListByUser(ctx context.Context, userUID string) ([]*models.Meeting, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	meetings := []*models.Meeting{}
	for _, meeting := range all {
		if meeting.UserUID == userUID {
			meetings = append(meetings, meeting)
		}
	}
	return meetings, nil
}
