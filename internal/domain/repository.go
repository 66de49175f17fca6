// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

// MeetingRepository is the interface for the meeting store. The meeting row
// is the single source of truth for lifecycle state, so all writes that
// depend on current state go through UpdateFunc, which re-applies the caller's
// mutation under optimistic concurrency until it commits cleanly.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Exists(ctx context.Context, meetingUID string) (bool, error)
	Get(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	// UpdateFunc loads the meeting, applies the mutation, and writes it back
	// conditioned on the revision it read. On a revision conflict it reloads
	// and retries. The apply callback may return a DomainError (for example
	// Conflict when a status precondition does not hold) to abort the write;
	// that error is returned unchanged.
	UpdateFunc(ctx context.Context, meetingUID string, apply func(meeting *models.Meeting) error) (*models.Meeting, error)
	Delete(ctx context.Context, meetingUID string, revision uint64) error
	ListAll(ctx context.Context) ([]*models.Meeting, error)
	ListByUser(ctx context.Context, userUID string) ([]*models.Meeting, error)
}

// AgentRepository is the interface for the agent store.
type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	Exists(ctx context.Context, agentUID string) (bool, error)
	Get(ctx context.Context, agentUID string) (*models.Agent, error)
	GetWithRevision(ctx context.Context, agentUID string) (*models.Agent, uint64, error)
	Update(ctx context.Context, agent *models.Agent, revision uint64) error
	Delete(ctx context.Context, agentUID string, revision uint64) error
	ListByUser(ctx context.Context, userUID string) ([]*models.Agent, error)
}

// ParticipantRepository stores the participant set of each meeting as one
// value so capacity checks and inserts commit atomically.
type ParticipantRepository interface {
	// GetSet returns the participant set for the meeting, or an empty set if
	// none has been stored yet.
	GetSet(ctx context.Context, meetingUID string) (*models.ParticipantSet, error)
	// UpdateSetFunc applies the mutation to the current set under a
	// compare-and-swap, retrying on revision conflicts. The apply callback
	// may abort with a DomainError, which is returned unchanged.
	UpdateSetFunc(ctx context.Context, meetingUID string, apply func(set *models.ParticipantSet) error) (*models.ParticipantSet, error)
	Delete(ctx context.Context, meetingUID string) error
}

// InvitationRepository stores the invitation set of each meeting as one value.
type InvitationRepository interface {
	GetSet(ctx context.Context, meetingUID string) (*models.InvitationSet, error)
	UpdateSetFunc(ctx context.Context, meetingUID string, apply func(set *models.InvitationSet) error) (*models.InvitationSet, error)
	Delete(ctx context.Context, meetingUID string) error
}
