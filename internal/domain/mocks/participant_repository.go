// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

// MockParticipantRepository implements ParticipantRepository for testing
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) GetSet(ctx context.Context, meetingUID string) (*models.ParticipantSet, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParticipantSet), args.Error(1)
}

func (m *MockParticipantRepository) UpdateSetFunc(ctx context.Context, meetingUID string, apply func(set *models.ParticipantSet) error) (*models.ParticipantSet, error) {
	args := m.Called(ctx, meetingUID, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	set := args.Get(0).(*models.ParticipantSet)
	if err := apply(set); err != nil {
		return nil, err
	}
	return set, args.Error(1)
}

func (m *MockParticipantRepository) Delete(ctx context.Context, meetingUID string) error {
	args := m.Called(ctx, meetingUID)
	return args.Error(0)
}

// MockInvitationRepository implements InvitationRepository for testing
type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) GetSet(ctx context.Context, meetingUID string) (*models.InvitationSet, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvitationSet), args.Error(1)
}

func (m *MockInvitationRepository) UpdateSetFunc(ctx context.Context, meetingUID string, apply func(set *models.InvitationSet) error) (*models.InvitationSet, error) {
	args := m.Called(ctx, meetingUID, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	set := args.Get(0).(*models.InvitationSet)
	if err := apply(set); err != nil {
		return nil, err
	}
	return set, args.Error(1)
}

func (m *MockInvitationRepository) Delete(ctx context.Context, meetingUID string) error {
	args := m.Called(ctx, meetingUID)
	return args.Error(0)
}
