// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

func TestNatsParticipantRepositoryGetSetMissing(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsParticipantRepository(kv)

	set, err := repo.GetSet(context.Background(), "meeting-123")
	require.NoError(t, err)
	assert.Equal(t, "meeting-123", set.MeetingUID)
	assert.Empty(t, set.Participants)
}

func TestNatsParticipantRepositoryUpdateSetFuncCreatesOnFirstWrite(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsParticipantRepository(kv)

	now := time.Now().UTC()
	set, err := repo.UpdateSetFunc(context.Background(), "meeting-123", func(set *models.ParticipantSet) error {
		set.Participants = append(set.Participants, models.Participant{
			UserUID:  "user-1",
			Role:     models.RoleHost,
			JoinedAt: &now,
		})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, set.Participants, 1)

	stored, err := repo.GetSet(context.Background(), "meeting-123")
	require.NoError(t, err)
	require.Len(t, stored.Participants, 1)
	assert.Equal(t, "user-1", stored.Participants[0].UserUID)
	assert.Equal(t, models.RoleHost, stored.Participants[0].Role)
}

func TestNatsParticipantRepositoryUpdateSetFuncMutatesExisting(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsParticipantRepository(kv)

	now := time.Now().UTC()
	_, err := repo.UpdateSetFunc(context.Background(), "meeting-123", func(set *models.ParticipantSet) error {
		set.Participants = append(set.Participants, models.Participant{UserUID: "user-1", JoinedAt: &now})
		return nil
	})
	require.NoError(t, err)

	left := now.Add(time.Minute)
	set, err := repo.UpdateSetFunc(context.Background(), "meeting-123", func(set *models.ParticipantSet) error {
		p := set.Find("user-1")
		require.NotNil(t, p)
		p.LeftAt = &left
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, set.Find("user-1").LeftAt)
	assert.Equal(t, 0, set.PresentCount())
}

func TestNatsParticipantRepositoryUpdateSetFuncApplyError(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsParticipantRepository(kv)

	applyErr := domain.NewConflictError("meeting is full")
	_, err := repo.UpdateSetFunc(context.Background(), "meeting-123", func(set *models.ParticipantSet) error {
		return applyErr
	})
	require.Error(t, err)
	assert.Equal(t, applyErr, err)

	// Nothing committed.
	assert.Empty(t, kv.data)
}

func TestNatsParticipantRepositoryDeleteMissing(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsParticipantRepository(kv)

	err := repo.Delete(context.Background(), "meeting-123")
	require.NoError(t, err)
}

func TestNatsInvitationRepositoryRoundTrip(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsInvitationRepository(kv)

	now := time.Now().UTC()
	_, err := repo.UpdateSetFunc(context.Background(), "meeting-123", func(set *models.InvitationSet) error {
		set.Invitations = append(set.Invitations, models.Invitation{
			Email:      "guest@example.com",
			Status:     models.InvitationStatusPending,
			InviterUID: "user-1",
			SentAt:     &now,
		})
		return nil
	})
	require.NoError(t, err)

	set, err := repo.GetSet(context.Background(), "meeting-123")
	require.NoError(t, err)
	inv := set.Find("guest@example.com")
	require.NotNil(t, inv)
	assert.Equal(t, models.InvitationStatusPending, inv.Status)

	require.NoError(t, repo.Delete(context.Background(), "meeting-123"))
	set, err = repo.GetSet(context.Background(), "meeting-123")
	require.NoError(t, err)
	assert.Empty(t, set.Invitations)
}
