// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

func newStoredMeeting(t *testing.T, kv *mockNatsKeyValue, meeting *models.Meeting) {
	t.Helper()
	data, err := json.Marshal(meeting)
	require.NoError(t, err)
	kv.data[meeting.UID] = data
	kv.revisions[meeting.UID] = 1
}

func TestNatsMeetingRepositoryCreate(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	now := time.Now().UTC()
	meeting := &models.Meeting{
		UID:       "meeting-123",
		UserUID:   "user-1",
		Name:      "Planning sync",
		Status:    models.MeetingStatusUpcoming,
		CreatedAt: utils.TimePtr(now),
		UpdatedAt: utils.TimePtr(now),
	}

	err := repo.Create(context.Background(), meeting)
	require.NoError(t, err)

	stored, exists := kv.data[meeting.UID]
	require.True(t, exists)

	var got models.Meeting
	require.NoError(t, json.Unmarshal(stored, &got))
	assert.Equal(t, meeting.UID, got.UID)
	assert.Equal(t, meeting.Name, got.Name)
	assert.Equal(t, models.MeetingStatusUpcoming, got.Status)
}

func TestNatsMeetingRepositoryCreateDuplicate(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)
	meeting := &models.Meeting{UID: "meeting-123", Status: models.MeetingStatusUpcoming}

	require.NoError(t, repo.Create(context.Background(), meeting))

	err := repo.Create(context.Background(), meeting)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsMeetingRepositoryCreateError(t *testing.T) {
	kv := newMockNatsKeyValue()
	kv.createError = errors.New("create failed")
	repo := NewNatsMeetingRepository(kv)

	err := repo.Create(context.Background(), &models.Meeting{UID: "meeting-123"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
}

func TestNatsMeetingRepositoryGet(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-123", Name: "Planning sync"})

	meeting, err := repo.Get(context.Background(), "meeting-123")
	require.NoError(t, err)
	assert.Equal(t, "Planning sync", meeting.Name)

	_, err = repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsMeetingRepositoryExists(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	exists, err := repo.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-123"})

	exists, err = repo.Exists(context.Background(), "meeting-123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNatsMeetingRepositoryUpdateStaleRevision(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-123"})

	err := repo.Update(context.Background(), &models.Meeting{UID: "meeting-123"}, 42)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsMeetingRepositoryUpdateFunc(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-123", Status: models.MeetingStatusUpcoming})

	updated, err := repo.UpdateFunc(context.Background(), "meeting-123", func(m *models.Meeting) error {
		m.Status = models.MeetingStatusActive
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusActive, updated.Status)

	stored, err := repo.Get(context.Background(), "meeting-123")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusActive, stored.Status)
}

func TestNatsMeetingRepositoryUpdateFuncApplyError(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-123", Status: models.MeetingStatusCompleted})

	applyErr := domain.NewConflictError("meeting already completed")
	_, err := repo.UpdateFunc(context.Background(), "meeting-123", func(m *models.Meeting) error {
		return applyErr
	})
	require.Error(t, err)
	assert.Equal(t, applyErr, err)

	stored, err := repo.Get(context.Background(), "meeting-123")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCompleted, stored.Status)
}

func TestNatsMeetingRepositoryDelete(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-123"})

	err := repo.Delete(context.Background(), "meeting-123", 1)
	require.NoError(t, err)
	assert.Empty(t, kv.data)

	err = repo.Delete(context.Background(), "meeting-123", 0)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsMeetingRepositoryListByUser(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-1", UserUID: "user-1"})
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-2", UserUID: "user-2"})
	newStoredMeeting(t, kv, &models.Meeting{UID: "meeting-3", UserUID: "user-1"})

	meetings, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	for _, m := range meetings {
		assert.Equal(t, "user-1", m.UserUID)
	}
}

func TestNatsMeetingRepositoryNotReady(t *testing.T) {
	repo := NewNatsMeetingRepository(nil)

	_, err := repo.Get(context.Background(), "meeting-123")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
