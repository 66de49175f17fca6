// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/mocks"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

func setupAgentService() (*AgentService, *mocks.MockAgentRepository, *mocks.MockCallProvider) {
	agentRepo := &mocks.MockAgentRepository{}
	callProvider := &mocks.MockCallProvider{}
	svc := NewAgentService(agentRepo, callProvider)
	return svc, agentRepo, callProvider
}

func TestAgentServiceCreateAgent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		req         CreateAgentRequest
		wantErr     bool
		wantErrType domain.ErrorType
	}{
		{
			name: "creates agent and registers provider identity",
			req:  CreateAgentRequest{Name: "Notetaker", Instructions: "Take notes."},
		},
		{
			name:        "missing name",
			req:         CreateAgentRequest{Instructions: "Take notes."},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
		{
			name:        "missing instructions",
			req:         CreateAgentRequest{Name: "Notetaker"},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, agentRepo, callProvider := setupAgentService()

			if !tt.wantErr {
				callProvider.On("UpsertUsers", mock.Anything, mock.MatchedBy(func(users []domain.CallProviderUser) bool {
					return len(users) == 1 && users[0].Name == tt.req.Name && users[0].Role == "user"
				})).Return(nil)
				agentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Agent")).Return(nil)
			}

			agent, err := svc.CreateAgent(ctx, "u1", tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrType, domain.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, agent.UID)
			assert.Equal(t, "u1", agent.UserUID)
			assert.Equal(t, tt.req.Name, agent.Name)
			agentRepo.AssertExpectations(t)
			callProvider.AssertExpectations(t)
		})
	}
}

func TestAgentServiceCreateAgentProviderFailure(t *testing.T) {
	ctx := context.Background()
	svc, agentRepo, callProvider := setupAgentService()

	callProvider.On("UpsertUsers", mock.Anything, mock.Anything).
		Return(errors.New("provider down"))

	_, err := svc.CreateAgent(ctx, "u1", CreateAgentRequest{Name: "Notetaker", Instructions: "Take notes."})

	require.Error(t, err)
	agentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAgentServiceGetAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("returns own agent", func(t *testing.T) {
		svc, agentRepo, _ := setupAgentService()
		agentRepo.On("Get", mock.Anything, "a1").
			Return(&models.Agent{UID: "a1", UserUID: "u1", Name: "Notetaker"}, nil)

		agent, err := svc.GetAgent(ctx, "u1", "a1")

		require.NoError(t, err)
		assert.Equal(t, "Notetaker", agent.Name)
	})

	t.Run("rejects another user's agent", func(t *testing.T) {
		svc, agentRepo, _ := setupAgentService()
		agentRepo.On("Get", mock.Anything, "a1").
			Return(&models.Agent{UID: "a1", UserUID: "someone-else"}, nil)

		_, err := svc.GetAgent(ctx, "u1", "a1")

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
	})

	t.Run("requires a UID", func(t *testing.T) {
		svc, _, _ := setupAgentService()

		_, err := svc.GetAgent(ctx, "u1", "")

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestAgentServiceUpdateAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("updates fields and syncs provider name", func(t *testing.T) {
		svc, agentRepo, callProvider := setupAgentService()
		agentRepo.On("GetWithRevision", mock.Anything, "a1").
			Return(&models.Agent{UID: "a1", UserUID: "u1", Name: "Old"}, uint64(3), nil)
		agentRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Agent"), uint64(3)).Return(nil)
		callProvider.On("UpsertUsers", mock.Anything, mock.MatchedBy(func(users []domain.CallProviderUser) bool {
			return len(users) == 1 && users[0].ID == "a1" && users[0].Name == "New"
		})).Return(nil)

		agent, err := svc.UpdateAgent(ctx, "u1", "a1", UpdateAgentRequest{Name: "New", Instructions: "Do more."})

		require.NoError(t, err)
		assert.Equal(t, "New", agent.Name)
		assert.Equal(t, "Do more.", agent.Instructions)
		callProvider.AssertExpectations(t)
	})

	t.Run("name sync failure does not fail the update", func(t *testing.T) {
		svc, agentRepo, callProvider := setupAgentService()
		agentRepo.On("GetWithRevision", mock.Anything, "a1").
			Return(&models.Agent{UID: "a1", UserUID: "u1"}, uint64(1), nil)
		agentRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).Return(nil)
		callProvider.On("UpsertUsers", mock.Anything, mock.Anything).
			Return(errors.New("provider down"))

		_, err := svc.UpdateAgent(ctx, "u1", "a1", UpdateAgentRequest{Name: "New", Instructions: "Do more."})

		require.NoError(t, err)
	})

	t.Run("rejects another user's agent", func(t *testing.T) {
		svc, agentRepo, _ := setupAgentService()
		agentRepo.On("GetWithRevision", mock.Anything, "a1").
			Return(&models.Agent{UID: "a1", UserUID: "someone-else"}, uint64(1), nil)

		_, err := svc.UpdateAgent(ctx, "u1", "a1", UpdateAgentRequest{Name: "New", Instructions: "Do more."})

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
		agentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAgentServiceDeleteAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes at the read revision", func(t *testing.T) {
		svc, agentRepo, _ := setupAgentService()
		agentRepo.On("GetWithRevision", mock.Anything, "a1").
			Return(&models.Agent{UID: "a1", UserUID: "u1"}, uint64(7), nil)
		agentRepo.On("Delete", mock.Anything, "a1", uint64(7)).Return(nil)

		err := svc.DeleteAgent(ctx, "u1", "a1")

		require.NoError(t, err)
		agentRepo.AssertExpectations(t)
	})

	t.Run("rejects another user's agent", func(t *testing.T) {
		svc, agentRepo, _ := setupAgentService()
		agentRepo.On("GetWithRevision", mock.Anything, "a1").
			Return(&models.Agent{UID: "a1", UserUID: "someone-else"}, uint64(7), nil)

		err := svc.DeleteAgent(ctx, "u1", "a1")

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeForbidden, domain.GetErrorType(err))
		agentRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}
