// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

// AgentService owns agent persona CRUD. Agent edits never reach an already
// connected session; the connection manager snapshots instructions at
// connect time.
type AgentService struct {
	agentRepo    domain.AgentRepository
	callProvider domain.CallProvider
}

// NewAgentService creates a new AgentService.
func NewAgentService(agentRepo domain.AgentRepository, callProvider domain.CallProvider) *AgentService {
	return &AgentService{
		agentRepo:    agentRepo,
		callProvider: callProvider,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *AgentService) ServiceReady() bool {
	return s.agentRepo != nil && s.callProvider != nil
}

// CreateAgentRequest carries the client-supplied fields of a new agent.
type CreateAgentRequest struct {
	Name         string
	Instructions string
}

// CreateAgent creates an agent persona and registers its identity with the
// call provider so it can later be added as a call member.
func (s *AgentService) CreateAgent(ctx context.Context, userUID string, req CreateAgentRequest) (*models.Agent, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("agent name is required")
	}
	if req.Instructions == "" {
		return nil, domain.NewValidationError("agent instructions are required")
	}

	now := time.Now().UTC()
	agent := &models.Agent{
		UID:          uuid.New().String(),
		UserUID:      userUID,
		Name:         req.Name,
		Instructions: req.Instructions,
		CreatedAt:    utils.TimePtr(now),
		UpdatedAt:    utils.TimePtr(now),
	}

	ctx = logging.AppendCtx(ctx, slog.String("agent_uid", agent.UID))

	err := s.callProvider.UpsertUsers(ctx, []domain.CallProviderUser{{
		ID:   agent.UID,
		Name: agent.Name,
		Role: "user",
	}})
	if err != nil {
		slog.ErrorContext(ctx, "failed to register agent identity with call provider", logging.ErrKey, err)
		return nil, err
	}

	if err := s.agentRepo.Create(ctx, agent); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "created agent")
	return agent, nil
}

// GetAgent returns one agent owned by the user.
func (s *AgentService) GetAgent(ctx context.Context, userUID, agentUID string) (*models.Agent, error) {
	if agentUID == "" {
		return nil, domain.NewValidationError("agent UID is required")
	}
	agent, err := s.agentRepo.Get(ctx, agentUID)
	if err != nil {
		return nil, err
	}
	if agent.UserUID != userUID {
		return nil, domain.NewForbiddenError("agent belongs to a different user")
	}
	return agent, nil
}

// ListAgents returns the agents owned by the user.
func (s *AgentService) ListAgents(ctx context.Context, userUID string) ([]*models.Agent, error) {
	return s.agentRepo.ListByUser(ctx, userUID)
}

// UpdateAgentRequest carries the updatable fields of an agent.
type UpdateAgentRequest struct {
	Name         string
	Instructions string
}

// UpdateAgent updates an agent's name and instructions. The change applies
// to future connections only.
func (s *AgentService) UpdateAgent(ctx context.Context, userUID, agentUID string, req UpdateAgentRequest) (*models.Agent, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("agent name is required")
	}
	if req.Instructions == "" {
		return nil, domain.NewValidationError("agent instructions are required")
	}

	agent, revision, err := s.agentRepo.GetWithRevision(ctx, agentUID)
	if err != nil {
		return nil, err
	}
	if agent.UserUID != userUID {
		return nil, domain.NewForbiddenError("agent belongs to a different user")
	}

	agent.Name = req.Name
	agent.Instructions = req.Instructions
	agent.UpdatedAt = utils.TimePtr(time.Now().UTC())
	if err := s.agentRepo.Update(ctx, agent, revision); err != nil {
		return nil, err
	}

	// Keep the provider-side display name in sync; membership is unaffected.
	err = s.callProvider.UpsertUsers(ctx, []domain.CallProviderUser{{
		ID:   agent.UID,
		Name: agent.Name,
		Role: "user",
	}})
	if err != nil {
		slog.WarnContext(ctx, "failed to sync agent name to call provider",
			logging.ErrKey, err, "agent_uid", agent.UID)
	}

	return agent, nil
}

// DeleteAgent removes an agent owned by the user.
func (s *AgentService) DeleteAgent(ctx context.Context, userUID, agentUID string) error {
	agent, revision, err := s.agentRepo.GetWithRevision(ctx, agentUID)
	if err != nil {
		return err
	}
	if agent.UserUID != userUID {
		return domain.NewForbiddenError("agent belongs to a different user")
	}
	if err := s.agentRepo.Delete(ctx, agentUID, revision); err != nil {
		return err
	}
	slog.InfoContext(ctx, "deleted agent", "agent_uid", agentUID)
	return nil
}
