// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
)

// NatsAgentRepository is the NATS KV store repository for agents.
type NatsAgentRepository struct {
	*NatsBaseRepository[models.Agent]
}

// NewNatsAgentRepository creates a new NATS KV store repository for agents.
func NewNatsAgentRepository(kvStore INatsKeyValue) *NatsAgentRepository {
	return &NatsAgentRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Agent](kvStore, "agent"),
	}
}

func (r *NatsAgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	return r.NatsBaseRepository.Create(ctx, agent.UID, agent)
}

func (r *NatsAgentRepository) Update(ctx context.Context, agent *models.Agent, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, agent.UID, agent, revision)
}

// ListByUser returns the agents owned by the given user.
func (r *NatsAgentRepository) ListByUser(ctx context.Context, userUID string) ([]*models.Agent, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	agents := []*models.Agent{}
	for _, agent := range all {
		if agent.UserUID == userUID {
			agents = append(agents, agent)
		}
	}
	return agents, nil
}
