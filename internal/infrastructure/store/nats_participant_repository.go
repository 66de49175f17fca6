// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
)

// NatsParticipantRepository stores each meeting's participant set as a single
// KV value keyed by the meeting UID, so membership checks and inserts commit
// in one conditional write.
type NatsParticipantRepository struct {
	*NatsBaseRepository[models.ParticipantSet]
}

// NewNatsParticipantRepository creates a new NATS KV store repository for participant sets.
func NewNatsParticipantRepository(kvStore INatsKeyValue) *NatsParticipantRepository {
	return &NatsParticipantRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.ParticipantSet](kvStore, "participant set"),
	}
}

// GetSet returns the participant set for the meeting, or an empty set if none
// has been stored yet.
func (r *NatsParticipantRepository) GetSet(ctx context.Context, meetingUID string) (*models.ParticipantSet, error) {
	set, err := r.Get(ctx, meetingUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return &models.ParticipantSet{MeetingUID: meetingUID}, nil
		}
		return nil, err
	}
	return set, nil
}

// UpdateSetFunc applies the mutation to the current set under a
// compare-and-swap. A missing key starts from an empty set and is created on
// commit; a create or update conflict reloads and retries.
func (r *NatsParticipantRepository) UpdateSetFunc(ctx context.Context, meetingUID string, apply func(set *models.ParticipantSet) error) (*models.ParticipantSet, error) {
	var lastErr error
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		set, revision, err := r.GetWithRevision(ctx, meetingUID)
		missing := false
		if err != nil {
			if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
				return nil, err
			}
			set = &models.ParticipantSet{MeetingUID: meetingUID}
			missing = true
		}

		if err := apply(set); err != nil {
			return nil, err
		}

		if missing {
			err = r.Create(ctx, meetingUID, set)
		} else {
			err = r.Update(ctx, meetingUID, set, revision)
		}
		if err == nil {
			return set, nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return nil, err
		}
		lastErr = err
	}

	slog.ErrorContext(ctx, "participant set conditional update exhausted retries",
		logging.ErrKey, lastErr, "meeting_uid", meetingUID)
	return nil, domain.NewConflictError(
		fmt.Sprintf("participant set for meeting '%s' is under concurrent modification", meetingUID), lastErr)
}

// Delete removes the participant set for the meeting. A missing set is not an
// error since meetings without joins never store one.
func (r *NatsParticipantRepository) Delete(ctx context.Context, meetingUID string) error {
	err := r.NatsBaseRepository.Delete(ctx, meetingUID, 0)
	if err != nil && domain.GetErrorType(err) == domain.ErrorTypeNotFound {
		return nil
	}
	return err
}
