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

// NatsInvitationRepository stores each meeting's invitation set as a single KV
// value keyed by the meeting UID. Email addresses contain characters that are
// not valid in NATS KV keys, so invitations are never keyed individually.
type NatsInvitationRepository struct {
	*NatsBaseRepository[models.InvitationSet]
}

// NewNatsInvitationRepository creates a new NATS KV store repository for invitation sets.
func NewNatsInvitationRepository(kvStore INatsKeyValue) *NatsInvitationRepository {
	return &NatsInvitationRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.InvitationSet](kvStore, "invitation set"),
	}
}

// GetSet returns the invitation set for the meeting, or an empty set if none
// has been stored yet.
func (r *NatsInvitationRepository) GetSet(ctx context.Context, meetingUID string) (*models.InvitationSet, error) {
	set, err := r.Get(ctx, meetingUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return &models.InvitationSet{MeetingUID: meetingUID}, nil
		}
		return nil, err
	}
	return set, nil
}

// UpdateSetFunc applies the mutation to the current set under a
// compare-and-swap, creating the set on first write.
func (r *NatsInvitationRepository) UpdateSetFunc(ctx context.Context, meetingUID string, apply func(set *models.InvitationSet) error) (*models.InvitationSet, error) {
	var lastErr error
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		set, revision, err := r.GetWithRevision(ctx, meetingUID)
		missing := false
		if err != nil {
			if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
				return nil, err
			}
			set = &models.InvitationSet{MeetingUID: meetingUID}
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

	slog.ErrorContext(ctx, "invitation set conditional update exhausted retries",
		logging.ErrKey, lastErr, "meeting_uid", meetingUID)
	return nil, domain.NewConflictError(
		fmt.Sprintf("invitation set for meeting '%s' is under concurrent modification", meetingUID), lastErr)
}

// Delete removes the invitation set for the meeting. A missing set is not an
// error.
func (r *NatsInvitationRepository) Delete(ctx context.Context, meetingUID string) error {
	err := r.NatsBaseRepository.Delete(ctx, meetingUID, 0)
	if err != nil && domain.GetErrorType(err) == domain.ErrorTypeNotFound {
		return nil
	}
	return err
}
