// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/constants"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

// AgentDisconnector is the slice of the connection manager the access
// controller needs when a departing host takes the agent down with them.
type AgentDisconnector interface {
	Disconnect(ctx context.Context, meetingUID string) (int, error)
}

// AccessService decides who may enter a meeting and tracks who is in it.
type AccessService struct {
	meetingRepo     domain.MeetingRepository
	participantRepo domain.ParticipantRepository
	invitationRepo  domain.InvitationRepository
	callProvider    domain.CallProvider
	emailService    domain.EmailService
	disconnector    AgentDisconnector
	config          ServiceConfig
}

// NewAccessService creates a new AccessService.
func NewAccessService(
	meetingRepo domain.MeetingRepository,
	participantRepo domain.ParticipantRepository,
	invitationRepo domain.InvitationRepository,
	callProvider domain.CallProvider,
	emailService domain.EmailService,
	disconnector AgentDisconnector,
	config ServiceConfig,
) *AccessService {
	return &AccessService{
		meetingRepo:     meetingRepo,
		participantRepo: participantRepo,
		invitationRepo:  invitationRepo,
		callProvider:    callProvider,
		emailService:    emailService,
		disconnector:    disconnector,
		config:          config,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *AccessService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.participantRepo != nil &&
		s.invitationRepo != nil &&
		s.callProvider != nil
}

// JoinDecision is the answer to a can-join query.
type JoinDecision struct {
	CanJoin bool   `json:"can_join"`
	Reason  string `json:"reason,omitempty"`
}

// Denial reasons returned by CanJoin. The wording is part of the API.
const (
	ReasonMeetingFull        = "meeting is full"
	ReasonInvitationRequired = "invitation required"
)

// evaluateAccess applies the admission rules in their fixed order: meeting
// state, host, capacity, visibility, invitation. Capacity is checked before
// visibility so a full public meeting answers "full" rather than "come in".
func evaluateAccess(meeting *models.Meeting, participants *models.ParticipantSet, invitations *models.InvitationSet, userUID, email string) JoinDecision {
	if meeting.Status.IsTerminal() {
		return JoinDecision{Reason: fmt.Sprintf("meeting is %s", meeting.Status)}
	}

	if meeting.UserUID == userUID {
		return JoinDecision{CanJoin: true}
	}

	existing := participants.Find(userUID)
	if meeting.MaxParticipants > 0 && !existing.IsPresent() &&
		participants.PresentCount() >= meeting.MaxParticipants {
		return JoinDecision{Reason: ReasonMeetingFull}
	}

	if meeting.Visibility == models.VisibilityPublic {
		return JoinDecision{CanJoin: true}
	}

	if email != "" {
		if inv := invitations.Find(strings.ToLower(email)); inv != nil {
			return JoinDecision{CanJoin: true}
		}
	}

	return JoinDecision{Reason: ReasonInvitationRequired}
}

// CanJoin answers whether the user could join the meeting right now. It is
// advisory only; Join re-evaluates under the participant-set write.
func (s *AccessService) CanJoin(ctx context.Context, userUID, email, meetingUID string) (JoinDecision, error) {
	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return JoinDecision{}, err
	}
	participants, err := s.participantRepo.GetSet(ctx, meetingUID)
	if err != nil {
		return JoinDecision{}, err
	}
	invitations, err := s.invitationRepo.GetSet(ctx, meetingUID)
	if err != nil {
		return JoinDecision{}, err
	}
	return evaluateAccess(meeting, participants, invitations, userUID, email), nil
}

// JoinResult is what a successful join hands back to the client.
type JoinResult struct {
	Token string                 `json:"token"`
	Role  models.ParticipantRole `json:"role"`
}

// Join admits the user to the meeting. The admission rules are re-evaluated
// inside the participant-set compare-and-swap, so the capacity check and the
// insert commit together. A returning participant is revived rather than
// duplicated, and a pending invitation is accepted as a side effect.
func (s *AccessService) Join(ctx context.Context, userUID, email, meetingUID string) (*JoinResult, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	invitations, err := s.invitationRepo.GetSet(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	role := models.RoleParticipant
	if meeting.UserUID == userUID {
		role = models.RoleHost
	}

	now := time.Now().UTC()
	_, err = s.participantRepo.UpdateSetFunc(ctx, meetingUID, func(set *models.ParticipantSet) error {
		decision := evaluateAccess(meeting, set, invitations, userUID, email)
		if !decision.CanJoin {
			return domain.NewForbiddenError(decision.Reason)
		}

		if existing := set.Find(userUID); existing != nil {
			existing.LeftAt = nil
			existing.JoinedAt = utils.TimePtr(now)
			existing.Role = role
			return nil
		}
		set.Participants = append(set.Participants, models.Participant{
			UserUID:  userUID,
			Role:     role,
			JoinedAt: utils.TimePtr(now),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Accept the invitation that let the user in. Losing this write only
	// costs a redundant "pending" row, so it stays outside the join CAS.
	if email != "" {
		if inv := invitations.Find(strings.ToLower(email)); inv != nil && inv.Status == models.InvitationStatusPending {
			_, err := s.invitationRepo.UpdateSetFunc(ctx, meetingUID, func(set *models.InvitationSet) error {
				if inv := set.Find(strings.ToLower(email)); inv != nil {
					inv.Status = models.InvitationStatusAccepted
				}
				return nil
			})
			if err != nil {
				slog.WarnContext(ctx, "failed to mark invitation accepted", logging.ErrKey, err)
			}
		}
	}

	token, err := s.callProvider.MintUserToken(ctx, userUID, constants.JoinTokenValidity)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user joined meeting", "user_uid", userUID, "role", role)
	return &JoinResult{Token: token, Role: role}, nil
}

// Leave records the user's departure. When the departing user is the host and
// the agent is still connected, the agent is taken down best effort: a
// failed disconnect is logged but never blocks the leave.
func (s *AccessService) Leave(ctx context.Context, userUID, meetingUID string) error {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.participantRepo.UpdateSetFunc(ctx, meetingUID, func(set *models.ParticipantSet) error {
		participant := set.Find(userUID)
		if !participant.IsPresent() {
			return domain.NewValidationError("user is not in the meeting")
		}
		participant.LeftAt = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		return err
	}

	if meeting.UserUID == userUID && meeting.AgentActive && s.disconnector != nil {
		if _, err := s.disconnector.Disconnect(ctx, meetingUID); err != nil {
			slog.WarnContext(ctx, "failed to disconnect agent after host left", logging.ErrKey, err)
		}
	}

	slog.InfoContext(ctx, "user left meeting", "user_uid", userUID)
	return nil
}

// ListParticipants returns the participant set of a meeting. Only the host
// sees the full roster.
func (s *AccessService) ListParticipants(ctx context.Context, userUID, meetingUID string) (*models.ParticipantSet, error) {
	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if meeting.UserUID != userUID {
		return nil, domain.NewForbiddenError("only the meeting owner may list participants")
	}
	return s.participantRepo.GetSet(ctx, meetingUID)
}

// Invite records an invitation for an email address and sends the invitation
// email. Re-inviting an address resets its status to pending. Only the host
// may invite, and only before the meeting reaches a terminal state.
func (s *AccessService) Invite(ctx context.Context, userUID, meetingUID, email string) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email address is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if meeting.UserUID != userUID {
		return nil, domain.NewForbiddenError("only the meeting owner may invite")
	}
	if meeting.Status.IsTerminal() {
		return nil, domain.NewConflictError(
			fmt.Sprintf("meeting is %s and can no longer be joined", meeting.Status))
	}

	now := time.Now().UTC()
	var result models.Invitation
	_, err = s.invitationRepo.UpdateSetFunc(ctx, meetingUID, func(set *models.InvitationSet) error {
		if existing := set.Find(email); existing != nil {
			existing.Status = models.InvitationStatusPending
			existing.InviterUID = userUID
			existing.SentAt = utils.TimePtr(now)
			result = *existing
			return nil
		}
		invitation := models.Invitation{
			Email:      email,
			Status:     models.InvitationStatusPending,
			InviterUID: userUID,
			SentAt:     utils.TimePtr(now),
		}
		set.Invitations = append(set.Invitations, invitation)
		result = invitation
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.emailService != nil {
		err := s.emailService.SendMeetingInvitation(ctx, domain.EmailInvitation{
			RecipientEmail: email,
			MeetingName:    meeting.Name,
			InviterName:    userUID,
			JoinLink:       fmt.Sprintf("%s/%s", strings.TrimRight(s.config.JoinLinkBaseURL, "/"), meetingUID),
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to send invitation email", logging.ErrKey, err)
		}
	}

	slog.InfoContext(ctx, "invited email to meeting", "email", email)
	return &result, nil
}

// ListInvitations returns the invitation set of a meeting, host only.
func (s *AccessService) ListInvitations(ctx context.Context, userUID, meetingUID string) (*models.InvitationSet, error) {
	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if meeting.UserUID != userUID {
		return nil, domain.NewForbiddenError("only the meeting owner may list invitations")
	}
	return s.invitationRepo.GetSet(ctx, meetingUID)
}
