// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/concurrent"
	"github.com/agentmeet/meeting-agent-service/pkg/constants"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

// reconcileWorkerCount bounds the startup sweep's concurrent provider calls.
const reconcileWorkerCount = 5

// ConnectionPhase tags where a meeting's agent connection currently is.
type ConnectionPhase string

const (
	PhaseDisconnected  ConnectionPhase = "disconnected"
	PhaseConnecting    ConnectionPhase = "connecting"
	PhaseConnected     ConnectionPhase = "connected"
	PhaseDisconnecting ConnectionPhase = "disconnecting"
)

// ConnectionStatus is the observable state of one meeting's agent connection.
// Since is set only while the phase is connected.
type ConnectionStatus struct {
	Phase ConnectionPhase `json:"phase"`
	Since *time.Time      `json:"since,omitempty"`
}

// liveConnection is the registry entry for one connected agent session. It
// exists only between a successful connect and the matching disconnect.
type liveConnection struct {
	session     domain.RealtimeSession
	agentUID    string
	connectedAt time.Time
}

// AgentConnectionService is the single owner of live agent sessions. All
// connect and disconnect traffic for a meeting is serialized through a
// per-meeting mutex, so the stored agent flags and the in-process registry
// can never disagree about who moved last.
type AgentConnectionService struct {
	meetingRepo  domain.MeetingRepository
	agentRepo    domain.AgentRepository
	callProvider domain.CallProvider
	realtime     domain.RealtimeProvider

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	sessions map[string]*liveConnection
	phases   map[string]ConnectionPhase

	// now is swappable for tests.
	now func() time.Time
}

// NewAgentConnectionService creates a new AgentConnectionService.
func NewAgentConnectionService(
	meetingRepo domain.MeetingRepository,
	agentRepo domain.AgentRepository,
	callProvider domain.CallProvider,
	realtime domain.RealtimeProvider,
) *AgentConnectionService {
	return &AgentConnectionService{
		meetingRepo:  meetingRepo,
		agentRepo:    agentRepo,
		callProvider: callProvider,
		realtime:     realtime,
		locks:        make(map[string]*sync.Mutex),
		sessions:     make(map[string]*liveConnection),
		phases:       make(map[string]ConnectionPhase),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *AgentConnectionService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.agentRepo != nil &&
		s.callProvider != nil &&
		s.realtime != nil
}

// meetingLock returns the mutex serializing all connection work for one
// meeting. Lock entries are never reaped; the population is bounded by the
// set of meetings this process has touched.
func (s *AgentConnectionService) meetingLock(meetingUID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[meetingUID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[meetingUID] = lock
	}
	return lock
}

func (s *AgentConnectionService) setPhase(meetingUID string, phase ConnectionPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if phase == PhaseDisconnected {
		delete(s.phases, meetingUID)
		return
	}
	s.phases[meetingUID] = phase
}

// Status reports the connection state of a meeting's agent as this process
// sees it.
func (s *AgentConnectionService) Status(meetingUID string) ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase, ok := s.phases[meetingUID]
	if !ok {
		return ConnectionStatus{Phase: PhaseDisconnected}
	}
	status := ConnectionStatus{Phase: phase}
	if conn, ok := s.sessions[meetingUID]; ok && phase == PhaseConnected {
		since := conn.connectedAt
		status.Since = &since
	}
	return status
}

// Connect attaches the meeting's agent to its call: it registers the agent
// identity with the call provider, opens a realtime session bound to the
// call's audio, pushes the agent's instructions into it, and marks the
// meeting's agent active. Rejects with a conflict if the agent is already
// active.
func (s *AgentConnectionService) Connect(ctx context.Context, meetingUID string) error {
	lock := s.meetingLock(meetingUID)
	lock.Lock()
	defer lock.Unlock()

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return err
	}
	if meeting.AgentActive {
		return domain.NewConflictError("agent is already connected to this meeting")
	}
	if meeting.Status != models.MeetingStatusActive {
		return domain.NewConflictError(
			fmt.Sprintf("agent can only connect while the meeting is active, not '%s'", meeting.Status))
	}

	agent, err := s.agentRepo.Get(ctx, meeting.AgentUID)
	if err != nil {
		return err
	}

	s.setPhase(meetingUID, PhaseConnecting)

	err = s.callProvider.UpsertUsers(ctx, []domain.CallProviderUser{{
		ID:   agent.UID,
		Name: agent.Name,
		Role: "user",
	}})
	if err != nil {
		s.setPhase(meetingUID, PhaseDisconnected)
		return err
	}

	session, err := s.realtime.Connect(ctx, meetingUID, agent.UID)
	if err != nil {
		s.setPhase(meetingUID, PhaseDisconnected)
		slog.ErrorContext(ctx, "failed to open realtime session", logging.ErrKey, err)
		return err
	}

	// Instructions are snapshotted here; later agent edits do not reach
	// this session.
	err = session.Update(ctx, domain.RealtimeSessionConfig{
		Instructions: agent.Instructions,
		Voice:        constants.AgentVoice,
		TurnDetection: domain.TurnDetection{
			Type:              "server_vad",
			Threshold:         constants.TurnDetectionThreshold,
			PrefixPaddingMS:   constants.TurnDetectionPrefixPaddingMS,
			SilenceDurationMS: constants.TurnDetectionSilenceMS,
		},
	})
	if err != nil {
		if closeErr := session.Close(); closeErr != nil {
			slog.WarnContext(ctx, "failed to close half-open realtime session",
				logging.ErrKey, closeErr)
		}
		s.setPhase(meetingUID, PhaseDisconnected)
		return err
	}

	connectedAt := s.now()
	_, err = s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		if meeting.AgentActive {
			return domain.NewConflictError("agent is already connected to this meeting")
		}
		meeting.AgentActive = true
		meeting.AgentConnectedAt = utils.TimePtr(connectedAt)
		meeting.UpdatedAt = utils.TimePtr(connectedAt)
		return nil
	})
	if err != nil {
		if closeErr := session.Close(); closeErr != nil {
			slog.WarnContext(ctx, "failed to close realtime session after store failure",
				logging.ErrKey, closeErr)
		}
		s.setPhase(meetingUID, PhaseDisconnected)
		return err
	}

	s.mu.Lock()
	s.sessions[meetingUID] = &liveConnection{
		session:     session,
		agentUID:    agent.UID,
		connectedAt: connectedAt,
	}
	s.phases[meetingUID] = PhaseConnected
	s.mu.Unlock()

	slog.InfoContext(ctx, "connected agent to meeting", "agent_uid", agent.UID)
	return nil
}

// Disconnect detaches the agent from the meeting's call and folds the
// session's duration into the meeting's total. It returns the seconds of
// just this session, not the cumulative total. Session close and call-member
// removal are attempted independently; the disconnect fails only when both
// fail, since either one alone is enough to silence the agent.
func (s *AgentConnectionService) Disconnect(ctx context.Context, meetingUID string) (int, error) {
	lock := s.meetingLock(meetingUID)
	lock.Lock()
	defer lock.Unlock()

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.Get(ctx, meetingUID)
	if err != nil {
		return 0, err
	}
	if !meeting.AgentActive {
		return 0, domain.NewValidationError("agent is not connected to this meeting")
	}

	s.setPhase(meetingUID, PhaseDisconnecting)

	s.mu.Lock()
	conn := s.sessions[meetingUID]
	delete(s.sessions, meetingUID)
	s.mu.Unlock()

	agentUID := meeting.AgentUID
	if conn != nil {
		agentUID = conn.agentUID
	}

	var closeErr error
	if conn != nil {
		closeErr = conn.session.Close()
		if closeErr != nil {
			slog.WarnContext(ctx, "failed to close realtime session", logging.ErrKey, closeErr)
		}
	}

	removeErr := s.callProvider.RemoveCallMembers(ctx, meetingUID, []string{agentUID})
	if removeErr != nil {
		slog.WarnContext(ctx, "failed to remove agent from call members", logging.ErrKey, removeErr)
	}

	if conn != nil && closeErr != nil && removeErr != nil {
		s.setPhase(meetingUID, PhaseConnected)
		s.mu.Lock()
		s.sessions[meetingUID] = conn
		s.mu.Unlock()
		return 0, domain.NewUpstreamError("failed to disconnect agent", closeErr, removeErr)
	}

	now := s.now()
	settled := 0
	_, err = s.meetingRepo.UpdateFunc(ctx, meetingUID, func(meeting *models.Meeting) error {
		if !meeting.AgentActive {
			return nil
		}
		duration := 0
		if meeting.AgentConnectedAt != nil {
			duration = int(now.Sub(*meeting.AgentConnectedAt).Seconds())
		}
		if duration < 0 {
			slog.WarnContext(ctx, "negative agent session duration clamped to zero",
				"connected_at", meeting.AgentConnectedAt, "disconnected_at", now)
			duration = 0
		}
		meeting.AgentActive = false
		meeting.AgentTotalDuration += duration
		meeting.AgentDisconnectedAt = utils.TimePtr(now)
		meeting.UpdatedAt = utils.TimePtr(now)
		settled = duration
		return nil
	})
	if err != nil {
		s.setPhase(meetingUID, PhaseDisconnected)
		return 0, err
	}

	s.setPhase(meetingUID, PhaseDisconnected)
	slog.InfoContext(ctx, "disconnected agent from meeting",
		"agent_uid", agentUID, "session_seconds", settled)
	return settled, nil
}

// Reconcile sweeps the store for meetings whose agent flag claims an active
// session this process does not hold. That is the footprint of a restart:
// the realtime socket died with the old process, so the flag is settled as a
// disconnect at sweep time and the provider membership is cleaned up best
// effort. Call once at startup, before serving traffic.
func (s *AgentConnectionService) Reconcile(ctx context.Context) error {
	meetings, err := s.meetingRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	var settleJobs []func() error
	for _, meeting := range meetings {
		if !meeting.AgentActive {
			continue
		}
		s.mu.Lock()
		_, held := s.sessions[meeting.UID]
		s.mu.Unlock()
		if held {
			continue
		}
		settleJobs = append(settleJobs, s.settleOrphanJob(ctx, meeting, now))
	}

	pool := concurrent.NewWorkerPool(reconcileWorkerCount)
	for _, err := range pool.RunAll(ctx, settleJobs...) {
		slog.ErrorContext(ctx, "failed to settle orphaned agent connection",
			logging.ErrKey, err)
	}
	return nil
}

// settleOrphanJob folds one orphaned session into the meeting's accounting.
// Member removal is best effort; the settle write is what stops the clock.
func (s *AgentConnectionService) settleOrphanJob(ctx context.Context, orphan *models.Meeting, now time.Time) func() error {
	return func() error {
		mctx := logging.AppendCtx(ctx, slog.String("meeting_uid", orphan.UID))
		slog.InfoContext(mctx, "reconciling orphaned agent connection")

		if err := s.callProvider.RemoveCallMembers(mctx, orphan.UID, []string{orphan.AgentUID}); err != nil {
			slog.WarnContext(mctx, "failed to remove orphaned agent from call members",
				logging.ErrKey, err)
		}

		_, err := s.meetingRepo.UpdateFunc(mctx, orphan.UID, func(meeting *models.Meeting) error {
			if !meeting.AgentActive {
				return nil
			}
			duration := 0
			if meeting.AgentConnectedAt != nil {
				duration = int(now.Sub(*meeting.AgentConnectedAt).Seconds())
			}
			if duration < 0 {
				duration = 0
			}
			meeting.AgentActive = false
			meeting.AgentTotalDuration += duration
			meeting.AgentDisconnectedAt = utils.TimePtr(now)
			meeting.UpdatedAt = utils.TimePtr(now)
			return nil
		})
		return err
	}
}
