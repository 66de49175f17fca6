// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
)

const (
	// BaseURL is the websocket endpoint of the conversational AI service.
	BaseURL = "wss://ai.agentmeet.io/v1/realtime"
	// DefaultModel is the realtime model used when none is configured.
	DefaultModel = "gpt-4o-realtime-preview"
	// DefaultHandshakeTimeout bounds the websocket dial.
	DefaultHandshakeTimeout = 15 * time.Second

	writeTimeout = 10 * time.Second
)

// Config holds the configuration for the realtime provider.
type Config struct {
	APIKey string
	// Optional overrides.
	BaseURL          string
	Model            string
	HandshakeTimeout time.Duration
}

// Provider opens realtime AI sessions over websocket. Each Connect call binds
// one session to one call's audio through the agent's provider identity.
type Provider struct {
	config Config
	dialer *websocket.Dialer
}

// Ensure Provider implements domain.RealtimeProvider.
var _ domain.RealtimeProvider = (*Provider)(nil)

// NewProvider creates a new realtime session provider.
func NewProvider(config Config) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}

	return &Provider{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

// Connect dials the realtime endpoint and returns a live session handle.
func (p *Provider) Connect(ctx context.Context, callID string, agentUserID string) (domain.RealtimeSession, error) {
	endpoint, err := url.Parse(p.config.BaseURL)
	if err != nil {
		return nil, domain.NewInternalError("invalid realtime endpoint URL", err)
	}
	query := endpoint.Query()
	query.Set("model", p.config.Model)
	query.Set("call_id", callID)
	query.Set("agent_user_id", agentUserID)
	endpoint.RawQuery = query.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.config.APIKey)

	conn, resp, err := p.dialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, domain.NewUpstreamError(
				fmt.Sprintf("realtime handshake failed with status %d", resp.StatusCode), err)
		}
		return nil, domain.NewUpstreamError("failed to connect realtime session", err)
	}

	session := &Session{
		conn:        conn,
		callID:      callID,
		agentUserID: agentUserID,
		done:        make(chan struct{}),
	}
	go session.readLoop()

	slog.DebugContext(ctx, "realtime session connected",
		"call_id", callID,
		"agent_user_id", agentUserID,
		"model", p.config.Model,
	)
	return session, nil
}

// Session is a live websocket-backed realtime session.
type Session struct {
	conn        *websocket.Conn
	callID      string
	agentUserID string

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// Ensure Session implements domain.RealtimeSession.
var _ domain.RealtimeSession = (*Session)(nil)

type sessionUpdateEvent struct {
	Type    string                       `json:"type"`
	Session domain.RealtimeSessionConfig `json:"session"`
}

// Update reconfigures the live session.
func (s *Session) Update(ctx context.Context, config domain.RealtimeSessionConfig) error {
	select {
	case <-s.done:
		return domain.NewUnavailableError("realtime session is closed")
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = s.conn.SetWriteDeadline(deadline)

	event := sessionUpdateEvent{Type: "session.update", Session: config}
	if err := s.conn.WriteJSON(event); err != nil {
		return domain.NewUpstreamError("failed to update realtime session", err)
	}
	return nil
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		s.writeMu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		err = s.conn.Close()
	})
	return err
}

// readLoop drains server events so the connection's read side stays healthy.
// The AI service handles the audio exchange through the call itself; events
// arriving here are informational.
func (s *Session) readLoop() {
	for {
		_, _, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				slog.Debug("realtime session read ended",
					logging.ErrKey, err,
					"call_id", s.callID,
					"agent_user_id", s.agentUserID,
				)
			}
			return
		}
	}
}
