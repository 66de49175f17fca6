// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

import "context"

// TurnDetection is the voice-activity configuration for a realtime session.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms"`
	SilenceDurationMS int     `json:"silence_duration_ms"`
}

// RealtimeSessionConfig configures a live agent session.
type RealtimeSessionConfig struct {
	Instructions  string        `json:"instructions"`
	Voice         string        `json:"voice,omitempty"`
	TurnDetection TurnDetection `json:"turn_detection"`
}

// RealtimeSession is a live handle to one open realtime AI session bound to
// one call's audio. It is process-local, never persisted, and owned
// exclusively by the agent connection manager.
type RealtimeSession interface {
	// Update reconfigures the live session (instructions, voice, VAD).
	Update(ctx context.Context, config RealtimeSessionConfig) error
	// Close tears the session down. Safe to call once.
	Close() error
}

// RealtimeProvider opens realtime AI sessions against the external
// conversational-AI endpoint.
type RealtimeProvider interface {
	Connect(ctx context.Context, callID string, agentUserID string) (RealtimeSession, error)
}
