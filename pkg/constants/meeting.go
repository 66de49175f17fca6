// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Agent session constraints and billing rates.
const (
	// AgentCostPerMinute is the per-minute charge for agent usage on
	// non-premium accounts, in USD.
	AgentCostPerMinute = 0.10

	// AgentTokenValidity is how long a provider token minted for the
	// agent identity remains valid.
	AgentTokenValidity = time.Hour

	// JoinTokenValidity is how long a provider token minted for a joining
	// participant remains valid.
	JoinTokenValidity = time.Hour

	// ChatContextMessageLimit is the number of trailing channel messages
	// included in the context window for post-meeting chat replies.
	ChatContextMessageLimit = 5
)

// Turn-detection tuning for the realtime agent session. The values keep
// the agent from talking over participants.
const (
	TurnDetectionThreshold       = 0.5
	TurnDetectionPrefixPaddingMS = 300
	TurnDetectionSilenceMS       = 500
)

// AgentVoice is the fixed voice used for all agent sessions.
const AgentVoice = "alloy"
