// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"
)

// ChatMessage is one message in a meeting's chat channel.
type ChatMessage struct {
	UserID string
	Text   string
	SentAt time.Time
}

// ChatProvider is the external chat service attached to each meeting; the
// channel ID equals the meeting UID.
type ChatProvider interface {
	ChannelMessages(ctx context.Context, channelID string, limit int) ([]ChatMessage, error)
	SendMessage(ctx context.Context, channelID string, userID string, text string) error
}

// CompletionMessage is one turn of a completion request.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a request to the conversational-AI completion
// endpoint, used for post-meeting chat replies and transcript summaries.
type CompletionRequest struct {
	System   string
	Messages []CompletionMessage
}

// CompletionProvider produces a single completion for a context window.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
