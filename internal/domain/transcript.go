// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

import "context"

// TranscriptItem is one utterance of a call transcript. Transcripts are
// stored externally as JSONL blobs; only the URL is persisted locally.
type TranscriptItem struct {
	SpeakerID string  `json:"speaker_id"`
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	StartTS   float64 `json:"start_ts"`
	StopTS    float64 `json:"stop_ts"`
}

// TranscriptFetcher downloads and parses a transcript from its URL.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, url string) ([]TranscriptItem, error)
}

// SubscriptionChecker asks the external billing provider whether an account
// has an active premium subscription. Premium accounts report usage but are
// exempt from agent-minute billing.
type SubscriptionChecker interface {
	HasActiveSubscription(ctx context.Context, userUID string) (bool, error)
}
