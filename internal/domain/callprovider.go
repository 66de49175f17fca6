// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"
)

// CallProviderUser is an identity registered with the call provider. Agents
// are registered the same way as human users.
type CallProviderUser struct {
	ID    string
	Name  string
	Role  string
	Image string
}

// CallSettings configures a call at creation time.
type CallSettings struct {
	TranscriptionEnabled bool
	RecordingEnabled     bool
}

// CallProvider is the external service hosting the audio/video transport,
// membership, recording and transcription. The meeting UID is used as the
// call ID.
type CallProvider interface {
	// CreateCall creates (or upserts) the call object for the meeting.
	CreateCall(ctx context.Context, callID string, createdByUserID string, custom map[string]string, settings CallSettings) error
	// EndCall ends the call for everyone.
	EndCall(ctx context.Context, callID string) error
	// UpsertUsers registers identities with the provider; idempotent.
	UpsertUsers(ctx context.Context, users []CallProviderUser) error
	// RemoveCallMembers removes identities from the call's membership list.
	RemoveCallMembers(ctx context.Context, callID string, userIDs []string) error
	// MintUserToken mints a short-lived provider token for the identity.
	MintUserToken(ctx context.Context, userID string, validity time.Duration) (string, error)
}
