// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

// MockCallProvider implements CallProvider for testing
type MockCallProvider struct {
	mock.Mock
}

func (m *MockCallProvider) CreateCall(ctx context.Context, callID string, createdByUserID string, custom map[string]string, settings domain.CallSettings) error {
	args := m.Called(ctx, callID, createdByUserID, custom, settings)
	return args.Error(0)
}

func (m *MockCallProvider) EndCall(ctx context.Context, callID string) error {
	args := m.Called(ctx, callID)
	return args.Error(0)
}

func (m *MockCallProvider) UpsertUsers(ctx context.Context, users []domain.CallProviderUser) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *MockCallProvider) RemoveCallMembers(ctx context.Context, callID string, userIDs []string) error {
	args := m.Called(ctx, callID, userIDs)
	return args.Error(0)
}

func (m *MockCallProvider) MintUserToken(ctx context.Context, userID string, validity time.Duration) (string, error) {
	args := m.Called(ctx, userID, validity)
	return args.String(0), args.Error(1)
}

// MockRealtimeSession implements RealtimeSession for testing
type MockRealtimeSession struct {
	mock.Mock
}

func (m *MockRealtimeSession) Update(ctx context.Context, config domain.RealtimeSessionConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockRealtimeSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRealtimeProvider implements RealtimeProvider for testing
type MockRealtimeProvider struct {
	mock.Mock
}

func (m *MockRealtimeProvider) Connect(ctx context.Context, callID string, agentUserID string) (domain.RealtimeSession, error) {
	args := m.Called(ctx, callID, agentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RealtimeSession), args.Error(1)
}

// MockChatProvider implements ChatProvider for testing
type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) ChannelMessages(ctx context.Context, channelID string, limit int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, channelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *MockChatProvider) SendMessage(ctx context.Context, channelID string, userID string, text string) error {
	args := m.Called(ctx, channelID, userID, text)
	return args.Error(0)
}

// MockCompletionProvider implements CompletionProvider for testing
type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockTranscriptFetcher implements TranscriptFetcher for testing
type MockTranscriptFetcher struct {
	mock.Mock
}

func (m *MockTranscriptFetcher) Fetch(ctx context.Context, url string) ([]domain.TranscriptItem, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TranscriptItem), args.Error(1)
}

// MockSubscriptionChecker implements SubscriptionChecker for testing
type MockSubscriptionChecker struct {
	mock.Mock
}

func (m *MockSubscriptionChecker) HasActiveSubscription(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}
