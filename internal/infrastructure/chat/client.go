// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

const (
	// BaseURL is the base URL of the chat service REST API.
	BaseURL = "https://chat.agentmeet.io/api/v2"
	// DefaultClientTimeout is the default HTTP client timeout for chat requests.
	DefaultClientTimeout = 15 * time.Second
)

// Config holds the configuration for the chat client.
type Config struct {
	APIKey string
	// Optional overrides.
	BaseURL string
	Timeout time.Duration
}

// Client is the REST client for the meeting chat channels. Each meeting owns
// one channel whose ID equals the meeting UID.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure Client implements domain.ChatProvider.
var _ domain.ChatProvider = (*Client)(nil)

// NewClient creates a new chat client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

type channelMessage struct {
	UserID string    `json:"user_id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

type channelMessagesResponse struct {
	Messages []channelMessage `json:"messages"`
}

type sendMessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	return c.httpClient.Do(req)
}

// ChannelMessages returns the most recent messages of the channel, newest
// last, limited to the given count.
func (c *Client) ChannelMessages(ctx context.Context, channelID string, limit int) ([]domain.ChatMessage, error) {
	path := fmt.Sprintf("/channels/%s/messages?limit=%s", channelID, strconv.Itoa(limit))
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, domain.NewUpstreamError("failed to fetch channel messages", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewUpstreamError(
			fmt.Sprintf("chat service returned status %d: %s", resp.StatusCode, string(body)))
	}

	var decoded channelMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, domain.NewUpstreamError("failed to decode channel messages", err)
	}

	messages := make([]domain.ChatMessage, 0, len(decoded.Messages))
	for _, m := range decoded.Messages {
		messages = append(messages, domain.ChatMessage{
			UserID: m.UserID,
			Text:   m.Text,
			SentAt: m.SentAt,
		})
	}
	return messages, nil
}

// SendMessage posts a message to the channel as the given user.
func (c *Client) SendMessage(ctx context.Context, channelID string, userID string, text string) error {
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, sendMessageRequest{UserID: userID, Text: text})
	if err != nil {
		return domain.NewUpstreamError("failed to send channel message", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewUpstreamError(
			fmt.Sprintf("chat service returned status %d: %s", resp.StatusCode, string(body)))
	}
	return nil
}
