// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

const (
	// BaseURL is the base URL of the conversational AI REST API.
	BaseURL = "https://ai.agentmeet.io/v1"
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "gpt-4o"
	// DefaultClientTimeout is the default HTTP client timeout for completion
	// requests. Completions can take a while on long transcripts.
	DefaultClientTimeout = 2 * time.Minute
)

// Config holds the configuration for the completions client.
type Config struct {
	APIKey string
	// Optional overrides.
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client produces chat completions for summaries and post-meeting replies.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure Client implements domain.CompletionProvider.
var _ domain.CompletionProvider = (*Client)(nil)

// NewClient creates a new completions client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

type completionRequest struct {
	Model    string                     `json:"model"`
	Messages []domain.CompletionMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs one completion over the request's context window and returns
// the model's reply text.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	messages := make([]domain.CompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, domain.CompletionMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, req.Messages...)

	payload, err := json.Marshal(completionRequest{Model: c.config.Model, Messages: messages})
	if err != nil {
		return "", domain.NewInternalError("failed to marshal completion request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", domain.NewInternalError("failed to create completion request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", domain.NewUpstreamError("completion request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", domain.NewUpstreamError(
			fmt.Sprintf("completion endpoint returned status %d: %s", resp.StatusCode, string(body)))
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", domain.NewUpstreamError("failed to decode completion response", err)
	}
	if len(decoded.Choices) == 0 {
		return "", domain.NewUpstreamError("completion response contained no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
