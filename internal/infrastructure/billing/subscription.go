// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

// DefaultClientTimeout is the default HTTP client timeout for billing lookups.
const DefaultClientTimeout = 10 * time.Second

// Config holds the configuration for the billing client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client asks the external billing provider about subscription state.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure Client implements domain.SubscriptionChecker.
var _ domain.SubscriptionChecker = (*Client)(nil)

// NewClient creates a new billing client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

type subscriptionResponse struct {
	Active bool `json:"active"`
}

// HasActiveSubscription reports whether the account has an active premium
// subscription.
func (c *Client) HasActiveSubscription(ctx context.Context, userUID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/subscriptions/active?user_id=%s", c.config.BaseURL, url.QueryEscape(userUID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, domain.NewInternalError("failed to create subscription request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, domain.NewUpstreamError("failed to query subscription state", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, domain.NewUpstreamError(
			fmt.Sprintf("billing provider returned status %d: %s", resp.StatusCode, string(body)))
	}

	var decoded subscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, domain.NewUpstreamError("failed to decode subscription response", err)
	}
	return decoded.Active, nil
}

// StaticChecker answers subscription checks from a fixed set. Used when no
// billing provider is configured, typically local development.
type StaticChecker struct {
	premiumUsers map[string]bool
}

// Ensure StaticChecker implements domain.SubscriptionChecker.
var _ domain.SubscriptionChecker = (*StaticChecker)(nil)

// NewStaticChecker creates a checker that treats the given user UIDs as
// premium and everyone else as free-tier.
func NewStaticChecker(premiumUserUIDs []string) *StaticChecker {
	premium := make(map[string]bool, len(premiumUserUIDs))
	for _, uid := range premiumUserUIDs {
		premium[uid] = true
	}
	return &StaticChecker{premiumUsers: premium}
}

// HasActiveSubscription reports whether the user is in the premium set.
func (c *StaticChecker) HasActiveSubscription(_ context.Context, userUID string) (bool, error) {
	return c.premiumUsers[userUID], nil
}
