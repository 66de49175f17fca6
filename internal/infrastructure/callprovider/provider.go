// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package callprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

// Ensure Client implements domain.CallProvider.
var _ domain.CallProvider = (*Client)(nil)

// recordingModeAuto asks the provider to start transcription or recording as
// soon as the call session begins.
const (
	recordingModeAuto     = "auto-on"
	recordingModeDisabled = "disabled"
)

type callSettingsRequest struct {
	Transcription struct {
		Mode string `json:"mode"`
	} `json:"transcription"`
	Recording struct {
		Mode string `json:"mode"`
	} `json:"recording"`
}

type createCallRequest struct {
	CreatedByID string              `json:"created_by_id"`
	Custom      map[string]string   `json:"custom,omitempty"`
	Settings    callSettingsRequest `json:"settings_override"`
}

type upsertUsersRequest struct {
	Users []providerUser `json:"users"`
}

type providerUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Image string `json:"image,omitempty"`
}

type removeMembersRequest struct {
	RemoveMembers []string `json:"remove_members"`
}

type mintTokenRequest struct {
	ValiditySeconds int64 `json:"validity_in_seconds"`
}

type mintTokenResponse struct {
	Token string `json:"token"`
}

// CreateCall creates or updates the call object for a meeting. Transcription
// and recording are set to start automatically when enabled so the provider
// fires the ready webhooks without further prompting.
func (c *Client) CreateCall(ctx context.Context, callID string, createdByUserID string, custom map[string]string, settings domain.CallSettings) error {
	request := createCallRequest{
		CreatedByID: createdByUserID,
		Custom:      custom,
	}
	request.Settings.Transcription.Mode = recordingModeDisabled
	if settings.TranscriptionEnabled {
		request.Settings.Transcription.Mode = recordingModeAuto
	}
	request.Settings.Recording.Mode = recordingModeDisabled
	if settings.RecordingEnabled {
		request.Settings.Recording.Mode = recordingModeAuto
	}

	path := fmt.Sprintf("/calls/%s", callID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, request)
	if err != nil {
		return domain.NewUpstreamError("failed to create call", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewUpstreamError("failed to create call", parseErrorResponse(body))
	}
	return nil
}

// EndCall ends the call for every participant.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	path := fmt.Sprintf("/calls/%s/end", callID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return domain.NewUpstreamError("failed to end call", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewUpstreamError("failed to end call", parseErrorResponse(body))
	}
	return nil
}

// UpsertUsers registers identities with the provider. The call is idempotent
// on the provider side, so re-registering an existing user is safe.
func (c *Client) UpsertUsers(ctx context.Context, users []domain.CallProviderUser) error {
	request := upsertUsersRequest{Users: make([]providerUser, 0, len(users))}
	for _, user := range users {
		request.Users = append(request.Users, providerUser{
			ID:    user.ID,
			Name:  user.Name,
			Role:  user.Role,
			Image: user.Image,
		})
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/users", request)
	if err != nil {
		return domain.NewUpstreamError("failed to upsert users", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewUpstreamError("failed to upsert users", parseErrorResponse(body))
	}
	return nil
}

// RemoveCallMembers removes identities from the call's membership list.
func (c *Client) RemoveCallMembers(ctx context.Context, callID string, userIDs []string) error {
	path := fmt.Sprintf("/calls/%s/members", callID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, removeMembersRequest{RemoveMembers: userIDs})
	if err != nil {
		return domain.NewUpstreamError("failed to remove call members", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewUpstreamError("failed to remove call members", parseErrorResponse(body))
	}
	return nil
}

// MintUserToken mints a short-lived provider token for the identity.
func (c *Client) MintUserToken(ctx context.Context, userID string, validity time.Duration) (string, error) {
	path := fmt.Sprintf("/users/%s/token", userID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, mintTokenRequest{
		ValiditySeconds: int64(validity.Seconds()),
	})
	if err != nil {
		return "", domain.NewUpstreamError("failed to mint user token", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", domain.NewUpstreamError("failed to mint user token", parseErrorResponse(body))
	}

	var tokenResp mintTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", domain.NewUpstreamError("failed to decode token response", err)
	}
	return tokenResp.Token, nil
}
