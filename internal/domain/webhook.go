// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package domain

// WebhookValidator verifies that a webhook delivery originated from the call
// provider. Validation gates entry to the event processor entirely: nothing
// may touch state before the signature check passes.
type WebhookValidator interface {
	ValidateSignature(body []byte, signature string, timestamp string) error
	ValidateAPIKey(apiKey string) error
}
