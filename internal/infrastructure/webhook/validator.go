// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// replayTolerance bounds how old a webhook delivery may be before it is
// rejected as a possible replay.
const replayTolerance = 5 * time.Minute

// Validator checks call-provider webhook deliveries. The provider signs the
// raw request body with HMAC-SHA256 using the shared API secret and sends the
// hex digest in the signature header alongside its API key.
type Validator struct {
	apiKey    string
	apiSecret string
	now       func() time.Time
}

// NewValidator creates a webhook validator for the given provider credentials.
func NewValidator(apiKey, apiSecret string) *Validator {
	return &Validator{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       time.Now,
	}
}

// ValidateSignature verifies the HMAC-SHA256 signature of the raw body and
// rejects deliveries whose timestamp falls outside the replay window.
func (v *Validator) ValidateSignature(body []byte, signature, timestamp string) error {
	if v.apiSecret == "" {
		return fmt.Errorf("webhook API secret not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	if timestamp == "" {
		return fmt.Errorf("missing webhook timestamp")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp format: %w", err)
	}

	age := v.now().Unix() - ts
	if age > int64(replayTolerance.Seconds()) {
		return fmt.Errorf("request timestamp too old")
	}

	h := hmac.New(sha256.New, []byte(v.apiSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("invalid webhook signature")
	}

	return nil
}

// ValidateAPIKey checks the API key header against the configured key.
func (v *Validator) ValidateAPIKey(apiKey string) error {
	if v.apiKey == "" {
		return fmt.Errorf("webhook API key not configured")
	}

	if !hmac.Equal([]byte(apiKey), []byte(v.apiKey)) {
		return fmt.Errorf("invalid webhook API key")
	}

	return nil
}
