// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// WebhookSignatureHeader carries the call provider's HMAC signature.
	WebhookSignatureHeader string = "X-Signature"

	// WebhookAPIKeyHeader carries the call provider's API key.
	WebhookAPIKeyHeader string = "X-Api-Key"

	// WebhookTimestampHeader carries the call provider's request timestamp.
	WebhookTimestampHeader string = "X-Timestamp"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// contextAuthorization is the type for the authorization context key
type contextAuthorization string

// AuthorizationContextID is the context ID for the authorization
const AuthorizationContextID contextAuthorization = "authorization"

// contextPrincipal is the type for the principal context key
type contextPrincipal string

// PrincipalContextID is the context ID for the authenticated principal
const PrincipalContextID contextPrincipal = "x-principal"

// contextEmail is the type for the principal email context key
type contextEmail string

// EmailContextID is the context ID for the authenticated principal's email
const EmailContextID contextEmail = "x-principal-email"
