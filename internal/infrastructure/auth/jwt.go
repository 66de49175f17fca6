// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

const (
	// defaultJWKSURL is the JWKS endpoint of the local identity gateway.
	defaultJWKSURL = "http://localhost:4457/.well-known/jwks"
	// defaultAudience is the expected token audience.
	defaultAudience = "meeting-agent-service"
	// jwksCacheTTL is how long fetched signing keys stay cached.
	jwksCacheTTL = 5 * time.Minute
)

// PrincipalClaims are the custom claims the identity gateway embeds in access
// tokens. The principal is the stable user UID.
type PrincipalClaims struct {
	Principal string `json:"principal"`
	Email     string `json:"email,omitempty"`
}

// Validate checks that the claims carry a principal.
func (c *PrincipalClaims) Validate(_ context.Context) error {
	if c.Principal == "" {
		return errors.New("principal must be provided")
	}
	return nil
}

// JWTAuthConfig configures JWT validation.
type JWTAuthConfig struct {
	JWKSURL  string
	Audience string
	// MockLocalPrincipal bypasses validation and returns this principal
	// for every token. Local development only.
	MockLocalPrincipal string
}

// JWTAuth validates bearer tokens against the identity gateway's JWKS.
type JWTAuth struct {
	config    JWTAuthConfig
	validator *validator.Validator
}

// NewJWTAuth creates a JWT authenticator for the given configuration.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultJWKSURL
	}
	if config.Audience == "" {
		config.Audience = defaultAudience
	}

	issuerURL, err := url.Parse(config.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS URL: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, jwksCacheTTL)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{config.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &PrincipalClaims{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up JWT validator: %w", err)
	}

	return &JWTAuth{
		config:    config,
		validator: jwtValidator,
	}, nil
}

// ParsePrincipal validates the bearer token and returns the principal it
// carries. The caller strips the "Bearer " prefix.
func (a *JWTAuth) ParsePrincipal(ctx context.Context, token string, logger *slog.Logger) (string, error) {
	if a.config.MockLocalPrincipal != "" {
		logger.WarnContext(ctx, "using mock principal; do not use in production",
			"principal", a.config.MockLocalPrincipal)
		return a.config.MockLocalPrincipal, nil
	}

	if a.validator == nil {
		return "", errors.New("JWT validator is not set up")
	}

	parsed, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}

	custom, ok := claims.CustomClaims.(*PrincipalClaims)
	if !ok || custom.Principal == "" {
		return "", errors.New("token carries no principal")
	}

	return custom.Principal, nil
}

// ParsePrincipalWithEmail validates the bearer token and returns both the
// principal and the email claim when present.
func (a *JWTAuth) ParsePrincipalWithEmail(ctx context.Context, token string, logger *slog.Logger) (principal string, email string, err error) {
	if a.config.MockLocalPrincipal != "" {
		logger.WarnContext(ctx, "using mock principal; do not use in production",
			"principal", a.config.MockLocalPrincipal)
		return a.config.MockLocalPrincipal, "", nil
	}

	if a.validator == nil {
		return "", "", errors.New("JWT validator is not set up")
	}

	parsed, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return "", "", errors.New("unexpected claims type")
	}

	custom, ok := claims.CustomClaims.(*PrincipalClaims)
	if !ok || custom.Principal == "" {
		return "", "", errors.New("token carries no principal")
	}

	return custom.Principal, custom.Email, nil
}
