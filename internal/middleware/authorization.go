// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/constants"
)

// PrincipalParser validates a bearer token and returns the principal and
// email claims it carries.
type PrincipalParser interface {
	ParsePrincipalWithEmail(ctx context.Context, token string, logger *slog.Logger) (principal string, email string, err error)
}

// openPaths are served without authentication. The webhook endpoint has its
// own signature gate.
var openPaths = map[string]bool{
	"/webhook": true,
	"/livez":   true,
	"/readyz":  true,
}

// AuthorizationMiddleware validates the bearer token on every protected
// route and stores the principal in the request context.
func AuthorizationMiddleware(parser PrincipalParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if openPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" {
				header = r.Header.Get(constants.AuthorizationHeader)
			}
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeAuthError(w, "missing bearer token")
				return
			}

			principal, email, err := parser.ParsePrincipalWithEmail(ctx, token, slog.Default())
			if err != nil {
				slog.WarnContext(ctx, "rejecting request with invalid token", logging.ErrKey, err)
				writeAuthError(w, "invalid bearer token")
				return
			}

			ctx = context.WithValue(ctx, constants.AuthorizationContextID, header)
			ctx = context.WithValue(ctx, constants.PrincipalContextID, principal)
			if email != "" {
				ctx = context.WithValue(ctx, constants.EmailContextID, email)
			}
			ctx = logging.AppendCtx(ctx, slog.String("principal", principal))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(constants.PrincipalContextID).(string)
	return principal, ok && principal != ""
}

// EmailFromContext returns the authenticated principal's email, if any.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(constants.EmailContextID).(string)
	return email, ok && email != ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
