package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/estately/estate-service/internal/auth"
	"github.com/estately/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

// extractToken pulls the raw JWT from the Authorization header, falling back
// to the "token" cookie for browser clients.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests that do not carry a valid token. The resolved
// identity is placed in the request context.
func RequireAuth(verifier *auth.Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	authLogger := log.Named("RequireAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.VerifyRequired(extractToken(r))
			if err != nil {
				authLogger.Warn("Rejected unauthenticated request",
					zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), IdentityCtxKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the caller's identity when a valid token is present
// and proceeds as anonymous otherwise. It never rejects a request.
func OptionalAuth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := verifier.VerifyOptional(extractToken(r))
			ctx := context.WithValue(r.Context(), IdentityCtxKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity stored by the auth middleware,
// or Anonymous when none was set.
func IdentityFromContext(ctx context.Context) auth.Identity {
	if identity, ok := ctx.Value(IdentityCtxKey).(auth.Identity); ok {
		return identity
	}
	return auth.Anonymous
}
