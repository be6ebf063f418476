package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rpggio/planscope/internal/domain/scope"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// IdentityResolver resolves the principal and permissions behind a bearer
// token.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, token string) (scope.Identity, error)
}

// AuthMiddleware enforces bearer token authentication and stores the
// resolved identity in the request context.
func AuthMiddleware(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
				return
			}

			id, err := resolver.ResolveToken(r.Context(), token)
			// An empty ID would turn the ownership branches of a user scope
			// into match-all filters.
			if err != nil || id.Principal.ID == "" {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(scope.WithIdentity(r.Context(), id)))
		})
	}
}

// StaticIdentityMiddleware runs every request as id. It replaces
// AuthMiddleware when authentication is disabled.
func StaticIdentityMiddleware(id scope.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(scope.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireFeature rejects requests whose identity may not use featureID.
func RequireFeature(featureID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := scope.IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing identity")
				return
			}
			if !id.Can(featureID) {
				WriteError(w, http.StatusForbidden, CodeAccessDenied, "feature "+featureID+" is not enabled for this account")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
