package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/planscope/internal/domain/scope"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// IdentityResolver resolves the principal and permissions behind a bearer
// token.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, token string) (scope.Identity, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver IdentityResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if skipsAuth(method) {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", ErrUnauthorized)
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
			}

			id, err := resolver.ResolveToken(ctx, token)
			if err != nil || id.Principal.ID == "" {
				return nil, fmt.Errorf("%w: invalid bearer token", ErrUnauthorized)
			}

			return next(scope.WithIdentity(ctx, id), method, req)
		}
	}
}

// staticIdentityMiddleware runs every request as id when auth is disabled.
func staticIdentityMiddleware(id scope.Identity) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(scope.WithIdentity(ctx, id), method, req)
		}
	}
}

func skipsAuth(method string) bool {
	return method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/")
}

// identity returns the caller identity stored by the middleware.
func identity(ctx context.Context) (scope.Identity, error) {
	id, ok := scope.IdentityFromContext(ctx)
	if !ok || id.Principal.ID == "" {
		return scope.Identity{}, &APIError{Code: CodeUnauthorized, Message: "no identity for request"}
	}
	return id, nil
}
