package mcp

import (
	"context"
	"errors"
	"net/http"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/stretchr/testify/require"
)

type resolverStub map[string]scope.Identity

func (r resolverStub) ResolveToken(_ context.Context, token string) (scope.Identity, error) {
	id, ok := r[token]
	if !ok {
		return scope.Identity{}, errors.New("unknown token")
	}
	return id, nil
}

func requestWithAuth(header string) *sdkmcp.CallToolRequest {
	h := http.Header{}
	if header != "" {
		h.Set("Authorization", header)
	}
	return &sdkmcp.CallToolRequest{Extra: &sdkmcp.RequestExtra{Header: h}}
}

func TestAuthMiddleware(t *testing.T) {
	var seen scope.Principal
	next := func(ctx context.Context, _ string, _ sdkmcp.Request) (sdkmcp.Result, error) {
		seen, _ = scope.FromContext(ctx)
		return &sdkmcp.CallToolResult{}, nil
	}
	handler := authMiddleware(resolverStub{"good": planner})(next)

	_, err := handler(context.Background(), "tools/call", requestWithAuth("Bearer good"))
	require.NoError(t, err)
	require.Equal(t, "u1", seen.ID)

	for name, header := range map[string]string{"missing": "", "unknown": "Bearer bad", "not bearer": "Basic abc"} {
		t.Run(name, func(t *testing.T) {
			_, err := handler(context.Background(), "tools/call", requestWithAuth(header))
			require.ErrorIs(t, err, ErrUnauthorized)
		})
	}

	_, err = handler(context.Background(), "tools/call", &sdkmcp.CallToolRequest{})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthMiddleware_SkipsProtocolMethods(t *testing.T) {
	called := 0
	next := func(context.Context, string, sdkmcp.Request) (sdkmcp.Result, error) {
		called++
		return nil, nil
	}
	handler := authMiddleware(resolverStub{})(next)

	for _, method := range []string{"initialize", "ping", "notifications/initialized"} {
		_, err := handler(context.Background(), method, &sdkmcp.CallToolRequest{})
		require.NoError(t, err)
	}
	require.Equal(t, 3, called)
}

func TestAuthMiddleware_RejectsEmptyPrincipal(t *testing.T) {
	handler := authMiddleware(resolverStub{"anon": {Principal: scope.Principal{Role: scope.RoleUser}}})(
		func(context.Context, string, sdkmcp.Request) (sdkmcp.Result, error) {
			t.Fatal("handler must not run")
			return nil, nil
		})

	_, err := handler(context.Background(), "tools/call", requestWithAuth("Bearer anon"))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Equal(t, CodeAccessDenied, MapError(scope.ErrAccessDenied).Code)
	require.Equal(t, CodeUnauthorized, MapError(ErrUnauthorized).Code)

	apiErr := &APIError{Code: CodeInvalidInput, Message: "bad"}
	require.Same(t, apiErr, MapError(apiErr))

	internal := MapError(errors.New("constraint failed: projects.id"))
	require.Equal(t, CodeInternal, internal.Code)
	require.NotContains(t, internal.Message, "constraint")
}
