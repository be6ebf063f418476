package scope_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestResolveProjectScope(t *testing.T) {
	cases := []struct {
		name      string
		principal scope.Principal
		want      string
	}{
		{
			name:      "global admin",
			principal: scope.Principal{ID: "A", Role: scope.RoleAdmin},
			want:      `{}`,
		},
		{
			name:      "tenant admin",
			principal: scope.Principal{ID: "A", Role: scope.RoleAdmin, TenantID: "T"},
			want:      `{"tenantId":"T"}`,
		},
		{
			name:      "tenant user",
			principal: scope.Principal{ID: "U", Role: scope.RoleUser, TenantID: "T"},
			want:      `{"tenantId":"T","OR":[{"createdById":"U"},{"members":{"some":{"userId":"U"}}}]}`,
		},
		{
			name:      "user without tenant",
			principal: scope.Principal{ID: "U", Role: scope.RoleUser},
			want:      `{"OR":[{"createdById":"U"},{"members":{"some":{"userId":"U"}}}]}`,
		},
		{
			name:      "unknown role scoped as user",
			principal: scope.Principal{ID: "U", Role: scope.Role("MANAGER"), TenantID: "T"},
			want:      `{"tenantId":"T","OR":[{"createdById":"U"},{"members":{"some":{"userId":"U"}}}]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.JSONEq(t, tc.want, marshal(t, scope.ResolveProjectScope(tc.principal)))
		})
	}
}

func TestResolveProjectScope_GlobalAdminIsEmpty(t *testing.T) {
	pred := scope.ResolveProjectScope(scope.Principal{ID: "A", Role: scope.RoleAdmin})
	require.True(t, pred.IsEmpty())
}

func TestResolveProjectScope_Idempotent(t *testing.T) {
	p := scope.Principal{ID: "U", Role: scope.RoleUser, TenantID: "T"}
	first := scope.ResolveProjectScope(p)
	second := scope.ResolveProjectScope(p)
	require.True(t, first.Equal(second))
	require.Equal(t, first, second)

	firstItem := scope.ResolveItemScope(p)
	secondItem := scope.ResolveItemScope(p)
	require.True(t, firstItem.Equal(*secondItem))
}

func TestResolveItemScope(t *testing.T) {
	t.Run("global admin has no filter", func(t *testing.T) {
		require.Nil(t, scope.ResolveItemScope(scope.Principal{ID: "A", Role: scope.RoleAdmin}))
	})

	t.Run("tenant admin is flat", func(t *testing.T) {
		pred := scope.ResolveItemScope(scope.Principal{ID: "A", Role: scope.RoleAdmin, TenantID: "T"})
		require.NotNil(t, pred)
		require.JSONEq(t, `{"tenantId":"T"}`, marshal(t, pred))
	})

	t.Run("user nests project scope", func(t *testing.T) {
		user := scope.Principal{ID: "U", Role: scope.RoleUser, TenantID: "T"}
		pred := scope.ResolveItemScope(user)
		require.NotNil(t, pred)
		require.Equal(t, "T", pred.TenantID)
		require.NotNil(t, pred.Project)
		require.True(t, pred.Project.Is.Equal(scope.ResolveProjectScope(user)))
		require.JSONEq(t,
			`{"tenantId":"T","project":{"is":{"tenantId":"T","OR":[{"createdById":"U"},{"members":{"some":{"userId":"U"}}}]}}}`,
			marshal(t, pred))
	})

	t.Run("user without tenant", func(t *testing.T) {
		pred := scope.ResolveItemScope(scope.Principal{ID: "U", Role: scope.RoleUser})
		require.NotNil(t, pred)
		require.Empty(t, pred.TenantID)
		require.JSONEq(t,
			`{"project":{"is":{"OR":[{"createdById":"U"},{"members":{"some":{"userId":"U"}}}]}}}`,
			marshal(t, pred))
	})
}

func TestCanAccessFeature(t *testing.T) {
	cases := []struct {
		name        string
		role        scope.Role
		permissions map[string]any
		feature     string
		allow       bool
	}{
		{name: "admin without map", role: scope.RoleAdmin, permissions: nil, feature: "x", allow: true},
		{name: "admin with empty map", role: scope.RoleAdmin, permissions: map[string]any{}, feature: "x", allow: true},
		{name: "user granted", role: scope.RoleUser, permissions: map[string]any{"a": true}, feature: "a", allow: true},
		{name: "user missing key", role: scope.RoleUser, permissions: map[string]any{"a": true}, feature: "b", allow: false},
		{name: "user nil map", role: scope.RoleUser, permissions: nil, feature: "a", allow: false},
		{name: "empty role nil map", role: "", permissions: nil, feature: "a", allow: false},
		{name: "truthy non-bool", role: scope.RoleUser, permissions: map[string]any{"a": "true"}, feature: "a", allow: false},
		{name: "explicit false", role: scope.RoleUser, permissions: map[string]any{"a": false}, feature: "a", allow: false},
		{name: "lowercase admin is not admin", role: scope.Role("admin"), permissions: nil, feature: "a", allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.allow, scope.CanAccessFeature(tc.role, tc.permissions, tc.feature))
		})
	}
}

func TestParseRole(t *testing.T) {
	require.Equal(t, scope.RoleAdmin, scope.ParseRole("ADMIN"))
	require.Equal(t, scope.RoleAdmin, scope.ParseRole(" admin "))
	require.Equal(t, scope.RoleUser, scope.ParseRole("USER"))
	require.Equal(t, scope.RoleUser, scope.ParseRole(""))
	require.Equal(t, scope.RoleUser, scope.ParseRole("owner"))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := scope.FromContext(context.Background())
	require.False(t, ok)

	p := scope.Principal{ID: "U", Role: scope.RoleUser, TenantID: "T"}
	got, ok := scope.FromContext(scope.WithPrincipal(context.Background(), p))
	require.True(t, ok)
	require.Equal(t, p, got)
}

func TestIdentity_Can(t *testing.T) {
	editor := scope.Identity{
		Principal:   scope.Principal{ID: "U", Role: scope.RoleUser, TenantID: "T"},
		Permissions: map[string]any{scope.FeatureEditProject: true},
	}
	require.True(t, editor.Can(scope.FeatureEditProject))
	require.False(t, editor.Can(scope.FeatureAddProjects))

	ctx := scope.WithIdentity(context.Background(), editor)
	got, ok := scope.IdentityFromContext(ctx)
	require.True(t, ok)
	require.True(t, got.Can(scope.FeatureEditProject))

	p, ok := scope.FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "U", p.ID)
}
