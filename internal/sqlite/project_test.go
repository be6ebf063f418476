package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/repository"
	"github.com/stretchr/testify/require"
)

var (
	globalAdmin = scope.Principal{ID: "root", Role: scope.RoleAdmin}
	adminT1     = scope.Principal{ID: "a1", Role: scope.RoleAdmin, TenantID: "t1"}
	owner       = scope.Principal{ID: "u1", Role: scope.RoleUser, TenantID: "t1"}
	member      = scope.Principal{ID: "u2", Role: scope.RoleUser, TenantID: "t1"}
	stranger    = scope.Principal{ID: "u3", Role: scope.RoleUser, TenantID: "t1"}
	otherTenant = scope.Principal{ID: "u1", Role: scope.RoleUser, TenantID: "t2"}
)

func TestProjectRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{
		ID:          "p1",
		TenantID:    "t1",
		Name:        "Test Project",
		Description: "A test project",
		CreatedByID: "u1",
		Members:     []string{"u1", "u2"},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, proj))
	require.ErrorIs(t, repo.Create(ctx, proj), repository.ErrConflict)

	retrieved, err := repo.Get(ctx, scope.Predicate{}, "p1")
	require.NoError(t, err)
	require.Equal(t, "t1", retrieved.TenantID)
	require.Equal(t, "u1", retrieved.CreatedByID)
	require.ElementsMatch(t, []string{"u1", "u2"}, retrieved.Members)

	_, err = repo.Get(ctx, scope.Predicate{}, "nonexistent")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_ScopedVisibility(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	insertProject(t, db, "owned", "t1", "u1", "u2")
	insertProject(t, db, "foreign", "t2", "u9")
	insertProject(t, db, "untenanted", "", "u1")

	cases := []struct {
		name      string
		principal scope.Principal
		visible   []string
	}{
		{name: "global admin", principal: globalAdmin, visible: []string{"owned", "foreign", "untenanted"}},
		{name: "tenant admin", principal: adminT1, visible: []string{"owned"}},
		{name: "owner", principal: owner, visible: []string{"owned"}},
		{name: "member", principal: member, visible: []string{"owned"}},
		{name: "stranger in tenant", principal: stranger, visible: []string{}},
		{name: "same user id other tenant", principal: otherTenant, visible: []string{}},
		{name: "user without tenant", principal: scope.Principal{ID: "u1", Role: scope.RoleUser}, visible: []string{"owned", "untenanted"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pred := scope.ResolveProjectScope(tc.principal)
			list, err := repo.List(ctx, pred)
			require.NoError(t, err)

			ids := []string{}
			for _, s := range list {
				ids = append(ids, s.ID)
			}
			require.ElementsMatch(t, tc.visible, ids)

			for _, id := range []string{"owned", "foreign", "untenanted"} {
				_, err := repo.Get(ctx, pred, id)
				if contains(tc.visible, id) {
					require.NoError(t, err, id)
				} else {
					require.ErrorIs(t, err, repository.ErrNotFound, id)
				}
			}
		})
	}
}

func TestProjectRepository_AddMember(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	insertProject(t, db, "p1", "t1", "u1")

	require.ErrorIs(t, repo.AddMember(ctx, scope.ResolveProjectScope(stranger), "p1", "u3"), repository.ErrNotFound)

	require.NoError(t, repo.AddMember(ctx, scope.ResolveProjectScope(owner), "p1", "u3"))
	require.ErrorIs(t, repo.AddMember(ctx, scope.ResolveProjectScope(owner), "p1", "u3"), repository.ErrConflict)

	_, err := repo.Get(ctx, scope.ResolveProjectScope(stranger), "p1")
	require.NoError(t, err, "new member sees the project")
}

func TestProjectRepository_SummaryCountsAndProgress(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	insertProject(t, db, "p1", "t1", "u1")
	insertItem(t, db, "i1", "p1", "t1", "1", "Done")
	insertItem(t, db, "i2", "p1", "t1", "2", "NotStarted")

	require.NoError(t, repo.SetProgress(ctx, "p1", 50))
	require.ErrorIs(t, repo.SetProgress(ctx, "missing", 1), repository.ErrNotFound)

	list, err := repo.List(ctx, scope.Predicate{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 2, list[0].ItemCount)
	require.Equal(t, 1, list[0].DoneItems)
	require.Equal(t, 50.0, list[0].Progress)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
