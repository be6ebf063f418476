package project_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/domain/taskstate"
	"github.com/rpggio/planscope/internal/repository"
	"github.com/rpggio/planscope/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	tenantUser  = scope.Principal{ID: "u1", Role: scope.RoleUser, TenantID: "t1"}
	globalAdmin = scope.Principal{ID: "root", Role: scope.RoleAdmin}
)

func TestProjectService_CreateValidation(t *testing.T) {
	repo := &mocks.ProjectRepository{}
	svc := project.NewService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), tenantUser, project.CreateRequest{Name: "  "})
	require.ErrorIs(t, err, project.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectService_CreateUsesPrincipalTenant(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	logger := &mocks.ActivityLogger{}
	repo.On("Create", ctx, mock.AnythingOfType("*project.Project")).Return(nil)
	logger.On("LogActivity", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeProjectCreated && e.ActorID == "u1"
	})).Return(nil)

	svc := project.NewService(repo, nil, logger, nil)
	proj, err := svc.Create(ctx, tenantUser, project.CreateRequest{Name: "Roadmap", TenantID: "other"})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "t1", proj.TenantID)
	require.Equal(t, "u1", proj.CreatedByID)
	require.Equal(t, []string{"u1"}, proj.Members)
	logger.AssertExpectations(t)
}

func TestProjectService_GlobalAdminChoosesTenant(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*project.Project")).Return(nil)

	svc := project.NewService(repo, nil, nil, nil)
	proj, err := svc.Create(ctx, globalAdmin, project.CreateRequest{Name: "Shared", TenantID: "t9"})
	require.NoError(t, err)
	require.Equal(t, "t9", proj.TenantID)
}

func TestProjectService_ActivityFailureDoesNotFailCreate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	logger := &mocks.ActivityLogger{}
	repo.On("Create", ctx, mock.Anything).Return(nil)
	logger.On("LogActivity", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := project.NewService(repo, nil, logger, nil)
	_, err := svc.Create(ctx, tenantUser, project.CreateRequest{Name: "Roadmap"})
	require.NoError(t, err)
}

func TestProjectService_GetOutsideScopeIsDenied(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, scope.ResolveProjectScope(tenantUser), "p1").Return(nil, repository.ErrNotFound)

	svc := project.NewService(repo, nil, nil, nil)
	_, err := svc.Get(ctx, tenantUser, "p1")
	require.ErrorIs(t, err, scope.ErrAccessDenied)
}

func TestProjectService_ListPassesScope(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("List", ctx, scope.Predicate{}).Return([]project.ProjectSummary{{ID: "p1"}, {ID: "p2"}}, nil)

	svc := project.NewService(repo, nil, nil, nil)
	list, err := svc.List(ctx, globalAdmin)
	require.NoError(t, err)
	require.Len(t, list, 2)
	repo.AssertExpectations(t)
}

func TestProjectService_AddMember(t *testing.T) {
	ctx := context.Background()
	pred := scope.ResolveProjectScope(tenantUser)
	visible := &project.Project{ID: "p1", TenantID: "t1", CreatedByID: "u1"}

	t.Run("added", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", ctx, pred, "p1").Return(visible, nil)
		repo.On("AddMember", ctx, pred, "p1", "u2").Return(nil)
		svc := project.NewService(repo, nil, nil, nil)
		require.NoError(t, svc.AddMember(ctx, tenantUser, "p1", " u2 "))
		repo.AssertExpectations(t)
	})

	t.Run("out of scope", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", ctx, pred, "p1").Return(nil, repository.ErrNotFound)
		svc := project.NewService(repo, nil, nil, nil)
		require.ErrorIs(t, svc.AddMember(ctx, tenantUser, "p1", "u2"), scope.ErrAccessDenied)
		repo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removed between lookup and insert", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", ctx, pred, "p1").Return(visible, nil)
		repo.On("AddMember", ctx, pred, "p1", "u2").Return(repository.ErrNotFound)
		svc := project.NewService(repo, nil, nil, nil)
		require.ErrorIs(t, svc.AddMember(ctx, tenantUser, "p1", "u2"), scope.ErrAccessDenied)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", ctx, pred, "p1").Return(visible, nil)
		repo.On("AddMember", ctx, pred, "p1", "u2").Return(repository.ErrConflict)
		svc := project.NewService(repo, nil, nil, nil)
		require.ErrorIs(t, svc.AddMember(ctx, tenantUser, "p1", "u2"), project.ErrMemberExists)
	})

	t.Run("blank user", func(t *testing.T) {
		svc := project.NewService(&mocks.ProjectRepository{}, nil, nil, nil)
		require.ErrorIs(t, svc.AddMember(ctx, tenantUser, "p1", ""), project.ErrInvalidInput)
	})
}

func TestProjectService_AddMemberLogsProjectTenant(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	logger := &mocks.ActivityLogger{}
	repo.On("Get", ctx, scope.Predicate{}, "p1").Return(&project.Project{ID: "p1", TenantID: "t7"}, nil)
	repo.On("AddMember", ctx, scope.Predicate{}, "p1", "u2").Return(nil)
	logger.On("LogActivity", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeMemberAdded && e.TenantID == "t7" && e.ActorID == "root"
	})).Return(nil)

	svc := project.NewService(repo, nil, logger, nil)
	require.NoError(t, svc.AddMember(ctx, globalAdmin, "p1", "u2"))
	logger.AssertExpectations(t)
}

func TestProjectService_SyncProgress(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	items := &mocks.ItemStates{}
	items.On("ListStates", ctx, "p1").Return([]taskstate.State{
		{Status: taskstate.Done},
		{Status: taskstate.NotStarted},
	}, nil)
	repo.On("SetProgress", ctx, "p1", 50.0).Return(nil)

	svc := project.NewService(repo, items, nil, nil)
	progress, err := svc.SyncProgress(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 50.0, progress)
	repo.AssertExpectations(t)
}
