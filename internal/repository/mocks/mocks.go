package mocks

import (
	"context"

	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/domain/taskstate"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, pred scope.Predicate, id string) (*project.Project, error) {
	args := m.Called(ctx, pred, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, pred scope.Predicate) ([]project.ProjectSummary, error) {
	args := m.Called(ctx, pred)
	if list, ok := args.Get(0).([]project.ProjectSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) AddMember(ctx context.Context, pred scope.Predicate, projectID, userID string) error {
	args := m.Called(ctx, pred, projectID, userID)
	return args.Error(0)
}

func (m *ProjectRepository) SetProgress(ctx context.Context, projectID string, progress float64) error {
	args := m.Called(ctx, projectID, progress)
	return args.Error(0)
}

// ItemRepository is a mock for item.Repository.
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *ItemRepository) Get(ctx context.Context, pred *scope.Predicate, projectID, id string) (*item.Item, error) {
	args := m.Called(ctx, pred, projectID, id)
	if it, ok := args.Get(0).(*item.Item); ok {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) List(ctx context.Context, pred *scope.Predicate, projectID string) ([]item.Item, error) {
	args := m.Called(ctx, pred, projectID)
	if list, ok := args.Get(0).([]item.Item); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Update(ctx context.Context, pred *scope.Predicate, it *item.Item, expectedVersion int64) error {
	args := m.Called(ctx, pred, it, expectedVersion)
	return args.Error(0)
}

func (m *ItemRepository) Delete(ctx context.Context, pred *scope.Predicate, projectID, id string) error {
	args := m.Called(ctx, pred, projectID, id)
	return args.Error(0)
}

func (m *ItemRepository) Search(ctx context.Context, pred *scope.Predicate, projectID, query string, limit int) ([]item.Item, error) {
	args := m.Called(ctx, pred, projectID, query, limit)
	if list, ok := args.Get(0).([]item.Item); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ItemStates is a mock for project.ItemStates.
type ItemStates struct {
	mock.Mock
}

func (m *ItemStates) ListStates(ctx context.Context, projectID string) ([]taskstate.State, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]taskstate.State); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProjectAccess is a mock for item.ProjectAccess.
type ProjectAccess struct {
	mock.Mock
}

func (m *ProjectAccess) Get(ctx context.Context, p scope.Principal, id string) (*project.Project, error) {
	args := m.Called(ctx, p, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectAccess) SyncProgress(ctx context.Context, projectID string) (float64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(float64), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, pred scope.Predicate, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, pred, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for the activity loggers used by services.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
