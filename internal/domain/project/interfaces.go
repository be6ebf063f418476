package project

import (
	"context"

	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/domain/taskstate"
)

// Repository provides persistence for projects. Every read and write takes
// the caller's scope predicate and applies it in the same statement.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, pred scope.Predicate, id string) (*Project, error)
	List(ctx context.Context, pred scope.Predicate) ([]ProjectSummary, error)
	AddMember(ctx context.Context, pred scope.Predicate, projectID, userID string) error
	SetProgress(ctx context.Context, projectID string, progress float64) error
}

// ItemStates lists the status and metadata of every item in a project.
type ItemStates interface {
	ListStates(ctx context.Context, projectID string) ([]taskstate.State, error)
}

// ActivityLogger records project events.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
