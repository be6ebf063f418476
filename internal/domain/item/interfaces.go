package item

import (
	"context"

	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
)

// Repository provides persistence for items. A nil predicate matches every
// item; otherwise it is applied in the same statement as the read or write.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Get(ctx context.Context, pred *scope.Predicate, projectID, id string) (*Item, error)
	List(ctx context.Context, pred *scope.Predicate, projectID string) ([]Item, error)
	Update(ctx context.Context, pred *scope.Predicate, it *Item, expectedVersion int64) error
	Delete(ctx context.Context, pred *scope.Predicate, projectID, id string) error
	Search(ctx context.Context, pred *scope.Predicate, projectID, query string, limit int) ([]Item, error)
}

// ProjectAccess resolves projects for a principal and keeps their
// aggregate progress current.
type ProjectAccess interface {
	Get(ctx context.Context, p scope.Principal, id string) (*project.Project, error)
	SyncProgress(ctx context.Context, projectID string) (float64, error)
}

// ActivityLogger records item events.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
