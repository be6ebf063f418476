package activity

import (
	"context"

	"github.com/rpggio/planscope/internal/domain/scope"
)

// Repository provides persistence operations for activity entries.
// List only returns entries of projects matched by the predicate.
type Repository interface {
	Log(ctx context.Context, entry *ActivityEntry) error
	List(ctx context.Context, pred scope.Predicate, opts ListActivityOptions) ([]ActivityEntry, error)
}
