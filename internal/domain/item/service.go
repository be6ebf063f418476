package item

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/domain/taskstate"
	"github.com/rpggio/planscope/internal/domain/wbs"
	"github.com/rpggio/planscope/internal/repository"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Service handles item operations.
type Service struct {
	repo      Repository
	projects  ProjectAccess
	activity  ActivityLogger
	normalize taskstate.Normalizer
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNormalizer replaces the status normalizer applied to raw status input.
func WithNormalizer(n taskstate.Normalizer) Option {
	return func(s *Service) { s.normalize = n }
}

// WithClock replaces the time source used for item timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new item service. activity may be nil.
func NewService(repo Repository, projects ProjectAccess, activity ActivityLogger, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:      repo,
		projects:  projects,
		activity:  activity,
		normalize: taskstate.NormalizeStatus,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest defines item creation inputs. Status is free-form and is
// normalized; progress in Metadata is reconciled against it.
type CreateRequest struct {
	ProjectID string
	Task      string
	WBSCode   string
	Status    string
	Metadata  taskstate.Metadata
}

// UpdateStateRequest changes the status and/or metadata of an item. A nil
// Status leaves the status to the reconciler. When Version is set the
// update fails with ErrConflict unless it matches the stored version.
type UpdateStateRequest struct {
	ProjectID string
	ItemID    string
	Status    *string
	Metadata  taskstate.Metadata
	Version   *int64
}

// Create adds an item to a project the principal can see.
func (s *Service) Create(ctx context.Context, p scope.Principal, req CreateRequest) (*Item, error) {
	task := strings.TrimSpace(req.Task)
	if task == "" {
		return nil, ErrInvalidInput
	}

	proj, err := s.projects.Get(ctx, p, req.ProjectID)
	if err != nil {
		return nil, err
	}

	status := s.normalize(req.Status)
	initial := 0.0
	if status == taskstate.Done {
		initial = 1
	}
	res := taskstate.Reconcile(
		taskstate.State{Status: status, Metadata: taskstate.Metadata{taskstate.ProgressKey: initial}},
		taskstate.Patch{Metadata: req.Metadata},
	)

	now := s.now()
	it := &Item{
		ID:         uuid.NewString(),
		ProjectID:  proj.ID,
		TenantID:   proj.TenantID,
		Task:       task,
		WBSCode:    strings.TrimSpace(req.WBSCode),
		Status:     res.Status,
		Metadata:   res.Metadata,
		Version:    1,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	stampTimes(it, now)

	if err := s.repo.Create(ctx, it); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, scope.ErrAccessDenied
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.log(ctx, p, it, activity.TypeItemCreated, fmt.Sprintf("created %q", it.Task), nil)
	s.syncProgress(ctx, it.ProjectID)
	return it, nil
}

// Get fetches one item of a project.
func (s *Service) Get(ctx context.Context, p scope.Principal, projectID, itemID string) (*Item, error) {
	if _, err := s.projects.Get(ctx, p, projectID); err != nil {
		return nil, err
	}
	it, err := s.repo.Get(ctx, scope.ResolveItemScope(p), projectID, itemID)
	if err != nil {
		return nil, notFoundAsDenied(err, "getting item")
	}
	return it, nil
}

// List returns every item of a project.
func (s *Service) List(ctx context.Context, p scope.Principal, projectID string) ([]Item, error) {
	if _, err := s.projects.Get(ctx, p, projectID); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, scope.ResolveItemScope(p), projectID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// UpdateState applies a status and/or metadata patch, reconciling status
// with progress before anything is written.
func (s *Service) UpdateState(ctx context.Context, p scope.Principal, req UpdateStateRequest) (*Item, error) {
	if _, err := s.projects.Get(ctx, p, req.ProjectID); err != nil {
		return nil, err
	}

	pred := scope.ResolveItemScope(p)
	it, err := s.repo.Get(ctx, pred, req.ProjectID, req.ItemID)
	if err != nil {
		return nil, notFoundAsDenied(err, "getting item")
	}

	expected := it.Version
	if req.Version != nil {
		if *req.Version != it.Version {
			return nil, ErrConflict
		}
		expected = *req.Version
	}

	patch := taskstate.Patch{Metadata: req.Metadata}
	if req.Status != nil {
		status := s.normalize(*req.Status)
		patch.Status = &status
	}

	previous := it.Status
	res := taskstate.Reconcile(it.State(), patch)

	now := s.now()
	it.Status = res.Status
	it.Metadata = res.Metadata
	it.ModifiedAt = now
	it.Version = expected + 1
	stampTimes(it, now)

	if err := s.repo.Update(ctx, pred, it, expected); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, scope.ErrAccessDenied
		}
		return nil, fmt.Errorf("updating item: %w", err)
	}

	details := map[string]any{"from": previous, "to": it.Status}
	if res.Progress != nil {
		details["progress"] = *res.Progress
	}
	s.log(ctx, p, it, activity.TypeItemStateChanged,
		fmt.Sprintf("%q: %s -> %s", it.Task, previous.Label(), it.Status.Label()), details)
	s.syncProgress(ctx, it.ProjectID)
	return it, nil
}

// Move changes the status of an item, as when dragging a card between
// board columns.
func (s *Service) Move(ctx context.Context, p scope.Principal, projectID, itemID, status string) (*Item, error) {
	if strings.TrimSpace(status) == "" {
		return nil, ErrInvalidInput
	}
	return s.UpdateState(ctx, p, UpdateStateRequest{
		ProjectID: projectID,
		ItemID:    itemID,
		Status:    &status,
	})
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, p scope.Principal, projectID, itemID string) error {
	if _, err := s.projects.Get(ctx, p, projectID); err != nil {
		return err
	}
	pred := scope.ResolveItemScope(p)
	it, err := s.repo.Get(ctx, pred, projectID, itemID)
	if err != nil {
		return notFoundAsDenied(err, "getting item")
	}
	if err := s.repo.Delete(ctx, pred, projectID, itemID); err != nil {
		return notFoundAsDenied(err, "deleting item")
	}

	s.log(ctx, p, it, activity.TypeItemDeleted, fmt.Sprintf("deleted %q", it.Task), nil)
	s.syncProgress(ctx, projectID)
	return nil
}

// Tree returns the items of a project arranged as a work breakdown
// structure.
func (s *Service) Tree(ctx context.Context, p scope.Principal, projectID string) ([]TreeNode, error) {
	items, err := s.List(ctx, p, projectID)
	if err != nil {
		return nil, err
	}

	flat := make([]wbs.FlatItem, 0, len(items))
	byID := make(map[string]*Item, len(items))
	for i := range items {
		it := &items[i]
		byID[it.ID] = it
		flat = append(flat, wbs.FlatItem{ID: it.ID, WBSCode: it.WBSCode, Task: it.Task})
	}

	tree := wbs.Build(flat)

	var convert func(idx int) TreeNode
	convert = func(idx int) TreeNode {
		n := tree.Nodes[idx]
		it := byID[n.ID]
		node := TreeNode{
			ID:       n.ID,
			WBSCode:  n.WBSCode,
			Task:     n.Task,
			Depth:    n.Depth,
			Status:   it.Status,
			Percent:  it.Percent(),
			Children: make([]TreeNode, 0, len(n.Children)),
		}
		for _, child := range n.Children {
			node.Children = append(node.Children, convert(child))
		}
		return node
	}

	roots := make([]TreeNode, 0, len(tree.Roots))
	for _, idx := range tree.Roots {
		roots = append(roots, convert(idx))
	}
	return roots, nil
}

// Search runs a full-text query over the task names of a project.
func (s *Service) Search(ctx context.Context, p scope.Principal, projectID, query string, limit int) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}

	if _, err := s.projects.Get(ctx, p, projectID); err != nil {
		return nil, err
	}
	items, err := s.repo.Search(ctx, scope.ResolveItemScope(p), projectID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

// stampTimes records when work on the item actually started and ended.
// The start is kept once set; the end only exists while the item is done.
func stampTimes(it *Item, now time.Time) {
	switch it.Status {
	case taskstate.InProgress:
		if it.ActualStart == nil {
			it.ActualStart = &now
		}
		it.ActualEnd = nil
	case taskstate.Done:
		if it.ActualStart == nil {
			it.ActualStart = &now
		}
		if it.ActualEnd == nil {
			it.ActualEnd = &now
		}
	default:
		it.ActualEnd = nil
	}
}

func notFoundAsDenied(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return scope.ErrAccessDenied
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) syncProgress(ctx context.Context, projectID string) {
	if _, err := s.projects.SyncProgress(ctx, projectID); err != nil {
		s.logger.WarnContext(ctx, "failed to sync project progress", "project_id", projectID, "error", err)
	}
}

func (s *Service) log(ctx context.Context, p scope.Principal, it *Item, typ activity.ActivityType, summary string, details map[string]any) {
	if s.activity == nil {
		return
	}

	itemID := it.ID
	entry := &activity.ActivityEntry{
		TenantID:     it.TenantID,
		ProjectID:    it.ProjectID,
		ItemID:       &itemID,
		ActorID:      p.ID,
		ActivityType: typ,
		Summary:      summary,
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}

	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to log activity", "type", typ, "item_id", it.ID, "error", err)
	}
}
