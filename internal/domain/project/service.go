package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/domain/taskstate"
	"github.com/rpggio/planscope/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo     Repository
	items    ItemStates
	activity ActivityLogger
	logger   *slog.Logger
}

// NewService creates a new project service. items and activity may be nil.
func NewService(repo Repository, items ItemStates, activity ActivityLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, items: items, activity: activity, logger: logger}
}

// CreateRequest defines project creation inputs. TenantID is honored only
// for global admins; everyone else creates projects in their own tenant.
// Project IDs are always generated, so an ID taken in another tenant can
// never surface as a conflict.
type CreateRequest struct {
	TenantID    string
	Name        string
	Description string
}

// Create creates a new project owned by the principal, who also becomes its
// first member.
func (s *Service) Create(ctx context.Context, p scope.Principal, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}

	tenantID := p.TenantID
	if p.IsAdmin() && !p.HasTenant() {
		tenantID = strings.TrimSpace(req.TenantID)
	}

	proj := &Project{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedByID: p.ID,
		Members:     []string{p.ID},
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.log(ctx, &activity.ActivityEntry{
		TenantID:     proj.TenantID,
		ProjectID:    proj.ID,
		ActorID:      p.ID,
		ActivityType: activity.TypeProjectCreated,
		Summary:      fmt.Sprintf("created project %q", proj.Name),
	})

	return proj, nil
}

// Get fetches a project the principal is allowed to see. Projects outside
// the principal's scope are reported as access denied, the same as missing
// ones.
func (s *Service) Get(ctx context.Context, p scope.Principal, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, scope.ResolveProjectScope(p), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, scope.ErrAccessDenied
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns summaries of the projects visible to the principal.
func (s *Service) List(ctx context.Context, p scope.Principal) ([]ProjectSummary, error) {
	summaries, err := s.repo.List(ctx, scope.ResolveProjectScope(p))
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return summaries, nil
}

// AddMember grants userID membership of a project in the principal's scope.
func (s *Service) AddMember(ctx context.Context, p scope.Principal, projectID, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}

	pred := scope.ResolveProjectScope(p)
	proj, err := s.repo.Get(ctx, pred, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return scope.ErrAccessDenied
		}
		return fmt.Errorf("getting project: %w", err)
	}

	err = s.repo.AddMember(ctx, pred, projectID, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return scope.ErrAccessDenied
	case errors.Is(err, repository.ErrConflict):
		return ErrMemberExists
	case err != nil:
		return fmt.Errorf("adding member: %w", err)
	}

	s.log(ctx, &activity.ActivityEntry{
		TenantID:     proj.TenantID,
		ProjectID:    projectID,
		ActorID:      p.ID,
		ActivityType: activity.TypeMemberAdded,
		Summary:      fmt.Sprintf("added member %s", userID),
	})
	return nil
}

// SyncProgress recomputes the aggregate completion percentage of a project
// from its items and stores it.
func (s *Service) SyncProgress(ctx context.Context, projectID string) (float64, error) {
	if s.items == nil {
		return 0, nil
	}

	states, err := s.items.ListStates(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("loading item states: %w", err)
	}

	progress := taskstate.ProjectPercent(states)
	if err := s.repo.SetProgress(ctx, projectID, progress); err != nil {
		return 0, fmt.Errorf("storing project progress: %w", err)
	}
	return progress, nil
}

func (s *Service) log(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activity == nil {
		return
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to log activity",
			"type", entry.ActivityType,
			"project_id", entry.ProjectID,
			"error", err,
		)
	}
}
