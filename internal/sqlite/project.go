package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project together with its initial members
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (id, tenant_id, name, description, created_by_id, progress, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		proj.ID,
		nullString(proj.TenantID),
		proj.Name,
		proj.Description,
		proj.CreatedByID,
		proj.Progress,
		proj.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	for _, userID := range proj.Members {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO project_members (project_id, user_id) VALUES (?, ?)`,
			proj.ID, userID,
		); err != nil {
			return fmt.Errorf("failed to add project member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a project by ID if it matches the predicate
func (r *ProjectRepository) Get(ctx context.Context, pred scope.Predicate, id string) (*project.Project, error) {
	cond, args := compileProjectScope(pred, "p")
	query := `
		SELECT p.id, p.tenant_id, p.name, p.description, p.created_by_id, p.progress, p.created_at
		FROM projects p
		WHERE p.id = ? AND ` + cond

	var proj project.Project
	var tenantID sql.NullString
	err := r.db.QueryRowContext(ctx, query, append([]any{id}, args...)...).Scan(
		&proj.ID,
		&tenantID,
		&proj.Name,
		&proj.Description,
		&proj.CreatedByID,
		&proj.Progress,
		&proj.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	proj.TenantID = tenantID.String

	members, err := r.members(ctx, proj.ID)
	if err != nil {
		return nil, err
	}
	proj.Members = members

	return &proj, nil
}

func (r *ProjectRepository) members(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM project_members WHERE project_id = ? ORDER BY added_at, user_id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

// List returns the projects matching the predicate with summary information
func (r *ProjectRepository) List(ctx context.Context, pred scope.Predicate) ([]project.ProjectSummary, error) {
	cond, args := compileProjectScope(pred, "p")
	query := `
		SELECT
			p.id,
			p.tenant_id,
			p.name,
			p.description,
			p.created_by_id,
			p.progress,
			p.created_at,
			COUNT(i.id) as item_count,
			COUNT(CASE WHEN i.status = 'Done' THEN i.id END) as done_items
		FROM projects p
		LEFT JOIN project_items i ON i.project_id = p.id
		WHERE ` + cond + `
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	summaries := []project.ProjectSummary{}
	for rows.Next() {
		var summary project.ProjectSummary
		var tenantID sql.NullString
		err := rows.Scan(
			&summary.ID,
			&tenantID,
			&summary.Name,
			&summary.Description,
			&summary.CreatedByID,
			&summary.Progress,
			&summary.CreatedAt,
			&summary.ItemCount,
			&summary.DoneItems,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summary.TenantID = tenantID.String
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return summaries, nil
}

// AddMember adds a member to a project matching the predicate. The scope
// check and the insert are a single statement.
func (r *ProjectRepository) AddMember(ctx context.Context, pred scope.Predicate, projectID, userID string) error {
	cond, args := compileProjectScope(pred, "p")
	query := `
		INSERT INTO project_members (project_id, user_id)
		SELECT p.id, ? FROM projects p
		WHERE p.id = ? AND ` + cond

	result, err := r.db.ExecContext(ctx, query, append([]any{userID, projectID}, args...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add project member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetProgress stores the aggregate completion percentage of a project
func (r *ProjectRepository) SetProgress(ctx context.Context, projectID string, progress float64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET progress = ? WHERE id = ?`, progress, projectID)
	if err != nil {
		return fmt.Errorf("failed to set project progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
