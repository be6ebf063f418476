package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/scope"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity_log (
			tenant_id, project_id, item_id, actor_id,
			activity_type, summary, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullString(entry.TenantID),
		entry.ProjectID,
		entry.ItemID,
		entry.ActorID,
		entry.ActivityType,
		entry.Summary,
		entry.Details,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries of projects matching the predicate, newest
// first
func (r *ActivityRepository) List(ctx context.Context, pred scope.Predicate, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	cond, args := compileProjectScope(pred, "p")
	query := `
		SELECT
			a.id, a.tenant_id, a.project_id, a.item_id, a.actor_id,
			a.activity_type, a.summary, a.details, a.created_at
		FROM activity_log a
		JOIN projects p ON p.id = a.project_id
		WHERE ` + cond

	conditions := []string{}
	if opts.ProjectID != "" {
		conditions = append(conditions, "a.project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.ItemID != nil {
		conditions = append(conditions, "a.item_id = ?")
		args = append(args, *opts.ItemID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "a.activity_type = ?")
		args = append(args, *opts.ActivityType)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY a.created_at DESC, a.id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	entries := []activity.ActivityEntry{}
	for rows.Next() {
		var entry activity.ActivityEntry
		var tenantID, itemID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&tenantID,
			&entry.ProjectID,
			&itemID,
			&entry.ActorID,
			&entry.ActivityType,
			&entry.Summary,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entry.TenantID = tenantID.String
		if itemID.Valid {
			entry.ItemID = &itemID.String
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}
