package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/domain/taskstate"
	"github.com/rpggio/planscope/internal/repository"
)

// ItemRepository implements item.Repository for SQLite
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `i.id, i.project_id, i.tenant_id, i.task, i.wbs_code, i.status, i.metadata,
	i.actual_start, i.actual_end, i.version, i.created_at, i.modified_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*item.Item, error) {
	var it item.Item
	var tenantID, wbsCode sql.NullString
	var metadata string
	var start, end sql.NullTime
	if err := row.Scan(
		&it.ID,
		&it.ProjectID,
		&tenantID,
		&it.Task,
		&wbsCode,
		&it.Status,
		&metadata,
		&start,
		&end,
		&it.Version,
		&it.CreatedAt,
		&it.ModifiedAt,
	); err != nil {
		return nil, err
	}

	it.TenantID = tenantID.String
	it.WBSCode = wbsCode.String
	if start.Valid {
		it.ActualStart = &start.Time
	}
	if end.Valid {
		it.ActualEnd = &end.Time
	}

	it.Metadata = taskstate.Metadata{}
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &it.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of item %s: %w", it.ID, err)
		}
	}
	return &it, nil
}

func encodeMetadata(md taskstate.Metadata) (string, error) {
	if md == nil {
		return "{}", nil
	}
	data, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(data), nil
}

// Create inserts a new item
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	metadata, err := encodeMetadata(it.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO project_items (
			id, project_id, tenant_id, task, wbs_code, status, metadata,
			actual_start, actual_end, version, created_at, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		it.ID,
		it.ProjectID,
		nullString(it.TenantID),
		it.Task,
		nullString(it.WBSCode),
		it.Status,
		metadata,
		it.ActualStart,
		it.ActualEnd,
		it.Version,
		it.CreatedAt,
		it.ModifiedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Get retrieves an item of a project if it matches the predicate
func (r *ItemRepository) Get(ctx context.Context, pred *scope.Predicate, projectID, id string) (*item.Item, error) {
	cond, args := compileItemScope(pred, "i")
	query := `SELECT ` + itemColumns + `
		FROM project_items i
		WHERE i.id = ? AND i.project_id = ? AND ` + cond

	it, err := scanItem(r.db.QueryRowContext(ctx, query, append([]any{id, projectID}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// List returns the items of a project matching the predicate
func (r *ItemRepository) List(ctx context.Context, pred *scope.Predicate, projectID string) ([]item.Item, error) {
	cond, args := compileItemScope(pred, "i")
	query := `SELECT ` + itemColumns + `
		FROM project_items i
		WHERE i.project_id = ? AND ` + cond + `
		ORDER BY i.created_at, i.id`

	return r.query(ctx, query, append([]any{projectID}, args...)...)
}

func (r *ItemRepository) query(ctx context.Context, query string, args ...any) ([]item.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []item.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}

// Update writes the mutable fields of an item with optimistic concurrency
// control. The predicate is part of the UPDATE itself, so an item that
// leaves the caller's scope between read and write is not modified.
func (r *ItemRepository) Update(ctx context.Context, pred *scope.Predicate, it *item.Item, expectedVersion int64) error {
	metadata, err := encodeMetadata(it.Metadata)
	if err != nil {
		return err
	}

	cond, args := compileItemScope(pred, "project_items")
	query := `
		UPDATE project_items
		SET task = ?, wbs_code = ?, status = ?, metadata = ?,
		    actual_start = ?, actual_end = ?, version = ?, modified_at = ?
		WHERE id = ? AND project_id = ? AND version = ? AND ` + cond

	params := []any{
		it.Task,
		nullString(it.WBSCode),
		it.Status,
		metadata,
		it.ActualStart,
		it.ActualEnd,
		it.Version,
		it.ModifiedAt,
		it.ID,
		it.ProjectID,
		expectedVersion,
	}
	result, err := r.db.ExecContext(ctx, query, append(params, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing changed: either the item is gone or out of scope, or its
	// version moved on.
	checkCond, checkArgs := compileItemScope(pred, "i")
	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM project_items i WHERE i.id = ? AND i.project_id = ? AND `+checkCond+`)`,
		append([]any{it.ID, it.ProjectID}, checkArgs...)...,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

// Delete removes an item matching the predicate
func (r *ItemRepository) Delete(ctx context.Context, pred *scope.Predicate, projectID, id string) error {
	cond, args := compileItemScope(pred, "project_items")
	query := `DELETE FROM project_items WHERE id = ? AND project_id = ? AND ` + cond

	result, err := r.db.ExecContext(ctx, query, append([]any{id, projectID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
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

// Search performs a full-text prefix search over task names and codes
func (r *ItemRepository) Search(ctx context.Context, pred *scope.Predicate, projectID, text string, limit int) ([]item.Item, error) {
	match := ftsQuery(text)
	if match == "" {
		return []item.Item{}, nil
	}

	cond, args := compileItemScope(pred, "i")
	query := `SELECT ` + itemColumns + `
		FROM project_items_fts
		JOIN project_items i ON i.rowid = project_items_fts.rowid
		WHERE project_items_fts MATCH ? AND i.project_id = ? AND ` + cond + `
		ORDER BY project_items_fts.rank`

	params := append([]any{match, projectID}, args...)
	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	return r.query(ctx, query, params...)
}

// ftsQuery quotes every term so user input cannot inject FTS5 syntax, and
// makes each a prefix match.
func ftsQuery(text string) string {
	terms := strings.Fields(text)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"*`)
	}
	return strings.Join(quoted, " ")
}

// ListStates returns the status and metadata of every item of a project
// without applying any scope; callers have already authorized the project.
func (r *ItemRepository) ListStates(ctx context.Context, projectID string) ([]taskstate.State, error) {
	items, err := r.List(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}

	states := make([]taskstate.State, 0, len(items))
	for i := range items {
		states = append(states, items[i].State())
	}
	return states, nil
}
