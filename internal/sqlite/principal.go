package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/planscope/internal/domain/scope"
	"github.com/rpggio/planscope/internal/repository"
)

// PrincipalRepository stores principals, their permission maps and the API
// keys that authenticate them.
type PrincipalRepository struct {
	db *DB
}

// NewPrincipalRepository creates a new PrincipalRepository
func NewPrincipalRepository(db *DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// Upsert creates or replaces a principal and its permissions
func (r *PrincipalRepository) Upsert(ctx context.Context, id scope.Identity) error {
	if id.Principal.ID == "" {
		return repository.ErrInvalidInput
	}

	permissions := id.Permissions
	if permissions == nil {
		permissions = map[string]any{}
	}
	data, err := json.Marshal(permissions)
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}

	query := `
		INSERT INTO principals (id, role, tenant_id, permissions)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			role = excluded.role,
			tenant_id = excluded.tenant_id,
			permissions = excluded.permissions
	`
	if _, err := r.db.ExecContext(ctx, query,
		id.Principal.ID,
		string(id.Principal.Role),
		nullString(id.Principal.TenantID),
		string(data),
	); err != nil {
		return fmt.Errorf("failed to upsert principal: %w", err)
	}
	return nil
}

// Get loads a principal and its permissions by ID
func (r *PrincipalRepository) Get(ctx context.Context, principalID string) (scope.Identity, error) {
	return r.scanIdentity(r.db.QueryRowContext(ctx,
		`SELECT id, role, tenant_id, permissions FROM principals WHERE id = ?`,
		principalID,
	))
}

// AddAPIKey stores the hash of token as a credential of the principal
func (r *PrincipalRepository) AddAPIKey(ctx context.Context, principalID, token, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, principal_id, description) VALUES (?, ?, ?)`,
		HashToken(token), principalID, description,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolveToken returns the identity owning an API key and records its use
func (r *PrincipalRepository) ResolveToken(ctx context.Context, token string) (scope.Identity, error) {
	hash := HashToken(token)
	id, err := r.scanIdentity(r.db.QueryRowContext(ctx, `
		SELECT p.id, p.role, p.tenant_id, p.permissions
		FROM api_keys k
		JOIN principals p ON p.id = k.principal_id
		WHERE k.key_hash = ?
	`, hash))
	if err != nil {
		return scope.Identity{}, err
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash,
	); err != nil {
		return scope.Identity{}, fmt.Errorf("failed to touch api key: %w", err)
	}
	return id, nil
}

func (r *PrincipalRepository) scanIdentity(row *sql.Row) (scope.Identity, error) {
	var id scope.Identity
	var role, permissions string
	var tenantID sql.NullString
	err := row.Scan(&id.Principal.ID, &role, &tenantID, &permissions)
	if errors.Is(err, sql.ErrNoRows) {
		return scope.Identity{}, repository.ErrNotFound
	}
	if err != nil {
		return scope.Identity{}, fmt.Errorf("failed to load principal: %w", err)
	}

	id.Principal.Role = scope.ParseRole(role)
	id.Principal.TenantID = tenantID.String
	if permissions != "" {
		if err := json.Unmarshal([]byte(permissions), &id.Permissions); err != nil {
			return scope.Identity{}, fmt.Errorf("failed to decode permissions of %s: %w", id.Principal.ID, err)
		}
	}
	return id, nil
}

// HashToken returns the stored form of an API key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
