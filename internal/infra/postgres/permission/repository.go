// Package permission provides the PostgreSQL repository adapter for the
// permission catalogue and user/role grants.
package permission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	permissiondom "github.com/iruldev/golang-api-hexagonal/internal/domain/permission"
)

// Repository implements permission.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL permission repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GrantedCodes returns the permission codes currently granted to a user
// for a role, filtering out expired grants per the same rule the
// original auth core applies: expires_at IS NULL OR expires_at > now().
func (r *Repository) GrantedCodes(ctx context.Context, userID, role string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT permission_code FROM user_role_permissions
		WHERE user_id = $1 AND role = $2 AND (expires_at IS NULL OR expires_at > now())`, userID, role)
	if err != nil {
		return nil, fmt.Errorf("list granted permissions: %w", err)
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan granted permission: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate granted permissions: %w", err)
	}
	return codes, nil
}

func (r *Repository) ListPermissions(ctx context.Context) ([]*permissiondom.Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, description, created_at FROM permissions ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	perms := make([]*permissiondom.Permission, 0)
	for rows.Next() {
		var p permissiondom.Permission
		if err := rows.Scan(&p.ID, &p.Code, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}
	return perms, nil
}

func (r *Repository) CreatePermission(ctx context.Context, p *permissiondom.Permission) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO permissions (id, code, description, created_at)
		VALUES ($1,$2,$3,now()) RETURNING created_at`, p.ID, p.Code, p.Description).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

func (r *Repository) GrantToUser(ctx context.Context, g *permissiondom.Grant) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO user_role_permissions (id, user_id, role, permission_code, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5,now()) RETURNING created_at`,
		g.ID, g.UserID, g.Role, g.PermissionCode, g.ExpiresAt).Scan(&g.CreatedAt)
	if err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}
	return nil
}

func (r *Repository) RevokeFromUser(ctx context.Context, userID, role, permissionCode string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_role_permissions
		WHERE user_id = $1 AND role = $2 AND permission_code = $3`, userID, role, permissionCode)
	if err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	return nil
}
