// Package route provides the PostgreSQL repository adapter for Route
// entities, backing the Route Store component.
package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	routedom "github.com/iruldev/golang-api-hexagonal/internal/domain/route"
)

// Repository implements route.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL route repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const routeColumns = `id, service_name, path_pattern, method, version, active,
	requires_auth, required_permissions, permission_strategy, rate_limit_rpm,
	upstream_timeout_seconds, retry_count, circuit_breaker_enabled,
	cache_enabled, cache_ttl_seconds, load_balance_strategy, priority,
	created_at, updated_at`

func (r *Repository) Create(ctx context.Context, rt *routedom.Route) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	const q = `INSERT INTO api_routes (
		id, service_name, path_pattern, method, version, active,
		requires_auth, required_permissions, permission_strategy, rate_limit_rpm,
		upstream_timeout_seconds, retry_count, circuit_breaker_enabled,
		cache_enabled, cache_ttl_seconds, load_balance_strategy, priority,
		created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
	RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, q,
		rt.ID, rt.ServiceName, rt.PathPattern, rt.Method, rt.Version, rt.Active,
		rt.RequiresAuth, rt.RequiredPermissions, string(rt.PermissionStrategy), rt.RateLimitRPM,
		rt.UpstreamTimeoutSeconds, rt.RetryCount, rt.CircuitBreakerEnabled,
		rt.CacheEnabled, rt.CacheTTLSeconds, string(rt.LoadBalanceStrategy), rt.Priority,
	).Scan(&rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return routedom.ErrDuplicateRoute
		}
		return fmt.Errorf("create route: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*routedom.Route, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+routeColumns+` FROM api_routes WHERE id = $1`, id)
	rt, err := scanRoute(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, routedom.ErrRouteNotFound
		}
		return nil, fmt.Errorf("get route: %w", err)
	}
	return rt, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*routedom.Route, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM api_routes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count routes: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+routeColumns+` FROM api_routes
		ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	routes, err := scanRoutes(rows)
	if err != nil {
		return nil, 0, err
	}
	return routes, total, nil
}

// ListActive returns every active route ordered by descending priority
// then insertion order, matching the matcher's tie-break rule.
func (r *Repository) ListActive(ctx context.Context) ([]*routedom.Route, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+routeColumns+` FROM api_routes
		WHERE active = true ORDER BY priority DESC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active routes: %w", err)
	}
	defer rows.Close()
	return scanRoutes(rows)
}

func (r *Repository) Update(ctx context.Context, rt *routedom.Route) error {
	const q = `UPDATE api_routes SET
		service_name=$2, path_pattern=$3, method=$4, version=$5, active=$6,
		requires_auth=$7, required_permissions=$8, permission_strategy=$9,
		rate_limit_rpm=$10, upstream_timeout_seconds=$11, retry_count=$12,
		circuit_breaker_enabled=$13, cache_enabled=$14, cache_ttl_seconds=$15,
		load_balance_strategy=$16, priority=$17, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, q,
		rt.ID, rt.ServiceName, rt.PathPattern, rt.Method, rt.Version, rt.Active,
		rt.RequiresAuth, rt.RequiredPermissions, string(rt.PermissionStrategy), rt.RateLimitRPM,
		rt.UpstreamTimeoutSeconds, rt.RetryCount, rt.CircuitBreakerEnabled,
		rt.CacheEnabled, rt.CacheTTLSeconds, string(rt.LoadBalanceStrategy), rt.Priority,
	).Scan(&rt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return routedom.ErrRouteNotFound
		}
		return fmt.Errorf("update route: %w", err)
	}
	return nil
}

// SoftDelete transitions a route's active flag to false rather than
// deleting the row.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE api_routes SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return routedom.ErrRouteNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*routedom.Route, error) {
	var rt routedom.Route
	var permissionStrategy, lbStrategy string
	err := row.Scan(
		&rt.ID, &rt.ServiceName, &rt.PathPattern, &rt.Method, &rt.Version, &rt.Active,
		&rt.RequiresAuth, &rt.RequiredPermissions, &permissionStrategy, &rt.RateLimitRPM,
		&rt.UpstreamTimeoutSeconds, &rt.RetryCount, &rt.CircuitBreakerEnabled,
		&rt.CacheEnabled, &rt.CacheTTLSeconds, &lbStrategy, &rt.Priority,
		&rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rt.PermissionStrategy = routedom.PermissionStrategy(permissionStrategy)
	rt.LoadBalanceStrategy = routedom.LoadBalanceStrategy(lbStrategy)
	return &rt, nil
}

func scanRoutes(rows pgx.Rows) ([]*routedom.Route, error) {
	routes := make([]*routedom.Route, 0)
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routes: %w", err)
	}
	return routes, nil
}
