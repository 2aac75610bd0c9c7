// Package postgres provides PostgreSQL adapters and repository factories.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	breakerdom "github.com/iruldev/golang-api-hexagonal/internal/domain/breaker"
	calllogdom "github.com/iruldev/golang-api-hexagonal/internal/domain/calllog"
	instancedom "github.com/iruldev/golang-api-hexagonal/internal/domain/instance"
	permissiondom "github.com/iruldev/golang-api-hexagonal/internal/domain/permission"
	routedom "github.com/iruldev/golang-api-hexagonal/internal/domain/route"
	breakerrepo "github.com/iruldev/golang-api-hexagonal/internal/infra/postgres/breaker"
	calllogrepo "github.com/iruldev/golang-api-hexagonal/internal/infra/postgres/calllog"
	instancerepo "github.com/iruldev/golang-api-hexagonal/internal/infra/postgres/instance"
	permissionrepo "github.com/iruldev/golang-api-hexagonal/internal/infra/postgres/permission"
	routerepo "github.com/iruldev/golang-api-hexagonal/internal/infra/postgres/route"
)

// NewRouteRepository creates a new PostgreSQL-backed route repository.
func NewRouteRepository(pool *pgxpool.Pool) routedom.Repository {
	return routerepo.NewRepository(pool)
}

// NewInstanceRepository creates a new PostgreSQL-backed service instance repository.
func NewInstanceRepository(pool *pgxpool.Pool) instancedom.Repository {
	return instancerepo.NewRepository(pool)
}

// NewCircuitBreakerRepository creates a new PostgreSQL-backed circuit-breaker state repository.
func NewCircuitBreakerRepository(pool *pgxpool.Pool) breakerdom.Repository {
	return breakerrepo.NewRepository(pool)
}

// NewCallLogRepository creates a new PostgreSQL-backed call log repository.
func NewCallLogRepository(pool *pgxpool.Pool) calllogdom.Repository {
	return calllogrepo.NewRepository(pool)
}

// NewPermissionRepository creates a new PostgreSQL-backed permission repository.
func NewPermissionRepository(pool *pgxpool.Pool) permissiondom.Repository {
	return permissionrepo.NewRepository(pool)
}
