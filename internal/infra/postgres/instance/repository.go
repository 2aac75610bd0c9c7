// Package instance provides the PostgreSQL repository adapter for
// ServiceInstance entities, backing the Registry & Health component.
package instance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	instancedom "github.com/iruldev/golang-api-hexagonal/internal/domain/instance"
)

// Repository implements instance.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL service instance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const instanceColumns = `id, service_name, instance_id, host, port, protocol,
	weight, state, last_health_check, health_check_url,
	health_check_interval_seconds, metadata, registered_at`

func (r *Repository) Create(ctx context.Context, inst *instancedom.Instance) error {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	const q = `INSERT INTO service_instances (
		id, service_name, instance_id, host, port, protocol, weight, state,
		last_health_check, health_check_url, health_check_interval_seconds,
		metadata, registered_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
	RETURNING registered_at`

	interval := int(inst.HealthCheckInterval / time.Second)
	err := r.pool.QueryRow(ctx, q,
		inst.ID, inst.ServiceName, inst.InstanceID, inst.Host, inst.Port, string(inst.Protocol),
		inst.Weight, string(inst.State), nullTime(inst.LastHealthCheck), inst.HealthCheckURL,
		interval, inst.Metadata,
	).Scan(&inst.RegisteredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return instancedom.ErrDuplicateInstance
		}
		return fmt.Errorf("create instance: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*instancedom.Instance, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+instanceColumns+` FROM service_instances WHERE id = $1`, id)
	inst, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, instancedom.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}
	return inst, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*instancedom.Instance, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM service_instances`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count instances: %w", err)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+instanceColumns+` FROM service_instances
		ORDER BY registered_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()
	instances, err := scanInstances(rows)
	if err != nil {
		return nil, 0, err
	}
	return instances, total, nil
}

func (r *Repository) ListByService(ctx context.Context, serviceName string) ([]*instancedom.Instance, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+instanceColumns+` FROM service_instances
		WHERE service_name = $1 ORDER BY registered_at ASC`, serviceName)
	if err != nil {
		return nil, fmt.Errorf("list instances by service: %w", err)
	}
	defer rows.Close()
	return scanInstances(rows)
}

func (r *Repository) ListHealthy(ctx context.Context, serviceName string) ([]*instancedom.Instance, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+instanceColumns+` FROM service_instances
		WHERE service_name = $1 AND state = $2 ORDER BY registered_at ASC`,
		serviceName, string(instancedom.StateHealthy))
	if err != nil {
		return nil, fmt.Errorf("list healthy instances: %w", err)
	}
	defer rows.Close()
	return scanInstances(rows)
}

func (r *Repository) UpdateState(ctx context.Context, id string, state instancedom.State, lastHealthCheck time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE service_instances SET state = $2, last_health_check = $3 WHERE id = $1`,
		id, string(state), lastHealthCheck)
	if err != nil {
		return fmt.Errorf("update instance state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return instancedom.ErrInstanceNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM service_instances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return instancedom.ErrInstanceNotFound
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstance(row rowScanner) (*instancedom.Instance, error) {
	var inst instancedom.Instance
	var protocol, state string
	var lastHealthCheck *time.Time
	var intervalSeconds int
	err := row.Scan(
		&inst.ID, &inst.ServiceName, &inst.InstanceID, &inst.Host, &inst.Port, &protocol,
		&inst.Weight, &state, &lastHealthCheck, &inst.HealthCheckURL,
		&intervalSeconds, &inst.Metadata, &inst.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	inst.Protocol = instancedom.Protocol(protocol)
	inst.State = instancedom.State(state)
	inst.HealthCheckInterval = time.Duration(intervalSeconds) * time.Second
	if lastHealthCheck != nil {
		inst.LastHealthCheck = *lastHealthCheck
	}
	return &inst, nil
}

func scanInstances(rows pgx.Rows) ([]*instancedom.Instance, error) {
	instances := make([]*instancedom.Instance, 0)
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return instances, nil
}
