// Package breaker provides the PostgreSQL repository adapter for
// CircuitBreakerState rows.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	breakerdom "github.com/iruldev/golang-api-hexagonal/internal/domain/breaker"
)

// Repository implements breaker.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL circuit breaker state repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const breakerColumns = `service_name, state, failure_count, success_count,
	last_failure_time, next_attempt_time, failure_threshold,
	open_state_timeout_seconds, updated_at`

func (r *Repository) Get(ctx context.Context, serviceName string) (*breakerdom.CircuitBreakerState, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+breakerColumns+` FROM circuit_breaker_states WHERE service_name = $1`, serviceName)
	s, err := scanState(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, breakerdom.ErrStateNotFound
		}
		return nil, fmt.Errorf("get circuit breaker state: %w", err)
	}
	return s, nil
}

// Upsert persists a breaker transition, inserting the row on first
// observation of a service.
func (r *Repository) Upsert(ctx context.Context, s *breakerdom.CircuitBreakerState) error {
	const q = `INSERT INTO circuit_breaker_states (
		service_name, state, failure_count, success_count, last_failure_time,
		next_attempt_time, failure_threshold, open_state_timeout_seconds, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
	ON CONFLICT (service_name) DO UPDATE SET
		state = EXCLUDED.state,
		failure_count = EXCLUDED.failure_count,
		success_count = EXCLUDED.success_count,
		last_failure_time = EXCLUDED.last_failure_time,
		next_attempt_time = EXCLUDED.next_attempt_time,
		failure_threshold = EXCLUDED.failure_threshold,
		open_state_timeout_seconds = EXCLUDED.open_state_timeout_seconds,
		updated_at = now()
	RETURNING updated_at`

	err := r.pool.QueryRow(ctx, q,
		s.ServiceName, string(s.State), s.FailureCount, s.SuccessCount, s.LastFailureTime,
		s.NextAttemptTime, s.FailureThreshold, int(s.OpenStateTimeout/time.Second),
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert circuit breaker state: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]*breakerdom.CircuitBreakerState, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+breakerColumns+` FROM circuit_breaker_states ORDER BY service_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list circuit breaker states: %w", err)
	}
	defer rows.Close()

	states := make([]*breakerdom.CircuitBreakerState, 0)
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan circuit breaker state: %w", err)
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate circuit breaker states: %w", err)
	}
	return states, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (*breakerdom.CircuitBreakerState, error) {
	var s breakerdom.CircuitBreakerState
	var state string
	var timeoutSeconds int
	err := row.Scan(
		&s.ServiceName, &state, &s.FailureCount, &s.SuccessCount,
		&s.LastFailureTime, &s.NextAttemptTime, &s.FailureThreshold,
		&timeoutSeconds, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.State = breakerdom.State(state)
	s.OpenStateTimeout = time.Duration(timeoutSeconds) * time.Second
	return &s, nil
}
