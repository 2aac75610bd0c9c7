// Package calllog provides the PostgreSQL repository adapter for CallLog
// rows, backing the async call logger.
package calllog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	calllogdom "github.com/iruldev/golang-api-hexagonal/internal/domain/calllog"
)

// Repository implements calllog.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL call log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, l *calllogdom.CallLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	const q = `INSERT INTO api_call_logs (
		id, request_id, user_id, method, path, query_params, headers_subset,
		client_ip, user_agent, target_service, response_status, response_size,
		response_time_ms, error_message, permission_check_result, started_at, completed_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err := r.pool.Exec(ctx, q,
		l.ID, l.RequestID, nullString(l.UserID), l.Method, l.Path, l.QueryParams, l.HeadersSubset,
		l.ClientIP, l.UserAgent, l.TargetService, l.ResponseStatus, l.ResponseSize,
		l.ResponseTimeMS, nullString(l.ErrorMessage), l.PermissionCheckResult, l.StartedAt, l.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("create call log: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*calllogdom.CallLog, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM api_call_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count call logs: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT id, request_id, coalesce(user_id, ''), method, path,
		query_params, headers_subset, client_ip, user_agent, target_service, response_status,
		response_size, response_time_ms, coalesce(error_message, ''), permission_check_result,
		started_at, completed_at
		FROM api_call_logs ORDER BY started_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list call logs: %w", err)
	}
	defer rows.Close()

	logs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[calllogdom.CallLog])
	if err != nil {
		return nil, 0, fmt.Errorf("scan call logs: %w", err)
	}
	out := make([]*calllogdom.CallLog, 0, len(logs))
	for i := range logs {
		out = append(out, &logs[i])
	}
	return out, total, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
