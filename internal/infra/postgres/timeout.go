package postgres

import (
	"context"
	"time"
)

// Default timeouts for database operations.
const (
	DefaultConnTimeout  = 10 * time.Second
	DefaultQueryTimeout = 30 * time.Second
)

// QueryContext returns a context with query timeout.
// Uses the provided timeout or DefaultQueryTimeout (30s) if zero.
func QueryContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
