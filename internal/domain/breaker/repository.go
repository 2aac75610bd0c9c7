package breaker

import "context"

// Repository persists per-service circuit breaker state. The FSM
// transition region (open -> half_open probe admission) must be
// serialized by callers; Upsert alone does not provide that guarantee.
type Repository interface {
	Get(ctx context.Context, serviceName string) (*CircuitBreakerState, error)
	Upsert(ctx context.Context, s *CircuitBreakerState) error
	List(ctx context.Context) ([]*CircuitBreakerState, error)
}
