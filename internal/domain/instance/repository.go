package instance

import (
	"context"
	"time"
)

// Repository defines the persistence operations for ServiceInstance
// entities. The Registry & Health component is the only mutator of
// instance state; everything else treats this as read-mostly.
type Repository interface {
	Create(ctx context.Context, i *Instance) error
	Get(ctx context.Context, id string) (*Instance, error)
	List(ctx context.Context, limit, offset int) ([]*Instance, int64, error)
	// ListByService returns every instance registered for a service,
	// regardless of state, for the health loop to sweep.
	ListByService(ctx context.Context, serviceName string) ([]*Instance, error)
	// ListHealthy returns only instances currently eligible for load
	// balancing.
	ListHealthy(ctx context.Context, serviceName string) ([]*Instance, error)
	UpdateState(ctx context.Context, id string, state State, lastHealthCheck time.Time) error
	Delete(ctx context.Context, id string) error
}
