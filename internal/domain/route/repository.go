package route

import "context"

// Repository defines the persistence operations for Route entities.
//
// Implementations should:
//   - Return ErrRouteNotFound when a route doesn't exist
//   - Treat DELETE as a status transition (Active=false), never a physical
//     row delete, per the soft-deletion invariant
//   - Enforce (path_pattern, method) uniqueness among active routes
type Repository interface {
	Create(ctx context.Context, r *Route) error
	Get(ctx context.Context, id string) (*Route, error)
	List(ctx context.Context, limit, offset int) ([]*Route, int64, error)
	// ListActive returns every active route, ordered by priority descending
	// then insertion order, for the matcher's index rebuild.
	ListActive(ctx context.Context) ([]*Route, error)
	Update(ctx context.Context, r *Route) error
	// SoftDelete marks the route inactive rather than removing the row.
	SoftDelete(ctx context.Context, id string) error
}
