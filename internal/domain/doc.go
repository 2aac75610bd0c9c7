// Package domain contains the core business entities and interfaces.
//
// This package is the innermost layer of the hexagonal architecture,
// containing pure business logic with no external dependencies.
// It defines entities, value objects, repository interfaces (ports),
// and domain errors.
//
// # Layer Boundary Rules
//
// The domain layer has strict import restrictions enforced by depguard:
//
//	| CAN Import    | CANNOT Import                                           |
//	|---------------|---------------------------------------------------------|
//	| stdlib, subpkgs| slog, otel, uuid, http, pgx, app, transport, infra      |
//
// This ensures the domain remains pure and testable without infrastructure.
//
// # Key Implications
//
//   - Entities MUST NOT have JSON tags (transport layer adds them via DTOs)
//   - Domain MUST NOT log directly (return errors instead)
//   - Domain MUST NOT use external packages (no uuid, no http, no pgx)
//   - Repository interfaces define only the contract, not implementation
//
// # Entities
//
// Each gateway entity lives in its own subpackage (route, instance,
// breaker, calllog, permission) as a plain struct. Route and Instance
// have a Validate method that returns the subpackage's sentinel errors:
//
//	if err := r.Validate(); err != nil {
//	    return err // e.g. route.ErrEmptyServiceName
//	}
//
// # Repository Interfaces (Ports)
//
// Each entity subpackage declares a Repository interface implemented by
// infrastructure; methods take a context and the entity or its id:
//
//	type Repository interface {
//	    Create(ctx context.Context, r *Route) error
//	    Get(ctx context.Context, id string) (*Route, error)
//	    List(ctx context.Context, limit, offset int) ([]*Route, int64, error)
//	}
//
// Querier and TxManager abstract pool and transaction access for code
// that needs atomicity across several repository operations.
//
// # Domain Errors
//
// Entity subpackages define sentinel errors (route.ErrRouteNotFound,
// instance.ErrInvalidPort, ...). Gateway pipeline outcomes are
// *GatewayError values whose Kind selects the client-facing response:
//
//	return domain.NewError(domain.KindRouteNotFound, "route not found")
//
// # Value Objects
//
// ID is a value object wrapping identity; new IDs come from an
// IDGenerator implementation:
//
//	id := gen.NewID()
//
// Pagination provides standardized list parameters:
//
//	params := domain.ListParams{Page: 1, PageSize: 20}
//
// # See Also
//
//   - ADR-001: Hexagonal Architecture
//   - ADR-002: Layer Boundary Enforcement
package domain
