package route

import "errors"

// Domain-specific errors for the Route entity.
var (
	ErrEmptyServiceName           = errors.New("route: service name cannot be empty")
	ErrEmptyPathPattern           = errors.New("route: path pattern cannot be empty")
	ErrEmptyMethod                = errors.New("route: method cannot be empty")
	ErrInvalidPermissionStrategy  = errors.New("route: permission strategy must be \"any\" or \"all\"")
	ErrInvalidLoadBalanceStrategy = errors.New("route: unknown load balance strategy")
	ErrInvalidRateLimit           = errors.New("route: rate limit rpm cannot be negative")
	ErrInvalidTimeout             = errors.New("route: upstream timeout must be positive")
	ErrRouteNotFound              = errors.New("route: not found")
	ErrDuplicateRoute             = errors.New("route: an active route already exists for this path pattern and method")
)
