// Package route provides the Route domain entity: the declarative binding
// of a (path pattern, method) pair to a target service plus its policy
// bundle (auth, rate limit, cache, circuit breaker, load balancing).
package route

import "time"

// PermissionStrategy controls how a route's required permissions are
// combined when checked against a caller's granted set.
type PermissionStrategy string

const (
	StrategyAny PermissionStrategy = "any"
	StrategyAll PermissionStrategy = "all"
)

// LoadBalanceStrategy selects how the load balancer picks an instance for
// this route's target service.
type LoadBalanceStrategy string

const (
	StrategyRoundRobin       LoadBalanceStrategy = "round_robin"
	StrategyWeighted         LoadBalanceStrategy = "weighted"
	StrategyLeastConnections LoadBalanceStrategy = "least_connections"
)

// MethodAny matches any HTTP method.
const MethodAny = "ANY"

// Route is a single routing rule: which requests it matches and the
// policies applied once matched.
type Route struct {
	ID                    string
	ServiceName           string
	PathPattern           string
	Method                string
	Version               string
	Active                bool
	RequiresAuth          bool
	RequiredPermissions   []string
	PermissionStrategy    PermissionStrategy
	RateLimitRPM          int
	UpstreamTimeoutSeconds int
	RetryCount            int
	CircuitBreakerEnabled bool
	CacheEnabled          bool
	CacheTTLSeconds       int
	LoadBalanceStrategy   LoadBalanceStrategy
	Priority              int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// MatchesMethod reports whether the route accepts the given HTTP method.
func (r *Route) MatchesMethod(method string) bool {
	return r.Method == MethodAny || r.Method == method
}

// Validate checks the invariants an admin-supplied Route must satisfy
// before it is persisted.
func (r *Route) Validate() error {
	if r.ServiceName == "" {
		return ErrEmptyServiceName
	}
	if r.PathPattern == "" {
		return ErrEmptyPathPattern
	}
	if r.Method == "" {
		return ErrEmptyMethod
	}
	if r.PermissionStrategy != "" && r.PermissionStrategy != StrategyAny && r.PermissionStrategy != StrategyAll {
		return ErrInvalidPermissionStrategy
	}
	switch r.LoadBalanceStrategy {
	case "", StrategyRoundRobin, StrategyWeighted, StrategyLeastConnections:
	default:
		return ErrInvalidLoadBalanceStrategy
	}
	if r.RateLimitRPM < 0 {
		return ErrInvalidRateLimit
	}
	if r.UpstreamTimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
