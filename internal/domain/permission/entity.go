// Package permission provides the Permission and grant domain entities
// used by the permission core the gateway consults during request
// admission.
package permission

import "time"

// Permission is a named capability, e.g. "user.read".
type Permission struct {
	ID          string
	Code        string
	Description string
	CreatedAt   time.Time
}

// Grant binds a permission to a role for a specific user, with an
// optional expiry. A nil ExpiresAt never expires.
type Grant struct {
	ID             string
	UserID         string
	Role           string
	PermissionCode string
	ExpiresAt      *time.Time
	CreatedAt      time.Time
}

// Active reports whether the grant is currently in effect.
func (g *Grant) Active(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// Strategy controls how a set of required permissions is evaluated
// against a caller's granted set.
type Strategy string

const (
	StrategyAny Strategy = "any"
	StrategyAll Strategy = "all"
)

// Check evaluates required permissions against the granted set under the
// given strategy.
func Check(granted []string, required []string, strategy Strategy) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		have[p] = struct{}{}
	}
	switch strategy {
	case StrategyAll:
		for _, r := range required {
			if _, ok := have[r]; !ok {
				return false
			}
		}
		return true
	default: // StrategyAny
		for _, r := range required {
			if _, ok := have[r]; ok {
				return true
			}
		}
		return false
	}
}
