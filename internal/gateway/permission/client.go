// Package permission queries the permission core for a user's granted
// codes and evaluates a route's required-permission strategy against
// them.
package permission

import (
	"context"
	"fmt"

	permissiondom "github.com/iruldev/golang-api-hexagonal/internal/domain/permission"
)

// Source resolves granted permission codes for a user/role pair.
type Source interface {
	GrantedCodes(ctx context.Context, userID, role string) ([]string, error)
}

// Client evaluates permission checks for the proxy pipeline.
type Client struct {
	source Source
}

// New builds a Client backed by source.
func New(source Source) *Client {
	return &Client{source: source}
}

// Check reports whether the user (role-scoped) satisfies the required
// permission codes under the given strategy.
func (c *Client) Check(ctx context.Context, userID, role string, required []string, strategy permissiondom.Strategy) (bool, error) {
	if len(required) == 0 {
		return true, nil
	}
	granted, err := c.source.GrantedCodes(ctx, userID, role)
	if err != nil {
		return false, fmt.Errorf("resolve granted permissions: %w", err)
	}
	return permissiondom.Check(granted, required, strategy), nil
}

// ResolveUserInfo implements token.UserInfoResolver, so the same permission
// source backs both the authorize step and the token validator's
// cache-then-store user-info resolution (spec.md §4.1 step 3).
func (c *Client) ResolveUserInfo(ctx context.Context, userID, role string) ([]string, error) {
	granted, err := c.source.GrantedCodes(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("resolve granted permissions: %w", err)
	}
	return granted, nil
}
