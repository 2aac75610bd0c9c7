package permission

import "context"

// Repository resolves granted permissions and administers the permission
// catalogue and role grants.
type Repository interface {
	// GrantedCodes returns the permission codes currently granted to a
	// user for a role, excluding expired grants
	// (expires_at IS NULL OR expires_at > now()).
	GrantedCodes(ctx context.Context, userID, role string) ([]string, error)
	ListPermissions(ctx context.Context) ([]*Permission, error)
	CreatePermission(ctx context.Context, p *Permission) error
	GrantToUser(ctx context.Context, g *Grant) error
	RevokeFromUser(ctx context.Context, userID, role, permissionCode string) error
}
