package port

import (
	"context"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// HierarchyNavigator answers parent and ancestry queries over the
// organizational hierarchy. Implementations are fail-open: on storage or
// transport failure they return the zero value and log at their own layer,
// never an error across this seam.
type HierarchyNavigator interface {
	Parent(ctx context.Context, unitID string) (string, bool)
	PathOf(ctx context.Context, unitID string) (string, bool)
	HomeUnitOf(ctx context.Context, userID string) (string, bool)
}

// RoleMembershipIndex is the read-only membership query surface used during
// resolution. Same fail-open contract as HierarchyNavigator: empty slice or
// false on failure, never an error.
type RoleMembershipIndex interface {
	UsersWithRoleInUnit(ctx context.Context, unitID, roleID string) []string
	UsersWithUnboundedRole(ctx context.Context, roleID string) []string
	IsEligibleRole(ctx context.Context, unitID, roleID string) bool
}

// UserDirectory resolves user profiles for the direct-manager strategies.
// Fail-open: a missing or unreachable profile reads as not found.
type UserDirectory interface {
	Lookup(ctx context.Context, userID string) (domain.User, bool)
}
