package port

import (
	"context"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// RoleRepository handles role catalog, admission, and membership queries.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByCode(ctx context.Context, code string) (*domain.Role, error)
	// IsEligible reports whether the role has been admitted for the unit.
	IsEligible(ctx context.Context, unitID, roleID string) (bool, error)
	ListEligible(ctx context.Context, unitID string) ([]domain.Role, error)
	// UsersWithRoleInUnit returns the ids of active users holding a
	// unit-scoped grant of the role within the unit.
	UsersWithRoleInUnit(ctx context.Context, unitID, roleID string) ([]string, error)
	// UsersWithUnboundedRole returns the ids of active users holding the
	// role through virtual-group membership.
	UsersWithUnboundedRole(ctx context.Context, roleID string) ([]string, error)
}
