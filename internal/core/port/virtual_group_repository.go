package port

import (
	"context"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// VirtualGroupRepository handles virtual group persistence and membership.
type VirtualGroupRepository interface {
	Create(ctx context.Context, group domain.VirtualGroup) error
	GetByID(ctx context.Context, id string) (*domain.VirtualGroup, error)
	ExistsWithRole(ctx context.Context, roleID string) (bool, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]domain.User, error)
	CountMembers(ctx context.Context, groupID string) (int, error)
}
