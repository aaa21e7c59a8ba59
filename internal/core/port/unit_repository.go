package port

import (
	"context"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// UnitRepository handles organizational unit persistence.
type UnitRepository interface {
	Create(ctx context.Context, unit domain.OrganizationalUnit) error
	GetByID(ctx context.Context, id string) (*domain.OrganizationalUnit, error)
	ListChildren(ctx context.Context, parentID string) ([]domain.OrganizationalUnit, error)
	ListSubtree(ctx context.Context, unitID, path string) ([]domain.OrganizationalUnit, error)
	SetStatus(ctx context.Context, unitID string, status domain.UnitStatus) error
	// Reparent updates the unit's parent reference and rewrites the
	// materialized paths of the unit and its entire subtree in one
	// transaction.
	Reparent(ctx context.Context, unitID string, newParentID *string, oldPath, newPath string) error
}
