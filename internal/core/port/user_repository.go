package port

import (
	"context"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// UserRepository handles user lookups for resolution and target expansion.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByUnit(ctx context.Context, unitID string) ([]domain.User, error)
	// ListBySubtree returns the active users homed in the unit or in any
	// unit whose path lies under the given materialized path.
	ListBySubtree(ctx context.Context, unitID, path string) ([]domain.User, error)
	CountBySubtree(ctx context.Context, unitID, path string) (int, error)
}
