package port

import (
	"context"
	"time"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// TargetCountCache memoizes expensive user counts per assignment target.
// Get is fail-open: a cache miss and a cache failure both read as absent.
type TargetCountCache interface {
	Get(ctx context.Context, kind domain.TargetKind, targetID string) (int, bool)
	Set(ctx context.Context, kind domain.TargetKind, targetID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, kind domain.TargetKind, targetID string) error
}
