package port

import (
	"context"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAssigneeResolved(ctx context.Context, event domain.AssigneeResolvedEvent) error
	PublishTargetExpanded(ctx context.Context, event domain.TargetExpandedEvent) error
	PublishAssignmentPropagated(ctx context.Context, event domain.AssignmentPropagatedEvent) error
	PublishUnitMoved(ctx context.Context, event domain.UnitMovedEvent) error
	PublishVirtualGroupMembershipChanged(ctx context.Context, event domain.VirtualGroupMembershipChangedEvent) error
}
