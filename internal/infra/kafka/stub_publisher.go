package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, aggregateID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("aggregate_id", aggregateID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAssigneeResolved logs workflow.assignee.resolved events.
func (p *StubPublisher) PublishAssigneeResolved(_ context.Context, event domain.AssigneeResolvedEvent) error {
	payload := map[string]any{
		"strategy":       event.Strategy,
		"role_id":        event.RoleID,
		"unit_id":        event.UnitID,
		"initiator_id":   event.InitiatorID,
		"assignee":       event.Assignee,
		"candidates":     event.Candidates,
		"requires_claim": event.RequiresClaim,
		"failure_reason": event.FailureReason,
		"metadata":       event.Metadata,
	}
	p.logEvent("workflow.assignee.resolved", event.InitiatorID, event.ResolvedAt, payload)
	return nil
}

// PublishTargetExpanded logs workflow.target.expanded events.
func (p *StubPublisher) PublishTargetExpanded(_ context.Context, event domain.TargetExpandedEvent) error {
	payload := map[string]any{
		"target_kind": event.TargetKind,
		"target_id":   event.TargetID,
		"user_ids":    event.UserIDs,
		"user_count":  event.UserCount,
		"metadata":    event.Metadata,
	}
	p.logEvent("workflow.target.expanded", event.TargetID, event.ExpandedAt, payload)
	return nil
}

// PublishAssignmentPropagated logs workflow.assignment.propagated events.
func (p *StubPublisher) PublishAssignmentPropagated(_ context.Context, event domain.AssignmentPropagatedEvent) error {
	payload := map[string]any{
		"role_id":     event.RoleID,
		"target_kind": event.TargetKind,
		"target_id":   event.TargetID,
		"user_ids":    event.UserIDs,
		"metadata":    event.Metadata,
	}
	p.logEvent("workflow.assignment.propagated", event.TargetID, event.PropagatedAt, payload)
	return nil
}

// PublishUnitMoved logs workflow.unit.moved events.
func (p *StubPublisher) PublishUnitMoved(_ context.Context, event domain.UnitMovedEvent) error {
	payload := map[string]any{
		"unit_id":       event.UnitID,
		"old_parent_id": event.OldParentID,
		"new_parent_id": event.NewParentID,
		"old_path":      event.OldPath,
		"new_path":      event.NewPath,
		"metadata":      event.Metadata,
	}
	p.logEvent("workflow.unit.moved", event.UnitID, event.MovedAt, payload)
	return nil
}

// PublishVirtualGroupMembershipChanged logs workflow.group.membership.changed events.
func (p *StubPublisher) PublishVirtualGroupMembershipChanged(_ context.Context, event domain.VirtualGroupMembershipChangedEvent) error {
	payload := map[string]any{
		"group_id": event.GroupID,
		"role_id":  event.RoleID,
		"user_id":  event.UserID,
		"change":   event.Change,
		"metadata": event.Metadata,
	}
	p.logEvent("workflow.group.membership.changed", event.GroupID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
