package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID     string           `json:"event_id"`
	EventType   string           `json:"event_type"`
	AggregateID string           `json:"aggregate_id,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Version     string           `json:"version"`
	Payload     any              `json:"payload"`
	Metadata    envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, aggregateID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:     id,
		EventType:   eventType,
		AggregateID: aggregateID,
		Timestamp:   ts.UTC(),
		Version:     schemaVersion,
		Payload:     payload,
		Metadata:    metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAssigneeResolved publishes workflow.assignee.resolved events.
func (p *EventPublisher) PublishAssigneeResolved(ctx context.Context, event domain.AssigneeResolvedEvent) error {
	payload := struct {
		Strategy      string         `json:"strategy"`
		RoleID        *string        `json:"role_id,omitempty"`
		UnitID        *string        `json:"unit_id,omitempty"`
		InitiatorID   string         `json:"initiator_id,omitempty"`
		Assignee      *string        `json:"assignee,omitempty"`
		Candidates    []string       `json:"candidates,omitempty"`
		RequiresClaim bool           `json:"requires_claim"`
		FailureReason string         `json:"failure_reason,omitempty"`
		ResolvedAt    time.Time      `json:"resolved_at"`
		Metadata      map[string]any `json:"metadata,omitempty"`
	}{
		Strategy:      event.Strategy,
		RoleID:        event.RoleID,
		UnitID:        event.UnitID,
		InitiatorID:   event.InitiatorID,
		Assignee:      event.Assignee,
		Candidates:    event.Candidates,
		RequiresClaim: event.RequiresClaim,
		FailureReason: event.FailureReason,
		ResolvedAt:    event.ResolvedAt.UTC(),
		Metadata:      event.Metadata,
	}

	return p.publish(ctx, event.EventID, "workflow.assignee.resolved", event.InitiatorID, event.ResolvedAt, payload)
}

// PublishTargetExpanded publishes workflow.target.expanded events.
func (p *EventPublisher) PublishTargetExpanded(ctx context.Context, event domain.TargetExpandedEvent) error {
	payload := struct {
		TargetKind string         `json:"target_kind"`
		TargetID   string         `json:"target_id"`
		UserIDs    []string       `json:"user_ids"`
		UserCount  int            `json:"user_count"`
		ExpandedAt time.Time      `json:"expanded_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		TargetKind: event.TargetKind,
		TargetID:   event.TargetID,
		UserIDs:    event.UserIDs,
		UserCount:  event.UserCount,
		ExpandedAt: event.ExpandedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "workflow.target.expanded", event.TargetID, event.ExpandedAt, payload)
}

// PublishAssignmentPropagated publishes workflow.assignment.propagated events.
func (p *EventPublisher) PublishAssignmentPropagated(ctx context.Context, event domain.AssignmentPropagatedEvent) error {
	payload := struct {
		RoleID       string         `json:"role_id"`
		TargetKind   string         `json:"target_kind"`
		TargetID     string         `json:"target_id"`
		UserIDs      []string       `json:"user_ids"`
		PropagatedAt time.Time      `json:"propagated_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		RoleID:       event.RoleID,
		TargetKind:   event.TargetKind,
		TargetID:     event.TargetID,
		UserIDs:      event.UserIDs,
		PropagatedAt: event.PropagatedAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "workflow.assignment.propagated", event.TargetID, event.PropagatedAt, payload)
}

// PublishUnitMoved publishes workflow.unit.moved events.
func (p *EventPublisher) PublishUnitMoved(ctx context.Context, event domain.UnitMovedEvent) error {
	payload := struct {
		UnitID      string         `json:"unit_id"`
		OldParentID *string        `json:"old_parent_id,omitempty"`
		NewParentID *string        `json:"new_parent_id,omitempty"`
		OldPath     string         `json:"old_path"`
		NewPath     string         `json:"new_path"`
		MovedAt     time.Time      `json:"moved_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UnitID:      event.UnitID,
		OldParentID: event.OldParentID,
		NewParentID: event.NewParentID,
		OldPath:     event.OldPath,
		NewPath:     event.NewPath,
		MovedAt:     event.MovedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "workflow.unit.moved", event.UnitID, event.MovedAt, payload)
}

// PublishVirtualGroupMembershipChanged publishes workflow.group.membership.changed events.
func (p *EventPublisher) PublishVirtualGroupMembershipChanged(ctx context.Context, event domain.VirtualGroupMembershipChangedEvent) error {
	payload := struct {
		GroupID   string         `json:"group_id"`
		RoleID    string         `json:"role_id"`
		UserID    string         `json:"user_id"`
		Change    string         `json:"change"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		GroupID:   event.GroupID,
		RoleID:    event.RoleID,
		UserID:    event.UserID,
		Change:    event.Change,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "workflow.group.membership.changed", event.GroupID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
