package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

var (
	// ErrUnknownTargetKind is returned when a caller names a target kind
	// outside the closed set.
	ErrUnknownTargetKind = errors.New("unknown target kind")
	// ErrRoleNotFound is returned when a propagation names a role that
	// does not exist.
	ErrRoleNotFound = errors.New("role not found")
)

// TargetSummary describes an assignment target for display.
type TargetSummary struct {
	Kind        domain.TargetKind
	TargetID    string
	Exists      bool
	DisplayName string
	UserCount   int
}

// ResolutionService is the single entry point for callers of the resolution
// engine: the task-creation hook resolves assignees through it and the
// assignment-propagation hook expands targets through it. It normalizes
// failures into result values and publishes outcome events best-effort.
type ResolutionService struct {
	assignees *AssigneeResolver
	targets   *TargetResolverRegistry
	roles     port.RoleRepository
	events    port.EventPublisher
	log       *zap.Logger
}

// NewResolutionService constructs a ResolutionService.
func NewResolutionService(assignees *AssigneeResolver, targets *TargetResolverRegistry, roles port.RoleRepository, events port.EventPublisher, log *zap.Logger) *ResolutionService {
	return &ResolutionService{assignees: assignees, targets: targets, roles: roles, events: events, log: log}
}

// ResolveAssignee resolves a task assignment and records the outcome.
func (s *ResolutionService) ResolveAssignee(ctx context.Context, input ResolveAssigneeInput) domain.ResolutionResult {
	result := s.assignees.Resolve(ctx, input)
	s.publishAssigneeResolved(ctx, input, result)
	return result
}

// ResolveLegacyAssignee resolves a task assignment expressed in the retired
// code form.
func (s *ResolutionService) ResolveLegacyAssignee(ctx context.Context, legacyCode, value, initiatorID string) domain.ResolutionResult {
	result := s.assignees.ResolveLegacy(ctx, legacyCode, value, initiatorID)
	s.publishAssigneeResolved(ctx, ResolveAssigneeInput{
		Strategy:    legacyCode,
		RoleID:      value,
		InitiatorID: initiatorID,
	}, result)
	return result
}

// ExpandTarget materializes the users affected by an assignment target.
// An unknown kind is a caller error; expansion failures inside the resolver
// surface as an empty list.
func (s *ResolutionService) ExpandTarget(ctx context.Context, rawKind, targetID string) ([]domain.ResolvedUser, error) {
	kind, ok := domain.ParseTargetKind(rawKind)
	if !ok {
		return nil, fmt.Errorf("target kind %q: %w", rawKind, ErrUnknownTargetKind)
	}

	users := s.targets.Get(kind).ExpandUsers(ctx, targetID)

	event := domain.TargetExpandedEvent{
		EventID:    uuid.NewString(),
		TargetKind: string(kind),
		TargetID:   targetID,
		UserIDs:    userIDsOf(users),
		UserCount:  len(users),
		ExpandedAt: time.Now().UTC(),
	}
	if err := s.events.PublishTargetExpanded(ctx, event); err != nil {
		s.log.Warn("publish target expanded event", zap.String("target_id", targetID), zap.Error(err))
	}

	return users, nil
}

// DescribeTarget returns existence, display name, and user count for an
// assignment target.
func (s *ResolutionService) DescribeTarget(ctx context.Context, rawKind, targetID string) (TargetSummary, error) {
	kind, ok := domain.ParseTargetKind(rawKind)
	if !ok {
		return TargetSummary{}, fmt.Errorf("target kind %q: %w", rawKind, ErrUnknownTargetKind)
	}

	resolver := s.targets.Get(kind)
	summary := TargetSummary{
		Kind:     kind,
		TargetID: targetID,
		Exists:   resolver.Exists(ctx, targetID),
	}
	if summary.Exists {
		summary.DisplayName = resolver.DisplayName(ctx, targetID)
		summary.UserCount = resolver.UserCount(ctx, targetID)
	}

	return summary, nil
}

// PropagateAssignment fans a role grant against a target out to the affected
// users. A failed expansion yields an empty fan-out rather than blocking the
// grant; only an unknown role or target kind refuses the call.
func (s *ResolutionService) PropagateAssignment(ctx context.Context, roleID, rawKind, targetID string) ([]domain.ResolvedUser, error) {
	kind, ok := domain.ParseTargetKind(rawKind)
	if !ok {
		return nil, fmt.Errorf("target kind %q: %w", rawKind, ErrUnknownTargetKind)
	}

	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	users := s.targets.Get(kind).ExpandUsers(ctx, targetID)

	event := domain.AssignmentPropagatedEvent{
		EventID:      uuid.NewString(),
		RoleID:       roleID,
		TargetKind:   string(kind),
		TargetID:     targetID,
		UserIDs:      userIDsOf(users),
		PropagatedAt: time.Now().UTC(),
	}
	if err := s.events.PublishAssignmentPropagated(ctx, event); err != nil {
		s.log.Warn("publish assignment propagated event", zap.String("role_id", roleID), zap.Error(err))
	}

	return users, nil
}

func (s *ResolutionService) publishAssigneeResolved(ctx context.Context, input ResolveAssigneeInput, result domain.ResolutionResult) {
	event := domain.AssigneeResolvedEvent{
		EventID:       uuid.NewString(),
		Strategy:      input.Strategy,
		InitiatorID:   input.InitiatorID,
		Assignee:      result.Assignee,
		Candidates:    result.Candidates,
		RequiresClaim: result.RequiresClaim,
		FailureReason: result.FailureReason,
		ResolvedAt:    time.Now().UTC(),
	}
	if input.RoleID != "" {
		roleID := input.RoleID
		event.RoleID = &roleID
	}
	if input.BusinessUnitID != "" {
		unitID := input.BusinessUnitID
		event.UnitID = &unitID
	}

	if err := s.events.PublishAssigneeResolved(ctx, event); err != nil {
		s.log.Warn("publish assignee resolved event", zap.String("strategy", input.Strategy), zap.Error(err))
	}
}

func userIDsOf(users []domain.ResolvedUser) []string {
	if len(users) == 0 {
		return nil
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids
}
