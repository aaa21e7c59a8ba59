package usecase

import (
	"context"
	"strings"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
)

// ResolveAssigneeInput captures the parameters of a task assignment request.
// Strategy carries the raw tag so that unknown tags surface as soft failures
// rather than refusing the call.
type ResolveAssigneeInput struct {
	Strategy       string
	RoleID         string
	BusinessUnitID string
	InitiatorID    string
	CurrentUserID  string
}

// AssigneeResolver turns an assignment strategy into a concrete assignee or
// candidate pool. It is stateless and safe for concurrent use; every call is
// a pure function of its input plus reads through the directory ports.
type AssigneeResolver struct {
	directory  port.UserDirectory
	hierarchy  port.HierarchyNavigator
	membership port.RoleMembershipIndex
}

// NewAssigneeResolver constructs an AssigneeResolver.
func NewAssigneeResolver(directory port.UserDirectory, hierarchy port.HierarchyNavigator, membership port.RoleMembershipIndex) *AssigneeResolver {
	return &AssigneeResolver{directory: directory, hierarchy: hierarchy, membership: membership}
}

// Resolve dispatches over the closed strategy set. Validation and resolution
// failures come back as result values, never as errors: an unresolved
// assignment must not abort the caller's transaction.
func (r *AssigneeResolver) Resolve(ctx context.Context, input ResolveAssigneeInput) domain.ResolutionResult {
	strategy, ok := domain.ParseAssigneeStrategy(strings.TrimSpace(input.Strategy))
	if !ok {
		return domain.ResolutionResult{FailureReason: domain.FailureUnknownStrategy}
	}

	if reason := validateParameters(strategy, input); reason != "" {
		return domain.Unresolved(strategy, reason)
	}

	switch strategy {
	case domain.StrategyInitiator:
		return domain.DirectAssignee(input.InitiatorID)

	case domain.StrategyFunctionManager, domain.StrategyEntityManager:
		return r.resolveManager(ctx, strategy, input.InitiatorID)

	case domain.StrategyCurrentBURole, domain.StrategyInitiatorBURole:
		return r.resolveAnchoredRole(ctx, strategy, anchorOf(strategy, input), input.RoleID, false)

	case domain.StrategyCurrentParentBURole, domain.StrategyInitiatorParentBURole:
		return r.resolveAnchoredRole(ctx, strategy, anchorOf(strategy, input), input.RoleID, true)

	case domain.StrategyFixedBURole:
		return r.resolveFixedUnitRole(ctx, strategy, input.BusinessUnitID, input.RoleID)

	case domain.StrategyBUUnboundedRole:
		return r.resolveUnboundedRole(ctx, strategy, input.RoleID)
	}

	return domain.ResolutionResult{FailureReason: domain.FailureUnknownStrategy}
}

// ResolveLegacy maps a retired assignment code onto its canonical strategy
// and resolves it. The legacy call form carried a single value parameter
// holding the role id, and anchored current-unit strategies on the
// initiator.
func (r *AssigneeResolver) ResolveLegacy(ctx context.Context, legacyCode, value, initiatorID string) domain.ResolutionResult {
	strategy, ok := domain.TranslateLegacyStrategy(strings.TrimSpace(legacyCode))
	if !ok {
		return domain.ResolutionResult{FailureReason: domain.FailureUnknownStrategy}
	}

	return r.Resolve(ctx, ResolveAssigneeInput{
		Strategy:      string(strategy),
		RoleID:        value,
		InitiatorID:   initiatorID,
		CurrentUserID: initiatorID,
	})
}

// validateParameters checks the strategy's required parameters before any
// lookup. The role id check runs first for all role-based strategies, so a
// missing role id wins over other missing parameters.
func validateParameters(strategy domain.AssigneeStrategy, input ResolveAssigneeInput) string {
	if strategy.RequiresRole() && strings.TrimSpace(input.RoleID) == "" {
		return domain.FailureRequiresRole
	}

	if strategy == domain.StrategyFixedBURole && strings.TrimSpace(input.BusinessUnitID) == "" {
		return domain.FailureRequiresUnit
	}

	switch strategy {
	case domain.StrategyInitiator, domain.StrategyFunctionManager, domain.StrategyEntityManager,
		domain.StrategyInitiatorBURole, domain.StrategyInitiatorParentBURole:
		if strings.TrimSpace(input.InitiatorID) == "" {
			return domain.FailureRequiresInitiator
		}
	case domain.StrategyCurrentBURole, domain.StrategyCurrentParentBURole:
		if strings.TrimSpace(input.CurrentUserID) == "" {
			return domain.FailureRequiresCurrentUser
		}
	}

	return ""
}

func anchorOf(strategy domain.AssigneeStrategy, input ResolveAssigneeInput) string {
	if strategy.AnchorsOnCurrentUser() {
		return input.CurrentUserID
	}
	return input.InitiatorID
}

func (r *AssigneeResolver) resolveManager(ctx context.Context, strategy domain.AssigneeStrategy, initiatorID string) domain.ResolutionResult {
	profile, ok := r.directory.Lookup(ctx, initiatorID)
	if !ok {
		return domain.Unresolved(strategy, domain.FailureNoManagerSet)
	}

	managerID := profile.FunctionManagerID
	if strategy == domain.StrategyEntityManager {
		managerID = profile.EntityManagerID
	}

	if managerID == nil || *managerID == "" {
		return domain.Unresolved(strategy, domain.FailureNoManagerSet)
	}

	return domain.DirectAssignee(*managerID)
}

func (r *AssigneeResolver) resolveAnchoredRole(ctx context.Context, strategy domain.AssigneeStrategy, anchorUserID, roleID string, parentHop bool) domain.ResolutionResult {
	unitID, ok := r.hierarchy.HomeUnitOf(ctx, anchorUserID)
	if !ok {
		return domain.Unresolved(strategy, domain.FailureNoHomeUnit)
	}

	// One parent hop exactly, never a recursive ancestor search.
	if parentHop {
		parentID, ok := r.hierarchy.Parent(ctx, unitID)
		if !ok {
			return domain.Unresolved(strategy, domain.FailureNoParentUnit)
		}
		unitID = parentID
	}

	return r.poolFromUnit(ctx, strategy, unitID, roleID)
}

func (r *AssigneeResolver) resolveFixedUnitRole(ctx context.Context, strategy domain.AssigneeStrategy, unitID, roleID string) domain.ResolutionResult {
	// Eligibility gates the membership query: an inadmissible role fails
	// without touching the index.
	if !r.membership.IsEligibleRole(ctx, unitID, roleID) {
		return domain.Unresolved(strategy, domain.FailureRoleNotEligible)
	}

	return r.poolFromUnit(ctx, strategy, unitID, roleID)
}

func (r *AssigneeResolver) resolveUnboundedRole(ctx context.Context, strategy domain.AssigneeStrategy, roleID string) domain.ResolutionResult {
	userIDs := r.membership.UsersWithUnboundedRole(ctx, roleID)
	if len(userIDs) == 0 {
		return domain.Unresolved(strategy, domain.FailureNoRoleHolders)
	}

	return domain.CandidatePool(userIDs)
}

func (r *AssigneeResolver) poolFromUnit(ctx context.Context, strategy domain.AssigneeStrategy, unitID, roleID string) domain.ResolutionResult {
	userIDs := r.membership.UsersWithRoleInUnit(ctx, unitID, roleID)
	if len(userIDs) == 0 {
		return domain.Unresolved(strategy, domain.FailureNoUsersWithRole)
	}

	return domain.CandidatePool(userIDs)
}
