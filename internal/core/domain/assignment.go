package domain

// AssigneeStrategy enumerates the nine ways a workflow task names its
// handler. The set is closed: resolution dispatches over these tags
// exhaustively and an unknown tag is a soft resolution failure.
type AssigneeStrategy string

const (
	// Direct strategies bind a single user without a claim step.
	StrategyFunctionManager AssigneeStrategy = "FUNCTION_MANAGER"
	StrategyEntityManager   AssigneeStrategy = "ENTITY_MANAGER"
	StrategyInitiator       AssigneeStrategy = "INITIATOR"

	// Claim strategies produce a candidate pool scoped by role and unit;
	// one member must claim the task afterwards.
	StrategyCurrentBURole         AssigneeStrategy = "CURRENT_BU_ROLE"
	StrategyCurrentParentBURole   AssigneeStrategy = "CURRENT_PARENT_BU_ROLE"
	StrategyInitiatorBURole       AssigneeStrategy = "INITIATOR_BU_ROLE"
	StrategyInitiatorParentBURole AssigneeStrategy = "INITIATOR_PARENT_BU_ROLE"
	StrategyFixedBURole           AssigneeStrategy = "FIXED_BU_ROLE"
	StrategyBUUnboundedRole       AssigneeStrategy = "BU_UNBOUNDED_ROLE"
)

var assigneeStrategies = map[AssigneeStrategy]struct{}{
	StrategyFunctionManager:       {},
	StrategyEntityManager:         {},
	StrategyInitiator:             {},
	StrategyCurrentBURole:         {},
	StrategyCurrentParentBURole:   {},
	StrategyInitiatorBURole:       {},
	StrategyInitiatorParentBURole: {},
	StrategyFixedBURole:           {},
	StrategyBUUnboundedRole:       {},
}

// ParseAssigneeStrategy maps a raw tag onto the closed strategy set.
func ParseAssigneeStrategy(raw string) (AssigneeStrategy, bool) {
	strategy := AssigneeStrategy(raw)
	_, ok := assigneeStrategies[strategy]
	return strategy, ok
}

// RequiresClaim reports whether the strategy yields a candidate pool that a
// single user must claim. The flag is fixed per strategy: the six role-based
// strategies always require a claim, even when the pool holds one user, and
// carry the flag on failure results too.
func (s AssigneeStrategy) RequiresClaim() bool {
	switch s {
	case StrategyFunctionManager, StrategyEntityManager, StrategyInitiator:
		return false
	default:
		return true
	}
}

// RequiresRole reports whether the strategy needs a role id before any
// lookup may run.
func (s AssigneeStrategy) RequiresRole() bool {
	switch s {
	case StrategyCurrentBURole, StrategyCurrentParentBURole,
		StrategyInitiatorBURole, StrategyInitiatorParentBURole,
		StrategyFixedBURole, StrategyBUUnboundedRole:
		return true
	default:
		return false
	}
}

// AnchorsOnCurrentUser reports whether the traversal starts from the current
// user rather than the initiator.
func (s AssigneeStrategy) AnchorsOnCurrentUser() bool {
	return s == StrategyCurrentBURole || s == StrategyCurrentParentBURole
}

// legacyStrategyCodes translates the retired short codes still stored on old
// process definitions onto canonical tags.
var legacyStrategyCodes = map[string]AssigneeStrategy{
	"DEPT_OTHERS":   StrategyCurrentBURole,
	"PARENT_DEPT":   StrategyCurrentParentBURole,
	"FIXED_DEPT":    StrategyFixedBURole,
	"VIRTUAL_GROUP": StrategyBUUnboundedRole,
}

// TranslateLegacyStrategy maps a legacy assignment code onto its canonical
// strategy tag.
func TranslateLegacyStrategy(code string) (AssigneeStrategy, bool) {
	strategy, ok := legacyStrategyCodes[code]
	return strategy, ok
}

// Failure reasons surfaced in resolution results. These are operator-facing
// strings recorded on unassigned tasks.
const (
	FailureRequiresRole        = "requires role id"
	FailureRequiresUnit        = "requires business unit id"
	FailureRequiresInitiator   = "requires initiator id"
	FailureRequiresCurrentUser = "requires current user id"
	FailureNoManagerSet        = "no manager set"
	FailureNoHomeUnit          = "no home unit"
	FailureNoParentUnit        = "no parent unit"
	FailureNoUsersWithRole     = "no users with role in unit"
	FailureNoRoleHolders       = "no users with role"
	FailureRoleNotEligible     = "role not eligible for unit"
	FailureUnknownStrategy     = "unknown assignment type"
)

// ResolutionResult is the outcome of assignee resolution: exactly one of a
// direct assignee, a candidate pool, or a failure reason is set.
// RequiresClaim always reflects the strategy's fixed claim requirement,
// including on failures.
type ResolutionResult struct {
	Assignee      *string
	Candidates    []string
	RequiresClaim bool
	FailureReason string
}

// DirectAssignee builds a successful single-user result.
func DirectAssignee(userID string) ResolutionResult {
	return ResolutionResult{Assignee: &userID}
}

// CandidatePool builds a successful claim-required pool result.
func CandidatePool(userIDs []string) ResolutionResult {
	return ResolutionResult{Candidates: userIDs, RequiresClaim: true}
}

// Unresolved builds a failure result carrying the strategy's claim flag.
func Unresolved(strategy AssigneeStrategy, reason string) ResolutionResult {
	return ResolutionResult{RequiresClaim: strategy.RequiresClaim(), FailureReason: reason}
}

// Resolved reports whether the result names at least one user.
func (r ResolutionResult) Resolved() bool {
	return r.FailureReason == ""
}
