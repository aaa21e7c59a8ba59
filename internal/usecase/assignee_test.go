package usecase

import (
	"context"
	"testing"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// Fail-open directory mocks with call recording, so tests can assert that a
// strategy performs no spurious lookups.

type directoryMock struct {
	users       map[string]domain.User
	lookupCalls int
}

func (m *directoryMock) Lookup(_ context.Context, userID string) (domain.User, bool) {
	m.lookupCalls++
	user, ok := m.users[userID]
	return user, ok
}

type hierarchyMock struct {
	homeUnits map[string]string
	parents   map[string]string
	paths     map[string]string
	calls     int
}

func (m *hierarchyMock) Parent(_ context.Context, unitID string) (string, bool) {
	m.calls++
	parent, ok := m.parents[unitID]
	return parent, ok
}

func (m *hierarchyMock) PathOf(_ context.Context, unitID string) (string, bool) {
	m.calls++
	path, ok := m.paths[unitID]
	return path, ok
}

func (m *hierarchyMock) HomeUnitOf(_ context.Context, userID string) (string, bool) {
	m.calls++
	unit, ok := m.homeUnits[userID]
	return unit, ok
}

type membershipMock struct {
	unitRoleUsers    map[string][]string
	unboundedUsers   map[string][]string
	eligible         map[string]bool
	membershipCalls  int
	eligibilityCalls int
}

func unitRoleKey(unitID, roleID string) string {
	return unitID + "|" + roleID
}

func (m *membershipMock) UsersWithRoleInUnit(_ context.Context, unitID, roleID string) []string {
	m.membershipCalls++
	return m.unitRoleUsers[unitRoleKey(unitID, roleID)]
}

func (m *membershipMock) UsersWithUnboundedRole(_ context.Context, roleID string) []string {
	m.membershipCalls++
	return m.unboundedUsers[roleID]
}

func (m *membershipMock) IsEligibleRole(_ context.Context, unitID, roleID string) bool {
	m.eligibilityCalls++
	return m.eligible[unitRoleKey(unitID, roleID)]
}

func newResolverFixture() (*AssigneeResolver, *directoryMock, *hierarchyMock, *membershipMock) {
	directory := &directoryMock{users: map[string]domain.User{}}
	hierarchy := &hierarchyMock{
		homeUnits: map[string]string{},
		parents:   map[string]string{},
		paths:     map[string]string{},
	}
	membership := &membershipMock{
		unitRoleUsers:  map[string][]string{},
		unboundedUsers: map[string][]string{},
		eligible:       map[string]bool{},
	}
	return NewAssigneeResolver(directory, hierarchy, membership), directory, hierarchy, membership
}

func TestResolve_Initiator_DirectWithoutLookups(t *testing.T) {
	resolver, directory, hierarchy, membership := newResolverFixture()

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:    string(domain.StrategyInitiator),
		InitiatorID: "u1",
	})

	if result.Assignee == nil || *result.Assignee != "u1" {
		t.Fatalf("expected direct assignee u1, got %+v", result)
	}
	if result.RequiresClaim {
		t.Error("INITIATOR must not require claim")
	}
	if directory.lookupCalls+hierarchy.calls+membership.membershipCalls+membership.eligibilityCalls != 0 {
		t.Error("INITIATOR must resolve with zero collaborator calls")
	}
}

func TestResolve_FunctionManager(t *testing.T) {
	resolver, directory, _, _ := newResolverFixture()
	managerID := "mgr-1"
	directory.users["u1"] = domain.User{ID: "u1", FunctionManagerID: &managerID}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:    string(domain.StrategyFunctionManager),
		InitiatorID: "u1",
	})

	if result.Assignee == nil || *result.Assignee != "mgr-1" {
		t.Fatalf("expected direct assignee mgr-1, got %+v", result)
	}
	if result.RequiresClaim {
		t.Error("FUNCTION_MANAGER must not require claim")
	}
}

func TestResolve_FunctionManager_NoManagerSet(t *testing.T) {
	resolver, directory, _, _ := newResolverFixture()
	directory.users["u1"] = domain.User{ID: "u1"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:    string(domain.StrategyFunctionManager),
		InitiatorID: "u1",
	})

	if result.FailureReason != domain.FailureNoManagerSet {
		t.Fatalf("expected %q, got %+v", domain.FailureNoManagerSet, result)
	}
}

func TestResolve_EntityManager(t *testing.T) {
	resolver, directory, _, _ := newResolverFixture()
	managerID := "mgr-2"
	directory.users["u1"] = domain.User{ID: "u1", EntityManagerID: &managerID}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:    string(domain.StrategyEntityManager),
		InitiatorID: "u1",
	})

	if result.Assignee == nil || *result.Assignee != "mgr-2" {
		t.Fatalf("expected direct assignee mgr-2, got %+v", result)
	}
}

func TestResolve_CurrentBURole_CandidatePool(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	hierarchy.homeUnits["u2"] = "B1"
	membership.unitRoleUsers[unitRoleKey("B1", "r1")] = []string{"u3", "u4"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:      string(domain.StrategyCurrentBURole),
		RoleID:        "r1",
		InitiatorID:   "u1",
		CurrentUserID: "u2",
	})

	if len(result.Candidates) != 2 || result.Candidates[0] != "u3" || result.Candidates[1] != "u4" {
		t.Fatalf("expected pool [u3 u4], got %+v", result)
	}
	if !result.RequiresClaim {
		t.Error("role-based pool must require claim")
	}
}

func TestResolve_CurrentBURole_SingleCandidateStillRequiresClaim(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	hierarchy.homeUnits["u2"] = "B1"
	membership.unitRoleUsers[unitRoleKey("B1", "r1")] = []string{"u3"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:      string(domain.StrategyCurrentBURole),
		RoleID:        "r1",
		CurrentUserID: "u2",
	})

	if len(result.Candidates) != 1 {
		t.Fatalf("expected single-member pool, got %+v", result)
	}
	if !result.RequiresClaim {
		t.Error("single-member pool must still require claim")
	}
}

func TestResolve_CurrentBURole_EmptyPoolIsFailure(t *testing.T) {
	resolver, _, hierarchy, _ := newResolverFixture()
	hierarchy.homeUnits["u2"] = "B1"

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:      string(domain.StrategyCurrentBURole),
		RoleID:        "r1",
		CurrentUserID: "u2",
	})

	if result.FailureReason != domain.FailureNoUsersWithRole {
		t.Fatalf("expected %q, got %+v", domain.FailureNoUsersWithRole, result)
	}
	if !result.RequiresClaim {
		t.Error("failure for a claim strategy must keep requiresClaim=true")
	}
}

func TestResolve_InitiatorBURole_AnchorsOnInitiator(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	hierarchy.homeUnits["u1"] = "B1"
	hierarchy.homeUnits["u2"] = "B2"
	membership.unitRoleUsers[unitRoleKey("B1", "r1")] = []string{"u5"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:      string(domain.StrategyInitiatorBURole),
		RoleID:        "r1",
		InitiatorID:   "u1",
		CurrentUserID: "u2",
	})

	if len(result.Candidates) != 1 || result.Candidates[0] != "u5" {
		t.Fatalf("expected pool anchored on initiator's unit, got %+v", result)
	}
}

func TestResolve_ParentBURole_OneHop(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	hierarchy.homeUnits["u2"] = "B1"
	hierarchy.parents["B1"] = "P1"
	membership.unitRoleUsers[unitRoleKey("P1", "r1")] = []string{"u7", "u8"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:      string(domain.StrategyCurrentParentBURole),
		RoleID:        "r1",
		CurrentUserID: "u2",
	})

	// The pool must match a direct query against the parent unit.
	if len(result.Candidates) != 2 || result.Candidates[0] != "u7" || result.Candidates[1] != "u8" {
		t.Fatalf("expected parent unit pool [u7 u8], got %+v", result)
	}
}

func TestResolve_ParentBURole_NoParent(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	hierarchy.homeUnits["u2"] = "ROOT"

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:      string(domain.StrategyCurrentParentBURole),
		RoleID:        "r1",
		CurrentUserID: "u2",
	})

	if result.FailureReason != domain.FailureNoParentUnit {
		t.Fatalf("expected %q, got %+v", domain.FailureNoParentUnit, result)
	}
	if membership.membershipCalls != 0 {
		t.Error("membership must not be queried when no parent exists")
	}
}

func TestResolve_AnchoredRole_NoHomeUnit(t *testing.T) {
	resolver, _, _, membership := newResolverFixture()

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:      string(domain.StrategyCurrentBURole),
		RoleID:        "r1",
		CurrentUserID: "u9",
	})

	if result.FailureReason != domain.FailureNoHomeUnit {
		t.Fatalf("expected %q, got %+v", domain.FailureNoHomeUnit, result)
	}
	if membership.membershipCalls != 0 {
		t.Error("membership must not be queried without a home unit")
	}
}

func TestResolve_FixedBURole(t *testing.T) {
	resolver, _, _, membership := newResolverFixture()
	membership.eligible[unitRoleKey("B5", "r1")] = true
	membership.unitRoleUsers[unitRoleKey("B5", "r1")] = []string{"u6"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:       string(domain.StrategyFixedBURole),
		RoleID:         "r1",
		BusinessUnitID: "B5",
		InitiatorID:    "u1",
	})

	if len(result.Candidates) != 1 || result.Candidates[0] != "u6" {
		t.Fatalf("expected pool [u6], got %+v", result)
	}
}

func TestResolve_FixedBURole_IneligibleSkipsMembershipQuery(t *testing.T) {
	resolver, _, _, membership := newResolverFixture()
	membership.unitRoleUsers[unitRoleKey("B9", "r1")] = []string{"u6"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:       string(domain.StrategyFixedBURole),
		RoleID:         "r1",
		BusinessUnitID: "B9",
	})

	if result.FailureReason != domain.FailureRoleNotEligible {
		t.Fatalf("expected %q, got %+v", domain.FailureRoleNotEligible, result)
	}
	if membership.membershipCalls != 0 {
		t.Error("ineligible role must never reach the membership query")
	}
}

func TestResolve_BUUnboundedRole(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	membership.unboundedUsers["r9"] = []string{"u10", "u11"}

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy: string(domain.StrategyBUUnboundedRole),
		RoleID:   "r9",
	})

	if len(result.Candidates) != 2 {
		t.Fatalf("expected pool of 2, got %+v", result)
	}
	if hierarchy.calls != 0 {
		t.Error("BU_UNBOUNDED_ROLE must not traverse the hierarchy")
	}
}

func TestResolve_BUUnboundedRole_Empty(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy: string(domain.StrategyBUUnboundedRole),
		RoleID:   "r9",
	})

	if result.FailureReason != domain.FailureNoRoleHolders {
		t.Fatalf("expected %q, got %+v", domain.FailureNoRoleHolders, result)
	}
}

func TestResolve_MissingRoleIDShortCircuits(t *testing.T) {
	roleStrategies := []domain.AssigneeStrategy{
		domain.StrategyCurrentBURole,
		domain.StrategyCurrentParentBURole,
		domain.StrategyInitiatorBURole,
		domain.StrategyInitiatorParentBURole,
		domain.StrategyFixedBURole,
		domain.StrategyBUUnboundedRole,
	}

	for _, strategy := range roleStrategies {
		resolver, directory, hierarchy, membership := newResolverFixture()

		// Every other parameter is missing too; the role id check wins.
		result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
			Strategy: string(strategy),
		})

		if result.FailureReason != domain.FailureRequiresRole {
			t.Errorf("%s: expected %q, got %+v", strategy, domain.FailureRequiresRole, result)
		}
		if !result.RequiresClaim {
			t.Errorf("%s: validation failure must keep the claim flag", strategy)
		}
		if directory.lookupCalls+hierarchy.calls+membership.membershipCalls+membership.eligibilityCalls != 0 {
			t.Errorf("%s: validation must run before any lookup", strategy)
		}
	}
}

func TestResolve_MissingUnitForFixedBURole(t *testing.T) {
	resolver, _, _, membership := newResolverFixture()

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy: string(domain.StrategyFixedBURole),
		RoleID:   "r1",
	})

	if result.FailureReason != domain.FailureRequiresUnit {
		t.Fatalf("expected %q, got %+v", domain.FailureRequiresUnit, result)
	}
	if membership.eligibilityCalls != 0 {
		t.Error("validation must run before the eligibility check")
	}
}

func TestResolve_MissingAnchors(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy: string(domain.StrategyCurrentBURole),
		RoleID:   "r1",
	})
	if result.FailureReason != domain.FailureRequiresCurrentUser {
		t.Fatalf("expected %q, got %+v", domain.FailureRequiresCurrentUser, result)
	}

	result = resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy: string(domain.StrategyInitiator),
	})
	if result.FailureReason != domain.FailureRequiresInitiator {
		t.Fatalf("expected %q, got %+v", domain.FailureRequiresInitiator, result)
	}
}

func TestResolve_UnknownStrategy(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()

	result := resolver.Resolve(context.Background(), ResolveAssigneeInput{
		Strategy:    "SOMETHING_ELSE",
		InitiatorID: "u1",
	})

	if result.FailureReason != domain.FailureUnknownStrategy {
		t.Fatalf("expected %q, got %+v", domain.FailureUnknownStrategy, result)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	hierarchy.homeUnits["u2"] = "B1"
	membership.unitRoleUsers[unitRoleKey("B1", "r1")] = []string{"u3", "u4"}

	input := ResolveAssigneeInput{
		Strategy:      string(domain.StrategyCurrentBURole),
		RoleID:        "r1",
		CurrentUserID: "u2",
	}

	first := resolver.Resolve(context.Background(), input)
	second := resolver.Resolve(context.Background(), input)

	if len(first.Candidates) != len(second.Candidates) {
		t.Fatalf("re-resolution differs: %+v vs %+v", first, second)
	}
	for i := range first.Candidates {
		if first.Candidates[i] != second.Candidates[i] {
			t.Fatalf("re-resolution differs at %d: %+v vs %+v", i, first, second)
		}
	}
}

func TestResolveLegacy(t *testing.T) {
	resolver, _, hierarchy, membership := newResolverFixture()
	hierarchy.homeUnits["u1"] = "B1"
	membership.unitRoleUsers[unitRoleKey("B1", "r1")] = []string{"u3"}

	// DEPT_OTHERS anchors the current-unit strategy on the initiator.
	result := resolver.ResolveLegacy(context.Background(), "DEPT_OTHERS", "r1", "u1")
	if len(result.Candidates) != 1 || result.Candidates[0] != "u3" {
		t.Fatalf("expected pool [u3], got %+v", result)
	}

	result = resolver.ResolveLegacy(context.Background(), "NO_SUCH_CODE", "r1", "u1")
	if result.FailureReason != domain.FailureUnknownStrategy {
		t.Fatalf("expected %q, got %+v", domain.FailureUnknownStrategy, result)
	}
}
