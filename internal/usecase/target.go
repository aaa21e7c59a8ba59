package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

// TargetResolver expands an assignment target into the affected users.
// Expansion is best-effort: storage failures are logged and yield empty
// results so that the triggering operation (a grant, a propagation run)
// is never blocked by a broken expansion.
type TargetResolver interface {
	Exists(ctx context.Context, targetID string) bool
	ExpandUsers(ctx context.Context, targetID string) []domain.ResolvedUser
	DisplayName(ctx context.Context, targetID string) string
	UserCount(ctx context.Context, targetID string) int
}

// TargetResolverRegistry maps each target kind to its resolver. The map is
// fixed at construction; Get on an unregistered kind is a caller bug and
// panics rather than degrading into a soft failure.
type TargetResolverRegistry struct {
	resolvers map[domain.TargetKind]TargetResolver
}

// NewTargetResolverRegistry builds the registry over the full set of known
// target kinds.
func NewTargetResolverRegistry(
	users port.UserRepository,
	units port.UnitRepository,
	groups port.VirtualGroupRepository,
	counts port.TargetCountCache,
	countTTL time.Duration,
	log *zap.Logger,
) *TargetResolverRegistry {
	return &TargetResolverRegistry{
		resolvers: map[domain.TargetKind]TargetResolver{
			domain.TargetUser:                &userTargetResolver{users: users, log: log},
			domain.TargetDepartment:          &departmentTargetResolver{units: units, users: users, log: log},
			domain.TargetDepartmentHierarchy: &departmentHierarchyTargetResolver{units: units, users: users, counts: counts, countTTL: countTTL, log: log},
			domain.TargetVirtualGroup:        &virtualGroupTargetResolver{groups: groups, counts: counts, countTTL: countTTL, log: log},
		},
	}
}

// Supports reports whether a resolver is registered for the kind.
func (r *TargetResolverRegistry) Supports(kind domain.TargetKind) bool {
	_, ok := r.resolvers[kind]
	return ok
}

// Get returns the resolver for the kind, panicking when none is registered.
func (r *TargetResolverRegistry) Get(kind domain.TargetKind) TargetResolver {
	resolver, ok := r.resolvers[kind]
	if !ok {
		panic(fmt.Sprintf("no target resolver registered for kind %q", kind))
	}
	return resolver
}

type userTargetResolver struct {
	users port.UserRepository
	log   *zap.Logger
}

func (r *userTargetResolver) Exists(ctx context.Context, targetID string) bool {
	user, err := r.users.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetUser, targetID, "lookup user", err)
		return false
	}
	return user.Active()
}

func (r *userTargetResolver) ExpandUsers(ctx context.Context, targetID string) []domain.ResolvedUser {
	user, err := r.users.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetUser, targetID, "lookup user", err)
		return nil
	}
	if !user.Active() {
		return nil
	}
	return []domain.ResolvedUser{resolvedUserFrom(*user)}
}

func (r *userTargetResolver) DisplayName(ctx context.Context, targetID string) string {
	user, err := r.users.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetUser, targetID, "lookup user", err)
		return ""
	}
	return user.DisplayName
}

func (r *userTargetResolver) UserCount(ctx context.Context, targetID string) int {
	return len(r.ExpandUsers(ctx, targetID))
}

type departmentTargetResolver struct {
	units port.UnitRepository
	users port.UserRepository
	log   *zap.Logger
}

func (r *departmentTargetResolver) Exists(ctx context.Context, targetID string) bool {
	unit, err := r.units.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartment, targetID, "lookup unit", err)
		return false
	}
	return unit.Active()
}

func (r *departmentTargetResolver) ExpandUsers(ctx context.Context, targetID string) []domain.ResolvedUser {
	users, err := r.users.ListByUnit(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartment, targetID, "list unit users", err)
		return nil
	}
	return resolvedUsersFrom(users)
}

func (r *departmentTargetResolver) DisplayName(ctx context.Context, targetID string) string {
	unit, err := r.units.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartment, targetID, "lookup unit", err)
		return ""
	}
	return unit.Name
}

func (r *departmentTargetResolver) UserCount(ctx context.Context, targetID string) int {
	return len(r.ExpandUsers(ctx, targetID))
}

type departmentHierarchyTargetResolver struct {
	units    port.UnitRepository
	users    port.UserRepository
	counts   port.TargetCountCache
	countTTL time.Duration
	log      *zap.Logger
}

func (r *departmentHierarchyTargetResolver) Exists(ctx context.Context, targetID string) bool {
	unit, err := r.units.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartmentHierarchy, targetID, "lookup unit", err)
		return false
	}
	return unit.Active()
}

// ExpandUsers returns the users homed in the target unit or in any unit
// whose materialized path lies under the target's path.
func (r *departmentHierarchyTargetResolver) ExpandUsers(ctx context.Context, targetID string) []domain.ResolvedUser {
	unit, err := r.units.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartmentHierarchy, targetID, "lookup unit", err)
		return nil
	}

	users, err := r.users.ListBySubtree(ctx, unit.ID, unit.Path)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartmentHierarchy, targetID, "list subtree users", err)
		return nil
	}
	return resolvedUsersFrom(users)
}

func (r *departmentHierarchyTargetResolver) DisplayName(ctx context.Context, targetID string) string {
	unit, err := r.units.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartmentHierarchy, targetID, "lookup unit", err)
		return ""
	}
	return unit.Name + " (including sub-units)"
}

// UserCount bypasses expansion with a direct count query; subtree listings
// can be large.
func (r *departmentHierarchyTargetResolver) UserCount(ctx context.Context, targetID string) int {
	if count, ok := r.counts.Get(ctx, domain.TargetDepartmentHierarchy, targetID); ok {
		return count
	}

	unit, err := r.units.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartmentHierarchy, targetID, "lookup unit", err)
		return 0
	}

	count, err := r.users.CountBySubtree(ctx, unit.ID, unit.Path)
	if err != nil {
		logExpandFailure(r.log, domain.TargetDepartmentHierarchy, targetID, "count subtree users", err)
		return 0
	}

	if err := r.counts.Set(ctx, domain.TargetDepartmentHierarchy, targetID, count, r.countTTL); err != nil {
		r.log.Warn("cache target user count",
			zap.String("target_kind", string(domain.TargetDepartmentHierarchy)),
			zap.String("target_id", targetID),
			zap.Error(err))
	}

	return count
}

type virtualGroupTargetResolver struct {
	groups   port.VirtualGroupRepository
	counts   port.TargetCountCache
	countTTL time.Duration
	log      *zap.Logger
}

func (r *virtualGroupTargetResolver) Exists(ctx context.Context, targetID string) bool {
	_, err := r.groups.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetVirtualGroup, targetID, "lookup virtual group", err)
		return false
	}
	return true
}

func (r *virtualGroupTargetResolver) ExpandUsers(ctx context.Context, targetID string) []domain.ResolvedUser {
	members, err := r.groups.ListMembers(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetVirtualGroup, targetID, "list group members", err)
		return nil
	}
	return resolvedUsersFrom(members)
}

func (r *virtualGroupTargetResolver) DisplayName(ctx context.Context, targetID string) string {
	group, err := r.groups.GetByID(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetVirtualGroup, targetID, "lookup virtual group", err)
		return ""
	}
	return group.Name
}

// UserCount bypasses expansion with a direct membership count.
func (r *virtualGroupTargetResolver) UserCount(ctx context.Context, targetID string) int {
	if count, ok := r.counts.Get(ctx, domain.TargetVirtualGroup, targetID); ok {
		return count
	}

	count, err := r.groups.CountMembers(ctx, targetID)
	if err != nil {
		logExpandFailure(r.log, domain.TargetVirtualGroup, targetID, "count group members", err)
		return 0
	}

	if err := r.counts.Set(ctx, domain.TargetVirtualGroup, targetID, count, r.countTTL); err != nil {
		r.log.Warn("cache target user count",
			zap.String("target_kind", string(domain.TargetVirtualGroup)),
			zap.String("target_id", targetID),
			zap.Error(err))
	}

	return count
}

func resolvedUserFrom(user domain.User) domain.ResolvedUser {
	return domain.ResolvedUser{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		UnitID:      user.HomeUnitID,
		Email:       user.Email,
	}
}

func resolvedUsersFrom(users []domain.User) []domain.ResolvedUser {
	if len(users) == 0 {
		return nil
	}
	resolved := make([]domain.ResolvedUser, 0, len(users))
	for _, user := range users {
		if !user.Active() {
			continue
		}
		resolved = append(resolved, resolvedUserFrom(user))
	}
	return resolved
}

func logExpandFailure(log *zap.Logger, kind domain.TargetKind, targetID, op string, err error) {
	// A missing record is a data condition, not a degradation.
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	log.Warn("target resolution degraded",
		zap.String("target_kind", string(kind)),
		zap.String("target_id", targetID),
		zap.String("operation", op),
		zap.Error(err))
}
