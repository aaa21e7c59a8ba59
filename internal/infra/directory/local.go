package directory

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

const defaultLookupTimeout = 5 * time.Second

// LocalDirectory answers hierarchy, membership, and profile queries from the
// service's own store. Every lookup is bounded by a timeout and fail-open: a
// storage failure logs a warning and reads as absent.
type LocalDirectory struct {
	units   port.UnitRepository
	users   port.UserRepository
	roles   port.RoleRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewLocalDirectory constructs a store-backed directory facade.
func NewLocalDirectory(units port.UnitRepository, users port.UserRepository, roles port.RoleRepository, timeout time.Duration, logger *zap.Logger) *LocalDirectory {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}

	return &LocalDirectory{
		units:   units,
		users:   users,
		roles:   roles,
		timeout: timeout,
		logger:  logger,
	}
}

// Parent returns the parent unit id, or false for root and unknown units.
func (d *LocalDirectory) Parent(ctx context.Context, unitID string) (string, bool) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	unit, err := d.units.GetByID(ctx, unitID)
	if err != nil {
		d.warnLookup("unit parent", unitID, err)
		return "", false
	}

	if unit.ParentID == nil {
		return "", false
	}

	return *unit.ParentID, true
}

// PathOf returns the unit's materialized path.
func (d *LocalDirectory) PathOf(ctx context.Context, unitID string) (string, bool) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	unit, err := d.units.GetByID(ctx, unitID)
	if err != nil {
		d.warnLookup("unit path", unitID, err)
		return "", false
	}

	return unit.Path, true
}

// HomeUnitOf returns the user's home unit id, or false when the user has none.
func (d *LocalDirectory) HomeUnitOf(ctx context.Context, userID string) (string, bool) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		d.warnLookup("user home unit", userID, err)
		return "", false
	}

	if user.HomeUnitID == nil {
		return "", false
	}

	return *user.HomeUnitID, true
}

// UsersWithRoleInUnit returns the ids of role holders within the unit.
func (d *LocalDirectory) UsersWithRoleInUnit(ctx context.Context, unitID, roleID string) []string {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	userIDs, err := d.roles.UsersWithRoleInUnit(ctx, unitID, roleID)
	if err != nil {
		d.warnLookup("role holders in unit", unitID, err)
		return nil
	}

	return userIDs
}

// UsersWithUnboundedRole returns the ids of virtual-group role holders.
func (d *LocalDirectory) UsersWithUnboundedRole(ctx context.Context, roleID string) []string {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	userIDs, err := d.roles.UsersWithUnboundedRole(ctx, roleID)
	if err != nil {
		d.warnLookup("unbounded role holders", roleID, err)
		return nil
	}

	return userIDs
}

// IsEligibleRole reports whether the role has been admitted for the unit.
func (d *LocalDirectory) IsEligibleRole(ctx context.Context, unitID, roleID string) bool {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	eligible, err := d.roles.IsEligible(ctx, unitID, roleID)
	if err != nil {
		d.warnLookup("role eligibility", unitID, err)
		return false
	}

	return eligible
}

// Lookup resolves a user profile. Missing users read as not found.
func (d *LocalDirectory) Lookup(ctx context.Context, userID string) (domain.User, bool) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		d.warnLookup("user profile", userID, err)
		return domain.User{}, false
	}

	return *user, true
}

func (d *LocalDirectory) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

func (d *LocalDirectory) warnLookup(what, id string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		return
	}

	d.logger.Warn("directory lookup failed",
		zap.String("lookup", what),
		zap.String("id", id),
		zap.Error(err),
	)
}

var (
	_ port.HierarchyNavigator  = (*LocalDirectory)(nil)
	_ port.RoleMembershipIndex = (*LocalDirectory)(nil)
	_ port.UserDirectory       = (*LocalDirectory)(nil)
)
