package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoHomeUnit is returned when a user has no home unit assigned.
	ErrNoHomeUnit = errors.New("user has no home unit")
	// ErrNoParent is returned when a root unit's parent is requested.
	ErrNoParent = errors.New("unit has no parent")
)

// DirectoryService is the query surface of the organizational directory:
// the endpoints remote resolution clients call for hierarchy and membership
// data.
type DirectoryService struct {
	units port.UnitRepository
	users port.UserRepository
	roles port.RoleRepository
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(units port.UnitRepository, users port.UserRepository, roles port.RoleRepository) *DirectoryService {
	return &DirectoryService{units: units, users: users, roles: roles}
}

// GetUser returns a user profile by id.
func (s *DirectoryService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return *user, nil
}

// HomeUnitOf returns the unit a user is homed in.
func (s *DirectoryService) HomeUnitOf(ctx context.Context, userID string) (domain.OrganizationalUnit, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return domain.OrganizationalUnit{}, err
	}
	if user.HomeUnitID == nil {
		return domain.OrganizationalUnit{}, ErrNoHomeUnit
	}

	unit, err := s.units.GetByID(ctx, *user.HomeUnitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.OrganizationalUnit{}, ErrUnitNotFound
		}
		return domain.OrganizationalUnit{}, fmt.Errorf("lookup home unit: %w", err)
	}
	return *unit, nil
}

// ParentOf returns the direct parent of a unit. The parent reference is read
// from the unit record, not derived from the path.
func (s *DirectoryService) ParentOf(ctx context.Context, unitID string) (domain.OrganizationalUnit, error) {
	unit, err := s.units.GetByID(ctx, strings.TrimSpace(unitID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.OrganizationalUnit{}, ErrUnitNotFound
		}
		return domain.OrganizationalUnit{}, fmt.Errorf("lookup unit: %w", err)
	}
	if unit.ParentID == nil {
		return domain.OrganizationalUnit{}, ErrNoParent
	}

	parent, err := s.units.GetByID(ctx, *unit.ParentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.OrganizationalUnit{}, ErrUnitNotFound
		}
		return domain.OrganizationalUnit{}, fmt.Errorf("lookup parent unit: %w", err)
	}
	return *parent, nil
}

// UsersWithRoleInUnit returns ids of active users holding the role within
// the unit.
func (s *DirectoryService) UsersWithRoleInUnit(ctx context.Context, unitID, roleID string) ([]string, error) {
	userIDs, err := s.roles.UsersWithRoleInUnit(ctx, unitID, roleID)
	if err != nil {
		return nil, fmt.Errorf("query role members in unit: %w", err)
	}
	return userIDs, nil
}

// UsersWithUnboundedRole returns ids of active users holding the role via
// virtual-group membership.
func (s *DirectoryService) UsersWithUnboundedRole(ctx context.Context, roleID string) ([]string, error) {
	userIDs, err := s.roles.UsersWithUnboundedRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("query unbounded role members: %w", err)
	}
	return userIDs, nil
}

// IsEligibleRole reports whether the role is admitted for the unit.
func (s *DirectoryService) IsEligibleRole(ctx context.Context, unitID, roleID string) (bool, error) {
	eligible, err := s.roles.IsEligible(ctx, unitID, roleID)
	if err != nil {
		return false, fmt.Errorf("check role eligibility: %w", err)
	}
	return eligible, nil
}

// ListEligibleRoles returns the roles admitted for a unit.
func (s *DirectoryService) ListEligibleRoles(ctx context.Context, unitID string) ([]domain.Role, error) {
	roles, err := s.roles.ListEligible(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("list eligible roles: %w", err)
	}
	return roles, nil
}

// UnitMembers returns the users homed directly in a unit.
func (s *DirectoryService) UnitMembers(ctx context.Context, unitID string) ([]domain.User, error) {
	if _, err := s.units.GetByID(ctx, strings.TrimSpace(unitID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("lookup unit: %w", err)
	}

	members, err := s.users.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("list unit members: %w", err)
	}
	return members, nil
}
