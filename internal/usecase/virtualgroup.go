package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

var (
	// ErrGroupNotFound is returned when the referenced virtual group does not exist.
	ErrGroupNotFound = errors.New("virtual group not found")
	// ErrRoleAlreadyBound is returned when the role is already carried by
	// another virtual group.
	ErrRoleAlreadyBound = errors.New("role already bound to a virtual group")
	// ErrRoleNotUnbounded is returned when a group names a unit-scoped role.
	ErrRoleNotUnbounded = errors.New("virtual groups carry unit-unbounded roles only")
)

// CreateVirtualGroupInput captures the payload for creating a virtual group.
// RoleID accepts the role's id or its unique code.
type CreateVirtualGroupInput struct {
	Name   string
	RoleID string
}

// VirtualGroupService manages virtual groups and their membership. Each
// group binds exactly one BU-unbounded role.
type VirtualGroupService struct {
	groups port.VirtualGroupRepository
	roles  port.RoleRepository
	users  port.UserRepository
	counts port.TargetCountCache
	events port.EventPublisher
	log    *zap.Logger
}

// NewVirtualGroupService constructs a VirtualGroupService.
func NewVirtualGroupService(groups port.VirtualGroupRepository, roles port.RoleRepository, users port.UserRepository, counts port.TargetCountCache, events port.EventPublisher, log *zap.Logger) *VirtualGroupService {
	return &VirtualGroupService{groups: groups, roles: roles, users: users, counts: counts, events: events, log: log}
}

// CreateGroup provisions a virtual group bound to a BU-unbounded role.
func (s *VirtualGroupService) CreateGroup(ctx context.Context, input CreateVirtualGroupInput) (domain.VirtualGroup, error) {
	var group domain.VirtualGroup

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return group, fmt.Errorf("group name is required")
	}
	roleID := strings.TrimSpace(input.RoleID)
	if roleID == "" {
		return group, fmt.Errorf("role id is required")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if errors.Is(err, repository.ErrNotFound) {
		role, err = s.roles.GetByCode(ctx, roleID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return group, ErrRoleNotFound
		}
		return group, fmt.Errorf("lookup role: %w", err)
	}
	if role.Kind != domain.RoleKindBUUnbounded {
		return group, ErrRoleNotUnbounded
	}

	bound, err := s.groups.ExistsWithRole(ctx, role.ID)
	if err != nil {
		return group, fmt.Errorf("check role binding: %w", err)
	}
	if bound {
		return group, ErrRoleAlreadyBound
	}

	group = domain.VirtualGroup{
		ID:        uuid.NewString(),
		Name:      name,
		RoleID:    role.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return domain.VirtualGroup{}, fmt.Errorf("create virtual group: %w", err)
	}

	return group, nil
}

// GetGroup returns a virtual group by id.
func (s *VirtualGroupService) GetGroup(ctx context.Context, groupID string) (domain.VirtualGroup, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return domain.VirtualGroup{}, err
	}
	return *group, nil
}

// ListMembers returns the users currently in the group.
func (s *VirtualGroupService) ListMembers(ctx context.Context, groupID string) ([]domain.User, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}

// AddMember places a user into the group, activating the group's role for
// that user.
func (s *VirtualGroupService) AddMember(ctx context.Context, groupID, userID string) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, strings.TrimSpace(userID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.groups.AddMember(ctx, group.ID, userID); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}

	s.afterMembershipChange(ctx, *group, userID, "added")
	return nil
}

// RemoveMember withdraws a user from the group.
func (s *VirtualGroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.groups.RemoveMember(ctx, group.ID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("remove group member: %w", err)
	}

	s.afterMembershipChange(ctx, *group, userID, "removed")
	return nil
}

func (s *VirtualGroupService) afterMembershipChange(ctx context.Context, group domain.VirtualGroup, userID, change string) {
	if err := s.counts.Invalidate(ctx, domain.TargetVirtualGroup, group.ID); err != nil {
		s.log.Warn("invalidate target count cache", zap.String("group_id", group.ID), zap.Error(err))
	}

	event := domain.VirtualGroupMembershipChangedEvent{
		EventID:   uuid.NewString(),
		GroupID:   group.ID,
		RoleID:    group.RoleID,
		UserID:    userID,
		Change:    change,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.events.PublishVirtualGroupMembershipChanged(ctx, event); err != nil {
		s.log.Warn("publish group membership event", zap.String("group_id", group.ID), zap.Error(err))
	}
}

func (s *VirtualGroupService) getGroup(ctx context.Context, groupID string) (*domain.VirtualGroup, error) {
	group, err := s.groups.GetByID(ctx, strings.TrimSpace(groupID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("lookup virtual group: %w", err)
	}
	return group, nil
}
