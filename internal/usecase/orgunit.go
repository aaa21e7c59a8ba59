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
	// ErrUnitNotFound is returned when the referenced unit does not exist.
	ErrUnitNotFound = errors.New("organizational unit not found")
	// ErrUnitInactive is returned when an operation requires an active unit.
	ErrUnitInactive = errors.New("organizational unit is inactive")
	// ErrUnitCycle is returned when a re-parenting would place a unit
	// inside its own subtree.
	ErrUnitCycle = errors.New("unit cannot be moved under its own subtree")
)

// CreateUnitInput captures the payload for creating an organizational unit.
type CreateUnitInput struct {
	Name     string
	ParentID *string
}

// OrgUnitService manages the organizational hierarchy. Re-parenting keeps
// the materialized paths of the moved unit and its whole subtree consistent.
type OrgUnitService struct {
	units  port.UnitRepository
	counts port.TargetCountCache
	events port.EventPublisher
	log    *zap.Logger
}

// NewOrgUnitService constructs an OrgUnitService.
func NewOrgUnitService(units port.UnitRepository, counts port.TargetCountCache, events port.EventPublisher, log *zap.Logger) *OrgUnitService {
	return &OrgUnitService{units: units, counts: counts, events: events, log: log}
}

// CreateUnit provisions a unit with a path derived from its parent chain.
func (s *OrgUnitService) CreateUnit(ctx context.Context, input CreateUnitInput) (domain.OrganizationalUnit, error) {
	var unit domain.OrganizationalUnit

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return unit, fmt.Errorf("unit name is required")
	}

	id := uuid.NewString()
	path := domain.RootPath(id)

	if input.ParentID != nil {
		parent, err := s.getUnit(ctx, *input.ParentID)
		if err != nil {
			return unit, err
		}
		if !parent.Active() {
			return unit, ErrUnitInactive
		}
		path = domain.ChildPath(parent.Path, id)
	}

	now := time.Now().UTC()
	unit = domain.OrganizationalUnit{
		ID:        id,
		Name:      name,
		ParentID:  input.ParentID,
		Path:      path,
		Status:    domain.UnitStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.units.Create(ctx, unit); err != nil {
		return domain.OrganizationalUnit{}, fmt.Errorf("create unit: %w", err)
	}

	return unit, nil
}

// GetUnit returns a unit by id.
func (s *OrgUnitService) GetUnit(ctx context.Context, unitID string) (domain.OrganizationalUnit, error) {
	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return domain.OrganizationalUnit{}, err
	}
	return *unit, nil
}

// ListChildren returns the direct children of a unit.
func (s *OrgUnitService) ListChildren(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error) {
	if _, err := s.getUnit(ctx, unitID); err != nil {
		return nil, err
	}
	children, err := s.units.ListChildren(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// ListSubtree returns the unit and every descendant.
func (s *OrgUnitService) ListSubtree(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error) {
	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	subtree, err := s.units.ListSubtree(ctx, unit.ID, unit.Path)
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	return subtree, nil
}

// MoveUnit re-parents a unit. The unit's path and the paths of its entire
// subtree are rewritten together; moving a unit under its own descendant is
// rejected.
func (s *OrgUnitService) MoveUnit(ctx context.Context, unitID string, newParentID *string) (domain.OrganizationalUnit, error) {
	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return domain.OrganizationalUnit{}, err
	}

	oldPath := unit.Path
	newPath := domain.RootPath(unit.ID)

	if newParentID != nil {
		if *newParentID == unit.ID {
			return domain.OrganizationalUnit{}, ErrUnitCycle
		}
		parent, err := s.getUnit(ctx, *newParentID)
		if err != nil {
			return domain.OrganizationalUnit{}, err
		}
		if !parent.Active() {
			return domain.OrganizationalUnit{}, ErrUnitInactive
		}
		if domain.IsDescendant(parent.Path, oldPath) {
			return domain.OrganizationalUnit{}, ErrUnitCycle
		}
		newPath = domain.ChildPath(parent.Path, unit.ID)
	}

	if newPath == oldPath {
		return *unit, nil
	}

	if err := s.units.Reparent(ctx, unit.ID, newParentID, oldPath, newPath); err != nil {
		return domain.OrganizationalUnit{}, fmt.Errorf("reparent unit: %w", err)
	}

	// Cached subtree counts for the moved unit are stale; counts of the
	// old and new ancestors age out with the cache TTL.
	if err := s.counts.Invalidate(ctx, domain.TargetDepartmentHierarchy, unit.ID); err != nil {
		s.log.Warn("invalidate target count cache", zap.String("unit_id", unit.ID), zap.Error(err))
	}

	event := domain.UnitMovedEvent{
		EventID:     uuid.NewString(),
		UnitID:      unit.ID,
		OldParentID: unit.ParentID,
		NewParentID: newParentID,
		OldPath:     oldPath,
		NewPath:     newPath,
		MovedAt:     time.Now().UTC(),
	}
	if err := s.events.PublishUnitMoved(ctx, event); err != nil {
		s.log.Warn("publish unit moved event", zap.String("unit_id", unit.ID), zap.Error(err))
	}

	moved := *unit
	moved.ParentID = newParentID
	moved.Path = newPath
	moved.UpdatedAt = time.Now().UTC()

	return moved, nil
}

// DeactivateUnit retires a unit without removing it from the hierarchy.
func (s *OrgUnitService) DeactivateUnit(ctx context.Context, unitID string) error {
	return s.setStatus(ctx, unitID, domain.UnitStatusInactive)
}

// ActivateUnit returns a retired unit to service.
func (s *OrgUnitService) ActivateUnit(ctx context.Context, unitID string) error {
	return s.setStatus(ctx, unitID, domain.UnitStatusActive)
}

func (s *OrgUnitService) setStatus(ctx context.Context, unitID string, status domain.UnitStatus) error {
	if err := s.units.SetStatus(ctx, unitID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnitNotFound
		}
		return fmt.Errorf("set unit status: %w", err)
	}
	return nil
}

func (s *OrgUnitService) getUnit(ctx context.Context, unitID string) (*domain.OrganizationalUnit, error) {
	unit, err := s.units.GetByID(ctx, strings.TrimSpace(unitID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("lookup unit: %w", err)
	}
	return unit, nil
}
