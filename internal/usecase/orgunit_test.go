package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/repository"
)

// unitStoreMock is a writable unit repository that mirrors the subtree path
// rewrite the postgres implementation performs.
type unitStoreMock struct {
	units map[string]domain.OrganizationalUnit
}

func newUnitStoreMock() *unitStoreMock {
	return &unitStoreMock{units: make(map[string]domain.OrganizationalUnit)}
}

func (m *unitStoreMock) Create(_ context.Context, unit domain.OrganizationalUnit) error {
	m.units[unit.ID] = unit
	return nil
}

func (m *unitStoreMock) GetByID(_ context.Context, id string) (*domain.OrganizationalUnit, error) {
	if unit, ok := m.units[id]; ok {
		return &unit, nil
	}
	return nil, repository.ErrNotFound
}

func (m *unitStoreMock) ListChildren(_ context.Context, parentID string) ([]domain.OrganizationalUnit, error) {
	var children []domain.OrganizationalUnit
	for _, unit := range m.units {
		if unit.ParentID != nil && *unit.ParentID == parentID {
			children = append(children, unit)
		}
	}
	return children, nil
}

func (m *unitStoreMock) ListSubtree(_ context.Context, unitID, path string) ([]domain.OrganizationalUnit, error) {
	var subtree []domain.OrganizationalUnit
	for _, unit := range m.units {
		if unit.ID == unitID || strings.HasPrefix(unit.Path, path+"/") {
			subtree = append(subtree, unit)
		}
	}
	return subtree, nil
}

func (m *unitStoreMock) SetStatus(_ context.Context, unitID string, status domain.UnitStatus) error {
	unit, ok := m.units[unitID]
	if !ok {
		return repository.ErrNotFound
	}
	unit.Status = status
	m.units[unitID] = unit
	return nil
}

func (m *unitStoreMock) Reparent(_ context.Context, unitID string, newParentID *string, oldPath, newPath string) error {
	unit, ok := m.units[unitID]
	if !ok {
		return repository.ErrNotFound
	}
	unit.ParentID = newParentID
	m.units[unitID] = unit

	for id, u := range m.units {
		if u.Path == oldPath || strings.HasPrefix(u.Path, oldPath+"/") {
			u.Path = domain.RebasePath(u.Path, oldPath, newPath)
			m.units[id] = u
		}
	}
	return nil
}

func newOrgUnitFixture() (*OrgUnitService, *unitStoreMock, *countCacheMock, *publisherMock) {
	store := newUnitStoreMock()
	cache := &countCacheMock{}
	publisher := &publisherMock{}
	service := NewOrgUnitService(store, cache, publisher, zap.NewNop())
	return service, store, cache, publisher
}

func TestOrgUnitService_CreateUnit(t *testing.T) {
	service, store, _, _ := newOrgUnitFixture()

	root, err := service.CreateUnit(context.Background(), CreateUnitInput{Name: "Corp"})
	if err != nil {
		t.Fatalf("CreateUnit failed: %v", err)
	}
	if root.Path != "/"+root.ID {
		t.Errorf("root path must be /<id>, got %q", root.Path)
	}
	if root.Status != domain.UnitStatusActive {
		t.Errorf("new unit must be active, got %s", root.Status)
	}

	child, err := service.CreateUnit(context.Background(), CreateUnitInput{Name: "Finance", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("CreateUnit child failed: %v", err)
	}
	if child.Path != root.Path+"/"+child.ID {
		t.Errorf("child path must extend the parent path, got %q", child.Path)
	}
	if len(store.units) != 2 {
		t.Errorf("expected 2 stored units, got %d", len(store.units))
	}
}

func TestOrgUnitService_CreateUnit_UnknownParent(t *testing.T) {
	service, _, _, _ := newOrgUnitFixture()
	parentID := "missing"

	_, err := service.CreateUnit(context.Background(), CreateUnitInput{Name: "Finance", ParentID: &parentID})
	if !errors.Is(err, ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestOrgUnitService_CreateUnit_InactiveParent(t *testing.T) {
	service, store, _, _ := newOrgUnitFixture()
	store.units["p1"] = domain.OrganizationalUnit{ID: "p1", Path: "/p1", Status: domain.UnitStatusInactive}
	parentID := "p1"

	_, err := service.CreateUnit(context.Background(), CreateUnitInput{Name: "Finance", ParentID: &parentID})
	if !errors.Is(err, ErrUnitInactive) {
		t.Fatalf("expected ErrUnitInactive, got %v", err)
	}
}

func TestOrgUnitService_MoveUnit_RewritesSubtreePaths(t *testing.T) {
	service, store, cache, publisher := newOrgUnitFixture()
	a := "A"
	store.units["A"] = domain.OrganizationalUnit{ID: "A", Path: "/A", Status: domain.UnitStatusActive}
	store.units["B"] = domain.OrganizationalUnit{ID: "B", Path: "/B", Status: domain.UnitStatusActive}
	store.units["B1"] = domain.OrganizationalUnit{ID: "B1", ParentID: strptr("B"), Path: "/B/B1", Status: domain.UnitStatusActive}
	store.units["B1a"] = domain.OrganizationalUnit{ID: "B1a", ParentID: strptr("B1"), Path: "/B/B1/B1a", Status: domain.UnitStatusActive}

	moved, err := service.MoveUnit(context.Background(), "B1", &a)
	if err != nil {
		t.Fatalf("MoveUnit failed: %v", err)
	}
	if moved.Path != "/A/B1" {
		t.Errorf("moved unit path = %q, want /A/B1", moved.Path)
	}
	if got := store.units["B1a"].Path; got != "/A/B1/B1a" {
		t.Errorf("descendant path = %q, want /A/B1/B1a", got)
	}
	if got := store.units["B"].Path; got != "/B" {
		t.Errorf("untouched sibling path changed: %q", got)
	}

	if len(publisher.unitMovedEvents) != 1 {
		t.Fatalf("expected a unit moved event, got %d", len(publisher.unitMovedEvents))
	}
	event := publisher.unitMovedEvents[0]
	if event.OldPath != "/B/B1" || event.NewPath != "/A/B1" {
		t.Errorf("event paths wrong: %+v", event)
	}
	if len(cache.invalidated) != 1 {
		t.Errorf("expected one cache invalidation, got %v", cache.invalidated)
	}
}

func TestOrgUnitService_MoveUnit_RejectsCycle(t *testing.T) {
	service, store, _, _ := newOrgUnitFixture()
	store.units["B1"] = domain.OrganizationalUnit{ID: "B1", Path: "/B1", Status: domain.UnitStatusActive}
	store.units["B1a"] = domain.OrganizationalUnit{ID: "B1a", ParentID: strptr("B1"), Path: "/B1/B1a", Status: domain.UnitStatusActive}

	descendant := "B1a"
	if _, err := service.MoveUnit(context.Background(), "B1", &descendant); !errors.Is(err, ErrUnitCycle) {
		t.Fatalf("expected ErrUnitCycle, got %v", err)
	}

	self := "B1"
	if _, err := service.MoveUnit(context.Background(), "B1", &self); !errors.Is(err, ErrUnitCycle) {
		t.Fatalf("expected ErrUnitCycle for self-parenting, got %v", err)
	}
}

func TestOrgUnitService_MoveUnit_ToRoot(t *testing.T) {
	service, store, _, _ := newOrgUnitFixture()
	store.units["B"] = domain.OrganizationalUnit{ID: "B", Path: "/B", Status: domain.UnitStatusActive}
	store.units["B1"] = domain.OrganizationalUnit{ID: "B1", ParentID: strptr("B"), Path: "/B/B1", Status: domain.UnitStatusActive}

	moved, err := service.MoveUnit(context.Background(), "B1", nil)
	if err != nil {
		t.Fatalf("MoveUnit to root failed: %v", err)
	}
	if moved.Path != "/B1" {
		t.Errorf("root path = %q, want /B1", moved.Path)
	}
	if moved.ParentID != nil {
		t.Errorf("root unit must have no parent, got %v", moved.ParentID)
	}
}

func TestOrgUnitService_DeactivateUnit(t *testing.T) {
	service, store, _, _ := newOrgUnitFixture()
	store.units["B1"] = domain.OrganizationalUnit{ID: "B1", Path: "/B1", Status: domain.UnitStatusActive}

	if err := service.DeactivateUnit(context.Background(), "B1"); err != nil {
		t.Fatalf("DeactivateUnit failed: %v", err)
	}
	if store.units["B1"].Status != domain.UnitStatusInactive {
		t.Error("unit must be inactive after deactivation")
	}
	// The record itself stays.
	if _, ok := store.units["B1"]; !ok {
		t.Error("deactivation must not remove the unit")
	}

	if err := service.DeactivateUnit(context.Background(), "missing"); !errors.Is(err, ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}
