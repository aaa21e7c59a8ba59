package domain

// TargetKind enumerates the four shapes an assignment target can take.
type TargetKind string

const (
	TargetUser                TargetKind = "USER"
	TargetDepartment          TargetKind = "DEPARTMENT"
	TargetDepartmentHierarchy TargetKind = "DEPARTMENT_HIERARCHY"
	TargetVirtualGroup        TargetKind = "VIRTUAL_GROUP"
)

var targetKinds = map[TargetKind]struct{}{
	TargetUser:                {},
	TargetDepartment:          {},
	TargetDepartmentHierarchy: {},
	TargetVirtualGroup:        {},
}

// ParseTargetKind maps a raw tag onto the closed target kind set.
func ParseTargetKind(raw string) (TargetKind, bool) {
	kind := TargetKind(raw)
	_, ok := targetKinds[kind]
	return kind, ok
}

// ResolvedUser is the best-effort projection of a user affected by an
// assignment target, as returned by target expansion.
type ResolvedUser struct {
	ID          string
	DisplayName string
	UnitID      *string
	Email       *string
}
