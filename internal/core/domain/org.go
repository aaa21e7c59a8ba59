package domain

import (
	"strings"
	"time"
)

// UnitStatus enumerates lifecycle states of an organizational unit.
// Units are never hard-deleted; retirement is a status change.
type UnitStatus string

const (
	UnitStatusActive   UnitStatus = "active"
	UnitStatusInactive UnitStatus = "inactive"
)

// OrganizationalUnit is a node in the business unit hierarchy. Path is the
// materialized ancestor chain (slash-separated unit ids ending in the unit's
// own id) and always reflects the live parent chain.
type OrganizationalUnit struct {
	ID        string
	Name      string
	ParentID  *string
	Path      string
	Status    UnitStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the unit participates in resolution and expansion.
func (u OrganizationalUnit) Active() bool {
	return u.Status == UnitStatusActive
}

// ChildPath derives the materialized path for a unit created under parentPath.
// A root unit has path "/<id>".
func ChildPath(parentPath, unitID string) string {
	return parentPath + "/" + unitID
}

// RootPath derives the materialized path for a unit with no parent.
func RootPath(unitID string) string {
	return "/" + unitID
}

// IsDescendant reports whether the unit at path lies inside the subtree
// rooted at ancestorPath, inclusive of the ancestor itself.
func IsDescendant(path, ancestorPath string) bool {
	if path == "" || ancestorPath == "" {
		return false
	}
	return path == ancestorPath || strings.HasPrefix(path, ancestorPath+"/")
}

// RebasePath rewrites a subtree member's path after its ancestor moved from
// oldPrefix to newPrefix. The caller guarantees path lies in the old subtree.
func RebasePath(path, oldPrefix, newPrefix string) string {
	return newPrefix + strings.TrimPrefix(path, oldPrefix)
}
