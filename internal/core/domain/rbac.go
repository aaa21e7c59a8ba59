package domain

import "time"

// RoleKind splits the role catalog into unit-scoped and unit-independent
// roles. A BU-bounded role is only meaningful once admitted for a specific
// unit; a BU-unbounded role is granted through virtual-group membership only.
type RoleKind string

const (
	RoleKindBUBounded   RoleKind = "bu_bounded"
	RoleKindBUUnbounded RoleKind = "bu_unbounded"
)

// Role defines a grantable role in the directory.
type Role struct {
	ID          string
	Code        string
	Name        string
	Kind        RoleKind
	Description *string
}

// RoleAdmission admits a BU-bounded role for activation within a unit.
type RoleAdmission struct {
	UnitID    string
	RoleID    string
	CreatedAt time.Time
}

// RoleGrant activates a role for a user. UnitID is set for BU-bounded
// grants and nil for grants that arrive through virtual-group membership.
type RoleGrant struct {
	UserID    string
	RoleID    string
	UnitID    *string
	GrantedAt time.Time
}

// VirtualGroup is a named set of users bound to exactly one role. Groups are
// never referenced by units; they exist to carry BU-unbounded roles.
type VirtualGroup struct {
	ID        string
	Name      string
	RoleID    string
	CreatedAt time.Time
}

// VirtualGroupMember links a user into a virtual group.
type VirtualGroupMember struct {
	GroupID string
	UserID  string
	AddedAt time.Time
}
