package domain

import "time"

// AssigneeResolvedEvent represents the payload for workflow.assignee.resolved messages.
type AssigneeResolvedEvent struct {
	EventID       string
	Strategy      string
	RoleID        *string
	UnitID        *string
	InitiatorID   string
	Assignee      *string
	Candidates    []string
	RequiresClaim bool
	FailureReason string
	ResolvedAt    time.Time
	Metadata      map[string]any
}

// TargetExpandedEvent represents the payload for workflow.target.expanded messages.
type TargetExpandedEvent struct {
	EventID    string
	TargetKind string
	TargetID   string
	UserIDs    []string
	UserCount  int
	ExpandedAt time.Time
	Metadata   map[string]any
}

// AssignmentPropagatedEvent represents the payload for workflow.assignment.propagated
// messages, emitted when a role grant against a target is fanned out to the
// affected users.
type AssignmentPropagatedEvent struct {
	EventID      string
	RoleID       string
	TargetKind   string
	TargetID     string
	UserIDs      []string
	PropagatedAt time.Time
	Metadata     map[string]any
}

// UnitMovedEvent represents the payload for workflow.unit.moved messages.
type UnitMovedEvent struct {
	EventID     string
	UnitID      string
	OldParentID *string
	NewParentID *string
	OldPath     string
	NewPath     string
	MovedAt     time.Time
	Metadata    map[string]any
}

// VirtualGroupMembershipChangedEvent represents the payload for
// workflow.group.membership.changed messages.
type VirtualGroupMembershipChangedEvent struct {
	EventID   string
	GroupID   string
	RoleID    string
	UserID    string
	Change    string
	ChangedAt time.Time
	Metadata  map[string]any
}
