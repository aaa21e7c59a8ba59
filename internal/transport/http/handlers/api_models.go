package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workflow-resolution/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ResolveAssigneeRequest defines the payload for the assignee resolution endpoint.
type ResolveAssigneeRequest struct {
	Strategy       string `json:"strategy" binding:"required"`
	RoleID         string `json:"role_id"`
	BusinessUnitID string `json:"business_unit_id"`
	InitiatorID    string `json:"initiator_id"`
	CurrentUserID  string `json:"current_user_id"`
}

// ResolveLegacyRequest defines the payload for the legacy-code resolution endpoint.
type ResolveLegacyRequest struct {
	Code        string `json:"code" binding:"required"`
	Value       string `json:"value"`
	InitiatorID string `json:"initiator_id"`
}

// ResolutionResponse conveys an assignee resolution outcome.
type ResolutionResponse struct {
	Resolved      bool     `json:"resolved"`
	Assignee      *string  `json:"assignee,omitempty"`
	Candidates    []string `json:"candidates,omitempty"`
	RequiresClaim bool     `json:"requires_claim"`
	FailureReason string   `json:"failure_reason,omitempty"`
}

func newResolutionResponse(result domain.ResolutionResult) ResolutionResponse {
	return ResolutionResponse{
		Resolved:      result.Resolved(),
		Assignee:      result.Assignee,
		Candidates:    result.Candidates,
		RequiresClaim: result.RequiresClaim,
		FailureReason: result.FailureReason,
	}
}

// ResolvedUserPayload describes a user affected by a target expansion.
type ResolvedUserPayload struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	UnitID      *string `json:"unit_id,omitempty"`
	Email       *string `json:"email,omitempty"`
}

func newResolvedUserPayload(user domain.ResolvedUser) ResolvedUserPayload {
	return ResolvedUserPayload{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		UnitID:      user.UnitID,
		Email:       user.Email,
	}
}

// TargetUsersResponse wraps a target expansion result.
type TargetUsersResponse struct {
	Kind     string                `json:"kind"`
	TargetID string                `json:"target_id"`
	Users    []ResolvedUserPayload `json:"users"`
	Total    int                   `json:"total"`
}

// TargetSummaryResponse describes an assignment target for display.
type TargetSummaryResponse struct {
	Kind        string `json:"kind"`
	TargetID    string `json:"target_id"`
	Exists      bool   `json:"exists"`
	DisplayName string `json:"display_name,omitempty"`
	UserCount   int    `json:"user_count"`
}

// PropagateAssignmentRequest defines the payload for the propagation endpoint.
type PropagateAssignmentRequest struct {
	RoleID     string `json:"role_id" binding:"required"`
	TargetKind string `json:"target_kind" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
}

// PropagateAssignmentResponse summarizes a propagation fan-out.
type PropagateAssignmentResponse struct {
	RoleID     string   `json:"role_id"`
	TargetKind string   `json:"target_kind"`
	TargetID   string   `json:"target_id"`
	UserIDs    []string `json:"user_ids"`
	Total      int      `json:"total"`
}

// UnitCreateRequest defines the payload for creating an organizational unit.
type UnitCreateRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UnitMoveRequest defines the payload for re-parenting a unit. A null parent
// moves the unit to the root.
type UnitMoveRequest struct {
	NewParentID *string `json:"new_parent_id"`
}

// UnitPayload summarizes an organizational unit.
type UnitPayload struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id,omitempty"`
	Path      string            `json:"path"`
	Status    domain.UnitStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func newUnitPayload(unit domain.OrganizationalUnit) UnitPayload {
	return UnitPayload{
		ID:        unit.ID,
		Name:      unit.Name,
		ParentID:  unit.ParentID,
		Path:      unit.Path,
		Status:    unit.Status,
		CreatedAt: unit.CreatedAt,
		UpdatedAt: unit.UpdatedAt,
	}
}

// UnitListResponse wraps multiple units.
type UnitListResponse struct {
	Units []UnitPayload `json:"units"`
	Total int           `json:"total"`
}

func newUnitListResponse(units []domain.OrganizationalUnit) UnitListResponse {
	payloads := make([]UnitPayload, 0, len(units))
	for _, unit := range units {
		payloads = append(payloads, newUnitPayload(unit))
	}
	return UnitListResponse{Units: payloads, Total: len(payloads)}
}

// UserPayload summarizes a directory user.
type UserPayload struct {
	ID                string            `json:"id"`
	Username          string            `json:"username"`
	DisplayName       string            `json:"display_name"`
	Email             *string           `json:"email,omitempty"`
	HomeUnitID        *string           `json:"home_unit_id,omitempty"`
	FunctionManagerID *string           `json:"function_manager_id,omitempty"`
	EntityManagerID   *string           `json:"entity_manager_id,omitempty"`
	Status            domain.UserStatus `json:"status"`
}

func newUserPayload(user domain.User) UserPayload {
	return UserPayload{
		ID:                user.ID,
		Username:          user.Username,
		DisplayName:       user.DisplayName,
		Email:             user.Email,
		HomeUnitID:        user.HomeUnitID,
		FunctionManagerID: user.FunctionManagerID,
		EntityManagerID:   user.EntityManagerID,
		Status:            user.Status,
	}
}

// UserListResponse wraps multiple users.
type UserListResponse struct {
	Users []UserPayload `json:"users"`
	Total int           `json:"total"`
}

func newUserListResponse(users []domain.User) UserListResponse {
	payloads := make([]UserPayload, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, newUserPayload(user))
	}
	return UserListResponse{Users: payloads, Total: len(payloads)}
}

// RolePayload summarizes a role entity.
type RolePayload struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Kind        domain.RoleKind `json:"kind"`
	Description *string         `json:"description,omitempty"`
}

func newRolePayload(role domain.Role) RolePayload {
	return RolePayload{
		ID:          role.ID,
		Code:        role.Code,
		Name:        role.Name,
		Kind:        role.Kind,
		Description: role.Description,
	}
}

// RoleListResponse wraps multiple roles.
type RoleListResponse struct {
	Roles []RolePayload `json:"roles"`
}

// EligibilityResponse reports whether a role is admitted for a unit.
type EligibilityResponse struct {
	UnitID   string `json:"unit_id"`
	RoleID   string `json:"role_id"`
	Eligible bool   `json:"eligible"`
}

// RoleHoldersResponse lists the ids of users holding a role.
type RoleHoldersResponse struct {
	RoleID  string   `json:"role_id"`
	UnitID  string   `json:"unit_id,omitempty"`
	UserIDs []string `json:"user_ids"`
	Total   int      `json:"total"`
}

// GroupCreateRequest defines the payload for creating a virtual group.
type GroupCreateRequest struct {
	Name   string `json:"name" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}

// GroupPayload summarizes a virtual group.
type GroupPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newGroupPayload(group domain.VirtualGroup) GroupPayload {
	return GroupPayload{
		ID:        group.ID,
		Name:      group.Name,
		RoleID:    group.RoleID,
		CreatedAt: group.CreatedAt,
	}
}

// GroupMemberRequest identifies the user in membership operations.
type GroupMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
