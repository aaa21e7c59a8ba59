package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workflow-resolution/internal/usecase"
)

// DirectoryHandler exposes the hierarchy and membership queries that remote
// resolution clients call.
type DirectoryHandler struct {
	directory *usecase.DirectoryService
}

// NewDirectoryHandler builds a directory handler.
func NewDirectoryHandler(directory *usecase.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// RegisterRoutes wires the directory endpoints onto the group.
func (h *DirectoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users/:id", h.GetUser)
	r.GET("/users/:id/business-unit", h.HomeUnit)
	r.GET("/business-units/:id/parent", h.ParentUnit)
	r.GET("/business-units/:id/members", h.UnitMembers)
	r.GET("/business-units/:id/eligible-roles", h.EligibleRoles)
	r.GET("/business-units/:id/roles/:roleId/eligible", h.RoleEligibility)
	r.GET("/business-units/:id/roles/:roleId/users", h.RoleHoldersInUnit)
	r.GET("/roles/:roleId/users", h.UnboundedRoleHolders)
}

var directoryErrorCases = []ErrorCase{
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: usecase.ErrUnitNotFound, Status: http.StatusNotFound, Message: "organizational unit not found"},
	{Err: usecase.ErrNoHomeUnit, Status: http.StatusNotFound, Message: "user has no home unit"},
	{Err: usecase.ErrNoParent, Status: http.StatusNotFound, Message: "unit has no parent"},
}

// GetUser returns a user profile by id.
func (h *DirectoryHandler) GetUser(c *gin.Context) {
	user, err := h.directory.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(user))
}

// HomeUnit returns the unit a user is homed in.
func (h *DirectoryHandler) HomeUnit(c *gin.Context) {
	unit, err := h.directory.HomeUnitOf(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to load home unit")
		return
	}

	c.JSON(http.StatusOK, newUnitPayload(unit))
}

// ParentUnit returns the direct parent of a unit.
func (h *DirectoryHandler) ParentUnit(c *gin.Context) {
	parent, err := h.directory.ParentOf(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to load parent unit")
		return
	}

	c.JSON(http.StatusOK, newUnitPayload(parent))
}

// UnitMembers returns the users homed directly in a unit.
func (h *DirectoryHandler) UnitMembers(c *gin.Context) {
	members, err := h.directory.UnitMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to list unit members")
		return
	}

	c.JSON(http.StatusOK, newUserListResponse(members))
}

// EligibleRoles returns the roles admitted for a unit.
func (h *DirectoryHandler) EligibleRoles(c *gin.Context) {
	roles, err := h.directory.ListEligibleRoles(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to list eligible roles")
		return
	}

	payloads := make([]RolePayload, 0, len(roles))
	for _, role := range roles {
		payloads = append(payloads, newRolePayload(role))
	}

	c.JSON(http.StatusOK, RoleListResponse{Roles: payloads})
}

// RoleEligibility reports whether a role is admitted for a unit.
func (h *DirectoryHandler) RoleEligibility(c *gin.Context) {
	unitID := c.Param("id")
	roleID := c.Param("roleId")

	eligible, err := h.directory.IsEligibleRole(c.Request.Context(), unitID, roleID)
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to check eligibility")
		return
	}

	c.JSON(http.StatusOK, EligibilityResponse{
		UnitID:   unitID,
		RoleID:   roleID,
		Eligible: eligible,
	})
}

// RoleHoldersInUnit returns ids of users holding the role within the unit.
func (h *DirectoryHandler) RoleHoldersInUnit(c *gin.Context) {
	unitID := c.Param("id")
	roleID := c.Param("roleId")

	userIDs, err := h.directory.UsersWithRoleInUnit(c.Request.Context(), unitID, roleID)
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to list role holders")
		return
	}

	c.JSON(http.StatusOK, RoleHoldersResponse{
		RoleID:  roleID,
		UnitID:  unitID,
		UserIDs: userIDs,
		Total:   len(userIDs),
	})
}

// UnboundedRoleHolders returns ids of users holding the role through
// virtual-group membership.
func (h *DirectoryHandler) UnboundedRoleHolders(c *gin.Context) {
	roleID := c.Param("roleId")

	userIDs, err := h.directory.UsersWithUnboundedRole(c.Request.Context(), roleID)
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases, http.StatusInternalServerError, "failed to list role holders")
		return
	}

	c.JSON(http.StatusOK, RoleHoldersResponse{
		RoleID:  roleID,
		UserIDs: userIDs,
		Total:   len(userIDs),
	})
}
