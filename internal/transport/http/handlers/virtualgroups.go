package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workflow-resolution/internal/usecase"
)

// VirtualGroupHandler exposes virtual group and membership management.
type VirtualGroupHandler struct {
	groups *usecase.VirtualGroupService
}

// NewVirtualGroupHandler builds a virtual group handler.
func NewVirtualGroupHandler(groups *usecase.VirtualGroupService) *VirtualGroupHandler {
	return &VirtualGroupHandler{groups: groups}
}

// RegisterRoutes wires the group endpoints onto the group.
func (h *VirtualGroupHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreateGroup)
	r.GET("/:id", h.GetGroup)
	r.GET("/:id/members", h.ListMembers)
	r.POST("/:id/members", h.AddMember)
	r.DELETE("/:id/members/:userId", h.RemoveMember)
}

var groupErrorCases = []ErrorCase{
	{Err: usecase.ErrGroupNotFound, Status: http.StatusNotFound, Message: "virtual group not found"},
	{Err: usecase.ErrRoleNotFound, Status: http.StatusBadRequest, Message: "role not found"},
	{Err: usecase.ErrRoleNotUnbounded, Status: http.StatusConflict, Message: "virtual groups carry unit-unbounded roles only"},
	{Err: usecase.ErrRoleAlreadyBound, Status: http.StatusConflict, Message: "role already bound to a virtual group"},
	{Err: usecase.ErrUserNotFound, Status: http.StatusBadRequest, Message: "user not found"},
}

// CreateGroup provisions a virtual group bound to a BU-unbounded role.
func (h *VirtualGroupHandler) CreateGroup(c *gin.Context) {
	var req GroupCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid group payload"))
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), usecase.CreateVirtualGroupInput{
		Name:   req.Name,
		RoleID: req.RoleID,
	})
	if err != nil {
		RespondWithMappedError(c, err, groupErrorCases, http.StatusInternalServerError, "failed to create virtual group")
		return
	}

	c.JSON(http.StatusCreated, newGroupPayload(group))
}

// GetGroup returns a virtual group by id.
func (h *VirtualGroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groups.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, groupErrorCases, http.StatusInternalServerError, "failed to load virtual group")
		return
	}

	c.JSON(http.StatusOK, newGroupPayload(group))
}

// ListMembers returns the users currently in the group.
func (h *VirtualGroupHandler) ListMembers(c *gin.Context) {
	members, err := h.groups.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, groupErrorCases, http.StatusInternalServerError, "failed to list group members")
		return
	}

	c.JSON(http.StatusOK, newUserListResponse(members))
}

// AddMember places a user into the group.
func (h *VirtualGroupHandler) AddMember(c *gin.Context) {
	var req GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid member payload"))
		return
	}

	if err := h.groups.AddMember(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		RespondWithMappedError(c, err, groupErrorCases, http.StatusInternalServerError, "failed to add group member")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "member added"})
}

// RemoveMember withdraws a user from the group.
func (h *VirtualGroupHandler) RemoveMember(c *gin.Context) {
	if err := h.groups.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		RespondWithMappedError(c, err, groupErrorCases, http.StatusInternalServerError, "failed to remove group member")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "member removed"})
}
