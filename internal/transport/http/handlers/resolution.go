package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/usecase"
)

// ResolutionHandler exposes assignee resolution, target expansion, and
// assignment propagation.
type ResolutionHandler struct {
	resolution  *usecase.ResolutionService
	resolutions *prometheus.CounterVec
}

// NewResolutionHandler builds a resolution handler. The counter may be nil.
func NewResolutionHandler(resolution *usecase.ResolutionService, resolutions *prometheus.CounterVec) *ResolutionHandler {
	return &ResolutionHandler{resolution: resolution, resolutions: resolutions}
}

// RegisterRoutes wires the resolution endpoints onto the group.
func (h *ResolutionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/resolve", h.ResolveAssignee)
	r.POST("/resolve-legacy", h.ResolveLegacy)
	r.POST("/propagate", h.Propagate)
	r.GET("/targets/:kind/:id", h.DescribeTarget)
	r.GET("/targets/:kind/:id/users", h.ExpandTarget)
}

// ResolveAssignee resolves an assignment strategy into an assignee or
// candidate pool. Unresolvable assignments answer 200 with a failure reason;
// the caller decides how to proceed.
func (h *ResolutionHandler) ResolveAssignee(c *gin.Context) {
	var req ResolveAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resolution payload"))
		return
	}

	result := h.resolution.ResolveAssignee(c.Request.Context(), usecase.ResolveAssigneeInput{
		Strategy:       strings.TrimSpace(req.Strategy),
		RoleID:         strings.TrimSpace(req.RoleID),
		BusinessUnitID: strings.TrimSpace(req.BusinessUnitID),
		InitiatorID:    strings.TrimSpace(req.InitiatorID),
		CurrentUserID:  strings.TrimSpace(req.CurrentUserID),
	})

	h.countOutcome(req.Strategy, result)
	c.JSON(http.StatusOK, newResolutionResponse(result))
}

// ResolveLegacy resolves an assignment expressed in the retired code form.
func (h *ResolutionHandler) ResolveLegacy(c *gin.Context) {
	var req ResolveLegacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid legacy resolution payload"))
		return
	}

	result := h.resolution.ResolveLegacyAssignee(c.Request.Context(),
		strings.TrimSpace(req.Code),
		strings.TrimSpace(req.Value),
		strings.TrimSpace(req.InitiatorID),
	)

	h.countOutcome(req.Code, result)
	c.JSON(http.StatusOK, newResolutionResponse(result))
}

// Propagate fans a role grant against a target out to the affected users.
func (h *ResolutionHandler) Propagate(c *gin.Context) {
	var req PropagateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid propagation payload"))
		return
	}

	users, err := h.resolution.PropagateAssignment(c.Request.Context(), req.RoleID, req.TargetKind, req.TargetID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUnknownTargetKind, Status: http.StatusBadRequest, Message: "unknown target kind"},
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
		}, http.StatusInternalServerError, "failed to propagate assignment")
		return
	}

	userIDs := make([]string, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}

	c.JSON(http.StatusOK, PropagateAssignmentResponse{
		RoleID:     req.RoleID,
		TargetKind: req.TargetKind,
		TargetID:   req.TargetID,
		UserIDs:    userIDs,
		Total:      len(userIDs),
	})
}

// DescribeTarget returns existence, display name, and user count for a target.
func (h *ResolutionHandler) DescribeTarget(c *gin.Context) {
	summary, err := h.resolution.DescribeTarget(c.Request.Context(), c.Param("kind"), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUnknownTargetKind, Status: http.StatusBadRequest, Message: "unknown target kind"},
		}, http.StatusInternalServerError, "failed to describe target")
		return
	}

	c.JSON(http.StatusOK, TargetSummaryResponse{
		Kind:        string(summary.Kind),
		TargetID:    summary.TargetID,
		Exists:      summary.Exists,
		DisplayName: summary.DisplayName,
		UserCount:   summary.UserCount,
	})
}

// ExpandTarget materializes the users affected by a target.
func (h *ResolutionHandler) ExpandTarget(c *gin.Context) {
	kind := c.Param("kind")
	targetID := c.Param("id")

	users, err := h.resolution.ExpandTarget(c.Request.Context(), kind, targetID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUnknownTargetKind, Status: http.StatusBadRequest, Message: "unknown target kind"},
		}, http.StatusInternalServerError, "failed to expand target")
		return
	}

	payloads := make([]ResolvedUserPayload, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, newResolvedUserPayload(user))
	}

	c.JSON(http.StatusOK, TargetUsersResponse{
		Kind:     kind,
		TargetID: targetID,
		Users:    payloads,
		Total:    len(payloads),
	})
}

func (h *ResolutionHandler) countOutcome(strategy string, result domain.ResolutionResult) {
	if h.resolutions == nil {
		return
	}

	outcome := "failure"
	switch {
	case result.Assignee != nil:
		outcome = "direct"
	case result.Resolved():
		outcome = "pool"
	}

	h.resolutions.WithLabelValues(strings.TrimSpace(strategy), outcome).Inc()
}
