package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workflow-resolution/internal/usecase"
)

// OrgUnitHandler exposes organizational hierarchy management.
type OrgUnitHandler struct {
	units *usecase.OrgUnitService
}

// NewOrgUnitHandler builds an organizational unit handler.
func NewOrgUnitHandler(units *usecase.OrgUnitService) *OrgUnitHandler {
	return &OrgUnitHandler{units: units}
}

// RegisterRoutes wires the unit endpoints onto the group.
func (h *OrgUnitHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreateUnit)
	r.GET("/:id", h.GetUnit)
	r.GET("/:id/children", h.ListChildren)
	r.GET("/:id/subtree", h.ListSubtree)
	r.POST("/:id/move", h.MoveUnit)
	r.POST("/:id/deactivate", h.DeactivateUnit)
	r.POST("/:id/activate", h.ActivateUnit)
}

var unitErrorCases = []ErrorCase{
	{Err: usecase.ErrUnitNotFound, Status: http.StatusNotFound, Message: "organizational unit not found"},
	{Err: usecase.ErrUnitInactive, Status: http.StatusConflict, Message: "organizational unit is inactive"},
	{Err: usecase.ErrUnitCycle, Status: http.StatusConflict, Message: "unit cannot be moved under its own subtree"},
}

// CreateUnit provisions a unit under an optional parent.
func (h *OrgUnitHandler) CreateUnit(c *gin.Context) {
	var req UnitCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid unit payload"))
		return
	}

	unit, err := h.units.CreateUnit(c.Request.Context(), usecase.CreateUnitInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		RespondWithMappedError(c, err, unitErrorCases, http.StatusInternalServerError, "failed to create unit")
		return
	}

	c.JSON(http.StatusCreated, newUnitPayload(unit))
}

// GetUnit returns a unit by id.
func (h *OrgUnitHandler) GetUnit(c *gin.Context) {
	unit, err := h.units.GetUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, unitErrorCases, http.StatusInternalServerError, "failed to load unit")
		return
	}

	c.JSON(http.StatusOK, newUnitPayload(unit))
}

// ListChildren returns the direct children of a unit.
func (h *OrgUnitHandler) ListChildren(c *gin.Context) {
	children, err := h.units.ListChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, unitErrorCases, http.StatusInternalServerError, "failed to list children")
		return
	}

	c.JSON(http.StatusOK, newUnitListResponse(children))
}

// ListSubtree returns the unit and every descendant.
func (h *OrgUnitHandler) ListSubtree(c *gin.Context) {
	subtree, err := h.units.ListSubtree(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, unitErrorCases, http.StatusInternalServerError, "failed to list subtree")
		return
	}

	c.JSON(http.StatusOK, newUnitListResponse(subtree))
}

// MoveUnit re-parents a unit, rewriting the subtree paths.
func (h *OrgUnitHandler) MoveUnit(c *gin.Context) {
	var req UnitMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid move payload"))
		return
	}

	unit, err := h.units.MoveUnit(c.Request.Context(), c.Param("id"), req.NewParentID)
	if err != nil {
		RespondWithMappedError(c, err, unitErrorCases, http.StatusInternalServerError, "failed to move unit")
		return
	}

	c.JSON(http.StatusOK, newUnitPayload(unit))
}

// DeactivateUnit retires a unit without removing it from the hierarchy.
func (h *OrgUnitHandler) DeactivateUnit(c *gin.Context) {
	if err := h.units.DeactivateUnit(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, unitErrorCases, http.StatusInternalServerError, "failed to deactivate unit")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "unit deactivated"})
}

// ActivateUnit returns a retired unit to service.
func (h *OrgUnitHandler) ActivateUnit(c *gin.Context) {
	if err := h.units.ActivateUnit(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, unitErrorCases, http.StatusInternalServerError, "failed to activate unit")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "unit activated"})
}
