package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/service"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
	"github.com/retailops/inventory-recon-api/pkg/response"
)

// AssignmentHandler exposes the counting grant endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Create godoc
// @Summary Delegate a taxonomy scope to a user
// @Tags assignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateGrantRequest true "Grant payload"
// @Success 201 {object} response.Envelope{data=models.Grant}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	grant, err := h.assignments.CreateGrant(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grant)
}

// List godoc
// @Summary List counting grants
// @Tags assignments
// @Produce json
// @Param user_id query int false "User id"
// @Param store_code query string false "Store code"
// @Param type query string false "Assignment type"
// @Param include_inactive query bool false "Include deactivated grants"
// @Success 200 {object} response.Envelope{data=[]models.Grant}
// @Security BearerAuth
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	query := dto.GrantQuery{
		UserID:          queryInt64Ptr(c, "user_id"),
		StoreCode:       c.Query("store_code"),
		Type:            c.Query("type"),
		IncludeInactive: queryBool(c, "include_inactive"),
		Page:            queryInt(c, "page", 1),
		PageSize:        queryInt(c, "page_size", 50),
	}

	grants, total, err := h.assignments.ListGrants(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants, pagination(query.Page, query.PageSize, total))
}

// Remove godoc
// @Summary Deactivate a counting grant
// @Tags assignments
// @Produce json
// @Param id path int true "Grant id"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Remove(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grantID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.assignments.RemoveGrant(c.Request.Context(), actor, grantID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
