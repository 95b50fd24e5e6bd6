package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/service"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
	"github.com/retailops/inventory-recon-api/pkg/response"
)

// CountHandler exposes the reconciliation count endpoints.
type CountHandler struct {
	counts *service.CountService
}

// NewCountHandler constructs the handler.
func NewCountHandler(counts *service.CountService) *CountHandler {
	return &CountHandler{counts: counts}
}

// Materialize godoc
// @Summary Materialize count rows for a ticket's codes
// @Tags counts
// @Produce json
// @Param id path int true "Ticket id"
// @Success 200 {object} response.Envelope{data=[]models.Count}
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /tickets/{id}/counts/materialize [post]
func (h *CountHandler) Materialize(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	counts, err := h.counts.Materialize(c.Request.Context(), actor, ticketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// ListByTicket godoc
// @Summary List a ticket's counts
// @Tags counts
// @Produce json
// @Param id path int true "Ticket id"
// @Success 200 {object} response.Envelope{data=[]models.Count}
// @Security BearerAuth
// @Router /tickets/{id}/counts [get]
func (h *CountHandler) ListByTicket(c *gin.Context) {
	ticketID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	counts, err := h.counts.ListByTicket(c.Request.Context(), ticketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// List godoc
// @Summary List counts
// @Tags counts
// @Produce json
// @Param store_code query string false "Store code"
// @Param status query string false "Comma separated statuses"
// @Param has_difference query bool false "Only counts with variance"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.Count}
// @Security BearerAuth
// @Router /counts [get]
func (h *CountHandler) List(c *gin.Context) {
	query := dto.CountQuery{
		TicketID:        queryInt64Ptr(c, "ticket_id"),
		StoreCode:       c.Query("store_code"),
		Status:          c.Query("status"),
		DivisionCode:    c.Query("division_code"),
		HasDifference:   queryBoolPtr(c, "has_difference"),
		Counted:         queryBoolPtr(c, "counted"),
		Search:          c.Query("search"),
		From:            queryTimePtr(c, "from"),
		To:              queryTimePtr(c, "to"),
		IncludeInactive: queryBool(c, "include_inactive"),
		Page:            queryInt(c, "page", 1),
		PageSize:        queryInt(c, "page_size", 50),
	}

	counts, total, err := h.counts.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, pagination(query.Page, query.PageSize, total))
}

// Get godoc
// @Summary Get one count
// @Tags counts
// @Produce json
// @Param id path int true "Count id"
// @Success 200 {object} response.Envelope{data=models.Count}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /counts/{id} [get]
func (h *CountHandler) Get(c *gin.Context) {
	countID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	count, err := h.counts.Get(c.Request.Context(), countID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}

// Register godoc
// @Summary Register a physical quantity
// @Tags counts
// @Accept json
// @Produce json
// @Param id path int true "Count id"
// @Param payload body dto.RegisterCountRequest true "Quantity payload"
// @Success 200 {object} response.Envelope{data=models.Count}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /counts/{id}/register [put]
func (h *CountHandler) Register(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	countID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RegisterCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	count, err := h.counts.RegisterPhysical(c.Request.Context(), actor, countID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}

// BatchRegister godoc
// @Summary Register many physical quantities best-effort
// @Tags counts
// @Accept json
// @Produce json
// @Param payload body dto.BatchRegisterRequest true "Batch payload"
// @Success 200 {object} response.Envelope{data=dto.BatchRegisterResult}
// @Security BearerAuth
// @Router /counts/batch [post]
func (h *CountHandler) BatchRegister(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.BatchRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	result, err := h.counts.BatchRegister(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateStatus godoc
// @Summary Move a count through its review machine
// @Tags counts
// @Accept json
// @Produce json
// @Param id path int true "Count id"
// @Param payload body dto.UpdateCountStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope{data=models.Count}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /counts/{id}/status [patch]
func (h *CountHandler) UpdateStatus(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	countID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateCountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	count, err := h.counts.UpdateStatus(c.Request.Context(), actor, countID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}

// AddComment godoc
// @Summary Add a count comment
// @Tags counts
// @Accept json
// @Produce json
// @Param id path int true "Count id"
// @Param payload body dto.AddCountCommentRequest true "Comment payload"
// @Success 204
// @Security BearerAuth
// @Router /counts/{id}/comments [post]
func (h *CountHandler) AddComment(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	countID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AddCountCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	if err := h.counts.AddComment(c.Request.Context(), actor, countID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// History godoc
// @Summary Get the count's audit trail
// @Tags counts
// @Produce json
// @Param id path int true "Count id"
// @Success 200 {object} response.Envelope{data=[]models.CountHistory}
// @Security BearerAuth
// @Router /counts/{id}/history [get]
func (h *CountHandler) History(c *gin.Context) {
	countID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.counts.GetHistory(c.Request.Context(), countID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
