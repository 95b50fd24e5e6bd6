package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/service"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
	"github.com/retailops/inventory-recon-api/pkg/response"
)

// TicketHandler exposes the verification ticket endpoints.
type TicketHandler struct {
	tickets *service.TicketService
}

// NewTicketHandler constructs the handler.
func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Create godoc
// @Summary Create a verification ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param payload body dto.CreateTicketRequest true "Ticket payload"
// @Success 201 {object} response.Envelope{data=dto.TicketDetail}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	detail, err := h.tickets.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List godoc
// @Summary List tickets
// @Tags tickets
// @Produce json
// @Param store_code query string false "Store code"
// @Param status query string false "Comma separated statuses"
// @Param priority query string false "Priority"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.Ticket}
// @Security BearerAuth
// @Router /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	query := dto.TicketQuery{
		StoreCode:       c.Query("store_code"),
		Status:          c.Query("status"),
		Priority:        c.Query("priority"),
		RequestedBy:     queryInt64Ptr(c, "requested_by"),
		From:            queryTimePtr(c, "from"),
		To:              queryTimePtr(c, "to"),
		Search:          c.Query("search"),
		IncludeInactive: queryBool(c, "include_inactive"),
		Page:            queryInt(c, "page", 1),
		PageSize:        queryInt(c, "page_size", 50),
	}

	tickets, total, err := h.tickets.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tickets, pagination(query.Page, query.PageSize, total))
}

// Get godoc
// @Summary Get a ticket with its codes
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket id"
// @Success 200 {object} response.Envelope{data=dto.TicketDetail}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// GetByNumber godoc
// @Summary Get a ticket by its number
// @Tags tickets
// @Produce json
// @Param number path string true "Ticket number"
// @Success 200 {object} response.Envelope{data=dto.TicketDetail}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /tickets/number/{number} [get]
func (h *TicketHandler) GetByNumber(c *gin.Context) {
	detail, err := h.tickets.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateCodeStatus godoc
// @Summary Move a code through its status machine
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket id"
// @Param codeId path int true "Code id"
// @Param payload body dto.UpdateCodeStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope{data=models.TicketCode}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /tickets/{id}/codes/{codeId}/status [patch]
func (h *TicketHandler) UpdateCodeStatus(c *gin.Context) {
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
	codeID, err := pathID(c, "codeId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateCodeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	code, err := h.tickets.UpdateCodeStatus(c.Request.Context(), actor, ticketID, codeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, code, nil)
}

// AssignCode godoc
// @Summary Manually assign a code to a user
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket id"
// @Param codeId path int true "Code id"
// @Param payload body dto.AssignCodeRequest true "Assignment payload"
// @Success 204
// @Security BearerAuth
// @Router /tickets/{id}/codes/{codeId}/assign [put]
func (h *TicketHandler) AssignCode(c *gin.Context) {
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
	codeID, err := pathID(c, "codeId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AssignCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	if err := h.tickets.AssignCode(c.Request.Context(), actor, ticketID, codeID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddComment godoc
// @Summary Add a ticket or code comment
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket id"
// @Param payload body dto.AddCommentRequest true "Comment payload"
// @Success 204
// @Security BearerAuth
// @Router /tickets/{id}/comments [post]
func (h *TicketHandler) AddComment(c *gin.Context) {
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

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	if err := h.tickets.AddComment(c.Request.Context(), actor, ticketID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Close godoc
// @Summary Close a ticket once every code is processed
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket id"
// @Success 200 {object} response.Envelope{data=models.Ticket}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /tickets/{id}/close [post]
func (h *TicketHandler) Close(c *gin.Context) {
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

	ticket, err := h.tickets.Close(c.Request.Context(), actor, ticketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// UpdateStatus godoc
// @Summary Apply a ticket-level status override
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket id"
// @Param payload body dto.UpdateTicketStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope{data=models.Ticket}
// @Security BearerAuth
// @Router /tickets/{id}/status [patch]
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
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

	var req dto.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	ticket, err := h.tickets.UpdateStatus(c.Request.Context(), actor, ticketID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// History godoc
// @Summary Get the ticket's audit trail
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket id"
// @Success 200 {object} response.Envelope{data=[]models.RequestHistory}
// @Security BearerAuth
// @Router /tickets/{id}/history [get]
func (h *TicketHandler) History(c *gin.Context) {
	ticketID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.tickets.GetHistory(c.Request.Context(), ticketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
