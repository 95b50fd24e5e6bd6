package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailops/inventory-recon-api/internal/service"
	"github.com/retailops/inventory-recon-api/pkg/response"
)

// DashboardHandler exposes the rollup endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get godoc
// @Summary Get the reconciliation dashboard
// @Tags dashboard
// @Produce json
// @Param store_code query string false "Limit rollups to one store"
// @Success 200 {object} response.Envelope{data=dto.DashboardResponse}
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.dashboard.Get(c.Request.Context(), c.Query("store_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
