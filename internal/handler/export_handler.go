package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/service"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
	"github.com/retailops/inventory-recon-api/pkg/response"
)

// ExportHandler streams count reports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportCounts godoc
// @Summary Export counts as CSV or PDF
// @Tags exports
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Param store_code query string false "Store code"
// @Param status query string false "Count status"
// @Param has_difference query bool false "Only counts with variance"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/counts [get]
func (h *ExportHandler) ExportCounts(c *gin.Context) {
	format, ok := service.ParseExportFormat(c.DefaultQuery("format", "csv"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	query := dto.CountQuery{
		TicketID:      queryInt64Ptr(c, "ticket_id"),
		StoreCode:     c.Query("store_code"),
		Status:        c.Query("status"),
		DivisionCode:  c.Query("division_code"),
		HasDifference: queryBoolPtr(c, "has_difference"),
		Counted:       queryBoolPtr(c, "counted"),
		From:          queryTimePtr(c, "from"),
		To:            queryTimePtr(c, "to"),
	}

	file, err := h.exports.ExportCounts(c.Request.Context(), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
