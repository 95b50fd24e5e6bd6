package dto

import (
	"github.com/shopspring/decimal"

	"github.com/retailops/inventory-recon-api/internal/models"
)

// DashboardResponse is the aggregated reconciliation dashboard payload.
type DashboardResponse struct {
	StoreCode string           `json:"store_code,omitempty"`
	Tickets   TicketsSection   `json:"tickets"`
	Counts    CountsSection    `json:"counts"`
	Variances VariancesSection `json:"variances"`
}

// TicketsSection summarises ticket lifecycle state.
type TicketsSection struct {
	ByStatus      []models.TicketStatusCount   `json:"by_status"`
	ByPriority    []models.TicketPriorityCount `json:"by_priority"`
	TotalCodes    int                          `json:"total_codes"`
	CompletedPct  float64                      `json:"completed_pct"`
	PendingCodes  int                          `json:"pending_codes"`
	CompleteCodes int                          `json:"completed_codes"`
}

// CountsSection summarises count review state.
type CountsSection struct {
	ByStatus   []models.CountStatusCount `json:"by_status"`
	ByMovement []models.MovementCount    `json:"by_movement"`
	Counted    int                       `json:"counted"`
	Uncounted  int                       `json:"uncounted"`
}

// VariancesSection summarises variance cost exposure.
type VariancesSection struct {
	ByDivision        []models.DivisionVariance `json:"by_division"`
	TotalVarianceCost decimal.Decimal           `json:"total_variance_cost"`
	WithDifference    int                       `json:"with_difference"`
}
