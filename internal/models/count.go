package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CountStatus captures the count review lifecycle state.
type CountStatus string

const (
	CountStatusEnRevision CountStatus = "EN_REVISION"
	CountStatusDevuelto   CountStatus = "DEVUELTO"
	CountStatusForense    CountStatus = "FORENSE"
	CountStatusAjustado   CountStatus = "AJUSTADO"
)

// ParseCountStatus maps a raw status string onto the closed enumeration.
func ParseCountStatus(raw string) (CountStatus, bool) {
	switch CountStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case CountStatusEnRevision, CountStatusDevuelto, CountStatusForense, CountStatusAjustado:
		return CountStatus(strings.ToUpper(strings.TrimSpace(raw))), true
	}
	return "", false
}

// CanTransitionTo reports whether the count status machine permits the move.
// Reopening to EN_REVISION is always allowed as an explicit action.
func (s CountStatus) CanTransitionTo(next CountStatus) bool {
	if next == CountStatusEnRevision {
		return s != CountStatusEnRevision
	}
	return s == CountStatusEnRevision
}

// MovementType classifies a count's variance direction.
type MovementType string

const (
	MovementAjustePositivo MovementType = "AJUSTE_POSITIVO"
	MovementAjusteNegativo MovementType = "AJUSTE_NEGATIVO"
	MovementStockCuadrado  MovementType = "STOCK_CUADRADO"
)

// DifferenceEpsilon is the absolute variance below which a count is
// considered matched.
var DifferenceEpsilon = decimal.New(1, -2)

// Count is the reconciliation record for one ticket code: calculated vs
// physical quantity and the resulting variance and cost. Counts are
// deactivated, never deleted.
type Count struct {
	ID              int64            `db:"id" json:"id"`
	TicketID        int64            `db:"ticket_id" json:"ticket_id"`
	CodeID          int64            `db:"code_id" json:"code_id"`
	StoreCode       string           `db:"store_code" json:"store_code"`
	Barcode         string           `db:"barcode" json:"barcode"`
	Description     string           `db:"description" json:"description"`
	DivisionCode    string           `db:"division_code" json:"division_code"`
	CategoryCode    string           `db:"category_code" json:"category_code"`
	CalculatedStock decimal.Decimal  `db:"calculated_stock" json:"calculated_stock"`
	PhysicalQty     *decimal.Decimal `db:"physical_qty" json:"physical_qty,omitempty"`
	UnitCost        decimal.Decimal  `db:"unit_cost" json:"unit_cost"`
	Diferencia      *decimal.Decimal `db:"diferencia" json:"diferencia,omitempty"`
	CostoTotal      *decimal.Decimal `db:"costo_total" json:"costo_total,omitempty"`
	MovementType    *MovementType    `db:"movement_type" json:"movement_type,omitempty"`
	Comment         *string          `db:"comment" json:"comment,omitempty"`
	Status          CountStatus      `db:"status" json:"status"`
	Counted         bool             `db:"counted" json:"counted"`
	Active          bool             `db:"active" json:"active"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// Derive recomputes Diferencia, CostoTotal and MovementType from the stored
// quantities. It is applied on every write and re-applied on reads so stored
// and derived values can never drift apart. Without a physical quantity the
// variance fields stay undefined.
func (c *Count) Derive() {
	if c.PhysicalQty == nil {
		c.Diferencia = nil
		c.CostoTotal = nil
		c.MovementType = nil
		return
	}
	diff := c.PhysicalQty.Sub(c.CalculatedStock)
	cost := diff.Mul(c.UnitCost)
	movement := MovementStockCuadrado
	switch diff.Sign() {
	case 1:
		movement = MovementAjustePositivo
	case -1:
		movement = MovementAjusteNegativo
	}
	c.Diferencia = &diff
	c.CostoTotal = &cost
	c.MovementType = &movement
}

// HasDifference reports whether the absolute variance exceeds the epsilon.
func (c *Count) HasDifference() bool {
	if c.PhysicalQty == nil {
		return false
	}
	return c.PhysicalQty.Sub(c.CalculatedStock).Abs().GreaterThan(DifferenceEpsilon)
}

// CountFilter constrains count listing queries.
type CountFilter struct {
	TicketID        *int64
	StoreCode       string
	Status          []CountStatus
	DivisionCode    string
	HasDifference   *bool
	Counted         *bool
	Search          string
	From            *time.Time
	To              *time.Time
	IncludeInactive bool
	Page            int
	PageSize        int
}
