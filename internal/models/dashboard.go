package models

import "github.com/shopspring/decimal"

// TicketStatusCount is one row of the tickets-by-status rollup.
type TicketStatusCount struct {
	Status TicketStatus `db:"status" json:"status"`
	Count  int          `db:"count" json:"count"`
}

// TicketPriorityCount is one row of the tickets-by-priority rollup.
type TicketPriorityCount struct {
	Priority TicketPriority `db:"priority" json:"priority"`
	Count    int            `db:"count" json:"count"`
}

// CountStatusCount is one row of the counts-by-status rollup.
type CountStatusCount struct {
	Status CountStatus `db:"status" json:"status"`
	Count  int         `db:"count" json:"count"`
}

// MovementCount is one row of the counts-by-movement rollup.
type MovementCount struct {
	MovementType MovementType `db:"movement_type" json:"movement_type"`
	Count        int          `db:"count" json:"count"`
}

// DivisionVariance aggregates variance cost per division.
type DivisionVariance struct {
	DivisionCode string          `db:"division_code" json:"division_code"`
	Count        int             `db:"count" json:"count"`
	TotalCost    decimal.Decimal `db:"total_cost" json:"total_cost"`
}

// CodeProgress tallies ticket codes by completion for the dashboard.
type CodeProgress struct {
	TotalCodes     int `db:"total_codes" json:"total_codes"`
	CompletedCodes int `db:"completed_codes" json:"completed_codes"`
	PendingCodes   int `db:"pending_codes" json:"pending_codes"`
}
