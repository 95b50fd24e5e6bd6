package models

import (
	"strings"
	"time"
)

// TicketPriority enumerates ticket urgency levels.
type TicketPriority string

const (
	PriorityBaja    TicketPriority = "BAJA"
	PriorityNormal  TicketPriority = "NORMAL"
	PriorityAlta    TicketPriority = "ALTA"
	PriorityUrgente TicketPriority = "URGENTE"
)

// ParsePriority maps a raw priority string onto the closed enumeration.
func ParsePriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityBaja, PriorityNormal, PriorityAlta, PriorityUrgente:
		return TicketPriority(strings.ToUpper(strings.TrimSpace(raw))), true
	}
	return "", false
}

// TicketStatus captures the aggregated ticket lifecycle state.
type TicketStatus string

const (
	TicketStatusPendiente  TicketStatus = "PENDIENTE"
	TicketStatusEnRevision TicketStatus = "EN_REVISION"
	TicketStatusListo      TicketStatus = "LISTO"
	TicketStatusAjustado   TicketStatus = "AJUSTADO"
	TicketStatusDevuelto   TicketStatus = "DEVUELTO"
	TicketStatusCancelado  TicketStatus = "CANCELADO"
)

// ParseTicketStatus maps a raw status string onto the closed enumeration.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case TicketStatusPendiente, TicketStatusEnRevision, TicketStatusListo,
		TicketStatusAjustado, TicketStatusDevuelto, TicketStatusCancelado:
		return TicketStatus(strings.ToUpper(strings.TrimSpace(raw))), true
	}
	return "", false
}

// CodeStatus captures the per-code lifecycle state.
type CodeStatus string

const (
	CodeStatusPendiente  CodeStatus = "PENDIENTE"
	CodeStatusEnRevision CodeStatus = "EN_REVISION"
	CodeStatusListo      CodeStatus = "LISTO"
	CodeStatusAjustado   CodeStatus = "AJUSTADO"
	CodeStatusDevuelto   CodeStatus = "DEVUELTO"
	CodeStatusCancelado  CodeStatus = "CANCELADO"
)

// ParseCodeStatus maps a raw status string onto the closed enumeration.
func ParseCodeStatus(raw string) (CodeStatus, bool) {
	switch CodeStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case CodeStatusPendiente, CodeStatusEnRevision, CodeStatusListo,
		CodeStatusAjustado, CodeStatusDevuelto, CodeStatusCancelado:
		return CodeStatus(strings.ToUpper(strings.TrimSpace(raw))), true
	}
	return "", false
}

// CanTransitionTo reports whether the code status machine permits the move.
// CANCELADO is terminal and reachable from every non-terminal state.
func (s CodeStatus) CanTransitionTo(next CodeStatus) bool {
	if next == CodeStatusCancelado {
		return s != CodeStatusCancelado
	}
	switch s {
	case CodeStatusPendiente:
		return next == CodeStatusEnRevision
	case CodeStatusEnRevision:
		return next == CodeStatusListo || next == CodeStatusAjustado || next == CodeStatusDevuelto
	}
	return false
}

// Processed reports whether the status stamps a processed timestamp.
func (s CodeStatus) Processed() bool {
	return s == CodeStatusListo || s == CodeStatusAjustado
}

// Ticket is a verification request for a set of product codes in a store.
// The ticket number and requester are immutable after creation; tickets are
// soft-deactivated, never hard-deleted.
type Ticket struct {
	ID             int64          `db:"id" json:"id"`
	TicketNumber   string         `db:"ticket_number" json:"ticket_number"`
	RequestedBy    int64          `db:"requested_by" json:"requested_by"`
	StoreCode      string         `db:"store_code" json:"store_code"`
	Priority       TicketPriority `db:"priority" json:"priority"`
	Description    string         `db:"description" json:"description"`
	DueDate        *time.Time     `db:"due_date" json:"due_date,omitempty"`
	Status         TicketStatus   `db:"status" json:"status"`
	TotalCodes     int            `db:"total_codes" json:"total_codes"`
	CompletedCodes int            `db:"completed_codes" json:"completed_codes"`
	PendingCodes   int            `db:"pending_codes" json:"pending_codes"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// TicketCode is one product code inside a ticket, independently assigned
// and status-tracked.
type TicketCode struct {
	ID             int64           `db:"id" json:"id"`
	TicketID       int64           `db:"ticket_id" json:"ticket_id"`
	ProductCode    string          `db:"product_code" json:"product_code"`
	Status         CodeStatus      `db:"status" json:"status"`
	AssignedTo     *int64          `db:"assigned_to" json:"assigned_to,omitempty"`
	AssignmentType *AssignmentType `db:"assignment_type" json:"assignment_type,omitempty"`
	AssignmentInfo *string         `db:"assignment_info" json:"assignment_info,omitempty"`
	Notes          *string         `db:"notes" json:"notes,omitempty"`
	ProcessedAt    *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// NormalizeProductCodes trims, upper-cases, and silently collapses duplicate
// codes while preserving first-seen order. Empty entries are dropped.
func NormalizeProductCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

// DeriveTicketStatus aggregates code statuses into the ticket status.
// Explicit DEVUELTO/CANCELADO ticket overrides are not derived here.
func DeriveTicketStatus(codes []TicketCode) TicketStatus {
	if len(codes) == 0 {
		return TicketStatusPendiente
	}
	anyPending := false
	anyInReview := false
	anyAdjusted := false
	allCancelled := true
	for _, code := range codes {
		switch code.Status {
		case CodeStatusPendiente:
			anyPending = true
		case CodeStatusEnRevision:
			anyInReview = true
		case CodeStatusAjustado:
			anyAdjusted = true
		case CodeStatusDevuelto:
			anyInReview = true
		}
		if code.Status != CodeStatusCancelado {
			allCancelled = false
		}
	}
	switch {
	case allCancelled:
		return TicketStatusCancelado
	case anyPending:
		return TicketStatusPendiente
	case anyInReview:
		return TicketStatusEnRevision
	case anyAdjusted:
		return TicketStatusAjustado
	default:
		return TicketStatusListo
	}
}

// CountTicketProgress tallies completed (LISTO/AJUSTADO) and pending
// (PENDIENTE/EN_REVISION/DEVUELTO) codes for the ticket counters.
func CountTicketProgress(codes []TicketCode) (completed, pending int) {
	for _, code := range codes {
		switch code.Status {
		case CodeStatusListo, CodeStatusAjustado:
			completed++
		case CodeStatusPendiente, CodeStatusEnRevision, CodeStatusDevuelto:
			pending++
		}
	}
	return completed, pending
}

// TicketFilter constrains ticket listing queries.
type TicketFilter struct {
	StoreCode       string
	Status          []TicketStatus
	Priority        TicketPriority
	RequestedBy     *int64
	From            *time.Time
	To              *time.Time
	Search          string
	IncludeInactive bool
	Page            int
	PageSize        int
}
