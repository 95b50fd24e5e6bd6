package dto

import (
	"time"

	"github.com/retailops/inventory-recon-api/internal/models"
)

// CreateTicketRequest opens a new verification ticket.
type CreateTicketRequest struct {
	StoreCode   string     `json:"store_code" validate:"required"`
	Codes       []string   `json:"codes" validate:"required,min=1"`
	Priority    string     `json:"priority"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateCodeStatusRequest moves a code through its status machine.
type UpdateCodeStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// AssignCodeRequest manually reroutes a code to a user.
type AssignCodeRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Notes  string `json:"notes"`
}

// AddCommentRequest appends a ticket- or code-level comment.
type AddCommentRequest struct {
	CodeID *int64 `json:"code_id"`
	Text   string `json:"text" validate:"required"`
}

// UpdateTicketStatusRequest applies an explicit ticket-level override.
// Only DEVUELTO and CANCELADO are accepted; every other ticket status is
// derived from its codes.
type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// TicketDetail pairs a ticket with its codes.
type TicketDetail struct {
	Ticket models.Ticket       `json:"ticket"`
	Codes  []models.TicketCode `json:"codes"`
}

// TicketQuery carries list filters from the HTTP layer.
type TicketQuery struct {
	StoreCode       string
	Status          string
	Priority        string
	RequestedBy     *int64
	From            *time.Time
	To              *time.Time
	Search          string
	IncludeInactive bool
	Page            int
	PageSize        int
}
