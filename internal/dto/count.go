package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterCountRequest reports a physical quantity for one count.
type RegisterCountRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Comment  string          `json:"comment"`
}

// UpdateCountStatusRequest moves a count through its status machine.
type UpdateCountStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment"`
}

// AddCountCommentRequest appends a comment to a count's history.
type AddCountCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// BatchRegisterItem is one entry of a best-effort batch registration.
type BatchRegisterItem struct {
	CountID  int64           `json:"count_id" validate:"required,gt=0"`
	Quantity decimal.Decimal `json:"quantity"`
	Comment  string          `json:"comment"`
}

// BatchRegisterRequest registers many physical counts; items fail
// independently and never abort the rest of the batch.
type BatchRegisterRequest struct {
	Items []BatchRegisterItem `json:"items" validate:"required,min=1"`
}

// BatchItemResult reports the outcome for one batch item.
type BatchItemResult struct {
	CountID int64  `json:"count_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchRegisterResult aggregates per-item outcomes.
type BatchRegisterResult struct {
	Results      []BatchItemResult `json:"results"`
	SuccessCount int               `json:"success_count"`
	FailCount    int               `json:"fail_count"`
}

// CountQuery carries list filters from the HTTP layer.
type CountQuery struct {
	TicketID        *int64
	StoreCode       string
	Status          string
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
