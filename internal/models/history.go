package models

import "time"

// History actions. One entry is written per state-changing operation.
const (
	HistoryActionCreated       = "CREATED"
	HistoryActionStatusChanged = "STATUS_CHANGED"
	HistoryActionAssigned      = "ASSIGNED"
	HistoryActionComment       = "COMMENT"
	HistoryActionCounted       = "COUNTED"
	HistoryActionClosed        = "CLOSED"
	HistoryActionGrantCreated  = "GRANT_CREATED"
	HistoryActionGrantRemoved  = "GRANT_REMOVED"
)

// RequestHistory is an immutable audit record of one ticket or code
// transition. CodeID is nil for ticket-level entries.
type RequestHistory struct {
	ID        string    `db:"id" json:"id"`
	TicketID  int64     `db:"ticket_id" json:"ticket_id"`
	CodeID    *int64    `db:"code_id" json:"code_id,omitempty"`
	ActorID   int64     `db:"actor_id" json:"actor_id"`
	Action    string    `db:"action" json:"action"`
	OldValue  *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue  *string   `db:"new_value" json:"new_value,omitempty"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CountHistory is an immutable audit record of one count transition.
type CountHistory struct {
	ID        string    `db:"id" json:"id"`
	CountID   int64     `db:"count_id" json:"count_id"`
	ActorID   int64     `db:"actor_id" json:"actor_id"`
	Action    string    `db:"action" json:"action"`
	OldValue  *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue  *string   `db:"new_value" json:"new_value,omitempty"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GrantHistory is an immutable audit record of one grant creation or
// removal, capturing before/after scope.
type GrantHistory struct {
	ID        string    `db:"id" json:"id"`
	GrantID   int64     `db:"grant_id" json:"grant_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	StoreCode string    `db:"store_code" json:"store_code"`
	ActorID   int64     `db:"actor_id" json:"actor_id"`
	Action    string    `db:"action" json:"action"`
	OldValue  *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue  *string   `db:"new_value" json:"new_value,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
