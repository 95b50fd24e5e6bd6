package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/retailops/inventory-recon-api/internal/models"
)

// HistoryRepository persists the append-only audit trail. Entries are never
// updated or deleted; there is deliberately no method to do either.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AppendRequestTx appends a ticket/code history entry on the given executor,
// so callers can place it inside the transaction of the state change.
func (r *HistoryRepository) AppendRequestTx(ctx context.Context, ext sqlx.ExtContext, entry *models.RequestHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO request_history
	(id, ticket_id, code_id, actor_id, action, old_value, new_value, comment, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := ext.ExecContext(ctx, query,
		entry.ID, entry.TicketID, entry.CodeID, entry.ActorID,
		entry.Action, entry.OldValue, entry.NewValue, entry.Comment, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("append request history: %w", err)
	}
	return nil
}

// AppendRequest appends outside an explicit transaction.
func (r *HistoryRepository) AppendRequest(ctx context.Context, entry *models.RequestHistory) error {
	return r.AppendRequestTx(ctx, r.db, entry)
}

// AppendCountTx appends a count history entry on the given executor.
func (r *HistoryRepository) AppendCountTx(ctx context.Context, ext sqlx.ExtContext, entry *models.CountHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO count_history
	(id, count_id, actor_id, action, old_value, new_value, comment, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := ext.ExecContext(ctx, query,
		entry.ID, entry.CountID, entry.ActorID,
		entry.Action, entry.OldValue, entry.NewValue, entry.Comment, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("append count history: %w", err)
	}
	return nil
}

// AppendCount appends outside an explicit transaction.
func (r *HistoryRepository) AppendCount(ctx context.Context, entry *models.CountHistory) error {
	return r.AppendCountTx(ctx, r.db, entry)
}

// AppendGrantTx appends a grant audit entry on the given executor.
func (r *HistoryRepository) AppendGrantTx(ctx context.Context, ext sqlx.ExtContext, entry *models.GrantHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grant_history
	(id, grant_id, user_id, store_code, actor_id, action, old_value, new_value, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := ext.ExecContext(ctx, query,
		entry.ID, entry.GrantID, entry.UserID, entry.StoreCode, entry.ActorID,
		entry.Action, entry.OldValue, entry.NewValue, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("append grant history: %w", err)
	}
	return nil
}

// ListByTicket returns ticket and code entries newest-first.
func (r *HistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]models.RequestHistory, error) {
	const query = `SELECT id, ticket_id, code_id, actor_id, action, old_value, new_value, comment, created_at
	FROM request_history WHERE ticket_id = $1 ORDER BY created_at DESC`
	var entries []models.RequestHistory
	if err := r.db.SelectContext(ctx, &entries, query, ticketID); err != nil {
		return nil, fmt.Errorf("list request history: %w", err)
	}
	return entries, nil
}

// ListByCount returns count entries newest-first.
func (r *HistoryRepository) ListByCount(ctx context.Context, countID int64) ([]models.CountHistory, error) {
	const query = `SELECT id, count_id, actor_id, action, old_value, new_value, comment, created_at
	FROM count_history WHERE count_id = $1 ORDER BY created_at DESC`
	var entries []models.CountHistory
	if err := r.db.SelectContext(ctx, &entries, query, countID); err != nil {
		return nil, fmt.Errorf("list count history: %w", err)
	}
	return entries, nil
}
