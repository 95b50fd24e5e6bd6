package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/retailops/inventory-recon-api/internal/models"
)

const ticketColumns = `id, ticket_number, requested_by, store_code, priority, description, due_date,
       status, total_codes, completed_codes, pending_codes, active, created_at, updated_at`

const codeColumns = `id, ticket_id, product_code, status, assigned_to, assignment_type,
       assignment_info, notes, processed_at, created_at, updated_at`

// TicketRepository persists tickets and their codes.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository constructs the repository.
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// NextTicketNumber allocates the next REQ-YYYYMMDD-NNNN number for the day.
// It reads the day's maximum sequence inside the caller's transaction so the
// sequence stays monotonic within the day.
func (r *TicketRepository) NextTicketNumber(ctx context.Context, tx *sqlx.Tx, day time.Time) (string, error) {
	prefix := fmt.Sprintf("REQ-%s-", day.UTC().Format("20060102"))
	const query = `SELECT COALESCE(MAX(CAST(RIGHT(ticket_number, 4) AS INTEGER)), 0)
	FROM tickets WHERE ticket_number LIKE $1`
	var maxSeq int
	if err := tx.GetContext(ctx, &maxSeq, query, prefix+"%"); err != nil {
		return "", fmt.Errorf("read ticket sequence: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, maxSeq+1), nil
}

// CreateTx inserts the ticket row and backfills its generated id.
func (r *TicketRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, ticket *models.Ticket) error {
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	ticket.Active = true
	const query = `INSERT INTO tickets
	(ticket_number, requested_by, store_code, priority, description, due_date, status,
	 total_codes, completed_codes, pending_codes, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING id`
	if err := tx.QueryRowxContext(ctx, query,
		ticket.TicketNumber, ticket.RequestedBy, ticket.StoreCode, ticket.Priority,
		ticket.Description, ticket.DueDate, ticket.Status,
		ticket.TotalCodes, ticket.CompletedCodes, ticket.PendingCodes,
		ticket.Active, ticket.CreatedAt, ticket.UpdatedAt,
	).Scan(&ticket.ID); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// InsertCodesTx bulk-inserts the ticket's codes and backfills their ids.
func (r *TicketRepository) InsertCodesTx(ctx context.Context, tx *sqlx.Tx, codes []models.TicketCode) error {
	const query = `INSERT INTO ticket_codes
	(ticket_id, product_code, status, assigned_to, assignment_type, assignment_info, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`
	now := time.Now().UTC()
	for i := range codes {
		code := &codes[i]
		code.CreatedAt = now
		code.UpdatedAt = now
		if err := tx.QueryRowxContext(ctx, query,
			code.TicketID, code.ProductCode, code.Status, code.AssignedTo,
			code.AssignmentType, code.AssignmentInfo, code.Notes, code.CreatedAt, code.UpdatedAt,
		).Scan(&code.ID); err != nil {
			return fmt.Errorf("insert ticket code %s: %w", code.ProductCode, err)
		}
	}
	return nil
}

// GetByID fetches a ticket by identifier.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1`, ticketColumns)
	var ticket models.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, id); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetByNumber fetches a ticket by its human-readable number.
func (r *TicketRepository) GetByNumber(ctx context.Context, number string) (*models.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number = $1`, ticketColumns)
	var ticket models.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, number); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List returns tickets matching the filter plus the unpaged total.
func (r *TicketRepository) List(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, int, error) {
	conditions := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)

	if !filter.IncludeInactive {
		conditions = append(conditions, "active = TRUE")
	}
	if filter.StoreCode != "" {
		args = append(args, filter.StoreCode)
		conditions = append(conditions, fmt.Sprintf("store_code = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.RequestedBy != nil {
		args = append(args, *filter.RequestedBy)
		conditions = append(conditions, fmt.Sprintf("requested_by = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(ticket_number ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tickets"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	query := fmt.Sprintf("SELECT %s FROM tickets%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		ticketColumns, where, pageSize, (page-1)*pageSize)

	var tickets []models.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, total, nil
}

// ListCodes returns all codes of a ticket in insertion order.
func (r *TicketRepository) ListCodes(ctx context.Context, ticketID int64) ([]models.TicketCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_codes WHERE ticket_id = $1 ORDER BY id`, codeColumns)
	var codes []models.TicketCode
	if err := r.db.SelectContext(ctx, &codes, query, ticketID); err != nil {
		return nil, fmt.Errorf("list ticket codes: %w", err)
	}
	return codes, nil
}

// ListCodesTx reads the ticket's codes inside the caller's transaction.
func (r *TicketRepository) ListCodesTx(ctx context.Context, tx *sqlx.Tx, ticketID int64) ([]models.TicketCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_codes WHERE ticket_id = $1 ORDER BY id`, codeColumns)
	var codes []models.TicketCode
	if err := tx.SelectContext(ctx, &codes, query, ticketID); err != nil {
		return nil, fmt.Errorf("list ticket codes: %w", err)
	}
	return codes, nil
}

// GetCode fetches one code by identifier.
func (r *TicketRepository) GetCode(ctx context.Context, codeID int64) (*models.TicketCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_codes WHERE id = $1`, codeColumns)
	var code models.TicketCode
	if err := r.db.GetContext(ctx, &code, query, codeID); err != nil {
		return nil, err
	}
	return &code, nil
}

// UpdateCodeStatusTx persists a code status transition. The processed
// timestamp is stamped only when the new status requires one.
func (r *TicketRepository) UpdateCodeStatusTx(ctx context.Context, tx *sqlx.Tx, codeID int64, status models.CodeStatus, notes *string) error {
	now := time.Now().UTC()
	var processedAt *time.Time
	if status.Processed() {
		processedAt = &now
	}
	const query = `UPDATE ticket_codes
	SET status = $2,
	    notes = COALESCE($3, notes),
	    processed_at = COALESCE($4, processed_at),
	    updated_at = $5
	WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, codeID, status, notes, processedAt, now)
	if err != nil {
		return fmt.Errorf("update code status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check code update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateCodeAssignmentTx reroutes a code to a user.
func (r *TicketRepository) UpdateCodeAssignmentTx(ctx context.Context, tx *sqlx.Tx, codeID int64, userID *int64, assignmentType *models.AssignmentType, info *string, notes *string) error {
	const query = `UPDATE ticket_codes
	SET assigned_to = $2, assignment_type = $3, assignment_info = $4,
	    notes = COALESCE($5, notes), updated_at = $6
	WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, codeID, userID, assignmentType, info, notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update code assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check code assignment rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateAggregateTx refreshes the ticket's derived status and counters.
func (r *TicketRepository) UpdateAggregateTx(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus, completed, pending int) error {
	const query = `UPDATE tickets
	SET status = $2, completed_codes = $3, pending_codes = $4, updated_at = $5
	WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, ticketID, status, completed, pending, time.Now().UTC()); err != nil {
		return fmt.Errorf("update ticket aggregate: %w", err)
	}
	return nil
}

// UpdateStatusTx sets an explicit ticket-level status.
func (r *TicketRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus) error {
	const query = `UPDATE tickets SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, ticketID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check ticket status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
