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

const countColumns = `id, ticket_id, code_id, store_code, barcode, description, division_code,
       category_code, calculated_stock, physical_qty, unit_cost, diferencia, costo_total,
       movement_type, comment, status, counted, active, created_at, updated_at`

// CountRepository persists reconciliation counts.
type CountRepository struct {
	db *sqlx.DB
}

// NewCountRepository constructs the repository.
func NewCountRepository(db *sqlx.DB) *CountRepository {
	return &CountRepository{db: db}
}

// InsertTx inserts a count row and backfills its generated id.
func (r *CountRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, count *models.Count) error {
	now := time.Now().UTC()
	count.CreatedAt = now
	count.UpdatedAt = now
	count.Active = true
	const query = `INSERT INTO counts
	(ticket_id, code_id, store_code, barcode, description, division_code, category_code,
	 calculated_stock, physical_qty, unit_cost, diferencia, costo_total, movement_type,
	 comment, status, counted, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING id`
	if err := tx.QueryRowxContext(ctx, query,
		count.TicketID, count.CodeID, count.StoreCode, count.Barcode, count.Description,
		count.DivisionCode, count.CategoryCode, count.CalculatedStock, count.PhysicalQty,
		count.UnitCost, count.Diferencia, count.CostoTotal, count.MovementType,
		count.Comment, count.Status, count.Counted, count.Active, count.CreatedAt, count.UpdatedAt,
	).Scan(&count.ID); err != nil {
		return fmt.Errorf("insert count: %w", err)
	}
	return nil
}

// GetByID fetches a count by identifier.
func (r *CountRepository) GetByID(ctx context.Context, id int64) (*models.Count, error) {
	query := fmt.Sprintf(`SELECT %s FROM counts WHERE id = $1`, countColumns)
	var count models.Count
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return nil, err
	}
	return &count, nil
}

// MaterializedCodeIDs returns the set of code ids already carrying a count
// for the ticket, so materialization stays idempotent.
func (r *CountRepository) MaterializedCodeIDs(ctx context.Context, tx *sqlx.Tx, ticketID int64) (map[int64]struct{}, error) {
	const query = `SELECT code_id FROM counts WHERE ticket_id = $1`
	var ids []int64
	if err := tx.SelectContext(ctx, &ids, query, ticketID); err != nil {
		return nil, fmt.Errorf("read materialized codes: %w", err)
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// UpdateQuantitiesTx persists a physical count registration along with its
// recomputed variance fields.
func (r *CountRepository) UpdateQuantitiesTx(ctx context.Context, tx *sqlx.Tx, count *models.Count) error {
	count.UpdatedAt = time.Now().UTC()
	const query = `UPDATE counts
	SET physical_qty = $2, diferencia = $3, costo_total = $4, movement_type = $5,
	    comment = COALESCE($6, comment), counted = $7, updated_at = $8
	WHERE id = $1`
	result, err := tx.ExecContext(ctx, query,
		count.ID, count.PhysicalQty, count.Diferencia, count.CostoTotal,
		count.MovementType, count.Comment, count.Counted, count.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update count quantities: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check count update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatusTx persists a count status transition.
func (r *CountRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, countID int64, status models.CountStatus) error {
	const query = `UPDATE counts SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, countID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update count status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check count status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByTicket returns the ticket's counts in insertion order.
func (r *CountRepository) ListByTicket(ctx context.Context, ticketID int64) ([]models.Count, error) {
	query := fmt.Sprintf(`SELECT %s FROM counts WHERE ticket_id = $1 ORDER BY id`, countColumns)
	var counts []models.Count
	if err := r.db.SelectContext(ctx, &counts, query, ticketID); err != nil {
		return nil, fmt.Errorf("list ticket counts: %w", err)
	}
	return counts, nil
}

// List returns counts matching the filter plus the unpaged total.
func (r *CountRepository) List(ctx context.Context, filter models.CountFilter) ([]models.Count, int, error) {
	conditions := make([]string, 0, 10)
	args := make([]interface{}, 0, 10)

	if !filter.IncludeInactive {
		conditions = append(conditions, "active = TRUE")
	}
	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		conditions = append(conditions, fmt.Sprintf("ticket_id = $%d", len(args)))
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
	if filter.DivisionCode != "" {
		args = append(args, filter.DivisionCode)
		conditions = append(conditions, fmt.Sprintf("division_code = $%d", len(args)))
	}
	if filter.HasDifference != nil {
		if *filter.HasDifference {
			conditions = append(conditions, "diferencia IS NOT NULL AND ABS(diferencia) > 0.01")
		} else {
			conditions = append(conditions, "(diferencia IS NULL OR ABS(diferencia) <= 0.01)")
		}
	}
	if filter.Counted != nil {
		args = append(args, *filter.Counted)
		conditions = append(conditions, fmt.Sprintf("counted = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(barcode ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM counts"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count counts: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	query := fmt.Sprintf("SELECT %s FROM counts%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		countColumns, where, pageSize, (page-1)*pageSize)

	var counts []models.Count
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list counts: %w", err)
	}
	return counts, total, nil
}
