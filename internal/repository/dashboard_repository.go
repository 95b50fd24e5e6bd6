package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/retailops/inventory-recon-api/internal/models"
)

// DashboardRepository computes read-only rollups. It carries no business
// rules beyond arithmetic aggregation of stored fields.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func storeScope(storeCode string) (string, []interface{}) {
	if storeCode == "" {
		return "", nil
	}
	return " AND store_code = $1", []interface{}{storeCode}
}

// TicketStatusCounts groups active tickets by status.
func (r *DashboardRepository) TicketStatusCounts(ctx context.Context, storeCode string) ([]models.TicketStatusCount, error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT status, COUNT(*) AS count FROM tickets
	WHERE active = TRUE%s GROUP BY status ORDER BY status`, scope)
	var rows []models.TicketStatusCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ticket status counts: %w", err)
	}
	return rows, nil
}

// TicketPriorityCounts groups active tickets by priority.
func (r *DashboardRepository) TicketPriorityCounts(ctx context.Context, storeCode string) ([]models.TicketPriorityCount, error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT priority, COUNT(*) AS count FROM tickets
	WHERE active = TRUE%s GROUP BY priority ORDER BY priority`, scope)
	var rows []models.TicketPriorityCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ticket priority counts: %w", err)
	}
	return rows, nil
}

// CodeProgress sums ticket code counters for completion percentages.
func (r *DashboardRepository) CodeProgress(ctx context.Context, storeCode string) (*models.CodeProgress, error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT COALESCE(SUM(total_codes), 0) AS total_codes,
	       COALESCE(SUM(completed_codes), 0) AS completed_codes,
	       COALESCE(SUM(pending_codes), 0) AS pending_codes
	FROM tickets WHERE active = TRUE%s`, scope)
	var progress models.CodeProgress
	if err := r.db.GetContext(ctx, &progress, query, args...); err != nil {
		return nil, fmt.Errorf("code progress: %w", err)
	}
	return &progress, nil
}

// CountStatusCounts groups active counts by status.
func (r *DashboardRepository) CountStatusCounts(ctx context.Context, storeCode string) ([]models.CountStatusCount, error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT status, COUNT(*) AS count FROM counts
	WHERE active = TRUE%s GROUP BY status ORDER BY status`, scope)
	var rows []models.CountStatusCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count status counts: %w", err)
	}
	return rows, nil
}

// MovementCounts groups counted rows by movement classification.
func (r *DashboardRepository) MovementCounts(ctx context.Context, storeCode string) ([]models.MovementCount, error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT movement_type, COUNT(*) AS count FROM counts
	WHERE active = TRUE AND movement_type IS NOT NULL%s GROUP BY movement_type ORDER BY movement_type`, scope)
	var rows []models.MovementCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("movement counts: %w", err)
	}
	return rows, nil
}

// CountedSplit tallies counted vs uncounted rows.
func (r *DashboardRepository) CountedSplit(ctx context.Context, storeCode string) (counted, uncounted int, err error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT COALESCE(SUM(CASE WHEN counted THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN counted THEN 0 ELSE 1 END), 0)
	FROM counts WHERE active = TRUE%s`, scope)
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&counted, &uncounted); err != nil {
		return 0, 0, fmt.Errorf("counted split: %w", err)
	}
	return counted, uncounted, nil
}

// DivisionVariances aggregates variance cost per division over rows with a
// registered physical quantity.
func (r *DashboardRepository) DivisionVariances(ctx context.Context, storeCode string) ([]models.DivisionVariance, error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT division_code, COUNT(*) AS count,
	       COALESCE(SUM(costo_total), 0) AS total_cost
	FROM counts WHERE active = TRUE AND diferencia IS NOT NULL%s
	GROUP BY division_code ORDER BY division_code`, scope)
	var rows []models.DivisionVariance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("division variances: %w", err)
	}
	return rows, nil
}

// VarianceTotals sums the signed variance cost and counts rows whose
// absolute difference exceeds the matching epsilon.
func (r *DashboardRepository) VarianceTotals(ctx context.Context, storeCode string) (decimal.Decimal, int, error) {
	scope, args := storeScope(storeCode)
	query := fmt.Sprintf(`SELECT COALESCE(SUM(costo_total), 0),
	       COALESCE(SUM(CASE WHEN ABS(diferencia) > 0.01 THEN 1 ELSE 0 END), 0)
	FROM counts WHERE active = TRUE AND diferencia IS NOT NULL%s`, scope)
	var total decimal.Decimal
	var withDifference int
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&total, &withDifference); err != nil {
		return decimal.Zero, 0, fmt.Errorf("variance totals: %w", err)
	}
	return total, withDifference, nil
}
