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

const grantColumns = `id, user_id, store_code, type, division_code, division_name,
       category_code, category_name, group_code, group_name, subgroup_code, subgroup_name,
       active, granted_by, created_at, deactivated_at`

// AssignmentRepository persists counting grants.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListActiveByStore returns active grants for a store, newest first so the
// resolver's same-level tie break (most recently granted wins) falls out of
// the ordering.
func (r *AssignmentRepository) ListActiveByStore(ctx context.Context, storeCode string) ([]models.Grant, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_product_assignments
	WHERE store_code = $1 AND active = TRUE ORDER BY created_at DESC`, grantColumns)
	var grants []models.Grant
	if err := r.db.SelectContext(ctx, &grants, query, storeCode); err != nil {
		return nil, fmt.Errorf("list active grants: %w", err)
	}
	return grants, nil
}

// FindActiveTx reads the user's active grant of a type in a store inside the
// caller's transaction.
func (r *AssignmentRepository) FindActiveTx(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) (*models.Grant, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_product_assignments
	WHERE user_id = $1 AND store_code = $2 AND type = $3 AND active = TRUE`, grantColumns)
	var grant models.Grant
	if err := tx.GetContext(ctx, &grant, query, userID, storeCode, grantType); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active grant: %w", err)
	}
	return &grant, nil
}

// DeactivateSameTypeTx soft-deactivates the user's previous active grant of
// the same type in the store. Rows are never deleted.
func (r *AssignmentRepository) DeactivateSameTypeTx(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) error {
	const query = `UPDATE user_product_assignments
	SET active = FALSE, deactivated_at = $4
	WHERE user_id = $1 AND store_code = $2 AND type = $3 AND active = TRUE`
	if _, err := tx.ExecContext(ctx, query, userID, storeCode, grantType, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate previous grant: %w", err)
	}
	return nil
}

// CreateTx inserts an active grant and backfills its generated id.
func (r *AssignmentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, grant *models.Grant) error {
	grant.Active = true
	grant.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO user_product_assignments
	(user_id, store_code, type, division_code, division_name, category_code, category_name,
	 group_code, group_name, subgroup_code, subgroup_name, active, granted_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id`
	if err := tx.QueryRowxContext(ctx, query,
		grant.UserID, grant.StoreCode, grant.Type,
		grant.DivisionCode, grant.DivisionName, grant.CategoryCode, grant.CategoryName,
		grant.GroupCode, grant.GroupName, grant.SubgroupCode, grant.SubgroupName,
		grant.Active, grant.GrantedBy, grant.CreatedAt,
	).Scan(&grant.ID); err != nil {
		return fmt.Errorf("create grant: %w", err)
	}
	return nil
}

// GetByID fetches a grant by identifier.
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Grant, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_product_assignments WHERE id = $1`, grantColumns)
	var grant models.Grant
	if err := r.db.GetContext(ctx, &grant, query, id); err != nil {
		return nil, err
	}
	return &grant, nil
}

// DeactivateTx soft-deactivates one grant by id.
func (r *AssignmentRepository) DeactivateTx(ctx context.Context, tx *sqlx.Tx, grantID int64) error {
	const query = `UPDATE user_product_assignments
	SET active = FALSE, deactivated_at = $2
	WHERE id = $1 AND active = TRUE`
	result, err := tx.ExecContext(ctx, query, grantID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate grant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check grant deactivate rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns grants matching the filter plus the unpaged total.
func (r *AssignmentRepository) List(ctx context.Context, filter models.GrantFilter) ([]models.Grant, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if !filter.IncludeInactive {
		conditions = append(conditions, "active = TRUE")
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.StoreCode != "" {
		args = append(args, filter.StoreCode)
		conditions = append(conditions, fmt.Sprintf("store_code = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM user_product_assignments"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count grants: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	query := fmt.Sprintf("SELECT %s FROM user_product_assignments%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		grantColumns, where, pageSize, (page-1)*pageSize)

	var grants []models.Grant
	if err := r.db.SelectContext(ctx, &grants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grants: %w", err)
	}
	return grants, total, nil
}
