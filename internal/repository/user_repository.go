package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/retailops/inventory-recon-api/internal/models"
)

// UserRepository reads user and store master data. The workflow core only
// ever reads these tables; their lifecycle belongs to the identity and
// master-data collaborators.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT id, username, full_name, email, profile, store_code, active, created_at
	FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindStore fetches a store by code.
func (r *UserRepository) FindStore(ctx context.Context, code string) (*models.Store, error) {
	const query = `SELECT code, name, active FROM stores WHERE code = $1`
	var store models.Store
	if err := r.db.GetContext(ctx, &store, query, code); err != nil {
		return nil, err
	}
	return &store, nil
}

// ListByIDs fetches users in bulk for display enrichment.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, username, full_name, email, profile, store_code, active, created_at
	FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build users query: %w", err)
	}
	query = r.db.Rebind(query)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
