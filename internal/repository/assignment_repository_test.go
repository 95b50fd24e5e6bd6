package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/inventory-recon-api/internal/models"
)

func TestListActiveByStoreNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT (.+) FROM user_product_assignments\s+WHERE store_code = \$1 AND active = TRUE ORDER BY created_at DESC`).
		WithArgs("T001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "store_code", "type", "active", "granted_by", "created_at"}).
			AddRow(2, 8, "T001", "DIVISION", true, 1, now).
			AddRow(1, 7, "T001", "DIVISION", true, 1, now.Add(-time.Hour)))

	grants, err := repo.ListActiveByStore(context.Background(), "T001")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, int64(2), grants[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveTxNoRowsMeansNoGrant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM user_product_assignments`).
		WithArgs(int64(7), "T001", models.AssignmentDivision).
		WillReturnError(sql.ErrNoRows)

	tx, err := db.Beginx()
	require.NoError(t, err)

	grant, err := repo.FindActiveTx(context.Background(), tx, 7, "T001", models.AssignmentDivision)
	require.NoError(t, err)
	assert.Nil(t, grant)
}

func TestDeactivateTxAlreadyInactive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE user_product_assignments\s+SET active = FALSE, deactivated_at = \$2\s+WHERE id = \$1 AND active = TRUE`).
		WithArgs(int64(4), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.DeactivateTx(context.Background(), tx, 4)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListGrantsFiltersByUserAndType(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_product_assignments WHERE active = TRUE AND user_id = \$1 AND type = \$2`).
		WithArgs(int64(7), models.AssignmentCategoria).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM user_product_assignments WHERE active = TRUE AND user_id = \$1 AND type = \$2 ORDER BY created_at DESC`).
		WithArgs(int64(7), models.AssignmentCategoria).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	userID := int64(7)
	_, total, err := repo.List(context.Background(), models.GrantFilter{
		UserID: &userID,
		Type:   models.AssignmentCategoria,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
