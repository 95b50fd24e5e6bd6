package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/inventory-recon-api/internal/models"
)

func TestMaterializedCodeIDsBuildsSet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT code_id FROM counts WHERE ticket_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"code_id"}).AddRow(10).AddRow(12))

	tx, err := db.Beginx()
	require.NoError(t, err)

	set, err := repo.MaterializedCodeIDs(context.Background(), tx, 3)
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, int64(10))
	assert.Contains(t, set, int64(12))
}

func TestUpdateQuantitiesTxNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE counts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Beginx()
	require.NoError(t, err)

	qty := decimal.NewFromInt(4)
	err = repo.UpdateQuantitiesTx(context.Background(), tx, &models.Count{ID: 9, PhysicalQty: &qty})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListCountsDifferenceFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCountRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM counts WHERE active = TRUE AND store_code = \$1 AND diferencia IS NOT NULL AND ABS\(diferencia\) > 0\.01`).
		WithArgs("T001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM counts WHERE active = TRUE AND store_code = \$1 AND diferencia IS NOT NULL AND ABS\(diferencia\) > 0\.01 ORDER BY created_at DESC`).
		WithArgs("T001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	hasDiff := true
	_, total, err := repo.List(context.Background(), models.CountFilter{
		StoreCode:     "T001",
		HasDifference: &hasDiff,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCountStatusTxStampsUpdatedAt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE counts SET status = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs(int64(5), models.CountStatusAjustado, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.UpdateStatusTx(context.Background(), tx, 5, models.CountStatusAjustado)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
