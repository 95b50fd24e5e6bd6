package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/inventory-recon-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestNextTicketNumberIncrementsDailySequence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	day := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(CAST\(RIGHT\(ticket_number, 4\) AS INTEGER\)\), 0\)`).
		WithArgs("REQ-20260830-%").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))

	tx, err := db.Beginx()
	require.NoError(t, err)

	number, err := repo.NextTicketNumber(context.Background(), tx, day)
	require.NoError(t, err)
	assert.Equal(t, "REQ-20260830-0042", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextTicketNumberStartsAtOne(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs("REQ-20260101-%").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	tx, err := db.Beginx()
	require.NoError(t, err)

	number, err := repo.NextTicketNumber(context.Background(), tx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "REQ-20260101-0001", number)
}

func TestListTicketsAppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tickets WHERE active = TRUE AND store_code = \$1 AND status IN \(\$2\)`).
		WithArgs("T001", models.TicketStatusPendiente).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE active = TRUE AND store_code = \$1 AND status IN \(\$2\) ORDER BY created_at DESC LIMIT 50 OFFSET 0`).
		WithArgs("T001", models.TicketStatusPendiente).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_number", "requested_by", "store_code", "priority", "description", "due_date", "status", "total_codes", "completed_codes", "pending_codes", "active", "created_at", "updated_at"}).
			AddRow(1, "REQ-20260830-0001", 7, "T001", "NORMAL", "", nil, "PENDIENTE", 2, 0, 2, true, time.Now(), time.Now()))

	tickets, total, err := repo.List(context.Background(), models.TicketFilter{
		StoreCode: "T001",
		Status:    []models.TicketStatus{models.TicketStatusPendiente},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tickets, 1)
	assert.Equal(t, "REQ-20260830-0001", tickets[0].TicketNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCodeStatusTxNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ticket_codes`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.UpdateCodeStatusTx(context.Background(), tx, 99, models.CodeStatusListo, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetByNumberNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE ticket_number = \$1`).
		WithArgs("REQ-20260830-0099").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByNumber(context.Background(), "REQ-20260830-0099")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
