package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/inventory-recon-api/internal/models"
)

func TestAppendRequestFillsIDAndTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHistoryRepository(db)

	mock.ExpectExec(`INSERT INTO request_history`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.RequestHistory{
		TicketID: 1,
		ActorID:  7,
		Action:   models.HistoryActionCreated,
	}
	require.NoError(t, repo.AppendRequest(context.Background(), entry))

	_, err := uuid.Parse(entry.ID)
	assert.NoError(t, err)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendCountKeepsCallerTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHistoryRepository(db)

	stamped := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO count_history`).
		WithArgs(sqlmock.AnyArg(), int64(5), int64(7), models.HistoryActionCounted, nil, nil, nil, stamped).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.CountHistory{
		CountID:   5,
		ActorID:   7,
		Action:    models.HistoryActionCounted,
		CreatedAt: stamped,
	}
	require.NoError(t, repo.AppendCount(context.Background(), entry))
	assert.Equal(t, stamped, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByTicketNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHistoryRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM request_history WHERE ticket_id = \$1 ORDER BY created_at DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "actor_id", "action", "created_at"}).
			AddRow(uuid.NewString(), 1, 7, "STATUS_CHANGED", time.Now()).
			AddRow(uuid.NewString(), 1, 7, "CREATED", time.Now().Add(-time.Minute)))

	entries, err := repo.ListByTicket(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.HistoryActionStatusChanged, entries[0].Action)
}
