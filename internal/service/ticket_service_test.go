package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/models"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

func newTicketService(tickets *stubTicketStore, history *stubHistoryStore, users *stubUserStore, catalog *stubCatalog, resolver *stubResolver) *TicketService {
	return NewTicketService(
		tickets, history, users, catalog, resolver,
		&stubTx{}, NewCacheService(nil, nil, 0, nil, false), NewMetricsService(),
		validator.New(), nil)
}

func catalogWithProduct(tax models.Taxonomy) *stubCatalog {
	return &stubCatalog{
		lookupFn: func(_ context.Context, _, productCode string) (*models.Product, error) {
			return &models.Product{
				Code:        productCode,
				Description: "desc",
				Taxonomy:    tax,
				Stock:       decimal.NewFromInt(10),
				UnitCost:    decimal.NewFromInt(2),
				Active:      true,
			}, nil
		},
	}
}

func TestCreateTicketAssignsCodesThroughGrants(t *testing.T) {
	tax := models.Taxonomy{DivisionCode: "01", CategoryCode: "0101"}
	resolver := &stubResolver{
		resolveFn: func(_ context.Context, _ string, _ models.Taxonomy) (*models.Grant, error) {
			return &models.Grant{ID: 1, UserID: 42, Type: models.AssignmentDivision, DivisionCode: "01", DivisionName: "Abarrotes"}, nil
		},
	}
	tickets := &stubTicketStore{}
	history := &stubHistoryStore{}
	svc := newTicketService(tickets, history, &stubUserStore{}, catalogWithProduct(tax), resolver)

	detail, err := svc.Create(context.Background(), 7, dto.CreateTicketRequest{
		StoreCode: "T001",
		Codes:     []string{" abc123 ", "ABC123", "def456"},
	})
	require.NoError(t, err)

	assert.Equal(t, "REQ-20260830-0001", detail.Ticket.TicketNumber)
	assert.Equal(t, models.TicketStatusPendiente, detail.Ticket.Status)
	assert.Equal(t, models.PriorityNormal, detail.Ticket.Priority)
	require.Len(t, detail.Codes, 2) // duplicates collapse silently

	code := detail.Codes[0]
	assert.Equal(t, "ABC123", code.ProductCode)
	require.NotNil(t, code.AssignedTo)
	assert.Equal(t, int64(42), *code.AssignedTo)
	require.NotNil(t, code.AssignmentType)
	assert.Equal(t, models.AssignmentDivision, *code.AssignmentType)

	require.Len(t, history.requestEntries, 1)
	assert.Equal(t, models.HistoryActionCreated, history.requestEntries[0].Action)
}

func TestCreateTicketKeepsUnknownCodesUnassigned(t *testing.T) {
	catalog := &stubCatalog{
		lookupFn: func(_ context.Context, _, productCode string) (*models.Product, error) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
		},
	}
	svc := newTicketService(&stubTicketStore{}, &stubHistoryStore{}, &stubUserStore{}, catalog, &stubResolver{})

	detail, err := svc.Create(context.Background(), 7, dto.CreateTicketRequest{
		StoreCode: "T001",
		Codes:     []string{"GHOST1"},
	})
	require.NoError(t, err)
	require.Len(t, detail.Codes, 1)
	assert.Nil(t, detail.Codes[0].AssignedTo)
	require.NotNil(t, detail.Codes[0].Notes)
	assert.Contains(t, *detail.Codes[0].Notes, "not found in catalog")
}

func TestCreateTicketCatalogOutageAborts(t *testing.T) {
	catalog := &stubCatalog{
		lookupFn: func(_ context.Context, _, _ string) (*models.Product, error) {
			return nil, appErrors.Clone(appErrors.ErrDependency, "catalog down")
		},
	}
	svc := newTicketService(&stubTicketStore{}, &stubHistoryStore{}, &stubUserStore{}, catalog, &stubResolver{})

	_, err := svc.Create(context.Background(), 7, dto.CreateTicketRequest{
		StoreCode: "T001",
		Codes:     []string{"ABC123"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDependency.Code, appErrors.FromError(err).Code)
}

func TestCreateTicketRejectsUnknownPriority(t *testing.T) {
	svc := newTicketService(&stubTicketStore{}, &stubHistoryStore{}, &stubUserStore{}, &stubCatalog{}, &stubResolver{})

	_, err := svc.Create(context.Background(), 7, dto.CreateTicketRequest{
		StoreCode: "T001",
		Codes:     []string{"ABC123"},
		Priority:  "CRITICAL",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateCodeStatusRefusesInvalidTransition(t *testing.T) {
	tickets := &stubTicketStore{
		getByIDFn: func(_ context.Context, id int64) (*models.Ticket, error) {
			return &models.Ticket{ID: id, StoreCode: "T001", Status: models.TicketStatusPendiente}, nil
		},
		getCodeFn: func(_ context.Context, codeID int64) (*models.TicketCode, error) {
			return &models.TicketCode{ID: codeID, TicketID: 1, Status: models.CodeStatusPendiente}, nil
		},
	}
	svc := newTicketService(tickets, &stubHistoryStore{}, &stubUserStore{}, &stubCatalog{}, &stubResolver{})

	_, err := svc.UpdateCodeStatus(context.Background(), 7, 1, 2, dto.UpdateCodeStatusRequest{Status: "LISTO"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateCodeStatusRefreshesAggregate(t *testing.T) {
	code := &models.TicketCode{ID: 2, TicketID: 1, Status: models.CodeStatusEnRevision}
	tickets := &stubTicketStore{
		getByIDFn: func(_ context.Context, id int64) (*models.Ticket, error) {
			return &models.Ticket{ID: id, StoreCode: "T001"}, nil
		},
		getCodeFn: func(_ context.Context, _ int64) (*models.TicketCode, error) {
			return code, nil
		},
		listCodesFn: func(_ context.Context, _ int64) ([]models.TicketCode, error) {
			return []models.TicketCode{{ID: 2, TicketID: 1, Status: models.CodeStatusListo}}, nil
		},
	}
	history := &stubHistoryStore{}
	svc := newTicketService(tickets, history, &stubUserStore{}, &stubCatalog{}, &stubResolver{})

	_, err := svc.UpdateCodeStatus(context.Background(), 7, 1, 2, dto.UpdateCodeStatusRequest{Status: "LISTO"})
	require.NoError(t, err)

	assert.Equal(t, 1, tickets.aggregateCalls)
	assert.Equal(t, models.TicketStatusListo, tickets.lastAggStatus)
	assert.Equal(t, 1, tickets.lastAggCompleted)
	assert.Equal(t, 0, tickets.lastAggPending)

	require.Len(t, history.requestEntries, 1)
	entry := history.requestEntries[0]
	assert.Equal(t, models.HistoryActionStatusChanged, entry.Action)
	require.NotNil(t, entry.CodeID)
	assert.Equal(t, int64(2), *entry.CodeID)
}

func TestAssignCodeInactiveAssigneeIsNotFound(t *testing.T) {
	tickets := &stubTicketStore{
		getByIDFn: func(_ context.Context, id int64) (*models.Ticket, error) {
			return &models.Ticket{ID: id, StoreCode: "T001"}, nil
		},
		getCodeFn: func(_ context.Context, codeID int64) (*models.TicketCode, error) {
			return &models.TicketCode{ID: codeID, TicketID: 1, Status: models.CodeStatusPendiente}, nil
		},
	}
	users := &stubUserStore{
		findByIDFn: func(_ context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Active: false}, nil
		},
	}
	svc := newTicketService(tickets, &stubHistoryStore{}, users, &stubCatalog{}, &stubResolver{})

	err := svc.AssignCode(context.Background(), 7, 1, 2, dto.AssignCodeRequest{UserID: 9})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCloseRequiresProcessedCodes(t *testing.T) {
	tickets := &stubTicketStore{
		getByIDFn: func(_ context.Context, id int64) (*models.Ticket, error) {
			return &models.Ticket{ID: id, StoreCode: "T001", Status: models.TicketStatusEnRevision}, nil
		},
		listCodesFn: func(_ context.Context, _ int64) ([]models.TicketCode, error) {
			return []models.TicketCode{
				{ID: 1, ProductCode: "ABC123", Status: models.CodeStatusListo},
				{ID: 2, ProductCode: "DEF456", Status: models.CodeStatusEnRevision},
			}, nil
		},
	}
	svc := newTicketService(tickets, &stubHistoryStore{}, &stubUserStore{}, &stubCatalog{}, &stubResolver{})

	_, err := svc.Close(context.Background(), 7, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "DEF456")
}

func TestUpdateTicketStatusOnlyAcceptsOverrides(t *testing.T) {
	svc := newTicketService(&stubTicketStore{}, &stubHistoryStore{}, &stubUserStore{}, &stubCatalog{}, &stubResolver{})

	_, err := svc.UpdateStatus(context.Background(), 7, 1, dto.UpdateTicketStatusRequest{Status: "LISTO"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetTicketNotFound(t *testing.T) {
	tickets := &stubTicketStore{
		getByIDFn: func(_ context.Context, _ int64) (*models.Ticket, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := newTicketService(tickets, &stubHistoryStore{}, &stubUserStore{}, &stubCatalog{}, &stubResolver{})

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
