package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/retailops/inventory-recon-api/internal/models"
	"github.com/retailops/inventory-recon-api/pkg/cache"
)

// stubTx runs the unit of work without a real transaction.
type stubTx struct {
	err error
}

func (s *stubTx) Within(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubGrantStore struct {
	listActiveFn         func(ctx context.Context, storeCode string) ([]models.Grant, error)
	findActiveFn         func(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) (*models.Grant, error)
	deactivateSameTypeFn func(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) error
	createFn             func(ctx context.Context, tx *sqlx.Tx, grant *models.Grant) error
	getByIDFn            func(ctx context.Context, id int64) (*models.Grant, error)
	deactivateFn         func(ctx context.Context, tx *sqlx.Tx, grantID int64) error
	listFn               func(ctx context.Context, filter models.GrantFilter) ([]models.Grant, int, error)
}

func (s *stubGrantStore) ListActiveByStore(ctx context.Context, storeCode string) ([]models.Grant, error) {
	return s.listActiveFn(ctx, storeCode)
}

func (s *stubGrantStore) FindActiveTx(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) (*models.Grant, error) {
	if s.findActiveFn == nil {
		return nil, nil
	}
	return s.findActiveFn(ctx, tx, userID, storeCode, grantType)
}

func (s *stubGrantStore) DeactivateSameTypeTx(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) error {
	if s.deactivateSameTypeFn == nil {
		return nil
	}
	return s.deactivateSameTypeFn(ctx, tx, userID, storeCode, grantType)
}

func (s *stubGrantStore) CreateTx(ctx context.Context, tx *sqlx.Tx, grant *models.Grant) error {
	return s.createFn(ctx, tx, grant)
}

func (s *stubGrantStore) GetByID(ctx context.Context, id int64) (*models.Grant, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubGrantStore) DeactivateTx(ctx context.Context, tx *sqlx.Tx, grantID int64) error {
	return s.deactivateFn(ctx, tx, grantID)
}

func (s *stubGrantStore) List(ctx context.Context, filter models.GrantFilter) ([]models.Grant, int, error) {
	return s.listFn(ctx, filter)
}

type stubUserStore struct {
	findByIDFn  func(ctx context.Context, id int64) (*models.User, error)
	findStoreFn func(ctx context.Context, code string) (*models.Store, error)
}

func (s *stubUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubUserStore) FindStore(ctx context.Context, code string) (*models.Store, error) {
	if s.findStoreFn == nil {
		return &models.Store{Code: code, Active: true}, nil
	}
	return s.findStoreFn(ctx, code)
}

type stubHistoryStore struct {
	requestEntries []models.RequestHistory
	countEntries   []models.CountHistory
	grantEntries   []models.GrantHistory
	listByTicketFn func(ctx context.Context, ticketID int64) ([]models.RequestHistory, error)
	listByCountFn  func(ctx context.Context, countID int64) ([]models.CountHistory, error)
}

func (s *stubHistoryStore) AppendRequestTx(_ context.Context, _ sqlx.ExtContext, entry *models.RequestHistory) error {
	s.requestEntries = append(s.requestEntries, *entry)
	return nil
}

func (s *stubHistoryStore) AppendRequest(_ context.Context, entry *models.RequestHistory) error {
	s.requestEntries = append(s.requestEntries, *entry)
	return nil
}

func (s *stubHistoryStore) ListByTicket(ctx context.Context, ticketID int64) ([]models.RequestHistory, error) {
	if s.listByTicketFn == nil {
		return s.requestEntries, nil
	}
	return s.listByTicketFn(ctx, ticketID)
}

func (s *stubHistoryStore) AppendCountTx(_ context.Context, _ sqlx.ExtContext, entry *models.CountHistory) error {
	s.countEntries = append(s.countEntries, *entry)
	return nil
}

func (s *stubHistoryStore) AppendCount(_ context.Context, entry *models.CountHistory) error {
	s.countEntries = append(s.countEntries, *entry)
	return nil
}

func (s *stubHistoryStore) ListByCount(ctx context.Context, countID int64) ([]models.CountHistory, error) {
	if s.listByCountFn == nil {
		return s.countEntries, nil
	}
	return s.listByCountFn(ctx, countID)
}

func (s *stubHistoryStore) AppendGrantTx(_ context.Context, _ sqlx.ExtContext, entry *models.GrantHistory) error {
	s.grantEntries = append(s.grantEntries, *entry)
	return nil
}

type stubTicketStore struct {
	nextNumberFn     func(ctx context.Context, tx *sqlx.Tx, day time.Time) (string, error)
	createFn         func(ctx context.Context, tx *sqlx.Tx, ticket *models.Ticket) error
	insertCodesFn    func(ctx context.Context, tx *sqlx.Tx, codes []models.TicketCode) error
	getByIDFn        func(ctx context.Context, id int64) (*models.Ticket, error)
	getByNumberFn    func(ctx context.Context, number string) (*models.Ticket, error)
	listFn           func(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, int, error)
	listCodesFn      func(ctx context.Context, ticketID int64) ([]models.TicketCode, error)
	getCodeFn        func(ctx context.Context, codeID int64) (*models.TicketCode, error)
	updateCodeFn     func(ctx context.Context, tx *sqlx.Tx, codeID int64, status models.CodeStatus, notes *string) error
	updateAssignFn   func(ctx context.Context, tx *sqlx.Tx, codeID int64, userID *int64, assignmentType *models.AssignmentType, info *string, notes *string) error
	updateAggFn      func(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus, completed, pending int) error
	updateStatusFn   func(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus) error
	aggregateCalls   int
	lastAggStatus    models.TicketStatus
	lastAggCompleted int
	lastAggPending   int
}

func (s *stubTicketStore) NextTicketNumber(ctx context.Context, tx *sqlx.Tx, day time.Time) (string, error) {
	if s.nextNumberFn == nil {
		return "REQ-20260830-0001", nil
	}
	return s.nextNumberFn(ctx, tx, day)
}

func (s *stubTicketStore) CreateTx(ctx context.Context, tx *sqlx.Tx, ticket *models.Ticket) error {
	if s.createFn == nil {
		ticket.ID = 1
		return nil
	}
	return s.createFn(ctx, tx, ticket)
}

func (s *stubTicketStore) InsertCodesTx(ctx context.Context, tx *sqlx.Tx, codes []models.TicketCode) error {
	if s.insertCodesFn == nil {
		for i := range codes {
			codes[i].ID = int64(i + 1)
		}
		return nil
	}
	return s.insertCodesFn(ctx, tx, codes)
}

func (s *stubTicketStore) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubTicketStore) GetByNumber(ctx context.Context, number string) (*models.Ticket, error) {
	return s.getByNumberFn(ctx, number)
}

func (s *stubTicketStore) List(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, int, error) {
	return s.listFn(ctx, filter)
}

func (s *stubTicketStore) ListCodes(ctx context.Context, ticketID int64) ([]models.TicketCode, error) {
	return s.listCodesFn(ctx, ticketID)
}

func (s *stubTicketStore) ListCodesTx(ctx context.Context, _ *sqlx.Tx, ticketID int64) ([]models.TicketCode, error) {
	return s.listCodesFn(ctx, ticketID)
}

func (s *stubTicketStore) GetCode(ctx context.Context, codeID int64) (*models.TicketCode, error) {
	return s.getCodeFn(ctx, codeID)
}

func (s *stubTicketStore) UpdateCodeStatusTx(ctx context.Context, tx *sqlx.Tx, codeID int64, status models.CodeStatus, notes *string) error {
	if s.updateCodeFn == nil {
		return nil
	}
	return s.updateCodeFn(ctx, tx, codeID, status, notes)
}

func (s *stubTicketStore) UpdateCodeAssignmentTx(ctx context.Context, tx *sqlx.Tx, codeID int64, userID *int64, assignmentType *models.AssignmentType, info *string, notes *string) error {
	if s.updateAssignFn == nil {
		return nil
	}
	return s.updateAssignFn(ctx, tx, codeID, userID, assignmentType, info, notes)
}

func (s *stubTicketStore) UpdateAggregateTx(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus, completed, pending int) error {
	s.aggregateCalls++
	s.lastAggStatus = status
	s.lastAggCompleted = completed
	s.lastAggPending = pending
	if s.updateAggFn == nil {
		return nil
	}
	return s.updateAggFn(ctx, tx, ticketID, status, completed, pending)
}

func (s *stubTicketStore) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, tx, ticketID, status)
}

type stubCountStore struct {
	insertFn          func(ctx context.Context, tx *sqlx.Tx, count *models.Count) error
	getByIDFn         func(ctx context.Context, id int64) (*models.Count, error)
	materializedFn    func(ctx context.Context, tx *sqlx.Tx, ticketID int64) (map[int64]struct{}, error)
	updateQtyFn       func(ctx context.Context, tx *sqlx.Tx, count *models.Count) error
	updateStatusFn    func(ctx context.Context, tx *sqlx.Tx, countID int64, status models.CountStatus) error
	listByTicketFn    func(ctx context.Context, ticketID int64) ([]models.Count, error)
	listFn            func(ctx context.Context, filter models.CountFilter) ([]models.Count, int, error)
	inserted          []models.Count
	lastUpdatedStatus models.CountStatus
}

func (s *stubCountStore) InsertTx(ctx context.Context, tx *sqlx.Tx, count *models.Count) error {
	if s.insertFn == nil {
		count.ID = int64(len(s.inserted) + 1)
		s.inserted = append(s.inserted, *count)
		return nil
	}
	return s.insertFn(ctx, tx, count)
}

func (s *stubCountStore) GetByID(ctx context.Context, id int64) (*models.Count, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubCountStore) MaterializedCodeIDs(ctx context.Context, tx *sqlx.Tx, ticketID int64) (map[int64]struct{}, error) {
	if s.materializedFn == nil {
		return map[int64]struct{}{}, nil
	}
	return s.materializedFn(ctx, tx, ticketID)
}

func (s *stubCountStore) UpdateQuantitiesTx(ctx context.Context, tx *sqlx.Tx, count *models.Count) error {
	if s.updateQtyFn == nil {
		return nil
	}
	return s.updateQtyFn(ctx, tx, count)
}

func (s *stubCountStore) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, countID int64, status models.CountStatus) error {
	s.lastUpdatedStatus = status
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, tx, countID, status)
}

func (s *stubCountStore) ListByTicket(ctx context.Context, ticketID int64) ([]models.Count, error) {
	if s.listByTicketFn == nil {
		return s.inserted, nil
	}
	return s.listByTicketFn(ctx, ticketID)
}

func (s *stubCountStore) List(ctx context.Context, filter models.CountFilter) ([]models.Count, int, error) {
	return s.listFn(ctx, filter)
}

type stubCatalog struct {
	lookupFn func(ctx context.Context, storeCode, productCode string) (*models.Product, error)
}

func (s *stubCatalog) Lookup(ctx context.Context, storeCode, productCode string) (*models.Product, error) {
	return s.lookupFn(ctx, storeCode, productCode)
}

type stubResolver struct {
	resolveFn func(ctx context.Context, storeCode string, tax models.Taxonomy) (*models.Grant, error)
}

func (s *stubResolver) Resolve(ctx context.Context, storeCode string, tax models.Taxonomy) (*models.Grant, error) {
	if s.resolveFn == nil {
		return nil, nil
	}
	return s.resolveFn(ctx, storeCode, tax)
}

type stubCacheRepo struct {
	values  map[string][]byte
	getFn   func(ctx context.Context, key cache.Key, dest interface{}) error
	setFn   func(ctx context.Context, key cache.Key, value interface{}, ttl time.Duration) error
	deleted []string
}

func (s *stubCacheRepo) Get(ctx context.Context, key cache.Key, dest interface{}) error {
	return s.getFn(ctx, key, dest)
}

func (s *stubCacheRepo) Set(ctx context.Context, key cache.Key, value interface{}, ttl time.Duration) error {
	if s.setFn == nil {
		return nil
	}
	return s.setFn(ctx, key, value, ttl)
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...cache.Key) error {
	for _, key := range keys {
		s.deleted = append(s.deleted, key.String())
	}
	return nil
}
