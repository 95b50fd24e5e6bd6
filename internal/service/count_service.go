package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/models"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

// CountStore is the persistence surface the count service needs.
type CountStore interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, count *models.Count) error
	GetByID(ctx context.Context, id int64) (*models.Count, error)
	MaterializedCodeIDs(ctx context.Context, tx *sqlx.Tx, ticketID int64) (map[int64]struct{}, error)
	UpdateQuantitiesTx(ctx context.Context, tx *sqlx.Tx, count *models.Count) error
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, countID int64, status models.CountStatus) error
	ListByTicket(ctx context.Context, ticketID int64) ([]models.Count, error)
	List(ctx context.Context, filter models.CountFilter) ([]models.Count, int, error)
}

// CountHistoryStore appends and reads count audit entries.
type CountHistoryStore interface {
	AppendCountTx(ctx context.Context, ext sqlx.ExtContext, entry *models.CountHistory) error
	AppendCount(ctx context.Context, entry *models.CountHistory) error
	ListByCount(ctx context.Context, countID int64) ([]models.CountHistory, error)
}

// CountService drives count materialization, physical registration and the
// review lifecycle.
type CountService struct {
	counts       CountStore
	tickets      TicketStore
	countHistory CountHistoryStore
	reqHistory   RequestHistoryStore
	catalog      ProductCatalog
	tx           TxManager
	cache        *CacheService
	metrics      *MetricsService
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewCountService constructs the service.
func NewCountService(
	counts CountStore,
	tickets TicketStore,
	countHistory CountHistoryStore,
	reqHistory RequestHistoryStore,
	catalog ProductCatalog,
	tx TxManager,
	cacheService *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *CountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountService{
		counts:       counts,
		tickets:      tickets,
		countHistory: countHistory,
		reqHistory:   reqHistory,
		catalog:      catalog,
		tx:           tx,
		cache:        cacheService,
		metrics:      metrics,
		validate:     validate,
		logger:       logger,
	}
}

// Materialize snapshots a count row for every non-cancelled ticket code
// that does not have one yet. Calculated stock and unit cost are frozen
// from the catalog at this moment; re-running is a no-op for codes already
// materialized. Any catalog failure aborts the whole operation.
func (s *CountService) Materialize(ctx context.Context, actorID, ticketID int64) ([]models.Count, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Internal(err, "load ticket")
	}
	if ticket.Status == models.TicketStatusCancelado {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ticket is cancelled")
	}

	codes, err := s.tickets.ListCodes(ctx, ticketID)
	if err != nil {
		return nil, appErrors.Internal(err, "load ticket codes")
	}

	// Catalog lookups happen before the transaction opens so a slow or
	// failing collaborator never holds row locks.
	products := make(map[string]*models.Product, len(codes))
	for _, code := range codes {
		if code.Status == models.CodeStatusCancelado {
			continue
		}
		if _, done := products[code.ProductCode]; done {
			continue
		}
		product, err := s.catalog.Lookup(ctx, ticket.StoreCode, code.ProductCode)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrDependency,
				fmt.Sprintf("catalog lookup failed for %s", code.ProductCode))
		}
		products[code.ProductCode] = product
	}

	var created int
	err = s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		existing, err := s.counts.MaterializedCodeIDs(ctx, tx, ticketID)
		if err != nil {
			return appErrors.Internal(err, "read materialized codes")
		}
		for _, code := range codes {
			if code.Status == models.CodeStatusCancelado {
				continue
			}
			if _, done := existing[code.ID]; done {
				continue
			}
			product := products[code.ProductCode]
			count := &models.Count{
				TicketID:        ticketID,
				CodeID:          code.ID,
				StoreCode:       ticket.StoreCode,
				Barcode:         product.Code,
				Description:     product.Description,
				DivisionCode:    product.Taxonomy.DivisionCode,
				CategoryCode:    product.Taxonomy.CategoryCode,
				CalculatedStock: product.Stock,
				UnitCost:        product.UnitCost,
				Status:          models.CountStatusEnRevision,
			}
			if err := s.counts.InsertTx(ctx, tx, count); err != nil {
				return appErrors.Internal(err, "persist count")
			}
			entry := &models.CountHistory{
				CountID:  count.ID,
				ActorID:  actorID,
				Action:   models.HistoryActionCreated,
				NewValue: strPtr(string(count.Status)),
			}
			if err := s.countHistory.AppendCountTx(ctx, tx, entry); err != nil {
				return appErrors.Internal(err, "record count history")
			}
			created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created > 0 {
		_ = s.cache.Invalidate(ctx, dashboardCacheKeys(ticket.StoreCode)...)
	}
	s.logger.Info("counts materialized",
		zap.Int64("ticket_id", ticketID),
		zap.Int("created", created))

	counts, err := s.counts.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, appErrors.Internal(err, "load ticket counts")
	}
	return counts, nil
}

// RegisterPhysical records a physical quantity and recomputes the variance
// fields. Re-registering overwrites the previous quantity while the count
// stays open for review.
func (s *CountService) RegisterPhysical(ctx context.Context, actorID, countID int64, req dto.RegisterCountRequest) (*models.Count, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid count payload")
	}
	if req.Quantity.Sign() < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "quantity cannot be negative")
	}

	count, err := s.loadCount(ctx, countID)
	if err != nil {
		return nil, err
	}
	if !count.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "count is inactive")
	}
	if count.Status != models.CountStatusEnRevision && count.Status != models.CountStatusDevuelto {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("count is locked in status %s", count.Status))
	}

	var oldValue *string
	if count.PhysicalQty != nil {
		oldValue = strPtr(count.PhysicalQty.String())
	}

	quantity := req.Quantity
	count.PhysicalQty = &quantity
	count.Comment = optStr(req.Comment)
	count.Counted = true
	count.Derive()

	err = s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		if err := s.counts.UpdateQuantitiesTx(ctx, tx, count); err != nil {
			return appErrors.Internal(err, "update count quantities")
		}
		entry := &models.CountHistory{
			CountID:  countID,
			ActorID:  actorID,
			Action:   models.HistoryActionCounted,
			OldValue: oldValue,
			NewValue: strPtr(quantity.String()),
			Comment:  optStr(req.Comment),
		}
		if err := s.countHistory.AppendCountTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record count history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPhysicalCount()
	_ = s.cache.Invalidate(ctx, dashboardCacheKeys(count.StoreCode)...)
	return count, nil
}

// UpdateStatus moves a count through its review machine. Settling a count
// as AJUSTADO cascades to its ticket code in the same transaction.
func (s *CountService) UpdateStatus(ctx context.Context, actorID, countID int64, req dto.UpdateCountStatusRequest) (*models.Count, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	next, ok := models.ParseCountStatus(req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown count status %q", req.Status))
	}

	count, err := s.loadCount(ctx, countID)
	if err != nil {
		return nil, err
	}
	if !count.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "count is inactive")
	}
	if !count.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("count cannot transition from %s to %s", count.Status, next))
	}
	if next == models.CountStatusAjustado && !count.Counted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot adjust a count without a registered quantity")
	}

	err = s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		if err := s.counts.UpdateStatusTx(ctx, tx, countID, next); err != nil {
			return appErrors.Internal(err, "update count status")
		}
		entry := &models.CountHistory{
			CountID:  countID,
			ActorID:  actorID,
			Action:   models.HistoryActionStatusChanged,
			OldValue: strPtr(string(count.Status)),
			NewValue: strPtr(string(next)),
			Comment:  optStr(req.Comment),
		}
		if err := s.countHistory.AppendCountTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record count history")
		}
		if next == models.CountStatusAjustado {
			if err := s.cascadeAdjustmentTx(ctx, tx, actorID, count); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, dashboardCacheKeys(count.StoreCode)...)

	updated, err := s.counts.GetByID(ctx, countID)
	if err != nil {
		return nil, appErrors.Internal(err, "reload count")
	}
	return updated, nil
}

// AddComment appends a comment to the count's audit trail.
func (s *CountService) AddComment(ctx context.Context, actorID, countID int64, req dto.AddCountCommentRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	if _, err := s.loadCount(ctx, countID); err != nil {
		return err
	}
	entry := &models.CountHistory{
		CountID: countID,
		ActorID: actorID,
		Action:  models.HistoryActionComment,
		Comment: strPtr(req.Text),
	}
	if err := s.countHistory.AppendCount(ctx, entry); err != nil {
		return appErrors.Internal(err, "record comment")
	}
	return nil
}

// BatchRegister registers many physical quantities. Items fail and succeed
// independently; each runs in its own transaction.
func (s *CountService) BatchRegister(ctx context.Context, actorID int64, req dto.BatchRegisterRequest) (*dto.BatchRegisterResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	result := &dto.BatchRegisterResult{Results: make([]dto.BatchItemResult, 0, len(req.Items))}
	for _, item := range req.Items {
		_, err := s.RegisterPhysical(ctx, actorID, item.CountID, dto.RegisterCountRequest{
			Quantity: item.Quantity,
			Comment:  item.Comment,
		})
		itemResult := dto.BatchItemResult{CountID: item.CountID, Success: err == nil}
		if err != nil {
			itemResult.Error = appErrors.FromError(err).Message
			result.FailCount++
		} else {
			result.SuccessCount++
		}
		s.metrics.RecordBatchItem(err == nil)
		result.Results = append(result.Results, itemResult)
	}
	return result, nil
}

// Get returns one count.
func (s *CountService) Get(ctx context.Context, countID int64) (*models.Count, error) {
	return s.loadCount(ctx, countID)
}

// List returns counts matching the query plus the unpaged total.
func (s *CountService) List(ctx context.Context, query dto.CountQuery) ([]models.Count, int, error) {
	filter := models.CountFilter{
		TicketID:        query.TicketID,
		StoreCode:       query.StoreCode,
		DivisionCode:    query.DivisionCode,
		HasDifference:   query.HasDifference,
		Counted:         query.Counted,
		Search:          query.Search,
		From:            query.From,
		To:              query.To,
		IncludeInactive: query.IncludeInactive,
		Page:            query.Page,
		PageSize:        query.PageSize,
	}
	for _, raw := range strings.Split(query.Status, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, ok := models.ParseCountStatus(raw)
		if !ok {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown count status %q", raw))
		}
		filter.Status = append(filter.Status, status)
	}

	counts, total, err := s.counts.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Internal(err, "list counts")
	}
	return counts, total, nil
}

// ListByTicket returns the ticket's counts.
func (s *CountService) ListByTicket(ctx context.Context, ticketID int64) ([]models.Count, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Internal(err, "load ticket")
	}
	counts, err := s.counts.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, appErrors.Internal(err, "load ticket counts")
	}
	return counts, nil
}

// GetHistory returns the count's audit trail newest-first.
func (s *CountService) GetHistory(ctx context.Context, countID int64) ([]models.CountHistory, error) {
	if _, err := s.loadCount(ctx, countID); err != nil {
		return nil, err
	}
	entries, err := s.countHistory.ListByCount(ctx, countID)
	if err != nil {
		return nil, appErrors.Internal(err, "load count history")
	}
	return entries, nil
}

func (s *CountService) loadCount(ctx context.Context, countID int64) (*models.Count, error) {
	count, err := s.counts.GetByID(ctx, countID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "count not found")
		}
		return nil, appErrors.Internal(err, "load count")
	}
	return count, nil
}

// cascadeAdjustmentTx mirrors a settled adjustment onto the linked ticket
// code and refreshes the ticket aggregate. The code lands on AJUSTADO when
// the count carries a real difference and on LISTO when it squared up. A
// code that cannot accept the transition is left untouched.
func (s *CountService) cascadeAdjustmentTx(ctx context.Context, tx *sqlx.Tx, actorID int64, count *models.Count) error {
	code, err := s.tickets.GetCode(ctx, count.CodeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "load linked code")
	}

	target := models.CodeStatusListo
	if count.HasDifference() {
		target = models.CodeStatusAjustado
	}
	if !code.Status.CanTransitionTo(target) {
		return nil
	}

	if err := s.tickets.UpdateCodeStatusTx(ctx, tx, code.ID, target, nil); err != nil {
		return appErrors.Internal(err, "cascade code adjustment")
	}

	codes, err := s.tickets.ListCodesTx(ctx, tx, count.TicketID)
	if err != nil {
		return appErrors.Internal(err, "reload ticket codes")
	}
	status := models.DeriveTicketStatus(codes)
	completed, pending := models.CountTicketProgress(codes)
	if err := s.tickets.UpdateAggregateTx(ctx, tx, count.TicketID, status, completed, pending); err != nil {
		return appErrors.Internal(err, "refresh ticket aggregate")
	}

	entry := &models.RequestHistory{
		TicketID: count.TicketID,
		CodeID:   &code.ID,
		ActorID:  actorID,
		Action:   models.HistoryActionStatusChanged,
		OldValue: strPtr(string(code.Status)),
		NewValue: strPtr(string(target)),
	}
	if err := s.reqHistory.AppendRequestTx(ctx, tx, entry); err != nil {
		return appErrors.Internal(err, "record cascade history")
	}
	return nil
}
