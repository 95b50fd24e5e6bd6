package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/models"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

// TicketStore is the persistence surface the ticket service needs.
type TicketStore interface {
	NextTicketNumber(ctx context.Context, tx *sqlx.Tx, day time.Time) (string, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, ticket *models.Ticket) error
	InsertCodesTx(ctx context.Context, tx *sqlx.Tx, codes []models.TicketCode) error
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*models.Ticket, error)
	List(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, int, error)
	ListCodes(ctx context.Context, ticketID int64) ([]models.TicketCode, error)
	ListCodesTx(ctx context.Context, tx *sqlx.Tx, ticketID int64) ([]models.TicketCode, error)
	GetCode(ctx context.Context, codeID int64) (*models.TicketCode, error)
	UpdateCodeStatusTx(ctx context.Context, tx *sqlx.Tx, codeID int64, status models.CodeStatus, notes *string) error
	UpdateCodeAssignmentTx(ctx context.Context, tx *sqlx.Tx, codeID int64, userID *int64, assignmentType *models.AssignmentType, info *string, notes *string) error
	UpdateAggregateTx(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus, completed, pending int) error
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, ticketID int64, status models.TicketStatus) error
}

// RequestHistoryStore appends and reads ticket audit entries.
type RequestHistoryStore interface {
	AppendRequestTx(ctx context.Context, ext sqlx.ExtContext, entry *models.RequestHistory) error
	AppendRequest(ctx context.Context, entry *models.RequestHistory) error
	ListByTicket(ctx context.Context, ticketID int64) ([]models.RequestHistory, error)
}

// ProductCatalog resolves product codes against the catalog collaborator.
type ProductCatalog interface {
	Lookup(ctx context.Context, storeCode, productCode string) (*models.Product, error)
}

// GrantResolver picks the responsible grant for a taxonomy path.
type GrantResolver interface {
	Resolve(ctx context.Context, storeCode string, tax models.Taxonomy) (*models.Grant, error)
}

// TicketService drives the verification ticket workflow.
type TicketService struct {
	tickets  TicketStore
	history  RequestHistoryStore
	users    UserStore
	catalog  ProductCatalog
	resolver GrantResolver
	tx       TxManager
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(
	tickets TicketStore,
	history RequestHistoryStore,
	users UserStore,
	catalog ProductCatalog,
	resolver GrantResolver,
	tx TxManager,
	cacheService *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:  tickets,
		history:  history,
		users:    users,
		catalog:  catalog,
		resolver: resolver,
		tx:       tx,
		cache:    cacheService,
		metrics:  metrics,
		validate: validate,
		logger:   logger,
	}
}

// Create opens a ticket, fans its codes out and routes each code through
// grant resolution. Ticket number, row and codes are written in one
// transaction together with the creation audit entry.
func (s *TicketService) Create(ctx context.Context, actorID int64, req dto.CreateTicketRequest) (*dto.TicketDetail, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ticket payload")
	}

	productCodes := models.NormalizeProductCodes(req.Codes)
	if len(productCodes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one non-empty product code is required")
	}

	priority := models.PriorityNormal
	if req.Priority != "" {
		parsed, ok := models.ParsePriority(req.Priority)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown priority %q", req.Priority))
		}
		priority = parsed
	}

	if _, err := s.users.FindStore(ctx, req.StoreCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "store not found")
		}
		return nil, appErrors.Internal(err, "load ticket store")
	}

	codes := make([]models.TicketCode, 0, len(productCodes))
	for _, productCode := range productCodes {
		code := models.TicketCode{ProductCode: productCode, Status: models.CodeStatusPendiente}

		product, err := s.catalog.Lookup(ctx, req.StoreCode, productCode)
		switch {
		case err == nil && (product.Blocked || !product.Active):
			code.Notes = strPtr("product blocked or inactive in catalog")
		case err == nil:
			grant, err := s.resolver.Resolve(ctx, req.StoreCode, product.Taxonomy)
			if err != nil {
				return nil, err
			}
			if grant != nil {
				code.AssignedTo = &grant.UserID
				grantType := grant.Type
				code.AssignmentType = &grantType
				code.AssignmentInfo = strPtr(fmt.Sprintf("%s %s", grantScope(*grant), grant.ScopeName()))
			}
		case appErrors.FromError(err).Code == appErrors.ErrNotFound.Code:
			// Unknown codes are kept unassigned so the team can triage them.
			code.Notes = strPtr("product not found in catalog")
		default:
			return nil, err
		}

		codes = append(codes, code)
	}

	ticket := &models.Ticket{
		RequestedBy:  actorID,
		StoreCode:    req.StoreCode,
		Priority:     priority,
		Description:  req.Description,
		DueDate:      req.DueDate,
		Status:       models.TicketStatusPendiente,
		TotalCodes:   len(codes),
		PendingCodes: len(codes),
	}

	err := s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		number, err := s.tickets.NextTicketNumber(ctx, tx, time.Now().UTC())
		if err != nil {
			return appErrors.Internal(err, "allocate ticket number")
		}
		ticket.TicketNumber = number

		if err := s.tickets.CreateTx(ctx, tx, ticket); err != nil {
			return appErrors.Internal(err, "persist ticket")
		}
		for i := range codes {
			codes[i].TicketID = ticket.ID
		}
		if err := s.tickets.InsertCodesTx(ctx, tx, codes); err != nil {
			return appErrors.Internal(err, "persist ticket codes")
		}

		entry := &models.RequestHistory{
			TicketID: ticket.ID,
			ActorID:  actorID,
			Action:   models.HistoryActionCreated,
			NewValue: strPtr(string(ticket.Status)),
		}
		if err := s.history.AppendRequestTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record ticket history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTicketCreated()
	_ = s.cache.Invalidate(ctx, dashboardCacheKeys(ticket.StoreCode)...)

	s.logger.Info("ticket created",
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("store_code", ticket.StoreCode),
		zap.Int("codes", len(codes)))
	return &dto.TicketDetail{Ticket: *ticket, Codes: codes}, nil
}

// Get returns a ticket with its codes.
func (s *TicketService) Get(ctx context.Context, ticketID int64) (*dto.TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	codes, err := s.tickets.ListCodes(ctx, ticketID)
	if err != nil {
		return nil, appErrors.Internal(err, "load ticket codes")
	}
	return &dto.TicketDetail{Ticket: *ticket, Codes: codes}, nil
}

// GetByNumber returns a ticket with its codes by human-readable number.
func (s *TicketService) GetByNumber(ctx context.Context, number string) (*dto.TicketDetail, error) {
	ticket, err := s.tickets.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Internal(err, "load ticket")
	}
	codes, err := s.tickets.ListCodes(ctx, ticket.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "load ticket codes")
	}
	return &dto.TicketDetail{Ticket: *ticket, Codes: codes}, nil
}

// List returns tickets matching the query plus the unpaged total.
func (s *TicketService) List(ctx context.Context, query dto.TicketQuery) ([]models.Ticket, int, error) {
	filter := models.TicketFilter{
		StoreCode:       query.StoreCode,
		RequestedBy:     query.RequestedBy,
		From:            query.From,
		To:              query.To,
		Search:          query.Search,
		IncludeInactive: query.IncludeInactive,
		Page:            query.Page,
		PageSize:        query.PageSize,
	}
	if query.Priority != "" {
		priority, ok := models.ParsePriority(query.Priority)
		if !ok {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown priority %q", query.Priority))
		}
		filter.Priority = priority
	}
	for _, raw := range strings.Split(query.Status, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, ok := models.ParseTicketStatus(raw)
		if !ok {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown ticket status %q", raw))
		}
		filter.Status = append(filter.Status, status)
	}

	tickets, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Internal(err, "list tickets")
	}
	return tickets, total, nil
}

// UpdateCodeStatus moves a code through its status machine and refreshes
// the ticket's derived status and counters in the same transaction.
func (s *TicketService) UpdateCodeStatus(ctx context.Context, actorID, ticketID, codeID int64, req dto.UpdateCodeStatusRequest) (*models.TicketCode, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	next, ok := models.ParseCodeStatus(req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown code status %q", req.Status))
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	code, err := s.loadCode(ctx, ticketID, codeID)
	if err != nil {
		return nil, err
	}
	if !code.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("code cannot transition from %s to %s", code.Status, next))
	}

	err = s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		if err := s.tickets.UpdateCodeStatusTx(ctx, tx, codeID, next, optStr(req.Notes)); err != nil {
			return appErrors.Internal(err, "update code status")
		}
		if err := s.refreshAggregateTx(ctx, tx, ticketID); err != nil {
			return err
		}
		entry := &models.RequestHistory{
			TicketID: ticketID,
			CodeID:   &codeID,
			ActorID:  actorID,
			Action:   models.HistoryActionStatusChanged,
			OldValue: strPtr(string(code.Status)),
			NewValue: strPtr(string(next)),
			Comment:  optStr(req.Notes),
		}
		if err := s.history.AppendRequestTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record code history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, dashboardCacheKeys(ticket.StoreCode)...)

	updated, err := s.tickets.GetCode(ctx, codeID)
	if err != nil {
		return nil, appErrors.Internal(err, "reload code")
	}
	return updated, nil
}

// AssignCode manually reroutes a code to a user, overriding grant routing.
func (s *TicketService) AssignCode(ctx context.Context, actorID, ticketID, codeID int64, req dto.AssignCodeRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return err
	}
	code, err := s.loadCode(ctx, ticketID, codeID)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
		}
		return appErrors.Internal(err, "load assignee")
	}
	if !user.Active {
		return appErrors.Clone(appErrors.ErrNotFound, "assignee is inactive")
	}

	return s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		if err := s.tickets.UpdateCodeAssignmentTx(ctx, tx, codeID, &req.UserID, nil, strPtr("MANUAL"), optStr(req.Notes)); err != nil {
			return appErrors.Internal(err, "update code assignment")
		}
		entry := &models.RequestHistory{
			TicketID: ticketID,
			CodeID:   &codeID,
			ActorID:  actorID,
			Action:   models.HistoryActionAssigned,
			OldValue: formatAssignee(code.AssignedTo),
			NewValue: strPtr(fmt.Sprintf("%d", req.UserID)),
			Comment:  optStr(req.Notes),
		}
		if err := s.history.AppendRequestTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record assignment history")
		}
		return nil
	})
}

// AddComment appends a ticket- or code-level comment to the audit trail.
func (s *TicketService) AddComment(ctx context.Context, actorID, ticketID int64, req dto.AddCommentRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return err
	}
	if req.CodeID != nil {
		if _, err := s.loadCode(ctx, ticketID, *req.CodeID); err != nil {
			return err
		}
	}

	entry := &models.RequestHistory{
		TicketID: ticketID,
		CodeID:   req.CodeID,
		ActorID:  actorID,
		Action:   models.HistoryActionComment,
		Comment:  strPtr(req.Text),
	}
	if err := s.history.AppendRequest(ctx, entry); err != nil {
		return appErrors.Internal(err, "record comment")
	}
	return nil
}

// Close settles the ticket. Every code that is not cancelled must already
// be processed; the closing status is derived from the codes.
func (s *TicketService) Close(ctx context.Context, actorID, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketStatusCancelado {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ticket is cancelled")
	}

	codes, err := s.tickets.ListCodes(ctx, ticketID)
	if err != nil {
		return nil, appErrors.Internal(err, "load ticket codes")
	}
	for _, code := range codes {
		if code.Status == models.CodeStatusCancelado {
			continue
		}
		if !code.Status.Processed() {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("code %s is still %s", code.ProductCode, code.Status))
		}
	}

	status := models.DeriveTicketStatus(codes)
	completed, pending := models.CountTicketProgress(codes)

	err = s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		if err := s.tickets.UpdateAggregateTx(ctx, tx, ticketID, status, completed, pending); err != nil {
			return appErrors.Internal(err, "close ticket")
		}
		entry := &models.RequestHistory{
			TicketID: ticketID,
			ActorID:  actorID,
			Action:   models.HistoryActionClosed,
			OldValue: strPtr(string(ticket.Status)),
			NewValue: strPtr(string(status)),
		}
		if err := s.history.AppendRequestTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record close history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, dashboardCacheKeys(ticket.StoreCode)...)
	return s.loadTicket(ctx, ticketID)
}

// UpdateStatus applies an explicit ticket-level override. Only DEVUELTO and
// CANCELADO may be set directly; the remaining statuses are derived.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, ticketID int64, req dto.UpdateTicketStatusRequest) (*models.Ticket, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	next, ok := models.ParseTicketStatus(req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown ticket status %q", req.Status))
	}
	if next != models.TicketStatusDevuelto && next != models.TicketStatusCancelado {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only DEVUELTO or CANCELADO can be set directly")
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketStatusCancelado {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ticket is cancelled")
	}

	err = s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		if err := s.tickets.UpdateStatusTx(ctx, tx, ticketID, next); err != nil {
			return appErrors.Internal(err, "update ticket status")
		}
		entry := &models.RequestHistory{
			TicketID: ticketID,
			ActorID:  actorID,
			Action:   models.HistoryActionStatusChanged,
			OldValue: strPtr(string(ticket.Status)),
			NewValue: strPtr(string(next)),
			Comment:  optStr(req.Notes),
		}
		if err := s.history.AppendRequestTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record status history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, dashboardCacheKeys(ticket.StoreCode)...)
	return s.loadTicket(ctx, ticketID)
}

// GetHistory returns the ticket's audit trail newest-first.
func (s *TicketService) GetHistory(ctx context.Context, ticketID int64) ([]models.RequestHistory, error) {
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, appErrors.Internal(err, "load ticket history")
	}
	return entries, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Internal(err, "load ticket")
	}
	return ticket, nil
}

func (s *TicketService) loadCode(ctx context.Context, ticketID, codeID int64) (*models.TicketCode, error) {
	code, err := s.tickets.GetCode(ctx, codeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "code not found")
		}
		return nil, appErrors.Internal(err, "load code")
	}
	if code.TicketID != ticketID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "code does not belong to ticket")
	}
	return code, nil
}

// refreshAggregateTx recomputes the ticket's derived status and counters
// from its codes inside the caller's transaction.
func (s *TicketService) refreshAggregateTx(ctx context.Context, tx *sqlx.Tx, ticketID int64) error {
	codes, err := s.tickets.ListCodesTx(ctx, tx, ticketID)
	if err != nil {
		return appErrors.Internal(err, "reload ticket codes")
	}
	status := models.DeriveTicketStatus(codes)
	completed, pending := models.CountTicketProgress(codes)
	if err := s.tickets.UpdateAggregateTx(ctx, tx, ticketID, status, completed, pending); err != nil {
		return appErrors.Internal(err, "refresh ticket aggregate")
	}
	return nil
}

func formatAssignee(userID *int64) *string {
	if userID == nil {
		return nil
	}
	return strPtr(fmt.Sprintf("%d", *userID))
}
