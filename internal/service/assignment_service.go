package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/models"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

// TxManager scopes multi-write operations to one transaction.
type TxManager interface {
	Within(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// GrantStore is the persistence surface the assignment service needs.
type GrantStore interface {
	ListActiveByStore(ctx context.Context, storeCode string) ([]models.Grant, error)
	FindActiveTx(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) (*models.Grant, error)
	DeactivateSameTypeTx(ctx context.Context, tx *sqlx.Tx, userID int64, storeCode string, grantType models.AssignmentType) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, grant *models.Grant) error
	GetByID(ctx context.Context, id int64) (*models.Grant, error)
	DeactivateTx(ctx context.Context, tx *sqlx.Tx, grantID int64) error
	List(ctx context.Context, filter models.GrantFilter) ([]models.Grant, int, error)
}

// GrantHistoryStore appends grant audit entries.
type GrantHistoryStore interface {
	AppendGrantTx(ctx context.Context, ext sqlx.ExtContext, entry *models.GrantHistory) error
}

// UserStore reads user and store master data.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindStore(ctx context.Context, code string) (*models.Store, error)
}

// AssignmentService manages counting grants and resolves which user a
// product's taxonomy path routes to.
type AssignmentService struct {
	grants   GrantStore
	users    UserStore
	history  GrantHistoryStore
	tx       TxManager
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(grants GrantStore, users UserStore, history GrantHistoryStore, tx TxManager, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{grants: grants, users: users, history: history, tx: tx, validate: validate, logger: logger}
}

// Resolve picks the grant responsible for a taxonomy path in a store. It
// walks levels most specific first and, inside a level, prefers the most
// recently created grant. A nil grant means the code stays unassigned.
func (s *AssignmentService) Resolve(ctx context.Context, storeCode string, tax models.Taxonomy) (*models.Grant, error) {
	grants, err := s.grants.ListActiveByStore(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "load grants for resolution")
	}
	for _, level := range models.ResolutionOrder {
		for i := range grants {
			if grants[i].Type != level {
				continue
			}
			if grants[i].Matches(tax) {
				return &grants[i], nil
			}
		}
	}
	return nil, nil
}

// CreateGrant delegates a taxonomy scope to a user. Any previous active
// grant of the same type for the user in the store is deactivated in the
// same transaction, so at most one stays active.
func (s *AssignmentService) CreateGrant(ctx context.Context, actorID int64, req dto.CreateGrantRequest) (*models.Grant, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grant payload")
	}

	grantType, ok := models.ParseAssignmentType(req.Type)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown assignment type %q", req.Type))
	}

	grant, err := buildGrant(grantType, req)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "load grant user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user is inactive")
	}
	if grantType == models.AssignmentDivision && user.Profile != models.ProfileLider {
		return nil, appErrors.Clone(appErrors.ErrConflict, "division grants are restricted to LIDER users")
	}

	if _, err := s.users.FindStore(ctx, req.StoreCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "store not found")
		}
		return nil, appErrors.Internal(err, "load grant store")
	}

	grant.GrantedBy = actorID

	err = s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		previous, err := s.grants.FindActiveTx(ctx, tx, grant.UserID, grant.StoreCode, grant.Type)
		if err != nil {
			return appErrors.Internal(err, "load previous grant")
		}
		if previous != nil {
			if err := s.grants.DeactivateSameTypeTx(ctx, tx, grant.UserID, grant.StoreCode, grant.Type); err != nil {
				return appErrors.Internal(err, "replace previous grant")
			}
		}
		if err := s.grants.CreateTx(ctx, tx, grant); err != nil {
			return appErrors.Internal(err, "persist grant")
		}

		entry := &models.GrantHistory{
			GrantID:   grant.ID,
			UserID:    grant.UserID,
			StoreCode: grant.StoreCode,
			ActorID:   actorID,
			Action:    models.HistoryActionGrantCreated,
			NewValue:  strPtr(grantScope(*grant)),
		}
		if previous != nil {
			entry.OldValue = strPtr(grantScope(*previous))
		}
		if err := s.history.AppendGrantTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record grant history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("grant created",
		zap.Int64("grant_id", grant.ID),
		zap.Int64("user_id", grant.UserID),
		zap.String("store_code", grant.StoreCode),
		zap.String("type", string(grant.Type)))
	return grant, nil
}

// RemoveGrant soft-deactivates an active grant.
func (s *AssignmentService) RemoveGrant(ctx context.Context, actorID, grantID int64) error {
	grant, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grant not found")
		}
		return appErrors.Internal(err, "load grant")
	}
	if !grant.Active {
		return appErrors.Clone(appErrors.ErrConflict, "grant is already inactive")
	}

	return s.tx.Within(ctx, func(tx *sqlx.Tx) error {
		if err := s.grants.DeactivateTx(ctx, tx, grantID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrConflict, "grant is already inactive")
			}
			return appErrors.Internal(err, "deactivate grant")
		}
		entry := &models.GrantHistory{
			GrantID:   grant.ID,
			UserID:    grant.UserID,
			StoreCode: grant.StoreCode,
			ActorID:   actorID,
			Action:    models.HistoryActionGrantRemoved,
			OldValue:  strPtr(grantScope(*grant)),
		}
		if err := s.history.AppendGrantTx(ctx, tx, entry); err != nil {
			return appErrors.Internal(err, "record grant history")
		}
		return nil
	})
}

// ListGrants returns grants matching the query plus the unpaged total.
func (s *AssignmentService) ListGrants(ctx context.Context, query dto.GrantQuery) ([]models.Grant, int, error) {
	filter := models.GrantFilter{
		UserID:          query.UserID,
		StoreCode:       query.StoreCode,
		IncludeInactive: query.IncludeInactive,
		Page:            query.Page,
		PageSize:        query.PageSize,
	}
	if query.Type != "" {
		grantType, ok := models.ParseAssignmentType(query.Type)
		if !ok {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown assignment type %q", query.Type))
		}
		filter.Type = grantType
	}
	grants, total, err := s.grants.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Internal(err, "list grants")
	}
	return grants, total, nil
}

// buildGrant validates that every ancestor level down to the grant's own
// level carries a code and assembles the grant row.
func buildGrant(grantType models.AssignmentType, req dto.CreateGrantRequest) (*models.Grant, error) {
	grant := &models.Grant{
		UserID:       req.UserID,
		StoreCode:    req.StoreCode,
		Type:         grantType,
		DivisionCode: req.DivisionCode,
		DivisionName: req.DivisionName,
	}

	needsCategory := grantType.Rank() >= models.AssignmentCategoria.Rank()
	needsGroup := grantType.Rank() >= models.AssignmentGrupo.Rank()
	needsSubgroup := grantType.Rank() >= models.AssignmentSubgrupo.Rank()

	if needsCategory {
		if req.CategoryCode == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "category_code is required for this grant type")
		}
		grant.CategoryCode = strPtr(req.CategoryCode)
		grant.CategoryName = optStr(req.CategoryName)
	}
	if needsGroup {
		if req.GroupCode == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "group_code is required for this grant type")
		}
		grant.GroupCode = strPtr(req.GroupCode)
		grant.GroupName = optStr(req.GroupName)
	}
	if needsSubgroup {
		if req.SubgroupCode == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subgroup_code is required for this grant type")
		}
		grant.SubgroupCode = strPtr(req.SubgroupCode)
		grant.SubgroupName = optStr(req.SubgroupName)
	}

	return grant, nil
}

func grantScope(grant models.Grant) string {
	return fmt.Sprintf("%s:%s", grant.Type, grant.ScopeCode())
}

func strPtr(s string) *string {
	return &s
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
