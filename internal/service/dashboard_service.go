package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/models"
	"github.com/retailops/inventory-recon-api/pkg/cache"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

const dashboardNamespace = "dashboard"

// dashboardCacheKeys returns the keys invalidated by a mutation in a store:
// the store's own rollup and the cross-store one.
func dashboardCacheKeys(storeCode string) []cache.Key {
	if storeCode == "" {
		return []cache.Key{cache.NewKey(dashboardNamespace, "")}
	}
	return []cache.Key{
		cache.NewKey(dashboardNamespace, storeCode),
		cache.NewKey(dashboardNamespace, ""),
	}
}

// DashboardStore computes the read-only rollups.
type DashboardStore interface {
	TicketStatusCounts(ctx context.Context, storeCode string) ([]models.TicketStatusCount, error)
	TicketPriorityCounts(ctx context.Context, storeCode string) ([]models.TicketPriorityCount, error)
	CodeProgress(ctx context.Context, storeCode string) (*models.CodeProgress, error)
	CountStatusCounts(ctx context.Context, storeCode string) ([]models.CountStatusCount, error)
	MovementCounts(ctx context.Context, storeCode string) ([]models.MovementCount, error)
	CountedSplit(ctx context.Context, storeCode string) (counted, uncounted int, err error)
	DivisionVariances(ctx context.Context, storeCode string) ([]models.DivisionVariance, error)
	VarianceTotals(ctx context.Context, storeCode string) (decimal.Decimal, int, error)
}

// DashboardService assembles the reconciliation dashboard, serving cached
// payloads when available.
type DashboardService struct {
	store  DashboardStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(store DashboardStore, cacheService *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: store, cache: cacheService, ttl: ttl, logger: logger}
}

// Get returns the dashboard for a store, or across stores when storeCode is
// empty. Cache failures degrade to a direct read.
func (s *DashboardService) Get(ctx context.Context, storeCode string) (*dto.DashboardResponse, error) {
	key := cache.NewKey(dashboardNamespace, storeCode)

	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	dashboard, err := s.build(ctx, storeCode)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, dashboard, s.ttl); err != nil {
		s.logger.Warn("dashboard cache store failed", zap.Error(err))
	}
	return dashboard, nil
}

func (s *DashboardService) build(ctx context.Context, storeCode string) (*dto.DashboardResponse, error) {
	byStatus, err := s.store.TicketStatusCounts(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "ticket status rollup")
	}
	byPriority, err := s.store.TicketPriorityCounts(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "ticket priority rollup")
	}
	progress, err := s.store.CodeProgress(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "code progress rollup")
	}
	countStatus, err := s.store.CountStatusCounts(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "count status rollup")
	}
	movements, err := s.store.MovementCounts(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "movement rollup")
	}
	counted, uncounted, err := s.store.CountedSplit(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "counted split rollup")
	}
	variances, err := s.store.DivisionVariances(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "division variance rollup")
	}
	totalCost, withDifference, err := s.store.VarianceTotals(ctx, storeCode)
	if err != nil {
		return nil, appErrors.Internal(err, "variance totals rollup")
	}

	completedPct := 0.0
	if progress.TotalCodes > 0 {
		completedPct = float64(progress.CompletedCodes) / float64(progress.TotalCodes) * 100
	}

	return &dto.DashboardResponse{
		StoreCode: storeCode,
		Tickets: dto.TicketsSection{
			ByStatus:      byStatus,
			ByPriority:    byPriority,
			TotalCodes:    progress.TotalCodes,
			CompletedPct:  completedPct,
			PendingCodes:  progress.PendingCodes,
			CompleteCodes: progress.CompletedCodes,
		},
		Counts: dto.CountsSection{
			ByStatus:   countStatus,
			ByMovement: movements,
			Counted:    counted,
			Uncounted:  uncounted,
		},
		Variances: dto.VariancesSection{
			ByDivision:        variances,
			TotalVarianceCost: totalCost,
			WithDifference:    withDifference,
		},
	}, nil
}
