package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/models"
	"github.com/retailops/inventory-recon-api/pkg/cache"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

type stubDashboardStore struct {
	calls int
}

func (s *stubDashboardStore) TicketStatusCounts(_ context.Context, _ string) ([]models.TicketStatusCount, error) {
	s.calls++
	return []models.TicketStatusCount{{Status: models.TicketStatusPendiente, Count: 3}}, nil
}

func (s *stubDashboardStore) TicketPriorityCounts(_ context.Context, _ string) ([]models.TicketPriorityCount, error) {
	return []models.TicketPriorityCount{{Priority: models.PriorityNormal, Count: 3}}, nil
}

func (s *stubDashboardStore) CodeProgress(_ context.Context, _ string) (*models.CodeProgress, error) {
	return &models.CodeProgress{TotalCodes: 8, CompletedCodes: 2, PendingCodes: 6}, nil
}

func (s *stubDashboardStore) CountStatusCounts(_ context.Context, _ string) ([]models.CountStatusCount, error) {
	return []models.CountStatusCount{{Status: models.CountStatusEnRevision, Count: 4}}, nil
}

func (s *stubDashboardStore) MovementCounts(_ context.Context, _ string) ([]models.MovementCount, error) {
	return []models.MovementCount{{MovementType: models.MovementAjusteNegativo, Count: 2}}, nil
}

func (s *stubDashboardStore) CountedSplit(_ context.Context, _ string) (int, int, error) {
	return 3, 1, nil
}

func (s *stubDashboardStore) DivisionVariances(_ context.Context, _ string) ([]models.DivisionVariance, error) {
	return []models.DivisionVariance{{DivisionCode: "01", Count: 2, TotalCost: decimal.RequireFromString("-12.5")}}, nil
}

func (s *stubDashboardStore) VarianceTotals(_ context.Context, _ string) (decimal.Decimal, int, error) {
	return decimal.RequireFromString("-12.5"), 2, nil
}

func TestDashboardBuildsSections(t *testing.T) {
	store := &stubDashboardStore{}
	repo := &stubCacheRepo{
		getFn: func(_ context.Context, _ cache.Key, _ interface{}) error {
			return appErrors.ErrCacheMiss
		},
	}
	svc := NewDashboardService(store, NewCacheService(repo, nil, 0, nil, true), 0, nil)

	dashboard, err := svc.Get(context.Background(), "T001")
	require.NoError(t, err)

	assert.Equal(t, "T001", dashboard.StoreCode)
	assert.Equal(t, 8, dashboard.Tickets.TotalCodes)
	assert.InDelta(t, 25.0, dashboard.Tickets.CompletedPct, 0.001)
	assert.Equal(t, 3, dashboard.Counts.Counted)
	assert.Equal(t, 1, dashboard.Counts.Uncounted)
	assert.Equal(t, 2, dashboard.Variances.WithDifference)
	assert.True(t, dashboard.Variances.TotalVarianceCost.Equal(decimal.RequireFromString("-12.5")))
}

func TestDashboardServesCachedPayload(t *testing.T) {
	store := &stubDashboardStore{}
	cached := dto.DashboardResponse{StoreCode: "T001", Tickets: dto.TicketsSection{TotalCodes: 99}}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	repo := &stubCacheRepo{
		getFn: func(_ context.Context, _ cache.Key, dest interface{}) error {
			return json.Unmarshal(payload, dest)
		},
	}
	svc := NewDashboardService(store, NewCacheService(repo, nil, 0, nil, true), 0, nil)

	dashboard, err := svc.Get(context.Background(), "T001")
	require.NoError(t, err)
	assert.Equal(t, 99, dashboard.Tickets.TotalCodes)
	assert.Zero(t, store.calls)
}

func TestDashboardCacheKeys(t *testing.T) {
	keys := dashboardCacheKeys("T001")
	require.Len(t, keys, 2)
	assert.Equal(t, "dashboard:T001", keys[0].String())
	assert.Equal(t, "dashboard:-", keys[1].String())

	keys = dashboardCacheKeys("")
	require.Len(t, keys, 1)
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	svc := NewCacheService(nil, nil, 0, nil, false)

	hit, err := svc.Get(context.Background(), cache.NewKey("dashboard", "T001"), nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), cache.NewKey("dashboard", "T001"), "x", 0))
	assert.NoError(t, svc.Invalidate(context.Background(), cache.NewKey("dashboard", "T001")))
}

func TestCacheServiceInvalidateDeletesExactKeys(t *testing.T) {
	repo := &stubCacheRepo{
		getFn: func(_ context.Context, _ cache.Key, _ interface{}) error {
			return appErrors.ErrCacheMiss
		},
	}
	svc := NewCacheService(repo, nil, 0, nil, true)

	require.NoError(t, svc.Invalidate(context.Background(), dashboardCacheKeys("T001")...))
	assert.Equal(t, []string{"dashboard:T001", "dashboard:-"}, repo.deleted)
}
