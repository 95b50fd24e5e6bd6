package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/inventory-recon-api/pkg/cache"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads keyed by typed
// composite keys.
type CacheRepository interface {
	Get(ctx context.Context, key cache.Key, dest interface{}) error
	Set(ctx context.Context, key cache.Key, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...cache.Key) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true on a cache hit.
func (s *CacheService) Get(ctx context.Context, key cache.Key, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	err := s.repo.Get(ctx, key, dest)
	if err != nil {
		s.metrics.RecordCacheLookup(false)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		if s.logger != nil {
			s.logger.Warn("cache get failed", zap.String("key", key.String()), zap.Error(err))
		}
		return false, err
	}
	s.metrics.RecordCacheLookup(true)
	return true, nil
}

// Set stores the value in cache with a bounded TTL.
func (s *CacheService) Set(ctx context.Context, key cache.Key, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	err := s.repo.Set(ctx, key, value, ttl)
	if err != nil && s.logger != nil {
		s.logger.Warn("cache set failed", zap.String("key", key.String()), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values by exact key.
func (s *CacheService) Invalidate(ctx context.Context, keys ...cache.Key) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		if s.logger != nil {
			s.logger.Warn("cache invalidate failed", zap.Error(err))
		}
		return err
	}
	return nil
}
