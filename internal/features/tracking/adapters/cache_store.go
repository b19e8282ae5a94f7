package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tracking-bot/internal/core/cache"
	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/tracking/domain"

	"go.uber.org/zap"
)

const registryCacheKey = "tracking_registry"

// CacheStore implements the RegistryStore port on top of the core Cache port,
// keeping the whole registry as one document under a single key. Backed by
// Redis in production.
type CacheStore struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(c cache.Cache) *CacheStore {
	return &CacheStore{
		cache:  c,
		logger: logger.Get(),
	}
}

// Load reads the registry document. A missing key or an undecodable document
// yields an empty mapping; the latter is logged as a warning.
func (s *CacheStore) Load(ctx context.Context) (map[string][]domain.TrackedShipment, error) {
	data, err := s.cache.Get(ctx, registryCacheKey)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return map[string][]domain.TrackedShipment{}, nil
		}
		return nil, fmt.Errorf("failed to load registry from cache: %w", err)
	}

	var registry map[string][]domain.TrackedShipment
	if err := json.Unmarshal(data, &registry); err != nil {
		s.logger.Warn("Registry document corrupted, resetting to empty", zap.Error(err))
		return map[string][]domain.TrackedShipment{}, nil
	}

	if registry == nil {
		registry = map[string][]domain.TrackedShipment{}
	}
	return registry, nil
}

// Save writes the registry document with no expiration.
func (s *CacheStore) Save(ctx context.Context, data map[string][]domain.TrackedShipment) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := s.cache.Set(ctx, registryCacheKey, payload, 0); err != nil {
		return fmt.Errorf("failed to save registry to cache: %w", err)
	}
	return nil
}
