package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tracking-bot/internal/core/cache"
	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/tracking/domain"
	"tracking-bot/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// StatusService registers tracking pairs with the provider and turns raw
// provider payloads into canonical status records, with a short-lived cache
// in front of the provider.
type StatusService struct {
	provider ports.ProviderClient
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatusService creates a new StatusService.
func NewStatusService(provider ports.ProviderClient, c cache.Cache, cacheTTL time.Duration) *StatusService {
	return &StatusService{
		provider: provider,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger.Get(),
	}
}

// Register registers the pair with the provider. Provider failures are logged
// and swallowed: registration must not abort the caller's flow, and the
// duplicate conflict is already absorbed by the provider client.
func (s *StatusService) Register(ctx context.Context, trackingNumber, carrier string) {
	if err := s.provider.Create(ctx, trackingNumber, carrier); err != nil {
		s.logger.Error("Provider create failed",
			zap.String("tracking_number", trackingNumber),
			zap.String("carrier", carrier),
			zap.Error(err),
		)
	}
}

// GetStatus returns the canonical status record for a tracking pair.
// Passes through ports.ErrNoTrackingData when the provider has nothing.
func (s *StatusService) GetStatus(ctx context.Context, trackingNumber, carrier string) (*domain.TrackingStatus, error) {
	key := statusCacheKey(trackingNumber, carrier)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var status domain.TrackingStatus
		if err := json.Unmarshal(cached, &status); err == nil {
			return &status, nil
		}
		// Undecodable entries are dropped and refetched.
		s.cache.Delete(ctx, key)
	}

	item, err := s.provider.Get(ctx, trackingNumber, carrier)
	if err != nil {
		return nil, err
	}

	status := domain.Normalize(*item)

	if payload, err := json.Marshal(status); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache tracking status",
				zap.String("tracking_number", trackingNumber),
				zap.Error(err),
			)
		}
	}

	return &status, nil
}

func statusCacheKey(trackingNumber, carrier string) string {
	return fmt.Sprintf("status:%s:%s", carrier, trackingNumber)
}
