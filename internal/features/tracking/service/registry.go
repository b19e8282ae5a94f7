package service

import (
	"context"
	"fmt"
	"sync"

	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/tracking/domain"
	"tracking-bot/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// Registry maintains the durable mapping from user identity to tracked
// shipments. All mutations run as one load-modify-save cycle under a single
// writer lock, so concurrent registrations cannot interleave partial states.
type Registry struct {
	store  ports.RegistryStore
	mu     sync.Mutex
	logger *zap.Logger
}

// NewRegistry creates a new Registry over the given store.
func NewRegistry(store ports.RegistryStore) *Registry {
	return &Registry{
		store:  store,
		logger: logger.Get(),
	}
}

// Add inserts a shipment for the user. Returns false when the
// (trackingNumber, carrier) pair is already registered for that user;
// duplicates are rejected, never overwritten.
func (r *Registry) Add(ctx context.Context, userID, trackingNumber, carrier string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	registry, err := r.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load registry: %w", err)
	}

	for _, s := range registry[userID] {
		if s.TrackingNumber == trackingNumber && s.Carrier == carrier {
			return false, nil
		}
	}

	registry[userID] = append(registry[userID], domain.TrackedShipment{
		TrackingNumber: trackingNumber,
		Carrier:        carrier,
	})

	if err := r.store.Save(ctx, registry); err != nil {
		return false, fmt.Errorf("failed to save registry: %w", err)
	}

	return true, nil
}

// List returns the user's shipments in registration order. Unknown users get
// an empty slice; a failing store is logged and degrades to empty as well.
func (r *Registry) List(ctx context.Context, userID string) []domain.TrackedShipment {
	registry, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Error("Failed to load registry for listing",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return []domain.TrackedShipment{}
	}

	shipments, ok := registry[userID]
	if !ok {
		return []domain.TrackedShipment{}
	}
	return shipments
}
