package ports

import (
	"context"
	"errors"

	"tracking-bot/internal/features/tracking/domain"
)

// ErrNoTrackingData is returned by Get when the provider has no item for the
// tracking pair. It is a terminal "nothing to show" signal, distinct from
// transient call failures.
var ErrNoTrackingData = errors.New("no tracking data found")

// ProviderClient defines the contract with the third-party tracking provider.
type ProviderClient interface {
	// Create registers the tracking pair with the provider. A duplicate
	// registration conflict is not an error and returns nil.
	Create(ctx context.Context, trackingNumber, carrier string) error
	// Get retrieves the raw shipment record for the tracking pair.
	// Returns ErrNoTrackingData when the provider's result set is empty.
	Get(ctx context.Context, trackingNumber, carrier string) (*domain.RawItem, error)
}
