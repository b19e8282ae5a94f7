package ports

import (
	"context"

	"tracking-bot/internal/features/tracking/domain"
)

// RegistryStore defines the secondary port for durable registry storage.
// The whole registry travels as one document; the service layer is the only
// writer and serializes its load-modify-save cycles.
type RegistryStore interface {
	// Load reads the full userId -> shipments mapping. An absent or corrupted
	// document yields an empty mapping, never an error.
	Load(ctx context.Context) (map[string][]domain.TrackedShipment, error)
	// Save writes the full mapping, replacing the stored document.
	Save(ctx context.Context, data map[string][]domain.TrackedShipment) error
}
