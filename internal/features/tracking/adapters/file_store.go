package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// FileStore implements the RegistryStore port with a single JSON document on
// disk. The whole document is read and written on every cycle.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a new FileStore for the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.Get(),
	}
}

// Load reads the full registry document. An absent, empty or corrupted file
// yields an empty mapping with a logged warning, never an error.
func (s *FileStore) Load(_ context.Context) (map[string][]domain.TrackedShipment, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]domain.TrackedShipment{}, nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	if len(data) == 0 {
		return map[string][]domain.TrackedShipment{}, nil
	}

	var registry map[string][]domain.TrackedShipment
	if err := json.Unmarshal(data, &registry); err != nil {
		s.logger.Warn("Registry file corrupted, resetting to empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return map[string][]domain.TrackedShipment{}, nil
	}

	if registry == nil {
		registry = map[string][]domain.TrackedShipment{}
	}
	return registry, nil
}

// Save writes the full registry document. The write goes through a temp file
// and rename so readers never observe a partially written document.
func (s *FileStore) Save(_ context.Context, data map[string][]domain.TrackedShipment) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp registry file: %w", err)
	}

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close registry file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}
