package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/oka-k/Screenshot/internal/storage"
)

func (m *Manager) readContainer(ctx context.Context, path string) ([]byte, error) {
	data, err := m.store.Get(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
	}
	if err != nil {
		return nil, fmt.Errorf("vault: reading container %s: %w", path, err)
	}
	return data, nil
}

func (m *Manager) writeContainer(ctx context.Context, path string, data []byte) error {
	if err := m.store.Put(ctx, path, data); err != nil {
		return fmt.Errorf("vault: writing container %s: %w", path, err)
	}
	return nil
}
