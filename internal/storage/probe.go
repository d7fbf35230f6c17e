package storage

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Probe checks that b accepts writes by storing and then removing a
// throwaway key next to key.
func Probe(ctx context.Context, b Backend, key string) error {
	if b == nil {
		return fmt.Errorf("storage: no backend")
	}
	probeKey := fmt.Sprintf("%s-check-%s", key, uuid.NewString())
	if err := b.Set(ctx, probeKey, "ok"); err != nil {
		return fmt.Errorf("storage: probe write failed: %w", err)
	}
	if err := b.Remove(ctx, probeKey); err != nil {
		return fmt.Errorf("storage: probe cleanup failed: %w", err)
	}
	return nil
}

// Select returns primary if it passes Probe. Otherwise primary is closed
// and an in-memory backend is returned for the rest of the session.
func Select(ctx context.Context, primary Backend, key string, logger *log.Logger) Backend {
	err := Probe(ctx, primary, key)
	if err == nil {
		return primary
	}

	if logger != nil {
		logger.Warn("persistent storage unavailable, scores will not survive a restart", "error", err)
	}
	if primary != nil {
		primary.Close() //nolint:errcheck // already unusable
	}
	return NewMemory()
}
